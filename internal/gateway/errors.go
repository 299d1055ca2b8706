package gateway

import (
	"errors"
	"fmt"
)

// QueryError represents a query rejected or aborted by the gateway.
//
// Rejections are diagnosed precisely:
//   - Too long: the raw text exceeds the length gate (checked before parsing)
//   - Update not allowed: the text is a well-formed mutation
//   - Parse error: the text is not well-formed SPARQL at all
//   - Unsafe query type: a parsed query has a non-read form (defensive;
//     the read parser should never produce one)
//   - Timeout: execution exceeded its deadline
//   - Engine failure: the store or compiler failed during execution
//
// QueryError includes structured fields so callers can render a precise
// diagnosis without string matching.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Operation names the mutation keyword for update rejections
	// (e.g. "INSERT DATA").
	Operation string

	// Cause is the underlying error, if any.
	Cause error
}

// QueryErrorCode categorizes gateway errors.
type QueryErrorCode string

const (
	// ErrCodeQueryTooLong indicates the raw query text exceeds the length gate.
	ErrCodeQueryTooLong QueryErrorCode = "QUERY_TOO_LONG"

	// ErrCodeParseError indicates the text is not well-formed SPARQL.
	ErrCodeParseError QueryErrorCode = "PARSE_ERROR"

	// ErrCodeUpdateNotAllowed indicates the text is a well-formed mutation.
	ErrCodeUpdateNotAllowed QueryErrorCode = "UPDATE_NOT_ALLOWED"

	// ErrCodeUnsafeQueryType indicates a parsed query has a form outside the
	// read set. This is a defensive category; the read parser only produces
	// read forms.
	ErrCodeUnsafeQueryType QueryErrorCode = "UNSAFE_QUERY_TYPE"

	// ErrCodeTimeout indicates execution exceeded its deadline.
	ErrCodeTimeout QueryErrorCode = "TIMEOUT"

	// ErrCodeEngineFailure indicates the store or compiler failed.
	ErrCodeEngineFailure QueryErrorCode = "ENGINE_FAILURE"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s (operation=%s)", e.Code, e.Message, e.Operation)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// CodeOf returns the gateway error code carried by err, or "" if err is not
// a QueryError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) QueryErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsQueryTooLong returns true if the error is a length-gate rejection.
func IsQueryTooLong(err error) bool { return CodeOf(err) == ErrCodeQueryTooLong }

// IsParseError returns true if the error is a malformed-query rejection.
func IsParseError(err error) bool { return CodeOf(err) == ErrCodeParseError }

// IsUpdateNotAllowed returns true if the error is a mutation rejection.
func IsUpdateNotAllowed(err error) bool { return CodeOf(err) == ErrCodeUpdateNotAllowed }

// IsUnsafeQueryType returns true if the error is a non-read-form rejection.
func IsUnsafeQueryType(err error) bool { return CodeOf(err) == ErrCodeUnsafeQueryType }

// IsTimeout returns true if the error is a deadline rejection.
func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }

// IsEngineFailure returns true if the error is an execution failure.
func IsEngineFailure(err error) bool { return CodeOf(err) == ErrCodeEngineFailure }

// NewTooLongError creates a QueryError for the length gate.
func NewTooLongError(length, maxLength int) *QueryError {
	return &QueryError{
		Code:    ErrCodeQueryTooLong,
		Message: fmt.Sprintf("query is %d characters, maximum is %d", length, maxLength),
	}
}

// NewParseError creates a QueryError wrapping a parse failure.
func NewParseError(cause error) *QueryError {
	return &QueryError{
		Code:    ErrCodeParseError,
		Message: "query is not well-formed SPARQL",
		Cause:   cause,
	}
}

// NewUpdateNotAllowedError creates a QueryError for a recognized mutation.
func NewUpdateNotAllowedError(operation string) *QueryError {
	return &QueryError{
		Code:      ErrCodeUpdateNotAllowed,
		Message:   "mutation statements are not allowed on this endpoint",
		Operation: operation,
	}
}

// NewUnsafeQueryTypeError creates a QueryError for a non-read query form.
func NewUnsafeQueryTypeError(form string) *QueryError {
	return &QueryError{
		Code:    ErrCodeUnsafeQueryType,
		Message: fmt.Sprintf("query form %s is not permitted", form),
	}
}

// NewTimeoutError creates a QueryError for a deadline overrun.
func NewTimeoutError(cause error) *QueryError {
	return &QueryError{
		Code:    ErrCodeTimeout,
		Message: "query execution exceeded its deadline",
		Cause:   cause,
	}
}

// NewEngineFailureError creates a QueryError for an execution failure.
func NewEngineFailureError(cause error) *QueryError {
	return &QueryError{
		Code:    ErrCodeEngineFailure,
		Message: "query execution failed",
		Cause:   cause,
	}
}
