package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kuhumcst/DanNet-sub001/internal/gateway"
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitQueryError   = 1 // Query rejected or failed (too long, parse error, mutation, timeout)
	ExitCommandError = 2 // Command error (bad configuration, store not found, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitQueryError or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitQueryError (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitQueryError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // gateway error code ("PARSE_ERROR", ...)
	Message string `json:"message"` // human-readable message
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// binding is the JSON shape of one bound term.
type binding struct {
	Type     string `json:"type"` // "iri" | "literal" | "blank"
	Value    string `json:"value"`
	Lang     string `json:"lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func toBinding(term queryir.Term) binding {
	b := binding{Value: term.Value}
	switch term.Type {
	case queryir.TermLiteral:
		b.Type = "literal"
		b.Lang = term.Lang
		b.Datatype = term.Datatype
	case queryir.TermBlank:
		b.Type = "blank"
	default:
		b.Type = "iri"
	}
	return b
}

// selectPayload is the JSON shape of SELECT results.
type selectPayload struct {
	Vars []string             `json:"vars"`
	Rows []map[string]binding `json:"rows"`
}

// askPayload is the JSON shape of an ASK verdict.
type askPayload struct {
	Boolean bool `json:"boolean"`
}

// graphPayload is the JSON shape of CONSTRUCT and DESCRIBE results.
type graphPayload struct {
	Triples []string `json:"triples"` // N-Triples-like statements
}

// WriteResult renders a gateway result in the configured format.
func (f *OutputFormatter) WriteResult(result gateway.Result) error {
	switch r := result.(type) {
	case *gateway.SelectResult:
		return f.writeSelect(r)
	case *gateway.AskResult:
		return f.writeAsk(r)
	case *gateway.GraphResult:
		return f.writeGraph(r)
	default:
		return fmt.Errorf("unknown result type %T", result)
	}
}

func (f *OutputFormatter) writeSelect(r *gateway.SelectResult) error {
	if f.Format == "json" {
		payload := selectPayload{Vars: r.Vars, Rows: make([]map[string]binding, 0, len(r.Rows))}
		for _, row := range r.Rows {
			m := make(map[string]binding, len(r.Vars))
			for i, v := range r.Vars {
				m[v] = toBinding(row[i])
			}
			payload.Rows = append(payload.Rows, m)
		}
		return f.Success(payload)
	}

	for _, row := range r.Rows {
		for i, v := range r.Vars {
			if i > 0 {
				fmt.Fprint(f.Writer, "\t")
			}
			fmt.Fprintf(f.Writer, "?%s = %s", v, row[i])
		}
		fmt.Fprintln(f.Writer)
	}
	fmt.Fprintf(f.Writer, "%d row(s)\n", len(r.Rows))
	return nil
}

func (f *OutputFormatter) writeAsk(r *gateway.AskResult) error {
	if f.Format == "json" {
		return f.Success(askPayload{Boolean: r.Value})
	}
	fmt.Fprintln(f.Writer, r.Value)
	return nil
}

func (f *OutputFormatter) writeGraph(r *gateway.GraphResult) error {
	if f.Format == "json" {
		payload := graphPayload{Triples: make([]string, 0, len(r.Triples))}
		for _, tr := range r.Triples {
			payload.Triples = append(payload.Triples, tr.String())
		}
		return f.Success(payload)
	}

	for _, tr := range r.Triples {
		fmt.Fprintln(f.Writer, tr)
	}
	fmt.Fprintf(f.Writer, "%d triple(s)\n", len(r.Triples))
	return nil
}
