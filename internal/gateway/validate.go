package gateway

import (
	"time"
	"unicode/utf8"

	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
	"github.com/kuhumcst/DanNet-sub001/internal/sparql"
)

// Limits are the gateway's resource bounds. Zero values are not usable;
// construct them through the config package or DefaultLimits.
type Limits struct {
	// MaxQueryLength is the maximum raw query length in characters
	// (Unicode code points, not bytes).
	MaxQueryLength int

	// MaxResults is the maximum number of result rows or triples.
	MaxResults int64

	// Timeout is the execution deadline.
	Timeout time.Duration
}

// DefaultLimits returns the production defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxQueryLength: 5000,
		MaxResults:     1000,
		Timeout:        10 * time.Second,
	}
}

// Validator turns untrusted query text into a validated read query or a
// precise rejection.
type Validator struct {
	limits   Limits
	prefixes *prefix.Registry

	// Parse functions are fields so tests can observe that the length
	// gate short-circuits before any parsing.
	parseQuery  func(string) (*queryir.Query, error)
	parseUpdate func(string) (*queryir.Query, string, error)
}

// NewValidator creates a validator with the given limits and prefix
// registry. A nil registry means no ambient prefix expansion.
func NewValidator(limits Limits, prefixes *prefix.Registry) *Validator {
	return &Validator{
		limits:      limits,
		prefixes:    prefixes,
		parseQuery:  sparql.ParseQuery,
		parseUpdate: sparql.ParseUpdate,
	}
}

// Validate runs the untrusted text through the length gate, prefix
// expansion, and parsing, and returns a read query or a QueryError.
//
// The length gate is checked on the raw text, before prefix expansion and
// before any parser touches the input, so oversized input is rejected at
// constant cost.
//
// Disambiguation order matters: text that fails the read parser is handed
// to the update recognizer, and only if that also fails is the text
// diagnosed as malformed. A well-formed "INSERT DATA { ... }" is therefore
// reported as a forbidden mutation, not as a syntax error.
func (v *Validator) Validate(text string) (*queryir.Query, error) {
	if n := utf8.RuneCountInString(text); n > v.limits.MaxQueryLength {
		return nil, NewTooLongError(n, v.limits.MaxQueryLength)
	}

	expanded := text
	if v.prefixes != nil {
		expanded = v.prefixes.Expand(text)
	}

	q, readErr := v.parseQuery(expanded)
	if readErr == nil {
		if !q.Kind.IsRead() {
			return nil, NewUnsafeQueryTypeError(q.Kind.String())
		}
		return q, nil
	}

	if _, op, updateErr := v.parseUpdate(expanded); updateErr == nil {
		return nil, NewUpdateNotAllowedError(op)
	}

	return nil, NewParseError(readErr)
}
