package gateway

import (
	"time"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
	"github.com/kuhumcst/DanNet-sub001/internal/store"
)

// Result is the materialized outcome of a query. Exactly one concrete type
// exists per read form; callers switch on the concrete type.
//
// Every Result is fully in memory before the read transaction that produced
// it is released. Nothing a Result holds keeps a cursor or connection open.
type Result interface {
	resultForm() queryir.Kind
}

// SelectResult holds SELECT bindings: one row per solution, one term per
// projected variable, in projection order. A variable is present in Vars
// even if a row binds nothing interesting to it.
type SelectResult struct {
	Vars []string
	Rows [][]queryir.Term
}

func (*SelectResult) resultForm() queryir.Kind { return queryir.KindSelect }

// AskResult holds an ASK verdict.
type AskResult struct {
	Value bool
}

func (*AskResult) resultForm() queryir.Kind { return queryir.KindAsk }

// GraphResult holds the triples produced by CONSTRUCT or DESCRIBE,
// deduplicated, in deterministic order, capped at the configured result
// maximum.
type GraphResult struct {
	Form    queryir.Kind
	Triples []store.Triple
}

func (r *GraphResult) resultForm() queryir.Kind { return r.Form }

// Response pairs a Result with execution metadata.
type Response struct {
	// ExecutionID uniquely identifies this execution for diagnostics.
	ExecutionID string

	// Result is the materialized outcome.
	Result Result

	// Elapsed is the wall-clock execution time, transaction included.
	Elapsed time.Duration
}
