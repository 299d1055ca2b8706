package queryir

import (
	"fmt"
	"sort"
)

// Kind enumerates the SPARQL query forms.
//
// This is a closed set: every dispatch point switches exhaustively on Kind
// and fails on the default branch rather than guessing.
type Kind int

const (
	// KindSelect produces a set of variable bindings (rows).
	KindSelect Kind = iota

	// KindAsk produces a single boolean.
	KindAsk

	// KindConstruct produces triples instantiated from a template.
	KindConstruct

	// KindDescribe produces triples describing one or more resources.
	KindDescribe

	// KindUpdate marks a mutation statement. The validator recognizes
	// updates so it can reject them with a precise diagnosis; nothing
	// downstream ever executes one.
	KindUpdate
)

// String returns the SPARQL keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindAsk:
		return "ASK"
	case KindConstruct:
		return "CONSTRUCT"
	case KindDescribe:
		return "DESCRIBE"
	case KindUpdate:
		return "UPDATE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsRead reports whether the kind is one of the four permitted read forms.
func (k Kind) IsRead() bool {
	switch k {
	case KindSelect, KindAsk, KindConstruct, KindDescribe:
		return true
	default:
		return false
	}
}

// TriplePattern is one subject-predicate-object pattern in a graph pattern
// or a CONSTRUCT template. Any position may hold a variable.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// String renders the pattern in Turtle-like notation.
func (p TriplePattern) String() string {
	return fmt.Sprintf("%s %s %s .", p.Subject, p.Predicate, p.Object)
}

// Filter is a FILTER(?var = term) equality constraint on a graph pattern.
type Filter struct {
	Var   string
	Value Term
}

// Pattern is a basic graph pattern: a conjunction of triple patterns plus
// equality filters. All triple patterns are implicitly joined on shared
// variables.
type Pattern struct {
	Triples []TriplePattern
	Filters []Filter
}

// Vars returns the distinct variable names mentioned in the pattern,
// sorted for deterministic projection and output ordering.
func (p Pattern) Vars() []string {
	seen := make(map[string]struct{})
	for _, t := range p.Triples {
		for _, term := range []Term{t.Subject, t.Predicate, t.Object} {
			if term.IsVar() {
				seen[term.Value] = struct{}{}
			}
		}
	}

	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Query is the structured form of a parsed query.
//
// Ownership: a Query belongs exclusively to the request that parsed it.
// After parsing, only Limit may change, and only through the gateway's
// result bounder.
type Query struct {
	// Kind is the query form. Always one of the four read kinds for
	// queries produced by the read parser; KindUpdate only appears on
	// queries produced by the update recognizer.
	Kind Kind

	// Distinct is set for SELECT DISTINCT.
	Distinct bool

	// Projection lists the selected variable names for SELECT queries.
	// Empty means SELECT * (project every variable in the pattern).
	Projection []string

	// Where is the graph pattern. Empty for DESCRIBE <iri> without a
	// WHERE clause.
	Where Pattern

	// Template holds the CONSTRUCT template triples.
	Template []TriplePattern

	// Describe lists the DESCRIBE targets (IRIs or variables).
	Describe []Term

	// Limit is the result-row cap. nil means the query declared none.
	// Mutated in place by the result bounder; see package doc.
	Limit *int64

	// Offset is the declared OFFSET, or zero.
	Offset int64
}

// ProjectedVars returns the effective projection for a SELECT query:
// the declared projection, or every pattern variable for SELECT *.
func (q *Query) ProjectedVars() []string {
	if len(q.Projection) > 0 {
		return q.Projection
	}
	return q.Where.Vars()
}

// SetLimit overwrites the limit annotation in place.
func (q *Query) SetLimit(n int64) {
	q.Limit = &n
}

// DeclaredLimit returns the limit annotation and whether one is set.
func (q *Query) DeclaredLimit() (int64, bool) {
	if q.Limit == nil {
		return 0, false
	}
	return *q.Limit, true
}
