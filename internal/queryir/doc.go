// Package queryir provides the structured representation of a parsed SPARQL
// query as used by the read-only gateway.
//
// A Query is produced by internal/sparql and carries everything the rest of
// the pipeline needs:
//
//	[query text] → [sparql parser] → [queryir.Query] → [querysql compiler] → [store]
//
// # Query Kinds
//
// Kind is a closed enumeration over the five SPARQL query forms:
//
//   - KindSelect    - row bindings
//   - KindAsk       - boolean
//   - KindConstruct - triples built from a template
//   - KindDescribe  - triples describing one or more resources
//   - KindUpdate    - recognized for classification, never executable
//
// Every dispatch point in the pipeline switches exhaustively on Kind with an
// error default, so a new kind cannot be silently mishandled.
//
// # Limit Annotation
//
// Query.Limit is the one field that is deliberately mutated after parsing:
// the gateway's result bounder rewrites it in place under the clamp-down-only
// policy (callers may tighten the limit, never loosen it past the system
// maximum). All other fields are immutable once parsed.
//
// # Terms
//
// Term is a tagged value over the four RDF term categories (IRI, literal,
// variable, blank node). The gateway does not interpret term semantics; it
// only moves them between the parser and the SQL compiler.
package queryir
