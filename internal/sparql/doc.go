// Package sparql parses the SPARQL subset accepted by the read-only gateway.
//
// Two entry points exist, and the distinction between them is the heart of
// the gateway's failure taxonomy:
//
//   - ParseQuery parses the read grammar (SELECT, ASK, CONSTRUCT, DESCRIBE)
//     into a queryir.Query. The read grammar cannot produce an update form.
//   - ParseUpdate recognizes the update grammar (INSERT DATA, DELETE DATA,
//     DELETE/INSERT WHERE, LOAD, CLEAR, CREATE, DROP, COPY, MOVE, ADD).
//     Recognition is structural only; updates are never bound to a store.
//
// The validator tries ParseQuery first and, on failure, ParseUpdate on the
// original text. A successful update parse means the input was a
// syntactically valid mutation attempt, which the gateway reports as a
// distinct condition rather than a generic syntax error.
//
// # Supported read grammar
//
//   - Prologue: PREFIX and BASE declarations
//   - SELECT [DISTINCT] (?var... | *) WHERE { pattern } [LIMIT n] [OFFSET n]
//   - ASK [WHERE] { pattern }
//   - CONSTRUCT { template } WHERE { pattern } [LIMIT n]
//   - DESCRIBE (<iri> | pname | ?var)... [WHERE { pattern }]
//   - Patterns: triple patterns with 'a', ';' and ',' lists, prefixed names,
//     IRIs, variables, blank node labels, literals with @lang or ^^datatype,
//     and FILTER(?var = term) equality constraints
//
// Aggregates, property paths, OPTIONAL, UNION, and subqueries are outside
// the subset and fail with a syntax error naming the unsupported token.
package sparql
