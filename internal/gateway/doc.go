// Package gateway accepts untrusted SPARQL query strings and executes them
// against a read-only triple store under strict resource bounds.
//
// Every query passes through the same pipeline:
//
//  1. Length gate: queries longer than the configured maximum are rejected
//     before any parsing happens.
//  2. Prefix expansion: the well-known DanNet namespace prefixes are
//     prepended so short queries work without a prologue.
//  3. Validation: the text must parse as one of the four read forms
//     (SELECT, ASK, CONSTRUCT, DESCRIBE). Text that parses as an update
//     is rejected with a mutation-specific error so callers can
//     distinguish "forbidden" from "malformed".
//  4. Result bounding: the effective LIMIT is clamped down to the
//     configured maximum. A declared LIMIT below the maximum is kept;
//     bounding never raises a limit.
//  5. Execution: the query runs inside a scoped read transaction with a
//     deadline. Results are fully materialized before the transaction is
//     released, so nothing lazy escapes the scope.
//
// The gateway never mutates the store. Its executor refuses to operate on
// a writable handle, and the read-only handle rejects writes at the SQLite
// level even if a mutation somehow slipped through validation.
package gateway
