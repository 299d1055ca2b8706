// Package store provides the SQLite-backed triple store the gateway
// queries.
//
// The gateway itself never writes. It opens the store through OpenReadOnly,
// which enforces read-only access structurally: the database is opened with
// mode=ro and the connection is pinned with PRAGMA query_only, so any write
// attempt on that handle fails loudly at the SQLite level rather than
// relying on caller discipline. The writable handle (Open) exists only for
// the import tooling that loads the dataset.
//
// # Data layout
//
// One table holds the graph:
//
//	triples(id, s, p, o_type, o, o_lang, o_datatype)
//
// Subjects and predicates are stored as plain text; a subject beginning
// with "_:" is a blank node label, anything else is an IRI. Objects carry
// an explicit term type plus language tag and datatype columns so literals
// round-trip exactly.
//
// # Transactions and ordering
//
//   - View runs a function inside a read transaction that is closed on
//     every exit path, including panics. An open-transaction gauge backs
//     the release invariants the gateway's tests assert.
//   - WAL mode lets concurrent readers proceed without blocking each other
//     or a background writer.
//   - Literal ordering uses a Danish collation (DA_COLLATE) registered on
//     every connection, so result ordering is deterministic and correct
//     for the dataset's language.
package store
