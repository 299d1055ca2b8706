package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadTx is a read-only transaction scope. It is only valid inside the
// function passed to View; nothing obtained from it may escape that scope.
type ReadTx struct {
	tx *sql.Tx
}

// Query runs a query inside the transaction. Callers must close the rows
// before the View function returns.
func (t *ReadTx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

// QueryRow runs a single-row query inside the transaction.
func (t *ReadTx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

// View runs fn inside a read transaction.
//
// The transaction is closed on every exit path - normal return, error
// return, context cancellation, and panic - via a single deferred rollback.
// Rollback of a read-only transaction is its close; there is nothing to
// commit. Concurrent View calls are safe: SQLite WAL snapshots give each
// reader an isolated view and readers never block each other.
func (s *Store) View(ctx context.Context, fn func(tx *ReadTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}

	s.openReads.Add(1)
	defer func() {
		// Rollback after the scope ends is the release guarantee the
		// gateway depends on; sql.ErrTxDone only occurs if fn itself
		// ended the transaction, which ReadTx does not expose.
		_ = tx.Rollback()
		s.openReads.Add(-1)
	}()

	return fn(&ReadTx{tx: tx})
}
