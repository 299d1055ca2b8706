package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

func TestViewReleasesOnReturn(t *testing.T) {
	s, _ := newTestStore(t)
	seedTriples(t, s, triple("http://example.org/a", "http://example.org/p", queryir.Literal("x")))

	err := s.View(context.Background(), func(tx *ReadTx) error {
		assert.Equal(t, int64(1), s.OpenReadTxns())

		var count int
		row := tx.QueryRow(context.Background(), "SELECT count(*) FROM triples")
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, 1, count)
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, s.OpenReadTxns())
}

func TestViewReleasesOnError(t *testing.T) {
	s, _ := newTestStore(t)

	wantErr := fmt.Errorf("boom")
	err := s.View(context.Background(), func(tx *ReadTx) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Zero(t, s.OpenReadTxns())
}

func TestViewReleasesOnPanic(t *testing.T) {
	s, _ := newTestStore(t)

	func() {
		defer func() {
			require.NotNil(t, recover())
		}()
		_ = s.View(context.Background(), func(tx *ReadTx) error {
			panic("mid-query failure")
		})
	}()
	assert.Zero(t, s.OpenReadTxns())
}

func TestViewReleasesOnContextCancellation(t *testing.T) {
	s, _ := newTestStore(t)
	seedTriples(t, s, triple("http://example.org/a", "http://example.org/p", queryir.Literal("x")))

	ctx, cancel := context.WithCancel(context.Background())
	err := s.View(ctx, func(tx *ReadTx) error {
		cancel()
		// Give the driver's interrupt goroutine a moment to observe it.
		time.Sleep(10 * time.Millisecond)
		rows, err := tx.Query(ctx, "SELECT count(*) FROM triples")
		if err != nil {
			return err
		}
		rows.Close()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.Zero(t, s.OpenReadTxns())
}

func TestConcurrentViews(t *testing.T) {
	s, path := newTestStore(t)
	seedTriples(t, s, triple("http://example.org/a", "http://example.org/p", queryir.Literal("x")))
	require.NoError(t, s.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- ro.View(context.Background(), func(tx *ReadTx) error {
				var count int
				return tx.QueryRow(context.Background(), "SELECT count(*) FROM triples").Scan(&count)
			})
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
	assert.Zero(t, ro.OpenReadTxns())
}
