package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

func TestBoundClampsOnlyDownward(t *testing.T) {
	cases := []struct {
		name     string
		declared *int64
		max      int64
		want     int64
	}{
		{"no declared limit gets the maximum", nil, 1000, 1000},
		{"declared below maximum is kept", ptr(10), 1000, 10},
		{"declared equal to maximum is kept", ptr(1000), 1000, 1000},
		{"declared above maximum is clamped", ptr(5000), 1000, 1000},
		{"declared zero is kept", ptr(0), 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &queryir.Query{Kind: queryir.KindSelect, Limit: tc.declared}
			got := Bound(q, tc.max)
			assert.Equal(t, tc.want, got)

			effective, ok := q.DeclaredLimit()
			require.True(t, ok)
			assert.Equal(t, tc.want, effective)
		})
	}
}

func TestBoundIsIdempotent(t *testing.T) {
	q := &queryir.Query{Kind: queryir.KindSelect, Limit: ptr(5000)}
	assert.Equal(t, int64(1000), Bound(q, 1000))
	assert.Equal(t, int64(1000), Bound(q, 1000))
}

func ptr(n int64) *int64 { return &n }
