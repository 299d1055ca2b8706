package gateway

import (
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// Bound clamps the query's result limit down to max, in place, and returns
// the effective limit.
//
// Clamping only ever lowers: a declared LIMIT at or below the maximum is
// kept exactly, a declared LIMIT above the maximum is replaced by the
// maximum, and a query with no LIMIT gets the maximum. The rewrite happens
// on the parsed form, never on the query text, so it cannot introduce a
// parse hazard.
func Bound(q *queryir.Query, max int64) int64 {
	if declared, ok := q.DeclaredLimit(); ok && declared <= max {
		return declared
	}
	q.SetLimit(max)
	return max
}
