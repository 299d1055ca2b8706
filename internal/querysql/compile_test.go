package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

const sentimentIRI = "https://wordnet.dk/dannet/schema/sentiment"

func pattern(triples ...queryir.TriplePattern) queryir.Pattern {
	return queryir.Pattern{Triples: triples}
}

func TestCompileSelectSinglePattern(t *testing.T) {
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"s", "o"},
		Where: pattern(queryir.TriplePattern{
			Subject:   queryir.Var("s"),
			Predicate: queryir.IRI(sentimentIRI),
			Object:    queryir.Var("o"),
		}),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT "+
			"CASE WHEN substr(t0.s, 1, 2) = '_:' THEN 'blank' ELSE 'iri' END AS v0_type, "+
			"t0.s AS v0_val, '' AS v0_lang, '' AS v0_dt, "+
			"t0.o_type AS v1_type, t0.o AS v1_val, t0.o_lang AS v1_lang, t0.o_datatype AS v1_dt "+
			"FROM triples t0 WHERE t0.p = ? "+
			"ORDER BY v0_val COLLATE DA_COLLATE ASC, v0_type ASC, v0_lang ASC, v0_dt ASC, "+
			"v1_val COLLATE DA_COLLATE ASC, v1_type ASC, v1_lang ASC, v1_dt ASC",
		compiled.SQL)
	assert.Equal(t, []any{sentimentIRI}, compiled.Args)
	assert.Equal(t, []string{"s", "o"}, compiled.Vars)
}

func TestCompileSelectJoinsSharedVariables(t *testing.T) {
	// ?s occurs as subject twice; the second occurrence joins to the first.
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"s"},
		Where: pattern(
			queryir.TriplePattern{
				Subject:   queryir.Var("s"),
				Predicate: queryir.IRI("http://example.org/p1"),
				Object:    queryir.Var("x"),
			},
			queryir.TriplePattern{
				Subject:   queryir.Var("s"),
				Predicate: queryir.IRI("http://example.org/p2"),
				Object:    queryir.Var("y"),
			},
		),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "FROM triples t0, triples t1")
	assert.Contains(t, compiled.SQL, "t0.s = t1.s")
	assert.Equal(t, []any{"http://example.org/p1", "http://example.org/p2"}, compiled.Args)
}

func TestCompileSelectSubjectObjectJoinGuardsLiterals(t *testing.T) {
	// ?x links an object position to a subject position; a literal object
	// must never satisfy that join.
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"x"},
		Where: pattern(
			queryir.TriplePattern{
				Subject:   queryir.IRI("http://example.org/a"),
				Predicate: queryir.IRI("http://example.org/p"),
				Object:    queryir.Var("x"),
			},
			queryir.TriplePattern{
				Subject:   queryir.Var("x"),
				Predicate: queryir.IRI("http://example.org/q"),
				Object:    queryir.Var("y"),
			},
		),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "(t1.s = t0.o AND t0.o_type != 'literal')")
}

func TestCompileSelectObjectObjectJoinComparesAllColumns(t *testing.T) {
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"o"},
		Where: pattern(
			queryir.TriplePattern{
				Subject:   queryir.Var("a"),
				Predicate: queryir.IRI("http://example.org/p"),
				Object:    queryir.Var("o"),
			},
			queryir.TriplePattern{
				Subject:   queryir.Var("b"),
				Predicate: queryir.IRI("http://example.org/q"),
				Object:    queryir.Var("o"),
			},
		),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "t0.o = t1.o")
	assert.Contains(t, compiled.SQL, "t0.o_type = t1.o_type")
	assert.Contains(t, compiled.SQL, "t0.o_lang = t1.o_lang")
	assert.Contains(t, compiled.SQL, "t0.o_datatype = t1.o_datatype")
}

func TestCompileSelectLiteralObjectIsParameterized(t *testing.T) {
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"s"},
		Where: pattern(queryir.TriplePattern{
			Subject:   queryir.Var("s"),
			Predicate: queryir.IRI(sentimentIRI),
			Object:    queryir.LangLiteral("positiv'; DROP TABLE triples; --", "da"),
		}),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	// The literal text travels only as an argument, never in the SQL.
	assert.NotContains(t, compiled.SQL, "positiv")
	assert.NotContains(t, compiled.SQL, "DROP")
	assert.Equal(t, []any{sentimentIRI, "positiv'; DROP TABLE triples; --", "da", ""}, compiled.Args)
}

func TestCompileSelectFilterConstrainsVariable(t *testing.T) {
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"s"},
		Where: queryir.Pattern{
			Triples: []queryir.TriplePattern{{
				Subject:   queryir.Var("s"),
				Predicate: queryir.IRI(sentimentIRI),
				Object:    queryir.Var("o"),
			}},
			Filters: []queryir.Filter{{Var: "o", Value: queryir.LangLiteral("positiv", "da")}},
		},
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "t0.o_type = 'literal' AND t0.o = ? AND t0.o_lang = ? AND t0.o_datatype = ?")
	assert.Equal(t, []any{sentimentIRI, "positiv", "da", ""}, compiled.Args)
}

func TestCompileSelectLimitAndOffset(t *testing.T) {
	limit := int64(10)
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"s"},
		Where: pattern(queryir.TriplePattern{
			Subject:   queryir.Var("s"),
			Predicate: queryir.IRI(sentimentIRI),
			Object:    queryir.Var("o"),
		}),
		Limit:  &limit,
		Offset: 20,
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "LIMIT ? OFFSET ?")
	assert.Equal(t, []any{sentimentIRI, int64(10), int64(20)}, compiled.Args)
}

func TestCompileSelectOffsetWithoutLimit(t *testing.T) {
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"s"},
		Where: pattern(queryir.TriplePattern{
			Subject:   queryir.Var("s"),
			Predicate: queryir.IRI(sentimentIRI),
			Object:    queryir.Var("o"),
		}),
		Offset: 5,
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "LIMIT -1 OFFSET ?")
	assert.Equal(t, []any{sentimentIRI, int64(5)}, compiled.Args)
}

func TestCompileSelectDistinct(t *testing.T) {
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Distinct:   true,
		Projection: []string{"s"},
		Where: pattern(queryir.TriplePattern{
			Subject:   queryir.Var("s"),
			Predicate: queryir.IRI(sentimentIRI),
			Object:    queryir.Var("o"),
		}),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)
	assert.Contains(t, compiled.SQL, "SELECT DISTINCT ")
}

func TestCompileSelectBlankNodeActsAsExistential(t *testing.T) {
	// The same blank label in two patterns joins them like a variable would.
	q := &queryir.Query{
		Kind:       queryir.KindSelect,
		Projection: []string{"x"},
		Where: pattern(
			queryir.TriplePattern{
				Subject:   queryir.Blank("b0"),
				Predicate: queryir.IRI("http://example.org/p"),
				Object:    queryir.Var("x"),
			},
			queryir.TriplePattern{
				Subject:   queryir.Blank("b0"),
				Predicate: queryir.IRI("http://example.org/q"),
				Object:    queryir.Var("y"),
			},
		),
	}

	compiled, err := CompileSelect(q)
	require.NoError(t, err)
	assert.Contains(t, compiled.SQL, "t0.s = t1.s")
}

func TestCompileSelectImpossibleConstants(t *testing.T) {
	t.Run("literal subject", func(t *testing.T) {
		q := &queryir.Query{
			Kind:       queryir.KindSelect,
			Projection: []string{"o"},
			Where: pattern(queryir.TriplePattern{
				Subject:   queryir.Literal("nope"),
				Predicate: queryir.IRI("http://example.org/p"),
				Object:    queryir.Var("o"),
			}),
		}
		compiled, err := CompileSelect(q)
		require.NoError(t, err)
		assert.Contains(t, compiled.SQL, "1 = 0")
	})

	t.Run("literal predicate", func(t *testing.T) {
		q := &queryir.Query{
			Kind:       queryir.KindSelect,
			Projection: []string{"o"},
			Where: pattern(queryir.TriplePattern{
				Subject:   queryir.Var("s"),
				Predicate: queryir.Literal("nope"),
				Object:    queryir.Var("o"),
			}),
		}
		compiled, err := CompileSelect(q)
		require.NoError(t, err)
		assert.Contains(t, compiled.SQL, "1 = 0")
	})
}

func TestCompileSelectRejectsUnknownVariables(t *testing.T) {
	base := pattern(queryir.TriplePattern{
		Subject:   queryir.Var("s"),
		Predicate: queryir.IRI(sentimentIRI),
		Object:    queryir.Var("o"),
	})

	t.Run("in projection", func(t *testing.T) {
		q := &queryir.Query{Kind: queryir.KindSelect, Projection: []string{"missing"}, Where: base}
		_, err := CompileSelect(q)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "?missing")
	})

	t.Run("in filter", func(t *testing.T) {
		q := &queryir.Query{
			Kind:       queryir.KindSelect,
			Projection: []string{"s"},
			Where: queryir.Pattern{
				Triples: base.Triples,
				Filters: []queryir.Filter{{Var: "missing", Value: queryir.Literal("x")}},
			},
		}
		_, err := CompileSelect(q)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "?missing")
	})
}

func TestCompileAsk(t *testing.T) {
	compiled, err := CompileAsk(pattern(queryir.TriplePattern{
		Subject:   queryir.Var("s"),
		Predicate: queryir.IRI(sentimentIRI),
		Object:    queryir.Var("o"),
	}))
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1 FROM triples t0 WHERE t0.p = ? LIMIT ?", compiled.SQL)
	assert.Equal(t, []any{sentimentIRI, int64(1)}, compiled.Args)
	assert.Empty(t, compiled.Vars)
}

func TestCompileBindings(t *testing.T) {
	limit := int64(50)
	compiled, err := CompileBindings(pattern(queryir.TriplePattern{
		Subject:   queryir.Var("s"),
		Predicate: queryir.Var("p"),
		Object:    queryir.Var("o"),
	}), []string{"s", "p", "o"}, &limit, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"s", "p", "o"}, compiled.Vars)
	assert.Contains(t, compiled.SQL, "t0.p AS v1_val")
	assert.Equal(t, []any{int64(50)}, compiled.Args)
}

func TestCompileBindingsOffset(t *testing.T) {
	limit := int64(10)
	compiled, err := CompileBindings(pattern(queryir.TriplePattern{
		Subject:   queryir.Var("s"),
		Predicate: queryir.IRI(sentimentIRI),
		Object:    queryir.Var("o"),
	}), []string{"s"}, &limit, 5)
	require.NoError(t, err)

	assert.Contains(t, compiled.SQL, "LIMIT ? OFFSET ?")
	assert.Equal(t, []any{sentimentIRI, int64(10), int64(5)}, compiled.Args)
}

func TestCompileSelectNoVariables(t *testing.T) {
	// SELECT * over an empty group projects nothing; the compiled query
	// still yields one row per solution.
	q := &queryir.Query{Kind: queryir.KindSelect}
	compiled, err := CompileSelect(q)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1", compiled.SQL)
	assert.Empty(t, compiled.Args)
	assert.Empty(t, compiled.Vars)
}

func TestDescribeResourceSQL(t *testing.T) {
	sql := DescribeResourceSQL()
	assert.Contains(t, sql, "s = ? OR (o = ? AND o_type != 'literal')")
	assert.Contains(t, sql, "COLLATE DA_COLLATE")
}
