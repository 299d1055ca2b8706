// Package querysql compiles queryir graph patterns to parameterized SQL
// over the store's triples table.
//
// Every triple pattern becomes one alias of the triples table; shared
// variables become join conditions between aliases; constant terms become
// parameterized equality constraints. Values are never interpolated into
// the SQL text.
//
// Every variable in the result contributes four normalized columns
// (type, value, language, datatype) so the executor can decode bindings
// with store.DecodeObject regardless of which triple position bound them.
// All compiled queries carry a deterministic ORDER BY using the Danish
// collation registered by the store.
package querysql

import (
	"fmt"
	"strings"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// SelectQuery is a compiled pattern query. For every name in Vars the SQL
// selects four columns in order: type, value, language tag, datatype.
type SelectQuery struct {
	SQL  string
	Args []any
	Vars []string
}

// position identifies which slot of a triple pattern a reference points at.
type position int

const (
	posSubject position = iota
	posPredicate
	posObject
)

// colRef points at one slot of one aliased triple pattern.
type colRef struct {
	alias int
	pos   position
}

// CompileSelect compiles a SELECT query: projection, DISTINCT, LIMIT, and
// OFFSET are taken from the query.
func CompileSelect(q *queryir.Query) (*SelectQuery, error) {
	return compilePattern(q.Where, q.ProjectedVars(), q.Distinct, q.Limit, q.Offset)
}

// CompileAsk compiles an ASK pattern to an existence probe. The result has
// no binding columns; any returned row means true.
func CompileAsk(pattern queryir.Pattern) (*SelectQuery, error) {
	one := int64(1)
	return compilePattern(pattern, nil, false, &one, 0)
}

// CompileBindings compiles a pattern projecting the given variables, with
// an optional solution cap and offset. Used for CONSTRUCT WHERE evaluation
// and for binding DESCRIBE variables.
func CompileBindings(pattern queryir.Pattern, vars []string, limit *int64, offset int64) (*SelectQuery, error) {
	return compilePattern(pattern, vars, false, limit, offset)
}

// DescribeResourceSQL returns the query selecting every triple in which a
// resource occurs as subject or as a non-literal object. It takes two
// arguments, both the resource's encoded value.
func DescribeResourceSQL() string {
	return `SELECT s, p, o_type, o, o_lang, o_datatype
FROM triples
WHERE s = ? OR (o = ? AND o_type != 'literal')
ORDER BY p ASC, o_type ASC, o COLLATE DA_COLLATE ASC, o_lang ASC, o_datatype ASC, id ASC`
}

// compiler accumulates conditions and variable occurrences while walking
// a pattern.
type compiler struct {
	conds []string
	args  []any
	occ   map[string][]colRef
	order []string // first-occurrence order, so emitted SQL is stable
}

func compilePattern(pattern queryir.Pattern, vars []string, distinct bool, limit *int64, offset int64) (*SelectQuery, error) {
	c := &compiler{occ: make(map[string][]colRef)}

	for i, tp := range pattern.Triples {
		c.addTerm(i, posSubject, tp.Subject)
		c.addTerm(i, posPredicate, tp.Predicate)
		c.addTerm(i, posObject, tp.Object)
	}
	c.addJoins()

	for _, f := range pattern.Filters {
		refs, ok := c.occ[f.Var]
		if !ok {
			return nil, fmt.Errorf("filter references variable ?%s which does not occur in the pattern", f.Var)
		}
		c.addConstCond(refs[0], f.Value)
	}

	for _, v := range vars {
		if _, ok := c.occ[v]; !ok {
			return nil, fmt.Errorf("selected variable ?%s does not occur in the pattern", v)
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if distinct {
		b.WriteString("DISTINCT ")
	}
	if len(vars) == 0 {
		b.WriteString("1")
	} else {
		cols := make([]string, 0, len(vars)*4)
		for i, v := range vars {
			ref := c.occ[v][0]
			cols = append(cols,
				fmt.Sprintf("%s AS v%d_type", c.typeExpr(ref), i),
				fmt.Sprintf("%s AS v%d_val", c.valueExpr(ref), i),
				fmt.Sprintf("%s AS v%d_lang", c.langExpr(ref), i),
				fmt.Sprintf("%s AS v%d_dt", c.datatypeExpr(ref), i),
			)
		}
		b.WriteString(strings.Join(cols, ", "))
	}

	if n := len(pattern.Triples); n > 0 {
		b.WriteString(" FROM ")
		aliases := make([]string, n)
		for i := range aliases {
			aliases[i] = fmt.Sprintf("triples t%d", i)
		}
		b.WriteString(strings.Join(aliases, ", "))
	}

	if len(c.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(c.conds, " AND "))
	}

	// Deterministic ordering over every binding column; values sort
	// under the Danish collation.
	if len(vars) > 0 {
		orders := make([]string, 0, len(vars)*2)
		for i := range vars {
			orders = append(orders,
				fmt.Sprintf("v%d_val COLLATE DA_COLLATE ASC", i),
				fmt.Sprintf("v%d_type ASC", i),
				fmt.Sprintf("v%d_lang ASC", i),
				fmt.Sprintf("v%d_dt ASC", i),
			)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(orders, ", "))
	}

	switch {
	case limit != nil:
		b.WriteString(" LIMIT ?")
		c.args = append(c.args, *limit)
	case offset > 0:
		// SQLite requires a LIMIT clause before OFFSET; -1 means none.
		b.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		b.WriteString(" OFFSET ?")
		c.args = append(c.args, offset)
	}

	return &SelectQuery{SQL: b.String(), Args: c.args, Vars: vars}, nil
}

// addTerm records a variable occurrence or emits a constant constraint.
// Blank nodes in patterns are existential variables per SPARQL semantics;
// their internal names keep the "_:" sigil so they can never collide with
// parser variable names.
func (c *compiler) addTerm(alias int, pos position, term queryir.Term) {
	ref := colRef{alias: alias, pos: pos}
	switch term.Type {
	case queryir.TermVar:
		c.addOcc(term.Value, ref)
	case queryir.TermBlank:
		c.addOcc("_:"+term.Value, ref)
	default:
		c.addConstCond(ref, term)
	}
}

func (c *compiler) addOcc(name string, ref colRef) {
	if _, seen := c.occ[name]; !seen {
		c.order = append(c.order, name)
	}
	c.occ[name] = append(c.occ[name], ref)
}

// addJoins emits equality conditions between the first occurrence of each
// variable and every later occurrence.
func (c *compiler) addJoins() {
	for _, name := range c.order {
		refs := c.occ[name]
		for i := 1; i < len(refs); i++ {
			c.conds = append(c.conds, c.joinCond(refs[0], refs[i]))
		}
	}
}

// joinCond builds the equality condition for two occurrences of the same
// variable. Object positions need type guards so an IRI never matches a
// literal with the same spelling.
func (c *compiler) joinCond(a, b colRef) string {
	// Normalize so the object side, if any, is b.
	if a.pos == posObject && b.pos != posObject {
		a, b = b, a
	}

	av, bv := c.valueExpr(a), c.valueExpr(b)
	switch {
	case a.pos != posObject && b.pos != posObject:
		return fmt.Sprintf("%s = %s", av, bv)
	case a.pos == posPredicate && b.pos == posObject:
		return fmt.Sprintf("(%s = %s AND %s = 'iri')", av, bv, c.typeExpr(b))
	case a.pos == posSubject && b.pos == posObject:
		return fmt.Sprintf("(%s = %s AND %s != 'literal')", av, bv, c.typeExpr(b))
	default: // object-object
		return fmt.Sprintf("(%s = %s AND %s = %s AND %s = %s AND %s = %s)",
			av, bv,
			c.typeExpr(a), c.typeExpr(b),
			c.langExpr(a), c.langExpr(b),
			c.datatypeExpr(a), c.datatypeExpr(b))
	}
}

// addConstCond constrains one slot to a constant term. Values are always
// parameterized, never interpolated.
func (c *compiler) addConstCond(ref colRef, term queryir.Term) {
	switch ref.pos {
	case posSubject:
		switch term.Type {
		case queryir.TermLiteral:
			c.conds = append(c.conds, "1 = 0") // a subject is never a literal
		case queryir.TermBlank:
			c.conds = append(c.conds, fmt.Sprintf("t%d.s = ?", ref.alias))
			c.args = append(c.args, "_:"+term.Value)
		default:
			c.conds = append(c.conds, fmt.Sprintf("t%d.s = ?", ref.alias))
			c.args = append(c.args, term.Value)
		}

	case posPredicate:
		if term.Type != queryir.TermIRI {
			c.conds = append(c.conds, "1 = 0") // a predicate is always an IRI
			return
		}
		c.conds = append(c.conds, fmt.Sprintf("t%d.p = ?", ref.alias))
		c.args = append(c.args, term.Value)

	case posObject:
		switch term.Type {
		case queryir.TermLiteral:
			c.conds = append(c.conds, fmt.Sprintf(
				"(t%d.o_type = 'literal' AND t%d.o = ? AND t%d.o_lang = ? AND t%d.o_datatype = ?)",
				ref.alias, ref.alias, ref.alias, ref.alias))
			c.args = append(c.args, term.Value, term.Lang, term.Datatype)
		case queryir.TermBlank:
			c.conds = append(c.conds, fmt.Sprintf(
				"(t%d.o_type = 'blank' AND t%d.o = ?)", ref.alias, ref.alias))
			c.args = append(c.args, "_:"+term.Value)
		default:
			c.conds = append(c.conds, fmt.Sprintf(
				"(t%d.o_type = 'iri' AND t%d.o = ?)", ref.alias, ref.alias))
			c.args = append(c.args, term.Value)
		}
	}
}

func (c *compiler) valueExpr(ref colRef) string {
	switch ref.pos {
	case posSubject:
		return fmt.Sprintf("t%d.s", ref.alias)
	case posPredicate:
		return fmt.Sprintf("t%d.p", ref.alias)
	default:
		return fmt.Sprintf("t%d.o", ref.alias)
	}
}

func (c *compiler) typeExpr(ref colRef) string {
	switch ref.pos {
	case posSubject:
		return fmt.Sprintf("CASE WHEN substr(t%d.s, 1, 2) = '_:' THEN 'blank' ELSE 'iri' END", ref.alias)
	case posPredicate:
		return "'iri'"
	default:
		return fmt.Sprintf("t%d.o_type", ref.alias)
	}
}

func (c *compiler) langExpr(ref colRef) string {
	if ref.pos == posObject {
		return fmt.Sprintf("t%d.o_lang", ref.alias)
	}
	return "''"
}

func (c *compiler) datatypeExpr(ref colRef) string {
	if ref.pos == posObject {
		return fmt.Sprintf("t%d.o_datatype", ref.alias)
	}
	return "''"
}
