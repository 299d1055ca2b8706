package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// ParseQuery parses query text as one of the four read forms and returns
// the structured query. The read grammar cannot produce an update form, so
// a successful parse is by construction safe to bind to a store.
func ParseQuery(text string) (*queryir.Query, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	if err := p.parsePrologue(); err != nil {
		return nil, err
	}

	var q *queryir.Query
	switch {
	case p.keywordIs("SELECT"):
		q, err = p.parseSelect()
	case p.keywordIs("ASK"):
		q, err = p.parseAsk()
	case p.keywordIs("CONSTRUCT"):
		q, err = p.parseConstruct()
	case p.keywordIs("DESCRIBE"):
		q, err = p.parseDescribe()
	default:
		return nil, &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected SELECT, ASK, CONSTRUCT, or DESCRIBE, found %s", p.describeTok()),
		}
	}
	if err != nil {
		return nil, err
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return q, nil
}

// parser is a recursive-descent parser over the token stream. It resolves
// prefixed names against the query's own prologue; the gateway's term
// registry has already prepended declarations for the standard prefixes.
type parser struct {
	lex      *lexer
	tok      token
	prefixes map[string]string
	base     string
}

func newParser(text string) (*parser, error) {
	p := &parser{
		lex:      newLexer(text),
		prefixes: make(map[string]string),
	}
	return p, p.advance()
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// keywordIs reports whether the current token is the given keyword,
// case-insensitively.
func (p *parser) keywordIs(kw string) bool {
	return p.tok.typ == tokIdent && strings.EqualFold(p.tok.val, kw)
}

// acceptKeyword consumes the keyword if present.
func (p *parser) acceptKeyword(kw string) (bool, error) {
	if !p.keywordIs(kw) {
		return false, nil
	}
	return true, p.advance()
}

// expectKeyword consumes the keyword or fails.
func (p *parser) expectKeyword(kw string) error {
	if !p.keywordIs(kw) {
		return &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected %s, found %s", kw, p.describeTok()),
		}
	}
	return p.advance()
}

// expect consumes a token of the given type or fails.
func (p *parser) expect(typ tokenType) (token, error) {
	if p.tok.typ != typ {
		return token{}, &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected %s, found %s", typ, p.describeTok()),
		}
	}
	tok := p.tok
	return tok, p.advance()
}

func (p *parser) expectEOF() error {
	if p.tok.typ != tokEOF {
		return &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("unexpected %s after end of query", p.describeTok()),
		}
	}
	return nil
}

func (p *parser) describeTok() string {
	if p.tok.typ == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", p.tok.typ, p.tok.val)
}

// parsePrologue consumes leading PREFIX and BASE declarations. A later
// declaration for the same prefix shadows an earlier one, which is what
// lets query-local declarations win over registry-expanded ones.
func (p *parser) parsePrologue() error {
	for {
		switch {
		case p.keywordIs("PREFIX"):
			if err := p.advance(); err != nil {
				return err
			}
			name, err := p.expect(tokPName)
			if err != nil {
				return err
			}
			if !strings.HasSuffix(name.val, ":") {
				return &SyntaxError{Offset: name.pos, Msg: "prefix declaration must end with ':'"}
			}
			iri, err := p.expect(tokIRIRef)
			if err != nil {
				return err
			}
			p.prefixes[strings.TrimSuffix(name.val, ":")] = iri.val
		case p.keywordIs("BASE"):
			if err := p.advance(); err != nil {
				return err
			}
			iri, err := p.expect(tokIRIRef)
			if err != nil {
				return err
			}
			p.base = iri.val
		default:
			return nil
		}
	}
}

func (p *parser) parseSelect() (*queryir.Query, error) {
	if err := p.advance(); err != nil { // consume SELECT
		return nil, err
	}
	q := &queryir.Query{Kind: queryir.KindSelect}

	distinct, err := p.acceptKeyword("DISTINCT")
	if err != nil {
		return nil, err
	}
	q.Distinct = distinct

	// Projection: '*' or one or more variables.
	if p.tok.typ == tokStar {
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for p.tok.typ == tokVar {
			q.Projection = append(q.Projection, p.tok.val)
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if len(q.Projection) == 0 {
			return nil, &SyntaxError{
				Offset: p.tok.pos,
				Msg:    fmt.Sprintf("expected '*' or variables after SELECT, found %s", p.describeTok()),
			}
		}
	}

	if _, err := p.acceptKeyword("WHERE"); err != nil {
		return nil, err
	}
	pattern, err := p.parseGroupPattern()
	if err != nil {
		return nil, err
	}
	q.Where = pattern

	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *parser) parseAsk() (*queryir.Query, error) {
	if err := p.advance(); err != nil { // consume ASK
		return nil, err
	}
	q := &queryir.Query{Kind: queryir.KindAsk}

	if _, err := p.acceptKeyword("WHERE"); err != nil {
		return nil, err
	}
	pattern, err := p.parseGroupPattern()
	if err != nil {
		return nil, err
	}
	q.Where = pattern
	return q, nil
}

func (p *parser) parseConstruct() (*queryir.Query, error) {
	if err := p.advance(); err != nil { // consume CONSTRUCT
		return nil, err
	}
	q := &queryir.Query{Kind: queryir.KindConstruct}

	template, err := p.parseGroupPattern()
	if err != nil {
		return nil, err
	}
	if len(template.Filters) > 0 {
		return nil, &SyntaxError{Offset: p.tok.pos, Msg: "FILTER is not allowed in a CONSTRUCT template"}
	}
	q.Template = template.Triples

	if err := p.expectKeyword("WHERE"); err != nil {
		return nil, err
	}
	pattern, err := p.parseGroupPattern()
	if err != nil {
		return nil, err
	}
	q.Where = pattern

	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *parser) parseDescribe() (*queryir.Query, error) {
	if err := p.advance(); err != nil { // consume DESCRIBE
		return nil, err
	}
	q := &queryir.Query{Kind: queryir.KindDescribe}

	for {
		switch p.tok.typ {
		case tokIRIRef, tokPName:
			term, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			q.Describe = append(q.Describe, term)
			continue
		case tokVar:
			q.Describe = append(q.Describe, queryir.Var(p.tok.val))
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if len(q.Describe) == 0 {
		return nil, &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected IRI or variable after DESCRIBE, found %s", p.describeTok()),
		}
	}

	// Optional WHERE clause binds DESCRIBE variables.
	where, err := p.acceptKeyword("WHERE")
	if err != nil {
		return nil, err
	}
	if where || p.tok.typ == tokLBrace {
		pattern, err := p.parseGroupPattern()
		if err != nil {
			return nil, err
		}
		q.Where = pattern
	}

	if err := p.parseModifiers(q); err != nil {
		return nil, err
	}
	return q, nil
}

// parseModifiers consumes LIMIT and OFFSET in either order, each at most
// once. The parsed LIMIT is the annotation the result bounder later clamps.
func (p *parser) parseModifiers(q *queryir.Query) error {
	seenLimit, seenOffset := false, false
	for {
		switch {
		case p.keywordIs("LIMIT"):
			if seenLimit {
				return &SyntaxError{Offset: p.tok.pos, Msg: "duplicate LIMIT clause"}
			}
			seenLimit = true
			if err := p.advance(); err != nil {
				return err
			}
			n, err := p.parseNonNegativeInt()
			if err != nil {
				return err
			}
			q.SetLimit(n)
		case p.keywordIs("OFFSET"):
			if seenOffset {
				return &SyntaxError{Offset: p.tok.pos, Msg: "duplicate OFFSET clause"}
			}
			seenOffset = true
			if err := p.advance(); err != nil {
				return err
			}
			n, err := p.parseNonNegativeInt()
			if err != nil {
				return err
			}
			q.Offset = n
		default:
			return nil
		}
	}
}

func (p *parser) parseNonNegativeInt() (int64, error) {
	tok, err := p.expect(tokInteger)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(tok.val, 10, 64)
	if err != nil {
		return 0, &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("integer out of range: %s", tok.val)}
	}
	return n, nil
}

// parseGroupPattern parses '{' triples and filters '}'.
func (p *parser) parseGroupPattern() (queryir.Pattern, error) {
	var pattern queryir.Pattern

	if _, err := p.expect(tokLBrace); err != nil {
		return pattern, err
	}

	for p.tok.typ != tokRBrace {
		if p.tok.typ == tokEOF {
			return pattern, &SyntaxError{Offset: p.tok.pos, Msg: "unterminated group pattern: missing '}'"}
		}

		if p.keywordIs("FILTER") {
			filter, err := p.parseFilter()
			if err != nil {
				return pattern, err
			}
			pattern.Filters = append(pattern.Filters, filter)
			continue
		}

		// Unsupported SPARQL features fail here with a named token
		// rather than a generic error.
		for _, kw := range []string{"OPTIONAL", "UNION", "GRAPH", "MINUS", "SERVICE", "BIND", "VALUES"} {
			if p.keywordIs(kw) {
				return pattern, &SyntaxError{
					Offset: p.tok.pos,
					Msg:    fmt.Sprintf("%s is not supported by this endpoint", strings.ToUpper(p.tok.val)),
				}
			}
		}

		triples, err := p.parseTriplesSameSubject()
		if err != nil {
			return pattern, err
		}
		pattern.Triples = append(pattern.Triples, triples...)

		// Optional '.' separator between blocks.
		if p.tok.typ == tokDot {
			if err := p.advance(); err != nil {
				return pattern, err
			}
		}
	}
	return pattern, p.advance() // consume '}'
}

// parseTriplesSameSubject parses one subject with its predicate-object
// list: s p1 o1, o2 ; p2 o3 .
func (p *parser) parseTriplesSameSubject() ([]queryir.TriplePattern, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if subject.Type == queryir.TermLiteral {
		return nil, &SyntaxError{Offset: p.tok.pos, Msg: "literal cannot be a triple subject"}
	}

	var triples []queryir.TriplePattern
	for {
		predicate, err := p.parseVerb()
		if err != nil {
			return nil, err
		}

		// Object list: o1, o2, o3
		for {
			object, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			triples = append(triples, queryir.TriplePattern{
				Subject:   subject,
				Predicate: predicate,
				Object:    object,
			})
			if p.tok.typ != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

		if p.tok.typ != tokSemicolon {
			return triples, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Trailing ';' before '.' or '}' is permitted.
		if p.tok.typ == tokDot || p.tok.typ == tokRBrace {
			return triples, nil
		}
	}
}

// parseVerb parses a predicate position: an IRI, prefixed name, variable,
// or the keyword 'a' (rdf:type).
func (p *parser) parseVerb() (queryir.Term, error) {
	if p.tok.typ == tokIdent && p.tok.val == "a" {
		if err := p.advance(); err != nil {
			return queryir.Term{}, err
		}
		return queryir.IRI(prefix.RDFNS + "type"), nil
	}

	term, err := p.parseTerm()
	if err != nil {
		return queryir.Term{}, err
	}
	switch term.Type {
	case queryir.TermIRI, queryir.TermVar:
		return term, nil
	default:
		return queryir.Term{}, &SyntaxError{Offset: p.tok.pos, Msg: "predicate must be an IRI or variable"}
	}
}

// parseFilter parses FILTER ( ?var = term ).
func (p *parser) parseFilter() (queryir.Filter, error) {
	if err := p.advance(); err != nil { // consume FILTER
		return queryir.Filter{}, err
	}
	if _, err := p.expect(tokLParen); err != nil {
		return queryir.Filter{}, err
	}
	v, err := p.expect(tokVar)
	if err != nil {
		return queryir.Filter{}, err
	}
	if _, err := p.expect(tokEquals); err != nil {
		return queryir.Filter{}, err
	}
	value, err := p.parseTerm()
	if err != nil {
		return queryir.Filter{}, err
	}
	if value.IsVar() {
		return queryir.Filter{}, &SyntaxError{Offset: p.tok.pos, Msg: "FILTER comparison value must be a constant"}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return queryir.Filter{}, err
	}
	return queryir.Filter{Var: v.val, Value: value}, nil
}

// parseTerm parses a single RDF term in any position.
func (p *parser) parseTerm() (queryir.Term, error) {
	switch p.tok.typ {
	case tokIRIRef:
		iri := p.resolveIRI(p.tok.val)
		if err := p.advance(); err != nil {
			return queryir.Term{}, err
		}
		return queryir.IRI(iri), nil

	case tokPName:
		iri, err := p.resolvePName(p.tok)
		if err != nil {
			return queryir.Term{}, err
		}
		if err := p.advance(); err != nil {
			return queryir.Term{}, err
		}
		return queryir.IRI(iri), nil

	case tokVar:
		v := queryir.Var(p.tok.val)
		return v, p.advance()

	case tokBlank:
		b := queryir.Blank(p.tok.val)
		return b, p.advance()

	case tokString:
		return p.parseLiteralTail(p.tok.val)

	case tokInteger:
		lit := queryir.TypedLiteral(p.tok.val, prefix.XSDNS+"integer")
		return lit, p.advance()

	case tokIdent:
		if strings.EqualFold(p.tok.val, "true") || strings.EqualFold(p.tok.val, "false") {
			lit := queryir.TypedLiteral(strings.ToLower(p.tok.val), prefix.XSDNS+"boolean")
			return lit, p.advance()
		}
		return queryir.Term{}, &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("unexpected keyword %q in triple pattern", p.tok.val),
		}

	default:
		return queryir.Term{}, &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected RDF term, found %s", p.describeTok()),
		}
	}
}

// parseLiteralTail consumes an optional @lang or ^^datatype suffix after a
// string literal.
func (p *parser) parseLiteralTail(lexical string) (queryir.Term, error) {
	if err := p.advance(); err != nil { // consume the string token
		return queryir.Term{}, err
	}

	switch p.tok.typ {
	case tokLangTag:
		lit := queryir.LangLiteral(lexical, p.tok.val)
		return lit, p.advance()
	case tokCaretCaret:
		if err := p.advance(); err != nil {
			return queryir.Term{}, err
		}
		switch p.tok.typ {
		case tokIRIRef:
			lit := queryir.TypedLiteral(lexical, p.resolveIRI(p.tok.val))
			return lit, p.advance()
		case tokPName:
			iri, err := p.resolvePName(p.tok)
			if err != nil {
				return queryir.Term{}, err
			}
			lit := queryir.TypedLiteral(lexical, iri)
			return lit, p.advance()
		default:
			return queryir.Term{}, &SyntaxError{
				Offset: p.tok.pos,
				Msg:    fmt.Sprintf("expected datatype IRI after '^^', found %s", p.describeTok()),
			}
		}
	default:
		return queryir.Literal(lexical), nil
	}
}

// resolveIRI resolves a relative IRI reference against the BASE
// declaration, if any. Absolute IRIs pass through unchanged.
func (p *parser) resolveIRI(iri string) string {
	if p.base == "" || strings.Contains(iri, "://") || strings.HasPrefix(iri, "urn:") {
		return iri
	}
	return p.base + iri
}

// resolvePName expands a prefixed name using the prologue declarations.
func (p *parser) resolvePName(tok token) (string, error) {
	idx := strings.Index(tok.val, ":")
	pfx, local := tok.val[:idx], tok.val[idx+1:]
	ns, ok := p.prefixes[pfx]
	if !ok {
		return "", &SyntaxError{Offset: tok.pos, Msg: fmt.Sprintf("unknown prefix %q", pfx+":")}
	}
	return ns + local, nil
}
