package sparql

import (
	"fmt"
	"strings"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// ParseUpdate recognizes the update grammar. On success it returns a query
// tagged KindUpdate together with the leading update keyword (for audit
// messages); it never returns anything executable.
//
// The recognizer validates structure only - data blocks and patterns must
// be well formed - because its single purpose is to let the validator tell
// "syntactically valid mutation attempt" apart from "malformed input".
func ParseUpdate(text string) (*queryir.Query, string, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, "", err
	}
	if err := p.parsePrologue(); err != nil {
		return nil, "", err
	}

	op, err := p.parseUpdateOperation()
	if err != nil {
		return nil, "", err
	}

	// Multiple operations may be chained with ';'.
	for p.tok.typ == tokSemicolon {
		if err := p.advance(); err != nil {
			return nil, "", err
		}
		if p.tok.typ == tokEOF {
			break // trailing ';' is permitted
		}
		if err := p.parsePrologue(); err != nil {
			return nil, "", err
		}
		if _, err := p.parseUpdateOperation(); err != nil {
			return nil, "", err
		}
	}

	if err := p.expectEOF(); err != nil {
		return nil, "", err
	}
	return &queryir.Query{Kind: queryir.KindUpdate}, op, nil
}

// parseUpdateOperation recognizes a single update operation and returns
// its canonical keyword.
func (p *parser) parseUpdateOperation() (string, error) {
	switch {
	case p.keywordIs("INSERT"):
		return p.parseInsert()
	case p.keywordIs("DELETE"):
		return p.parseDelete()
	case p.keywordIs("WITH"):
		// WITH <iri> DELETE/INSERT ... WHERE ...
		if err := p.advance(); err != nil {
			return "", err
		}
		if err := p.expectGraphRef(); err != nil {
			return "", err
		}
		switch {
		case p.keywordIs("INSERT"):
			return p.parseInsert()
		case p.keywordIs("DELETE"):
			return p.parseDelete()
		default:
			return "", &SyntaxError{
				Offset: p.tok.pos,
				Msg:    fmt.Sprintf("expected DELETE or INSERT after WITH, found %s", p.describeTok()),
			}
		}
	case p.keywordIs("LOAD"):
		return "LOAD", p.parseLoad()
	case p.keywordIs("CLEAR"):
		return "CLEAR", p.parseGraphManagement()
	case p.keywordIs("DROP"):
		return "DROP", p.parseGraphManagement()
	case p.keywordIs("CREATE"):
		return "CREATE", p.parseCreate()
	case p.keywordIs("COPY"), p.keywordIs("MOVE"), p.keywordIs("ADD"):
		op := strings.ToUpper(p.tok.val)
		return op, p.parseGraphTransfer()
	default:
		return "", &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected an update operation, found %s", p.describeTok()),
		}
	}
}

// parseInsert recognizes INSERT DATA { ... } or INSERT { ... } WHERE { ... }.
func (p *parser) parseInsert() (string, error) {
	if err := p.advance(); err != nil { // consume INSERT
		return "", err
	}

	if data, err := p.acceptKeyword("DATA"); err != nil {
		return "", err
	} else if data {
		if _, err := p.parseGroupPattern(); err != nil {
			return "", err
		}
		return "INSERT DATA", nil
	}

	if _, err := p.parseGroupPattern(); err != nil {
		return "", err
	}
	if err := p.expectKeyword("WHERE"); err != nil {
		return "", err
	}
	if _, err := p.parseGroupPattern(); err != nil {
		return "", err
	}
	return "INSERT", nil
}

// parseDelete recognizes DELETE DATA { ... }, DELETE WHERE { ... }, or
// DELETE { ... } [INSERT { ... }] WHERE { ... }.
func (p *parser) parseDelete() (string, error) {
	if err := p.advance(); err != nil { // consume DELETE
		return "", err
	}

	if data, err := p.acceptKeyword("DATA"); err != nil {
		return "", err
	} else if data {
		if _, err := p.parseGroupPattern(); err != nil {
			return "", err
		}
		return "DELETE DATA", nil
	}

	if where, err := p.acceptKeyword("WHERE"); err != nil {
		return "", err
	} else if where {
		if _, err := p.parseGroupPattern(); err != nil {
			return "", err
		}
		return "DELETE WHERE", nil
	}

	if _, err := p.parseGroupPattern(); err != nil {
		return "", err
	}
	if ins, err := p.acceptKeyword("INSERT"); err != nil {
		return "", err
	} else if ins {
		if _, err := p.parseGroupPattern(); err != nil {
			return "", err
		}
	}
	if err := p.expectKeyword("WHERE"); err != nil {
		return "", err
	}
	if _, err := p.parseGroupPattern(); err != nil {
		return "", err
	}
	return "DELETE", nil
}

// parseLoad recognizes LOAD [SILENT] <iri> [INTO GRAPH <iri>].
func (p *parser) parseLoad() error {
	if err := p.advance(); err != nil { // consume LOAD
		return err
	}
	if _, err := p.acceptKeyword("SILENT"); err != nil {
		return err
	}
	if _, err := p.expect(tokIRIRef); err != nil {
		return err
	}
	if into, err := p.acceptKeyword("INTO"); err != nil {
		return err
	} else if into {
		if err := p.expectKeyword("GRAPH"); err != nil {
			return err
		}
		if _, err := p.expect(tokIRIRef); err != nil {
			return err
		}
	}
	return nil
}

// parseGraphManagement recognizes CLEAR/DROP [SILENT] (GRAPH <iri> | DEFAULT | NAMED | ALL).
func (p *parser) parseGraphManagement() error {
	if err := p.advance(); err != nil { // consume CLEAR or DROP
		return err
	}
	if _, err := p.acceptKeyword("SILENT"); err != nil {
		return err
	}
	switch {
	case p.keywordIs("GRAPH"):
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectGraphRef()
	case p.keywordIs("DEFAULT"), p.keywordIs("NAMED"), p.keywordIs("ALL"):
		return p.advance()
	default:
		return &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected GRAPH, DEFAULT, NAMED, or ALL, found %s", p.describeTok()),
		}
	}
}

// parseCreate recognizes CREATE [SILENT] GRAPH <iri>.
func (p *parser) parseCreate() error {
	if err := p.advance(); err != nil { // consume CREATE
		return err
	}
	if _, err := p.acceptKeyword("SILENT"); err != nil {
		return err
	}
	if err := p.expectKeyword("GRAPH"); err != nil {
		return err
	}
	return p.expectGraphRef()
}

// parseGraphTransfer recognizes COPY/MOVE/ADD [SILENT] src TO dst where each
// side is DEFAULT or [GRAPH] <iri>.
func (p *parser) parseGraphTransfer() error {
	if err := p.advance(); err != nil { // consume the operation keyword
		return err
	}
	if _, err := p.acceptKeyword("SILENT"); err != nil {
		return err
	}
	if err := p.parseGraphOrDefault(); err != nil {
		return err
	}
	if err := p.expectKeyword("TO"); err != nil {
		return err
	}
	return p.parseGraphOrDefault()
}

func (p *parser) parseGraphOrDefault() error {
	if def, err := p.acceptKeyword("DEFAULT"); err != nil {
		return err
	} else if def {
		return nil
	}
	if _, err := p.acceptKeyword("GRAPH"); err != nil {
		return err
	}
	return p.expectGraphRef()
}

// expectGraphRef consumes an IRI reference or prefixed name naming a graph.
func (p *parser) expectGraphRef() error {
	switch p.tok.typ {
	case tokIRIRef:
		return p.advance()
	case tokPName:
		if _, err := p.resolvePName(p.tok); err != nil {
			return err
		}
		return p.advance()
	default:
		return &SyntaxError{
			Offset: p.tok.pos,
			Msg:    fmt.Sprintf("expected graph IRI, found %s", p.describeTok()),
		}
	}
}
