package sparql

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports a lexical or grammatical error with its byte offset
// into the query text. The message is derived from the text itself and is
// safe to show to callers.
type SyntaxError struct {
	Offset int
	Msg    string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// tokenType identifies a lexical token.
type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent          // bare identifier or keyword (SELECT, WHERE, a, ...)
	tokIRIRef         // <...>
	tokPName          // prefixed name: dns:sentiment, dn:, :local
	tokVar            // ?name or $name
	tokString         // quoted literal lexical form (unescaped)
	tokLangTag        // @da
	tokInteger        // 42
	tokBlank          // _:label
	tokLBrace         // {
	tokRBrace         // }
	tokLParen         // (
	tokRParen         // )
	tokDot            // .
	tokSemicolon      // ;
	tokComma          // ,
	tokEquals         // =
	tokCaretCaret     // ^^
	tokStar           // *
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokIRIRef:
		return "IRI"
	case tokPName:
		return "prefixed name"
	case tokVar:
		return "variable"
	case tokString:
		return "string literal"
	case tokLangTag:
		return "language tag"
	case tokInteger:
		return "integer"
	case tokBlank:
		return "blank node"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokDot:
		return "'.'"
	case tokSemicolon:
		return "';'"
	case tokComma:
		return "','"
	case tokEquals:
		return "'='"
	case tokCaretCaret:
		return "'^^'"
	case tokStar:
		return "'*'"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// token is one lexical token with its byte offset.
type token struct {
	typ tokenType
	val string
	pos int
}

// lexer produces tokens from query text on demand.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// next returns the next token, skipping whitespace and '#' comments.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos

	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: start}, nil
	}

	c := l.input[l.pos]
	switch {
	case c == '{':
		l.pos++
		return token{typ: tokLBrace, val: "{", pos: start}, nil
	case c == '}':
		l.pos++
		return token{typ: tokRBrace, val: "}", pos: start}, nil
	case c == '(':
		l.pos++
		return token{typ: tokLParen, val: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{typ: tokRParen, val: ")", pos: start}, nil
	case c == ';':
		l.pos++
		return token{typ: tokSemicolon, val: ";", pos: start}, nil
	case c == ',':
		l.pos++
		return token{typ: tokComma, val: ",", pos: start}, nil
	case c == '=':
		l.pos++
		return token{typ: tokEquals, val: "=", pos: start}, nil
	case c == '*':
		l.pos++
		return token{typ: tokStar, val: "*", pos: start}, nil
	case c == '^':
		if strings.HasPrefix(l.input[l.pos:], "^^") {
			l.pos += 2
			return token{typ: tokCaretCaret, val: "^^", pos: start}, nil
		}
		return token{}, &SyntaxError{Offset: start, Msg: "unexpected '^'"}
	case c == '<':
		return l.lexIRIRef()
	case c == '?' || c == '$':
		return l.lexVar()
	case c == '"' || c == '\'':
		return l.lexString(rune(c))
	case c == '@':
		return l.lexLangTag()
	case c == '.':
		// Distinguish the triple terminator from a decimal number; the
		// subset only supports integers, so a bare '.' is always a dot.
		l.pos++
		return token{typ: tokDot, val: ".", pos: start}, nil
	case c >= '0' && c <= '9':
		return l.lexInteger()
	case c == '_' && strings.HasPrefix(l.input[l.pos:], "_:"):
		return l.lexBlank()
	default:
		return l.lexName()
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) lexIRIRef() (token, error) {
	start := l.pos
	l.pos++ // consume '<'
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '>' {
			val := l.input[start+1 : l.pos]
			l.pos++
			return token{typ: tokIRIRef, val: val, pos: start}, nil
		}
		if c == '\n' || c == '<' || c == '"' || c == ' ' {
			return token{}, &SyntaxError{Offset: l.pos, Msg: "invalid character in IRI reference"}
		}
		l.pos++
	}
	return token{}, &SyntaxError{Offset: start, Msg: "unterminated IRI reference"}
}

func (l *lexer) lexVar() (token, error) {
	start := l.pos
	l.pos++ // consume '?' or '$'
	nameStart := l.pos
	for l.pos < len(l.input) && isNameChar(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos == nameStart {
		return token{}, &SyntaxError{Offset: start, Msg: "variable name expected after '?'"}
	}
	return token{typ: tokVar, val: l.input[nameStart:l.pos], pos: start}, nil
}

func (l *lexer) lexString(quote rune) (token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c, size := utf8.DecodeRuneInString(l.input[l.pos:])
		switch c {
		case quote:
			l.pos++
			return token{typ: tokString, val: b.String(), pos: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return token{}, &SyntaxError{Offset: start, Msg: "unterminated string literal"}
			}
			esc := l.input[l.pos]
			switch esc {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case '"', '\'', '\\':
				b.WriteByte(esc)
			default:
				return token{}, &SyntaxError{Offset: l.pos, Msg: fmt.Sprintf("unsupported escape '\\%c'", esc)}
			}
			l.pos++
		case '\n':
			return token{}, &SyntaxError{Offset: start, Msg: "unterminated string literal"}
		default:
			b.WriteRune(c)
			l.pos += size
		}
	}
	return token{}, &SyntaxError{Offset: start, Msg: "unterminated string literal"}
}

func (l *lexer) lexLangTag() (token, error) {
	start := l.pos
	l.pos++ // consume '@'
	tagStart := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' {
			l.pos++
			continue
		}
		break
	}
	if l.pos == tagStart {
		return token{}, &SyntaxError{Offset: start, Msg: "language tag expected after '@'"}
	}
	return token{typ: tokLangTag, val: l.input[tagStart:l.pos], pos: start}, nil
}

func (l *lexer) lexInteger() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
		l.pos++
	}
	return token{typ: tokInteger, val: l.input[start:l.pos], pos: start}, nil
}

func (l *lexer) lexBlank() (token, error) {
	start := l.pos
	l.pos += 2 // consume '_:'
	labelStart := l.pos
	for l.pos < len(l.input) && isNameChar(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos == labelStart {
		return token{}, &SyntaxError{Offset: start, Msg: "blank node label expected after '_:'"}
	}
	return token{typ: tokBlank, val: l.input[labelStart:l.pos], pos: start}, nil
}

// lexName scans a bare identifier or a prefixed name. A ':' anywhere in the
// run makes it a prefixed name (dns:sentiment, dn:, :local).
func (l *lexer) lexName() (token, error) {
	start := l.pos
	sawColon := false
	for l.pos < len(l.input) {
		c, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if c == ':' {
			sawColon = true
			l.pos += size
			continue
		}
		if !isNameChar(c) {
			break
		}
		l.pos += size
	}
	if l.pos == start {
		return token{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("unexpected character %q", l.input[l.pos])}
	}
	val := l.input[start:l.pos]
	if sawColon {
		return token{typ: tokPName, val: val, pos: start}, nil
	}
	return token{typ: tokIdent, val: val, pos: start}, nil
}

// isNameChar reports whether a rune may appear in an identifier, variable
// name, or prefixed-name part.
func isNameChar(c rune) bool {
	return c == '_' || c == '-' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
