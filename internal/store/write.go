package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// ErrReadOnlyHandle is returned when a write is attempted through a handle
// opened with OpenReadOnly. SQLite would reject the statement anyway; the
// explicit check produces a clearer message.
var ErrReadOnlyHandle = fmt.Errorf("store: write attempted on read-only handle")

// InsertTriple inserts one triple. Duplicate triples are ignored (the
// graph is a set).
func (s *Store) InsertTriple(ctx context.Context, t Triple) error {
	if s.readOnly {
		return ErrReadOnlyHandle
	}
	if t.Subject.IsVar() || t.Predicate.IsVar() || t.Object.IsVar() {
		return fmt.Errorf("store: cannot insert a triple containing variables: %s", t)
	}

	oType, o, lang, datatype := objectColumns(t.Object)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO triples (s, p, o_type, o, o_lang, o_datatype)
		VALUES (?, ?, ?, ?, ?, ?)
	`, subjectColumn(t.Subject), t.Predicate.Value, oType, o, lang, datatype)
	if err != nil {
		return fmt.Errorf("insert triple: %w", err)
	}
	return nil
}

// ImportNTriples loads N-Triples lines from r inside one transaction and
// returns the number of statements read. Blank lines and '#' comments are
// skipped. Used by the load command; the gateway never calls this.
func (s *Store) ImportNTriples(ctx context.Context, r io.Reader) (int, error) {
	if s.readOnly {
		return 0, ErrReadOnlyHandle
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO triples (s, p, o_type, o, o_lang, o_datatype)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare import statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	lineNo := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		triple, err := parseNTriplesLine(line)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}

		oType, o, lang, datatype := objectColumns(triple.Object)
		if _, err := stmt.ExecContext(ctx,
			subjectColumn(triple.Subject), triple.Predicate.Value, oType, o, lang, datatype,
		); err != nil {
			return 0, fmt.Errorf("line %d: insert: %w", lineNo, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return count, nil
}

// parseNTriplesLine parses one "subject predicate object ." statement.
func parseNTriplesLine(line string) (Triple, error) {
	rest := line

	subject, rest, err := parseNTSubject(rest)
	if err != nil {
		return Triple{}, err
	}
	predicate, rest, err := parseNTIRI(strings.TrimLeft(rest, " \t"))
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}
	object, rest, err := parseNTObject(strings.TrimLeft(rest, " \t"))
	if err != nil {
		return Triple{}, err
	}

	rest = strings.TrimSpace(rest)
	if rest != "." {
		return Triple{}, fmt.Errorf("statement must end with '.', found %q", rest)
	}
	return Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

func parseNTSubject(s string) (queryir.Term, string, error) {
	if label, ok := strings.CutPrefix(s, "_:"); ok {
		end := strings.IndexAny(label, " \t")
		if end < 0 {
			return queryir.Term{}, "", fmt.Errorf("subject: unterminated blank node")
		}
		return queryir.Blank(label[:end]), label[end:], nil
	}
	term, rest, err := parseNTIRI(s)
	if err != nil {
		return queryir.Term{}, "", fmt.Errorf("subject: %w", err)
	}
	return term, rest, nil
}

func parseNTIRI(s string) (queryir.Term, string, error) {
	if !strings.HasPrefix(s, "<") {
		return queryir.Term{}, "", fmt.Errorf("expected '<', found %q", truncate(s))
	}
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return queryir.Term{}, "", fmt.Errorf("unterminated IRI")
	}
	return queryir.IRI(s[1:end]), s[end+1:], nil
}

func parseNTObject(s string) (queryir.Term, string, error) {
	switch {
	case strings.HasPrefix(s, "<"):
		return parseNTIRI(s)

	case strings.HasPrefix(s, "_:"):
		label := s[2:]
		end := strings.IndexAny(label, " \t")
		if end < 0 {
			return queryir.Term{}, "", fmt.Errorf("object: unterminated blank node")
		}
		return queryir.Blank(label[:end]), label[end:], nil

	case strings.HasPrefix(s, `"`):
		lexical, rest, err := parseNTQuoted(s)
		if err != nil {
			return queryir.Term{}, "", fmt.Errorf("object: %w", err)
		}
		if tag, ok := strings.CutPrefix(rest, "@"); ok {
			end := strings.IndexAny(tag, " \t")
			if end < 0 {
				return queryir.Term{}, "", fmt.Errorf("object: unterminated language tag")
			}
			return queryir.LangLiteral(lexical, tag[:end]), tag[end:], nil
		}
		if dt, ok := strings.CutPrefix(rest, "^^"); ok {
			iri, rest, err := parseNTIRI(dt)
			if err != nil {
				return queryir.Term{}, "", fmt.Errorf("object datatype: %w", err)
			}
			return queryir.TypedLiteral(lexical, iri.Value), rest, nil
		}
		return queryir.Literal(lexical), rest, nil

	default:
		return queryir.Term{}, "", fmt.Errorf("object: expected IRI, blank node, or literal, found %q", truncate(s))
	}
}

// parseNTQuoted unescapes a double-quoted N-Triples literal and returns the
// remainder of the line.
func parseNTQuoted(s string) (string, string, error) {
	var b strings.Builder
	i := 1 // past the opening quote
	for i < len(s) {
		switch s[i] {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			i++
			if i >= len(s) {
				return "", "", fmt.Errorf("unterminated escape")
			}
			switch s[i] {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\':
				b.WriteByte(s[i])
			default:
				return "", "", fmt.Errorf("unsupported escape '\\%c'", s[i])
			}
			i++
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return "", "", fmt.Errorf("unterminated literal")
}

func truncate(s string) string {
	if len(s) > 20 {
		return s[:20] + "..."
	}
	return s
}
