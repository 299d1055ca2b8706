package store

import (
	"strings"

	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

// Triple is one ground (variable-free) triple, as stored or as produced by
// CONSTRUCT and DESCRIBE queries.
type Triple struct {
	Subject   queryir.Term
	Predicate queryir.Term
	Object    queryir.Term
}

// String renders the triple in N-Triples-like notation.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// subjectColumn encodes a subject term for the s column: blank nodes keep
// their "_:" sigil, IRIs are stored bare.
func subjectColumn(t queryir.Term) string {
	if t.Type == queryir.TermBlank {
		return "_:" + t.Value
	}
	return t.Value
}

// DecodeSubject decodes an s column value back into a term.
func DecodeSubject(s string) queryir.Term {
	if label, ok := strings.CutPrefix(s, "_:"); ok {
		return queryir.Blank(label)
	}
	return queryir.IRI(s)
}

// objectColumns encodes an object term for the o_type, o, o_lang, and
// o_datatype columns. Blank node values keep the "_:" sigil so that
// subject-object joins compare equal without re-encoding.
func objectColumns(t queryir.Term) (oType, o, lang, datatype string) {
	switch t.Type {
	case queryir.TermLiteral:
		return "literal", t.Value, t.Lang, t.Datatype
	case queryir.TermBlank:
		return "blank", "_:" + t.Value, "", ""
	default:
		return "iri", t.Value, "", ""
	}
}

// DecodeObject decodes object columns (or the compiler's normalized
// binding columns) back into a term.
func DecodeObject(oType, o, lang, datatype string) queryir.Term {
	switch oType {
	case "literal":
		return queryir.Term{Type: queryir.TermLiteral, Value: o, Lang: lang, Datatype: datatype}
	case "blank":
		return queryir.Blank(strings.TrimPrefix(o, "_:"))
	default:
		return queryir.IRI(o)
	}
}
