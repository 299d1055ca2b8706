package queryir

import "fmt"

// TermType tags the category of an RDF term.
type TermType int

const (
	// TermIRI is an absolute IRI reference.
	TermIRI TermType = iota

	// TermLiteral is a literal with optional language tag or datatype IRI.
	TermLiteral

	// TermVar is a query variable (stored without the leading '?' or '$').
	TermVar

	// TermBlank is a blank node label (stored without the leading '_:').
	TermBlank
)

// String returns the term type name for diagnostics.
func (t TermType) String() string {
	switch t {
	case TermIRI:
		return "iri"
	case TermLiteral:
		return "literal"
	case TermVar:
		return "var"
	case TermBlank:
		return "blank"
	default:
		return fmt.Sprintf("TermType(%d)", int(t))
	}
}

// Term is a tagged RDF term.
//
// Value holds the IRI string, the literal lexical form, the variable name,
// or the blank node label depending on Type. Lang and Datatype are only
// meaningful for literals, and are mutually exclusive.
type Term struct {
	Type     TermType
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an IRI term.
func IRI(value string) Term {
	return Term{Type: TermIRI, Value: value}
}

// Literal returns a plain literal term.
func Literal(value string) Term {
	return Term{Type: TermLiteral, Value: value}
}

// LangLiteral returns a language-tagged literal term.
func LangLiteral(value, lang string) Term {
	return Term{Type: TermLiteral, Value: value, Lang: lang}
}

// TypedLiteral returns a datatyped literal term.
func TypedLiteral(value, datatype string) Term {
	return Term{Type: TermLiteral, Value: value, Datatype: datatype}
}

// Var returns a variable term. The name excludes the '?' or '$' sigil.
func Var(name string) Term {
	return Term{Type: TermVar, Value: name}
}

// Blank returns a blank node term. The label excludes the '_:' sigil.
func Blank(label string) Term {
	return Term{Type: TermBlank, Value: label}
}

// IsVar reports whether the term is a query variable.
func (t Term) IsVar() bool {
	return t.Type == TermVar
}

// String renders the term in Turtle-like notation for diagnostics and
// result serialization.
func (t Term) String() string {
	switch t.Type {
	case TermIRI:
		return "<" + t.Value + ">"
	case TermLiteral:
		switch {
		case t.Lang != "":
			return fmt.Sprintf("%q@%s", t.Value, t.Lang)
		case t.Datatype != "":
			return fmt.Sprintf("%q^^<%s>", t.Value, t.Datatype)
		default:
			return fmt.Sprintf("%q", t.Value)
		}
	case TermVar:
		return "?" + t.Value
	case TermBlank:
		return "_:" + t.Value
	default:
		return fmt.Sprintf("Term(%d:%s)", int(t.Type), t.Value)
	}
}
