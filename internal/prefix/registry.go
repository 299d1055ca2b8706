// Package prefix maintains the mapping from short namespace prefixes to full
// IRIs and expands abbreviated query text by prepending PREFIX declarations.
package prefix

import (
	"sort"
	"strings"
	"sync"
)

// Well-known namespace IRIs for the lexical dataset and the standard
// vocabularies it builds on.
const (
	DataNS    = "https://wordnet.dk/dannet/data/"
	SchemaNS  = "https://wordnet.dk/dannet/schema/"
	WordnetNS = "https://globalwordnet.github.io/schemas/wn#"
	OntolexNS = "http://www.w3.org/ns/lemon/ontolex#"
	LexinfoNS = "http://www.lexinfo.net/ontology/3.0/lexinfo#"
	SkosNS    = "http://www.w3.org/2004/02/skos/core#"
	RDFNS     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS    = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNS     = "http://www.w3.org/2002/07/owl#"
	DCTermsNS = "http://purl.org/dc/terms/"
	XSDNS     = "http://www.w3.org/2001/XMLSchema#"
)

// Registry maps short prefixes to namespace IRIs.
//
// A Registry is an explicitly passed, thread-safe structure - never a
// process-wide singleton. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	prefixes map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{prefixes: make(map[string]string)}
}

// Default returns a registry preloaded with the standard prefixes used by
// the dataset and its vocabularies.
func Default() *Registry {
	r := New()
	for prefix, ns := range map[string]string{
		"dn":      DataNS,
		"dns":     SchemaNS,
		"wn":      WordnetNS,
		"ontolex": OntolexNS,
		"lexinfo": LexinfoNS,
		"skos":    SkosNS,
		"rdf":     RDFNS,
		"rdfs":    RDFSNS,
		"owl":     OWLNS,
		"dct":     DCTermsNS,
		"xsd":     XSDNS,
	} {
		r.Register(prefix, ns)
	}
	return r
}

// Register adds or replaces a prefix mapping.
func (r *Registry) Register(prefix, namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[prefix] = namespace
}

// Lookup returns the namespace IRI for a prefix.
func (r *Registry) Lookup(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.prefixes[prefix]
	return ns, ok
}

// Prefixes returns all registered prefixes, sorted.
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefixes := make([]string, 0, len(r.prefixes))
	for p := range r.prefixes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Expand prepends a PREFIX declaration for every registered prefix to the
// query text.
//
// Expand is pure with respect to the registry and has no failure mode:
// unrecognized prefixes in the text pass through unchanged and surface as
// parse errors later if truly invalid. Declarations inside the query text
// itself still win, because a later PREFIX declaration shadows an earlier
// one in the grammar.
func (r *Registry) Expand(text string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.prefixes) == 0 {
		return text
	}

	prefixes := make([]string, 0, len(r.prefixes))
	for p := range r.prefixes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var b strings.Builder
	for _, p := range prefixes {
		b.WriteString("PREFIX ")
		b.WriteString(p)
		b.WriteString(": <")
		b.WriteString(r.prefixes[p])
		b.WriteString(">\n")
	}
	b.WriteString(text)
	return b.String()
}
