package gateway

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuhumcst/DanNet-sub001/internal/prefix"
	"github.com/kuhumcst/DanNet-sub001/internal/queryir"
)

func testValidator() *Validator {
	return NewValidator(DefaultLimits(), prefix.Default())
}

func TestValidateAcceptsReadForms(t *testing.T) {
	v := testValidator()
	cases := []struct {
		query string
		kind  queryir.Kind
	}{
		{"SELECT * WHERE { ?s ?p ?o }", queryir.KindSelect},
		{"ASK { ?s ?p ?o }", queryir.KindAsk},
		{"CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", queryir.KindConstruct},
		{"DESCRIBE <https://wordnet.dk/dannet/data/synset-999>", queryir.KindDescribe},
	}
	for _, tc := range cases {
		q, err := v.Validate(tc.query)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.kind, q.Kind, tc.query)
	}
}

func TestValidateLengthGateShortCircuits(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxQueryLength = 50
	v := NewValidator(limits, prefix.Default())

	readCalls, updateCalls := 0, 0
	v.parseQuery = func(text string) (*queryir.Query, error) {
		readCalls++
		return nil, fmt.Errorf("should not be reached")
	}
	v.parseUpdate = func(text string) (*queryir.Query, string, error) {
		updateCalls++
		return nil, "", fmt.Errorf("should not be reached")
	}

	_, err := v.Validate("SELECT * WHERE { ?s ?p ?o } # " + strings.Repeat("x", 100))
	require.Error(t, err)
	assert.True(t, IsQueryTooLong(err))
	assert.Equal(t, ErrCodeQueryTooLong, CodeOf(err))

	// Oversized input must never reach a parser.
	assert.Zero(t, readCalls)
	assert.Zero(t, updateCalls)
}

func TestValidateLengthCountsCharactersNotBytes(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxQueryLength = 4
	v := NewValidator(limits, nil)

	// Four two-byte characters: 8 bytes, 4 characters, within the gate.
	_, err := v.Validate("ææææ")
	assert.False(t, IsQueryTooLong(err))

	_, err = v.Validate("æææææ")
	assert.True(t, IsQueryTooLong(err))
}

func TestValidateRejectsMutations(t *testing.T) {
	v := testValidator()
	cases := []struct {
		query     string
		operation string
	}{
		{"INSERT DATA { <http://a> <http://b> <http://c> }", "INSERT DATA"},
		{"DELETE WHERE { ?s ?p ?o }", "DELETE WHERE"},
		{"DELETE DATA { <http://a> <http://b> <http://c> }", "DELETE DATA"},
		{"DROP ALL", "DROP"},
		{"CLEAR DEFAULT", "CLEAR"},
		{"LOAD <http://example.org/dump.nt>", "LOAD"},
	}
	for _, tc := range cases {
		_, err := v.Validate(tc.query)
		require.Error(t, err, tc.query)
		assert.True(t, IsUpdateNotAllowed(err), tc.query)

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, tc.operation, qe.Operation, tc.query)
	}
}

func TestValidateDiagnosesMalformedText(t *testing.T) {
	v := testValidator()
	cases := []string{
		// A typo in the first keyword is malformed, not a forbidden form.
		"ELECT * WHERE { ?s ?p ?o }",
		"SELECT * WHERE { ?s ?p }",
		"SELECT * WHERE { ?s ?p ?o",
		"",
		"complete nonsense",
	}
	for _, query := range cases {
		_, err := v.Validate(query)
		require.Error(t, err, query)
		assert.True(t, IsParseError(err), query)
		assert.False(t, IsUpdateNotAllowed(err), query)
	}
}

func TestValidateUnsafeQueryTypeIsDefensive(t *testing.T) {
	v := testValidator()
	// Force the read parser to hand back a non-read form; the validator
	// must refuse it even though parsing succeeded.
	v.parseQuery = func(text string) (*queryir.Query, error) {
		return &queryir.Query{Kind: queryir.KindUpdate}, nil
	}

	_, err := v.Validate("SELECT * WHERE { ?s ?p ?o }")
	require.Error(t, err)
	assert.True(t, IsUnsafeQueryType(err))
}

func TestValidateExpandsWellKnownPrefixes(t *testing.T) {
	v := testValidator()

	// No prologue in the query text; dns: resolves via the registry.
	q, err := v.Validate(`SELECT ?s WHERE { ?s dns:sentiment ?o }`)
	require.NoError(t, err)
	require.Len(t, q.Where.Triples, 1)
	assert.Equal(t,
		queryir.IRI(prefix.SchemaNS+"sentiment"),
		q.Where.Triples[0].Predicate)
}

func TestValidateQueryLocalPrefixShadows(t *testing.T) {
	v := testValidator()

	q, err := v.Validate(
		"PREFIX dns: <http://example.org/other#>\n" +
			"SELECT ?s WHERE { ?s dns:sentiment ?o }")
	require.NoError(t, err)
	require.Len(t, q.Where.Triples, 1)
	assert.Equal(t,
		queryir.IRI("http://example.org/other#sentiment"),
		q.Where.Triples[0].Predicate)
}

func TestValidateWithoutRegistry(t *testing.T) {
	v := NewValidator(DefaultLimits(), nil)

	_, err := v.Validate("SELECT ?s WHERE { ?s dns:sentiment ?o }")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}
