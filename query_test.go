package hxsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testQuery struct {
	Query string `qs:"query"`
	Genus string `qs:"genus"`
}

type testResult struct {
	Identifier string `json:"identifier"`
	Synopsis   string `json:"synopsis,omitempty"`
	Count      int    `json:"count"`
	internal   string
}

func TestEncodeFields(t *testing.T) {
	fields, err := EncodeFields(testQuery{Query: "pod", Genus: "Glycine"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"query": "pod", "genus": "Glycine"}, fields)

	fields, err = EncodeFields(struct{}{})
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = EncodeFields(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)

	fields, err = EncodeFields(map[string]string{"query": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"query": "x"}, fields)
}

func TestDecodeFields(t *testing.T) {
	var q testQuery
	require.NoError(t, DecodeFields(map[string]string{"query": "pod", "page": "3"}, &q))
	assert.Equal(t, testQuery{Query: "pod"}, q)

	type typed struct {
		Limit int `qs:"limit"`
	}
	var tq typed
	require.NoError(t, DecodeFields(map[string]string{"limit": "25"}, &tq))
	assert.Equal(t, 25, tq.Limit)
}

func TestFieldsRoundTrip(t *testing.T) {
	original := testQuery{Query: "seed weight", Genus: ""}
	fields, err := EncodeFields(original)
	require.NoError(t, err)

	var decoded testQuery
	require.NoError(t, DecodeFields(fields, &decoded))
	assert.Equal(t, original, decoded)
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, []string{"genus", "query"}, FieldNames(testQuery{}))
	assert.Empty(t, FieldNames(struct{}{}))
}

func TestSameQuery(t *testing.T) {
	assert.True(t, SameQuery(testQuery{Query: "pod"}, testQuery{Query: "pod"}))
	assert.False(t, SameQuery(testQuery{Query: "pod"}, testQuery{Query: "pod", Genus: "Vigna"}))
	assert.True(t, SameQuery(struct{}{}, struct{}{}))
}

func TestResultFields(t *testing.T) {
	r := testResult{Identifier: "GWAS.1", Count: 4}
	fields, err := ResultFields(r)
	require.NoError(t, err)

	assert.Equal(t, "GWAS.1", fields["identifier"])
	assert.Equal(t, "4", fields["count"])
	_, ok := fields["internal"]
	assert.False(t, ok)

	// Record untouched.
	assert.Equal(t, testResult{Identifier: "GWAS.1", Count: 4}, r)
}
