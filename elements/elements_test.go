package elements

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pthm/hxsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, fns Functions) (*hxsearch.Registry, Definitions) {
	t.Helper()
	reg := hxsearch.NewRegistry([]byte("elements-test-key"))
	t.Cleanup(reg.Close)
	return reg, Init(reg, fns)
}

func document(t *testing.T, res *hxsearch.TestResult) *goquery.Document {
	t.Helper()
	doc, err := res.Document()
	require.NoError(t, err)
	return doc
}

func headers(doc *goquery.Document) []string {
	var out []string
	doc.Find("thead th").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func TestInit_RegistersEveryElement(t *testing.T) {
	reg, defs := newRegistry(t, Functions{})
	assert.ElementsMatch(t, []string{GWASSearchTag, MineWebPropertiesTag, GeneSearchTag}, reg.Tags())
	assert.Equal(t, "/_c/"+GWASSearchTag, defs.GWAS.Prefix())
	assert.Equal(t, "/_c/"+MineWebPropertiesTag, defs.MineWebProperties.Prefix())
	assert.Equal(t, "/_c/"+GeneSearchTag, defs.Gene.Prefix())
}

func TestGWASSearch(t *testing.T) {
	stub := hxsearch.NewStubSearch(func(q GWASSearchData, page int) ([]GWASSearchResult, error) {
		return []GWASSearchResult{{
			Identifier:    "KGK20170707",
			Genotypes:     "Cowpea iSelect",
			Synopsis:      "Pod length",
			OrganismGenus: "Vigna",
			OrganismName:  "Vigna unguiculata",
		}, {
			Identifier: "Zhou_Lu_2015",
			Genotypes:  "SoySNP50K",
			Synopsis:   "Pod shattering",
		}}, nil
	})
	reg, _ := newRegistry(t, Functions{GWAS: stub.Func()})
	h := reg.Handler()

	res := hxsearch.TestGet(h, "/_c/"+GWASSearchTag+"/", "http://localhost/gwas")
	require.True(t, res.IsOK())
	assert.Empty(t, stub.Calls())

	doc := document(t, res)
	assert.Equal(t, "GWAS description search (e.g. pod)", doc.Find("legend").Text())
	vals, ok := doc.Find("form").Attr("hx-vals")
	require.True(t, ok)
	var props map[string]string
	require.NoError(t, json.Unmarshal([]byte(vals), &props))

	res = hxsearch.TestPost(h, "/_c/"+GWASSearchTag+"/search", "http://localhost/gwas", map[string]string{
		"p":     props["p"],
		"query": "pod",
	})
	require.True(t, res.IsOK())

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, GWASSearchData{Query: "pod"}, calls[0].Query)
	assert.Equal(t, 1, calls[0].Page)
	assert.Equal(t, "/gwas?query=pod&page=1", res.PushURL)

	doc = document(t, res)
	assert.Equal(t, []string{"Genus", "GWAS", "Genotypes", "Synopsis"}, headers(doc))
	var cells []string
	doc.Find("tbody td").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, s.Text())
	})
	assert.Equal(t, []string{
		"Vigna", "KGK20170707", "Cowpea iSelect", "Pod length",
		"", "Zhou_Lu_2015", "SoySNP50K", "Pod shattering",
	}, cells)
	assert.Equal(t, "pod", doc.Find(`input[name="query"]`).AttrOr("value", ""))
}

func TestMineWebProperties_LoadsWithoutInput(t *testing.T) {
	stub := hxsearch.NewStubSearch(func(MineWebPropertiesData, int) ([]MineWebPropertiesResult, error) {
		return []MineWebPropertiesResult{{
			Title:          "LegumeMine",
			SubTitle:       "Legume genomics",
			ReleaseVersion: "5.1.0",
			SitePrefix:     "https://mines.legumeinfo.org/legumemine",
		}}, nil
	})
	reg, _ := newRegistry(t, Functions{MineWebProperties: stub.Func()})

	res := hxsearch.TestGet(reg.Handler(), "/_c/"+MineWebPropertiesTag+"/", "/mines")
	require.True(t, res.IsOK())
	require.Len(t, stub.Calls(), 1)

	doc := document(t, res)
	assert.Equal(t, []string{"Mine", "Contents", "Release", "URL"}, headers(doc))
	assert.Equal(t, "GO!", doc.Find("button").Text())
	assert.Equal(t, 0, doc.Find("form input").Length())
	assert.Equal(t, "LegumeMine", doc.Find("tbody td").First().Text())
}

func TestGeneSearch_OptionalGenus(t *testing.T) {
	stub := hxsearch.NewStubSearch(func(q GeneSearchData, page int) ([]GeneSearchResult, error) {
		return []GeneSearchResult{{Genus: "Glycine", Species: "max", Identifier: "glyma.Glyma.01G000100", Name: "NAC1"}}, nil
	})
	reg, _ := newRegistry(t, Functions{Gene: stub.Func()})

	res := hxsearch.TestGet(reg.Handler(), "/_c/"+GeneSearchTag+"/", "/genes?query=NAC&genus=Glycine")
	require.True(t, res.IsOK())
	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, GeneSearchData{Query: "NAC", Genus: "Glycine"}, calls[0].Query)

	doc := document(t, res)
	assert.Equal(t, []string{"Genus", "Species", "Identifier", "Name", "Description"}, headers(doc))
	assert.Equal(t, "Glycine", doc.Find(`input[name="genus"]`).AttrOr("value", ""))
}

func TestDefinitions_LateInjection(t *testing.T) {
	reg, defs := newRegistry(t, Functions{})
	h := reg.Handler()

	res := hxsearch.TestGet(h, "/_c/"+GWASSearchTag+"/", "/gwas?query=pod")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	defs.GWAS.SetSearchFunction(func(context.Context, GWASSearchData, int, hxsearch.SearchOptions) ([]GWASSearchResult, error) {
		return nil, nil
	})
	res = hxsearch.TestGet(h, "/_c/"+GWASSearchTag+"/", "/gwas?query=pod")
	require.True(t, res.IsOK())
	assert.Contains(t, res.HTML, "No results")
}
