package elements

import (
	"github.com/a-h/templ"
	"github.com/pthm/hxsearch"
)

// GWASSearchData is the search data of the GWAS search element.
type GWASSearchData struct {
	Query string `qs:"query"`
}

// GWASSearchResult is one GWAS record.
type GWASSearchResult struct {
	Identifier    string `json:"identifier"`
	Genotypes     string `json:"genotypes"`
	Synopsis      string `json:"synopsis"`
	OrganismGenus string `json:"organism_genus"`
	OrganismName  string `json:"organism_name"`
}

// GWASSearchFunc searches GWAS descriptions.
type GWASSearchFunc = hxsearch.SearchFunc[GWASSearchData, GWASSearchResult]

// GWASSearch is a keyword search over GWAS descriptions. Its state lives in
// the query and page parameters; a search runs on load when query is set.
// The Genus column is blank for records that leave OrganismGenus unset.
type GWASSearch struct{}

func (GWASSearch) RequiredQueryStringParams() []string {
	return []string{"query"}
}

func (GWASSearch) ResultAttributes() []string {
	return []string{"organism_genus", "identifier", "genotypes", "synopsis"}
}

func (GWASSearch) TableHeader() map[string]string {
	return map[string]string{
		"organism_genus": "Genus",
		"identifier":     "GWAS",
		"genotypes":      "Genotypes",
		"synopsis":       "Synopsis",
	}
}

func (GWASSearch) RenderForm(f hxsearch.FormContext) templ.Component {
	return searchForm(f, "GWAS description search (e.g. pod)", "Search",
		field{name: "query", placeholder: "Input"})
}
