package elements

import (
	"github.com/a-h/templ"
	"github.com/pthm/hxsearch"
)

// GeneSearchData is the search data of the gene search element. Genus is
// an optional filter.
type GeneSearchData struct {
	Query string `qs:"query"`
	Genus string `qs:"genus"`
}

// GeneSearchResult is one gene record.
type GeneSearchResult struct {
	Genus       string `json:"genus"`
	Species     string `json:"species"`
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GeneSearchFunc searches genes.
type GeneSearchFunc = hxsearch.SearchFunc[GeneSearchData, GeneSearchResult]

// GeneSearch is a keyword search over genes.
type GeneSearch struct{}

func (GeneSearch) RequiredQueryStringParams() []string {
	return []string{"query"}
}

func (GeneSearch) ResultAttributes() []string {
	return []string{"genus", "species", "identifier", "name", "description"}
}

func (GeneSearch) TableHeader() map[string]string {
	return map[string]string{
		"genus":       "Genus",
		"species":     "Species",
		"identifier":  "Identifier",
		"name":        "Name",
		"description": "Description",
	}
}

func (GeneSearch) RenderForm(f hxsearch.FormContext) templ.Component {
	return searchForm(f, "Gene search (e.g. NAC)", "Search",
		field{name: "query", placeholder: "Input"},
		field{name: "genus", placeholder: "Genus"},
	)
}
