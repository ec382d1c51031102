// Package elements holds the concrete search elements of the portal: thin
// configurations of hxsearch.Element that declare their search data, result
// records, required parameters, table layout and form.
package elements

import "github.com/pthm/hxsearch"

// Tag identifiers.
const (
	GWASSearchTag        = "lis-gwas-search-element"
	MineWebPropertiesTag = "lis-mine-web-properties-element"
	GeneSearchTag        = "lis-gene-search-element"
)

// Functions are the search functions the host injects. Any of them may be
// nil and set later through the returned Definitions.
type Functions struct {
	GWAS              GWASSearchFunc
	MineWebProperties MineWebPropertiesFunc
	Gene              GeneSearchFunc
}

// Definitions gives access to the registered elements, for instance to
// replace a search function at runtime.
type Definitions struct {
	GWAS              *hxsearch.Definition[GWASSearchData, GWASSearchResult]
	MineWebProperties *hxsearch.Definition[MineWebPropertiesData, MineWebPropertiesResult]
	Gene              *hxsearch.Definition[GeneSearchData, GeneSearchResult]
}

// Init defines every element and adds it to reg.
func Init(reg *hxsearch.Registry, fns Functions) Definitions {
	defs := Definitions{
		GWAS:              hxsearch.Define(GWASSearchTag, GWASSearch{}, fns.GWAS),
		MineWebProperties: hxsearch.Define(MineWebPropertiesTag, MineWebProperties{}, fns.MineWebProperties),
		Gene:              hxsearch.Define(GeneSearchTag, GeneSearch{}, fns.Gene),
	}
	reg.Add(defs.GWAS, defs.MineWebProperties, defs.Gene)
	return defs
}
