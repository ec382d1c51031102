// Package hxsearch provides server-rendered paginated search elements for
// HTMX pages, with the search state mirrored into the browser URL.
//
// A search element is a form, a status line, a result table and a pager.
// The server owns the element: HTMX posts form submissions and page turns
// back to the element's routes, the element calls an injected search
// function, and the response carries the re-rendered element together with
// the URL the browser should push onto its history.
//
// # Core Concepts
//
// An Element is stateless configuration. It names the query-string
// parameters that must be present before a search runs, the result
// attributes shown as table columns, their header labels, and the form:
//
//	type GWASSearch struct{}
//
//	func (GWASSearch) RequiredQueryStringParams() []string { return []string{"query"} }
//	func (GWASSearch) ResultAttributes() []string          { return []string{"identifier", "synopsis"} }
//
// Search data and result records are plain structs. Query fields carry qs
// tags, result fields carry json tags:
//
//	type GWASSearchData struct {
//	    Query string `qs:"query"`
//	}
//
// A Definition binds a tag identifier, an Element and a SearchFunc. The
// search function may be injected or replaced at any time:
//
//	gwas := hxsearch.Define[GWASSearchData, GWASResult]("lis-gwas-search-element", GWASSearch{}, nil)
//	gwas.SetSearchFunction(api.SearchGWAS)
//
// # Search Lifecycle
//
// Every live element owns a PaginatedSearch controller. Submitting the form
// validates the required parameters, resets the page to 1, writes the query
// and page to the URL, and calls the search function. Changing the page
// keeps the query and writes only the page. A newer search supersedes an
// older one: the older context is canceled and its results are dropped even
// when they arrive later. When the element is first loaded and the URL
// already holds every required parameter, the search runs automatically.
//
// # Query-String State
//
// Location is the seam between the controller and the browser URL. The
// registry builds a URLLocation from the HX-Current-URL header on every
// request and answers with HX-Push-Url when the location changed, so the
// back button and shared links restore the search.
//
// # Registration and Routing
//
// Definitions are registered explicitly with a Registry:
//
//	reg := hxsearch.NewRegistry(signingKey)
//	reg.Add(gwas, mines)
//	http.Handle("/_c/", reg.Handler())
//
// Host pages embed an element with reg.Placeholder(tag, nil). Props carried
// by element requests are signed, so clients cannot forge instance IDs or
// pages. Mutating methods require the HX-Request header that HTMX sends,
// which protects them from cross-origin posts without additional tokens.
package hxsearch
