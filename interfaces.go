package hxsearch

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
)

// Element is the declarative half of a search element. Implementations are
// stateless configuration: which parameters must be present before a search
// runs, which result attributes are shown in what order, their header
// labels, and the form that produces the search data.
//
//	type GWASSearch struct{}
//
//	func (GWASSearch) RequiredQueryStringParams() []string { return []string{"query"} }
//	func (GWASSearch) ResultAttributes() []string          { return []string{"identifier", "synopsis"} }
//	func (GWASSearch) TableHeader() map[string]string {
//	    return map[string]string{"identifier": "GWAS", "synopsis": "Synopsis"}
//	}
//	func (GWASSearch) RenderForm(f hxsearch.FormContext) templ.Component { ... }
//
// TableHeader must have an entry for every result attribute; Define panics
// otherwise.
type Element interface {
	RequiredQueryStringParams() []string
	ResultAttributes() []string
	TableHeader() map[string]string
	RenderForm(f FormContext) templ.Component
}

// FormContext is passed to Element.RenderForm.
type FormContext struct {
	attrs templ.Attributes
	loc   Location
}

// Attrs returns the HTMX attributes the <form> element must carry, rendered
// and escaped, with a leading space.
//
//	io.WriteString(w, `<form`+f.Attrs()+`>`)
func (f FormContext) Attrs() string {
	return renderAttrs(f.attrs)
}

// Value returns the current query-string value of a form field.
func (f FormContext) Value(name string) string {
	if f.loc == nil {
		return ""
	}
	v, _ := f.loc.GetParameter(name)
	return v
}

// definer is implemented by *Definition[Q, R]; it lets the registry hold
// definitions of different query and result types.
type definer interface {
	Tag() string
	Prefix() string
	instantiate(reg *Registry, id string, loc *URLLocation) instance
}

// instance is one live element: a controller plus its location.
type instance interface {
	ID() string
	location() *URLLocation
	attach(ctx context.Context) error
	submit(ctx context.Context, form url.Values) error
	changePage(ctx context.Context, n int) error
	render() templ.Component
	close()
}
