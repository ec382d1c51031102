package hxsearch

import (
	"context"
	"fmt"
	"html"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Definition binds a tag identifier to an Element and the search function
// its instances call. It is the Go counterpart of a custom element class:
// the registry creates one controller-backed instance per page that embeds
// the tag.
//
//	gwas := hxsearch.Define("lis-gwas-search-element", elements.GWASSearch{}, api.SearchGWAS)
//	reg.Add(gwas)
//
// The search function may be nil at definition time and injected later with
// SetSearchFunction; until then searches answer ErrNoSearchFunction.
type Definition[Q, R any] struct {
	tag     string
	prefix  string
	element Element

	mu     sync.RWMutex
	search SearchFunc[Q, R]
}

// Define creates a definition. It panics when tag is empty or contains
// characters that are not valid in a URL path segment, or when the
// element's table header lacks a label for one of its result attributes.
func Define[Q, R any](tag string, el Element, search SearchFunc[Q, R]) *Definition[Q, R] {
	if tag == "" || url.PathEscape(tag) != tag || strings.Contains(tag, "/") {
		panic(fmt.Sprintf("hxsearch: invalid element tag %q", tag))
	}
	header := el.TableHeader()
	for _, attr := range el.ResultAttributes() {
		if _, ok := header[attr]; !ok {
			panic(fmt.Sprintf("hxsearch: %s: no table header for attribute %q", tag, attr))
		}
	}
	return &Definition[Q, R]{
		tag:     tag,
		prefix:  "/_c/" + tag,
		element: el,
		search:  search,
	}
}

// Tag returns the element's tag identifier.
func (d *Definition[Q, R]) Tag() string {
	return d.tag
}

// Prefix returns the URL prefix all of the element's routes live under.
func (d *Definition[Q, R]) Prefix() string {
	return d.prefix
}

// Element returns the element configuration.
func (d *Definition[Q, R]) Element() Element {
	return d.element
}

// SetSearchFunction injects the search function. Live instances pick it up
// on their next request.
func (d *Definition[Q, R]) SetSearchFunction(search SearchFunc[Q, R]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.search = search
}

func (d *Definition[Q, R]) searchFunction() SearchFunc[Q, R] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.search
}

func (d *Definition[Q, R]) instantiate(reg *Registry, id string, loc *URLLocation) instance {
	logger := reg.logger.With(zap.String("element", d.tag), zap.String("instance", id))
	return &elementInstance[Q, R]{
		def:  d,
		id:   id,
		loc:  loc,
		enc:  reg.encoder,
		ctrl: NewPaginatedSearch(loc, d.element.RequiredQueryStringParams(), d.searchFunction(), WithLogger(logger)),
	}
}

// elementInstance is a Definition bound to one page's location.
type elementInstance[Q, R any] struct {
	def  *Definition[Q, R]
	id   string
	loc  *URLLocation
	enc  *Encoder
	ctrl *PaginatedSearch[Q, R]
}

func (e *elementInstance[Q, R]) ID() string {
	return e.id
}

func (e *elementInstance[Q, R]) location() *URLLocation {
	return e.loc
}

func (e *elementInstance[Q, R]) attach(ctx context.Context) error {
	e.ctrl.SetSearchFunction(e.def.searchFunction())
	_, err := e.ctrl.Attach(ctx)
	return err
}

// submit decodes the posted form into the element's search data. Only the
// first value of each field is used; the props parameter is never a field.
func (e *elementInstance[Q, R]) submit(ctx context.Context, form url.Values) error {
	params := make(map[string]string, len(form))
	for name := range form {
		if name != propsParam {
			params[name] = form.Get(name)
		}
	}

	var q Q
	if err := DecodeFields(params, &q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	e.ctrl.SetSearchFunction(e.def.searchFunction())
	_, err := e.ctrl.Submit(ctx, q)
	return err
}

func (e *elementInstance[Q, R]) changePage(ctx context.Context, n int) error {
	e.ctrl.SetSearchFunction(e.def.searchFunction())
	_, err := e.ctrl.ChangePage(ctx, n)
	return err
}

func (e *elementInstance[Q, R]) close() {
	e.ctrl.Close()
}

// render draws the element from the controller's current state: the form,
// a status line, the results table and the pager. The outer div is the swap
// target of every element request.
func (e *elementInstance[Q, R]) render() templ.Component {
	state := e.ctrl.State()
	el := e.def.element

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var table Table
		if state.Status == StatusSuccess {
			var err error
			table, err = BuildTable(el.ResultAttributes(), el.TableHeader(), state.Results)
			if err != nil {
				return err
			}
		}

		formAttrs, err := e.wire("search", http.MethodPost, 0)
		if err != nil {
			return err
		}

		wrapper := templ.Attributes{
			"id":          e.def.tag + "-" + e.id,
			"class":       "lis-search " + e.def.tag,
			"hx-target":   "this",
			"hx-swap":     string(SwapOuter),
			"data-page":   state.Page,
			"data-status": state.Status.String(),
		}
		if _, err := io.WriteString(w, "<div"+renderAttrs(wrapper)+">"); err != nil {
			return err
		}

		if err := el.RenderForm(FormContext{attrs: formAttrs, loc: e.loc}).Render(ctx, w); err != nil {
			return err
		}

		switch state.Status {
		case StatusLoading:
			_, err = io.WriteString(w, `<div class="lis-search-status uk-text-muted">Searching&hellip;</div>`)
		case StatusError:
			err = ErrorComponent(state.ErrorDetail).Render(ctx, w)
		case StatusSuccess:
			if len(table.Rows) == 0 {
				_, err = io.WriteString(w, `<div class="lis-search-status uk-text-muted">No results</div>`)
			}
			if err == nil {
				err = TableComponent(table).Render(ctx, w)
			}
		}
		if err != nil {
			return err
		}

		if state.Status == StatusSuccess || state.Status == StatusError {
			if err := e.renderPager(w, state.Page, len(state.Results) > 0); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, "</div>")
		return err
	})
}

func (e *elementInstance[Q, R]) renderPager(w io.Writer, page int, hasNext bool) error {
	var sb strings.Builder
	sb.WriteString(`<ul class="lis-search-pager uk-pagination">`)

	if page > 1 {
		attrs, err := e.wire("page", http.MethodGet, page-1)
		if err != nil {
			return err
		}
		sb.WriteString(`<li><a href="#"` + renderAttrs(attrs) + `>Previous</a></li>`)
	}
	sb.WriteString(`<li class="uk-active"><span>Page ` + html.EscapeString(fmt.Sprint(page)) + `</span></li>`)
	if hasNext && page < math.MaxInt {
		attrs, err := e.wire("page", http.MethodGet, page+1)
		if err != nil {
			return err
		}
		sb.WriteString(`<li><a href="#"` + renderAttrs(attrs) + `>Next</a></li>`)
	}

	sb.WriteString(`</ul>`)
	_, err := io.WriteString(w, sb.String())
	return err
}

// wire builds the request attributes for one of the instance's routes.
// Requests on the same element replace each other in flight, so HTMX
// aborts the older request and its context is canceled.
func (e *elementInstance[Q, R]) wire(action, method string, page int) (templ.Attributes, error) {
	encoded, err := e.enc.Encode(elementProps{Instance: e.id, Page: page})
	if err != nil {
		return nil, err
	}
	attrs := WireAttrs(e.def.prefix+"/"+action, method, encoded)
	attrs["hx-sync"] = "closest .lis-search:replace"
	return attrs, nil
}

// elementProps is the signed payload carried by element routes.
type elementProps struct {
	Instance string
	Page     int
}

func (p elementProps) HXEncode() map[string]any {
	m := map[string]any{"i": p.Instance}
	if p.Page > 0 {
		m["n"] = p.Page
	}
	return m
}

func (p *elementProps) HXDecode(m map[string]any) error {
	id, ok := m["i"].(string)
	if !ok || id == "" {
		return fmt.Errorf("%w: missing instance", ErrInvalidFormat)
	}
	p.Instance = id
	if v, ok := m["n"]; ok {
		n, ok := toInt(v)
		if !ok {
			return fmt.Errorf("%w: page %v", ErrInvalidFormat, v)
		}
		p.Page = n
	}
	return nil
}

// toInt converts the integer types msgpack decodes into.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}
