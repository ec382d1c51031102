package hxsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultMaxInstances bounds the number of live element instances a
// registry keeps. The least recently used instance is closed when the bound
// is reached, which cancels any search it still has in flight.
const DefaultMaxInstances = 4096

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger       *zap.Logger
	maxInstances int
}

// WithRegistryLogger sets the logger for request handling and for the
// controllers of every instance.
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxInstances sets the live instance bound.
func WithMaxInstances(n int) RegistryOption {
	return func(o *registryOptions) {
		if n > 0 {
			o.maxInstances = n
		}
	}
}

// Registry maps element tags to definitions and serves their routes. It is
// configured once at startup with Add; nothing registers itself.
//
//	reg := hxsearch.NewRegistry(key)
//	reg.Add(gwas, mines)
//	http.Handle("/_c/", reg.Handler())
//
// Each element gets three routes under /_c/<tag>/:
//
//	GET  /_c/<tag>/        new instance, automatic initial search
//	POST /_c/<tag>/search  form submission (page 1)
//	GET  /_c/<tag>/page    page change, ?p=<signed props>
type Registry struct {
	mu          sync.RWMutex
	mux         *http.ServeMux
	encoder     *Encoder
	definitions map[string]definer
	instances   *lru.Cache[string, instance]
	logger      *zap.Logger

	// OnError is called for errors that are neither search failures nor
	// discarded searches: bad props, unknown elements, missing search
	// functions, render failures.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// NewRegistry creates a registry that signs props with key.
func NewRegistry(key []byte, opts ...RegistryOption) *Registry {
	o := registryOptions{logger: zap.NewNop(), maxInstances: DefaultMaxInstances}
	for _, opt := range opts {
		opt(&o)
	}

	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxsearch: failed to create encoder: %v", err))
	}
	instances, err := lru.NewWithEvict(o.maxInstances, func(_ string, inst instance) {
		inst.close()
	})
	if err != nil {
		panic(fmt.Sprintf("hxsearch: failed to create instance cache: %v", err))
	}

	reg := &Registry{
		mux:         http.NewServeMux(),
		encoder:     enc,
		definitions: make(map[string]definer),
		instances:   instances,
		logger:      o.logger,
	}
	reg.OnError = reg.defaultOnError
	return reg
}

// Encoder returns the registry's props encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Add registers definitions. It panics on a duplicate tag.
func (reg *Registry) Add(defs ...definer) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, d := range defs {
		if _, exists := reg.definitions[d.Tag()]; exists {
			panic(fmt.Sprintf("hxsearch: duplicate element tag %q", d.Tag()))
		}
		reg.definitions[d.Tag()] = d

		prefix := d.Prefix()
		reg.mux.HandleFunc("GET "+prefix+"/{$}", reg.handleRender(d))
		reg.mux.HandleFunc("POST "+prefix+"/search", reg.handleSearch(d))
		reg.mux.HandleFunc("GET "+prefix+"/page", reg.handlePage(d))
	}
}

// Tags returns the registered tags.
func (reg *Registry) Tags() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tags := make([]string, 0, len(reg.definitions))
	for tag := range reg.definitions {
		tags = append(tags, tag)
	}
	return tags
}

// Instances returns the number of live element instances.
func (reg *Registry) Instances() int {
	return reg.instances.Len()
}

// Close closes every live instance, canceling in-flight searches.
func (reg *Registry) Close() {
	reg.instances.Purge()
}

// Handler returns the HTTP handler for element routes. Mount it at "/_c/".
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CSRF protection: mutating methods require the header HTMX sends.
		if r.Method != http.MethodGet && r.Method != http.MethodHead && !IsHTMX(r) {
			http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
			return
		}
		reg.mux.ServeHTTP(w, r)
	})
}

// Placeholder returns the markup a host page embeds for an element. It
// loads the element as soon as the page has loaded, which is when the
// automatic initial search runs.
//
//	@reg.Placeholder("lis-gwas-search-element", spinner())
func (reg *Registry) Placeholder(tag string, placeholder templ.Component) templ.Component {
	reg.mu.RLock()
	d, ok := reg.definitions[tag]
	reg.mu.RUnlock()

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, tag)
		}
		attrs := WireAttrs(d.Prefix()+"/", http.MethodGet, "")
		attrs["hx-trigger"] = "load"
		attrs["hx-swap"] = string(SwapOuter)
		attrs["class"] = "lis-search-placeholder"
		if _, err := io.WriteString(w, "<div"+renderAttrs(attrs)+">"); err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>")
		return err
	})
}

func (reg *Registry) handleRender(d definer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		inst := d.instantiate(reg, id, NewURLLocation(browserURL(r)))
		reg.instances.Add(instanceKey(d, id), inst)
		reg.serve(w, r, d, inst, inst.attach)
	}
}

func (reg *Registry) handleSearch(d definer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			reg.OnError(w, r, fmt.Errorf("%w: %v", ErrInvalidFormat, err))
			return
		}
		props, err := reg.decodeProps(r.PostForm.Get(propsParam))
		if err != nil {
			reg.OnError(w, r, err)
			return
		}

		inst, _ := reg.instance(d, props.Instance, r)
		reg.serve(w, r, d, inst, func(ctx context.Context) error {
			return inst.submit(WithBrowserURL(ctx, CurrentURL(r)), r.PostForm)
		})
	}
}

func (reg *Registry) handlePage(d definer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		props, err := reg.decodeProps(r.URL.Query().Get(propsParam))
		if err != nil {
			reg.OnError(w, r, err)
			return
		}
		if props.Page < 1 {
			reg.OnError(w, r, ErrInvalidPage)
			return
		}

		inst, fresh := reg.instance(d, props.Instance, r)
		op := func(ctx context.Context) error {
			return inst.changePage(WithBrowserURL(ctx, CurrentURL(r)), props.Page)
		}
		if fresh {
			// The instance was evicted; rebuild its query from the browser
			// URL and search the requested page.
			op = func(ctx context.Context) error {
				inst.location().SetParameters(map[string]string{PageParam: strconv.Itoa(props.Page)})
				return inst.attach(ctx)
			}
		}
		reg.serve(w, r, d, inst, op)
	}
}

// serve runs op against inst and writes the element response. Search
// failures still render (with the error inline and as a toast); skipped,
// superseded and canceled searches answer 204 so the page is left as is.
func (reg *Registry) serve(w http.ResponseWriter, r *http.Request, d definer, inst instance, op func(context.Context) error) {
	var changed atomic.Bool
	unsubscribe := inst.location().Subscribe(func(LocationChange) {
		changed.Store(true)
	})
	err := op(r.Context())
	unsubscribe()

	reg.logger.Debug("element request",
		zap.String("element", d.Tag()),
		zap.String("instance", inst.ID()),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	var res Result
	switch {
	case err == nil || IsSearchFailure(err):
		res = OK(inst.render())
		if changed.Load() {
			res = res.PushURL(inst.location().URL()).TriggerURLSync()
		}
		if IsSearchFailure(err) {
			res = res.Flash(FlashError, "Search failed")
		}
	case IsDiscarded(err):
		res = NoContent()
	default:
		reg.OnError(w, r, err)
		return
	}

	if err := res.Write(r.Context(), w); err != nil {
		reg.OnError(w, r, err)
	}
}

// instance returns the live instance for id, or a new one bound to the
// browser URL when it has been evicted. fresh reports the latter.
func (reg *Registry) instance(d definer, id string, r *http.Request) (inst instance, fresh bool) {
	key := instanceKey(d, id)
	if inst, ok := reg.instances.Get(key); ok {
		return inst, false
	}

	inst = d.instantiate(reg, id, NewURLLocation(browserURL(r)))
	if prev, ok, _ := reg.instances.PeekOrAdd(key, inst); ok {
		inst.close()
		return prev, false
	}
	return inst, true
}

func (reg *Registry) decodeProps(encoded string) (elementProps, error) {
	var props elementProps
	if encoded == "" {
		return props, fmt.Errorf("%w: missing props", ErrInvalidFormat)
	}
	if err := reg.encoder.Decode(encoded, &props); err != nil {
		return props, WrapDecodeError(err)
	}
	return props, nil
}

func (reg *Registry) defaultOnError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case IsNotFound(err):
		status = http.StatusNotFound
	case IsDecodeError(err), errors.Is(err, ErrInvalidPage):
		status = http.StatusBadRequest
	case errors.Is(err, ErrClosed):
		status = http.StatusGone
	case errors.Is(err, ErrNoSearchFunction):
		status = http.StatusServiceUnavailable
	}

	log := reg.logger.With(zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	if status >= http.StatusInternalServerError {
		log.Error("element request failed")
	} else {
		log.Debug("element request rejected")
	}
	http.Error(w, http.StatusText(status), status)
}

func instanceKey(d definer, id string) string {
	return d.Tag() + "/" + id
}

// browserURL is the URL an element reads its query-string state from: the
// page URL HTMX reports, or the request's own query for plain requests.
func browserURL(r *http.Request) string {
	if current := CurrentURL(r); current != "" {
		return current
	}
	if r.URL.RawQuery == "" {
		return "/"
	}
	return "/?" + r.URL.RawQuery
}
