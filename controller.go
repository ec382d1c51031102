package hxsearch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PageParam is the query-string parameter holding the current page.
const PageParam = "page"

// SearchOptions accompanies every search function invocation. Cancellation
// travels on the context, not here.
type SearchOptions struct {
	// ID identifies the invocation in logs on both sides of the call.
	ID uuid.UUID
}

// SearchFunc performs one page of a search. It must honor ctx where it can;
// the controller discards stale results whether or not it does. Returning
// an empty slice means "no results" and is not a failure.
type SearchFunc[Q, R any] func(ctx context.Context, query Q, page int, opts SearchOptions) ([]R, error)

type browserURLKey struct{}

// WithBrowserURL returns a context carrying the browser's current URL. An
// invocation started with it first resets a resettable Location to raw, so
// parameters the user changed outside the element are picked up. Requests
// that start nothing leave the Location as it was.
func WithBrowserURL(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, browserURLKey{}, raw)
}

func browserURLFrom(ctx context.Context) string {
	raw, _ := ctx.Value(browserURLKey{}).(string)
	return raw
}

// ControllerOption configures a PaginatedSearch.
type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for search lifecycle events.
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(o *controllerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// PaginatedSearch owns the search lifecycle of one element instance: it
// validates required parameters, invokes the search function, applies only
// the most recent invocation's outcome and mirrors query and page into its
// Location.
//
// Outcomes are ordered by submission. Each invocation receives a fresh
// context; starting a new one cancels the previous context and bumps a
// generation counter, so a superseded invocation can never write state even
// if its search function ignores cancellation and returns late.
type PaginatedSearch[Q, R any] struct {
	mu       sync.Mutex
	loc      Location
	required []string
	search   SearchFunc[Q, R]
	logger   *zap.Logger

	state  PageState[Q, R]
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// NewPaginatedSearch creates a controller in the Idle state. search may be
// nil and set later with SetSearchFunction.
func NewPaginatedSearch[Q, R any](loc Location, required []string, search SearchFunc[Q, R], opts ...ControllerOption) *PaginatedSearch[Q, R] {
	o := controllerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &PaginatedSearch[Q, R]{
		loc:      loc,
		required: slices.Clone(required),
		search:   search,
		logger:   o.logger,
		state:    PageState[Q, R]{Page: 1, Status: StatusIdle},
	}
}

// SetSearchFunction replaces the search function used by later invocations.
func (c *PaginatedSearch[Q, R]) SetSearchFunction(search SearchFunc[Q, R]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = search
}

// State returns a copy of the current page state.
func (c *PaginatedSearch[Q, R]) State() PageState[Q, R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Location returns the location the controller writes to.
func (c *PaginatedSearch[Q, R]) Location() Location {
	return c.loc
}

// Submit starts a new search for q at page 1. The query and page=1 are
// written to the location before the search function runs.
//
// Submit blocks until the invocation settles and returns the state at that
// point. The error is nil on success, ErrIncompleteQuery when a required
// parameter is empty (nothing happened), ErrSuperseded or ErrCanceled when
// the outcome was discarded, or a *SearchError when the search failed.
func (c *PaginatedSearch[Q, R]) Submit(ctx context.Context, q Q) (PageState[Q, R], error) {
	fields, err := EncodeFields(q)
	if err != nil {
		return c.State(), err
	}
	if !c.complete(fields) {
		return c.State(), ErrIncompleteQuery
	}

	return c.run(ctx, q, 1, fields)
}

// ChangePage searches page n of the current query. Only the page parameter
// of the location is written.
func (c *PaginatedSearch[Q, R]) ChangePage(ctx context.Context, n int) (PageState[Q, R], error) {
	if n < 1 {
		return c.State(), ErrInvalidPage
	}

	c.mu.Lock()
	q := c.state.Query
	c.mu.Unlock()

	fields, err := EncodeFields(q)
	if err != nil {
		return c.State(), err
	}
	if !c.complete(fields) {
		return c.State(), ErrIncompleteQuery
	}
	return c.run(ctx, q, n, nil)
}

// Attach performs the automatic initial search. When every required
// parameter is present in the location, the query is decoded from it and
// searched at the location's page (1 when absent or not a positive
// integer). started reports whether a search was issued.
func (c *PaginatedSearch[Q, R]) Attach(ctx context.Context) (started bool, err error) {
	var q Q
	names := FieldNames(q)
	for _, name := range c.required {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}

	params := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := c.loc.GetParameter(name); ok {
			params[name] = v
		}
	}
	if !c.complete(params) {
		return false, nil
	}
	if err := DecodeFields(params, &q); err != nil {
		return false, err
	}

	page := 1
	if v, ok := c.loc.GetParameter(PageParam); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}

	fields, err := EncodeFields(q)
	if err != nil {
		return false, err
	}
	_, err = c.run(ctx, q, page, fields)
	return true, err
}

// Close cancels the in-flight invocation, if any. Later calls return
// ErrClosed.
func (c *PaginatedSearch[Q, R]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *PaginatedSearch[Q, R]) complete(fields map[string]string) bool {
	for _, name := range c.required {
		if fields[name] == "" {
			return false
		}
	}
	return true
}

// run applies one invocation. fields, when non-nil, are written to the
// location ahead of the page so new parameters read query first.
func (c *PaginatedSearch[Q, R]) run(ctx context.Context, q Q, page int, fields map[string]string) (PageState[Q, R], error) {
	c.mu.Lock()
	if c.closed {
		defer c.mu.Unlock()
		return c.state.clone(), ErrClosed
	}
	search := c.search
	if search == nil {
		defer c.mu.Unlock()
		return c.state.clone(), ErrNoSearchFunction
	}

	if raw := browserURLFrom(ctx); raw != "" {
		if loc, ok := c.loc.(interface{ Reset(string) }); ok {
			loc.Reset(raw)
		}
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	sctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.state.Query = q
	c.state.Page = page
	c.state.Status = StatusLoading
	// Written under c.mu so location writes follow submission order.
	if fields != nil {
		c.loc.SetParameters(fields)
	}
	c.loc.SetParameters(map[string]string{PageParam: strconv.Itoa(page)})
	c.mu.Unlock()

	opts := SearchOptions{ID: uuid.New()}
	log := c.logger.With(
		zap.String("search_id", opts.ID.String()),
		zap.Int("page", page),
		zap.Uint64("generation", gen),
	)
	log.Debug("search started")

	results, err := invoke(sctx, search, q, page, opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	canceled := errors.Is(sctx.Err(), context.Canceled)
	cancel()

	if gen != c.gen {
		log.Debug("search superseded")
		return c.state.clone(), ErrSuperseded
	}
	c.cancel = nil

	if canceled {
		log.Debug("search canceled")
		return c.state.clone(), ErrCanceled
	}
	if err != nil {
		c.state.Status = StatusError
		c.state.ErrorDetail = err.Error()
		c.state.Results = nil
		log.Warn("search failed", zap.Error(err))
		return c.state.clone(), &SearchError{Err: err}
	}

	c.state.Status = StatusSuccess
	c.state.ErrorDetail = ""
	c.state.Results = results
	log.Debug("search succeeded", zap.Int("results", len(results)))
	return c.state.clone(), nil
}

func invoke[Q, R any](ctx context.Context, search SearchFunc[Q, R], q Q, page int, opts SearchOptions) (results []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search function panicked: %v", r)
		}
	}()
	return search(ctx, q, page, opts)
}
