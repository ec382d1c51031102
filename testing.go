package hxsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// TestResult holds a recorded element response for assertions.
type TestResult struct {
	HTML         string
	StatusCode   int
	Headers      http.Header
	SettleEvents []string
	Flashes      []Flash
	PushURL      string
}

// TestRequestBuilder builds HTMX-style requests against an element handler.
//
//	result := hxsearch.NewTestRequest(http.MethodPost, "/_c/lis-gwas-search-element/search").
//	    WithFormData("query", "pod").
//	    WithCurrentURL("/gwas").
//	    Execute(reg.Handler())
type TestRequestBuilder struct {
	method   string
	url      string
	formData url.Values
	headers  map[string]string
	ctx      context.Context
}

// NewTestRequest creates a request builder. HX-Request is always set.
func NewTestRequest(method, target string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:   method,
		url:      target,
		formData: url.Values{},
		headers:  map[string]string{"HX-Request": "true"},
		ctx:      context.Background(),
	}
}

// WithFormData adds a form value to the request body.
func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.formData.Add(key, value)
	return b
}

// WithHeader sets a request header.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithCurrentURL sets HX-Current-URL, the browser location the element
// reads its query-string state from.
func (b *TestRequestBuilder) WithCurrentURL(u string) *TestRequestBuilder {
	return b.WithHeader("HX-Current-URL", u)
}

// WithContext sets the request context.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute serves the request with h and records the response.
func (b *TestRequestBuilder) Execute(h http.Handler) *TestResult {
	body := strings.NewReader(b.formData.Encode())
	req := httptest.NewRequest(b.method, b.url, body).WithContext(b.ctx)
	if len(b.formData) > 0 {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := &TestResult{
		HTML:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
		PushURL:    rec.Header().Get("HX-Push-Url"),
	}
	if settle := rec.Header().Get("HX-Trigger-After-Settle"); settle != "" {
		result.SettleEvents = parseTriggerHeader(settle)
	}
	result.Flashes = parseFlashesFromHTML(result.HTML)
	return result
}

// TestGet issues an HTMX GET request.
func TestGet(h http.Handler, target, currentURL string) *TestResult {
	return NewTestRequest(http.MethodGet, target).WithCurrentURL(currentURL).Execute(h)
}

// TestPost issues an HTMX POST request with form data.
func TestPost(h http.Handler, target, currentURL string, form map[string]string) *TestResult {
	b := NewTestRequest(http.MethodPost, target).WithCurrentURL(currentURL)
	for k, v := range form {
		b.WithFormData(k, v)
	}
	return b.Execute(h)
}

// Document parses the response body for selector-based assertions.
func (r *TestResult) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(r.HTML))
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HasEvent checks if an event was triggered after settle.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.SettleEvents {
		if e == event {
			return true
		}
	}
	return false
}

// HasFlashLevel checks if any flash message was set with the given level.
func (r *TestResult) HasFlashLevel(level string) bool {
	for _, f := range r.Flashes {
		if f.Level == level {
			return true
		}
	}
	return false
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// parseTriggerHeader extracts event names from an HX-Trigger-After-Settle
// value, either a comma-separated list or a JSON object keyed by event name.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	if strings.HasPrefix(trigger, "{") {
		var events []string
		depth := 0
		inString := false
		stringStart := -1

		for i := 0; i < len(trigger); i++ {
			c := trigger[i]
			if inString && c == '\\' && i+1 < len(trigger) {
				i++
				continue
			}
			switch {
			case c == '"' && !inString:
				inString = true
				stringStart = i + 1
			case c == '"':
				inString = false
				if depth != 1 {
					continue
				}
				j := i + 1
				for j < len(trigger) && (trigger[j] == ' ' || trigger[j] == '\t') {
					j++
				}
				if j < len(trigger) && trigger[j] == ':' {
					events = append(events, trigger[stringStart:i])
				}
			case !inString && c == '{':
				depth++
			case !inString && c == '}':
				depth--
			}
		}
		return events
	}

	var events []string
	for _, p := range strings.Split(trigger, ",") {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}

// parseFlashesFromHTML extracts toasts rendered by RenderFlashesOOB.
func parseFlashesFromHTML(html string) []Flash {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var flashes []Flash
	doc.Find("#toasts .toast").Each(func(_ int, s *goquery.Selection) {
		level, _ := s.Attr("data-level")
		flashes = append(flashes, Flash{Level: level, Message: s.Text()})
	})
	return flashes
}

// StubCall is one recorded invocation of a StubSearch.
type StubCall[Q, R any] struct {
	Ctx     context.Context
	Query   Q
	Page    int
	Options SearchOptions

	outcome chan stubOutcome[R]
}

type stubOutcome[R any] struct {
	results []R
	err     error
}

// Resolve completes a blocked call with results.
func (c *StubCall[Q, R]) Resolve(results []R) {
	c.outcome <- stubOutcome[R]{results: results}
}

// Reject completes a blocked call with an error.
func (c *StubCall[Q, R]) Reject(err error) {
	c.outcome <- stubOutcome[R]{err: err}
}

// StubSearch is a scriptable search function for tests. In immediate mode
// every call is answered by the answer function; in blocking mode each call
// waits for Resolve or Reject, which lets tests settle calls in any order.
type StubSearch[Q, R any] struct {
	// HonorCancel makes blocked calls return ctx.Err() when their context
	// is canceled.
	HonorCancel bool

	mu       sync.Mutex
	calls    []*StubCall[Q, R]
	started  chan *StubCall[Q, R]
	answer   func(q Q, page int) ([]R, error)
	blocking bool
}

// NewStubSearch answers every call immediately with answer.
func NewStubSearch[Q, R any](answer func(q Q, page int) ([]R, error)) *StubSearch[Q, R] {
	return &StubSearch[Q, R]{answer: answer, started: make(chan *StubCall[Q, R], 64)}
}

// NewBlockingStubSearch holds every call until the test settles it.
func NewBlockingStubSearch[Q, R any]() *StubSearch[Q, R] {
	return &StubSearch[Q, R]{blocking: true, started: make(chan *StubCall[Q, R], 64)}
}

// Func returns the search function to inject.
func (s *StubSearch[Q, R]) Func() SearchFunc[Q, R] {
	return func(ctx context.Context, q Q, page int, opts SearchOptions) ([]R, error) {
		call := &StubCall[Q, R]{
			Ctx:     ctx,
			Query:   q,
			Page:    page,
			Options: opts,
			outcome: make(chan stubOutcome[R], 1),
		}
		s.mu.Lock()
		s.calls = append(s.calls, call)
		s.mu.Unlock()
		select {
		case s.started <- call:
		default:
		}

		if !s.blocking {
			return s.answer(q, page)
		}
		if s.HonorCancel {
			select {
			case o := <-call.outcome:
				return o.results, o.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		o := <-call.outcome
		return o.results, o.err
	}
}

// Next waits for the next call to start. It returns nil after timeout.
func (s *StubSearch[Q, R]) Next(timeout time.Duration) *StubCall[Q, R] {
	select {
	case call := <-s.started:
		return call
	case <-time.After(timeout):
		return nil
	}
}

// Calls returns the calls recorded so far.
func (s *StubSearch[Q, R]) Calls() []*StubCall[Q, R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*StubCall[Q, R](nil), s.calls...)
}
