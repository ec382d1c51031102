package hxsearch

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// LocationChange describes a write to a Location that altered at least one
// parameter.
type LocationChange struct {
	Names []string // changed parameter names, sorted
	URL   string   // path and query after the write
}

// Location is read/write access to the query string of the page an element
// lives on.
//
// Implementations must serialize writes. SetParameters merges: each named
// entry is replaced, an empty value removes the entry, and parameters not
// named are left untouched. Listeners run after the write completes and must
// not call back into a controller synchronously.
type Location interface {
	GetParameter(name string) (string, bool)
	SetParameters(params map[string]string)
	Subscribe(fn func(LocationChange)) (unsubscribe func())
}

// URLLocation is an in-memory Location built from a browser URL, usually the
// HX-Current-URL header of an HTMX request. Its URL method yields the value
// for HX-Push-Url after the controller has written to it.
type URLLocation struct {
	mu        sync.Mutex
	path      string
	keys      []string
	values    map[string]string
	listeners map[int]func(LocationChange)
	nextID    int
}

// NewURLLocation parses raw. A malformed URL or query pair degrades to an
// absent parameter; it is never an error.
func NewURLLocation(raw string) *URLLocation {
	l := &URLLocation{listeners: make(map[int]func(LocationChange))}
	l.path, l.keys, l.values = parseLocation(raw)
	return l
}

// Reset replaces the location with raw without notifying listeners. Use it
// when the browser reports a URL that may have moved on (back/forward
// navigation, another element writing its own parameters).
func (l *URLLocation) Reset(raw string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path, l.keys, l.values = parseLocation(raw)
}

// GetParameter returns the value of name and whether it is present.
func (l *URLLocation) GetParameter(name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.values[name]
	return v, ok
}

// SetParameters merges params into the location. New names are appended in
// sorted order so the resulting URL is deterministic.
func (l *URLLocation) SetParameters(params map[string]string) {
	names := make([]string, 0, len(params))
	for name := range params {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	l.mu.Lock()
	var changed []string
	for _, name := range names {
		value := params[name]
		old, present := l.values[name]
		switch {
		case value == "" && present:
			delete(l.values, name)
			l.keys = removeKey(l.keys, name)
		case value == "":
			continue
		case !present:
			l.values[name] = value
			l.keys = append(l.keys, name)
		case old != value:
			l.values[name] = value
		default:
			continue
		}
		changed = append(changed, name)
	}
	if len(changed) == 0 {
		l.mu.Unlock()
		return
	}
	change := LocationChange{Names: changed, URL: l.urlLocked()}
	listeners := make([]func(LocationChange), 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}

// Subscribe registers fn for change notifications.
func (l *URLLocation) Subscribe(fn func(LocationChange)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

// URL returns the path and query string.
func (l *URLLocation) URL() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.urlLocked()
}

// Query returns the encoded query string without the leading "?".
func (l *URLLocation) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.queryLocked()
}

func (l *URLLocation) urlLocked() string {
	q := l.queryLocked()
	if q == "" {
		return l.path
	}
	return l.path + "?" + q
}

func (l *URLLocation) queryLocked() string {
	var sb strings.Builder
	for i, k := range l.keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(l.values[k]))
	}
	return sb.String()
}

// parseLocation keeps the first value of every well-formed pair in the order
// it appears.
func parseLocation(raw string) (string, []string, map[string]string) {
	values := make(map[string]string)
	path := "/"

	u, err := url.Parse(raw)
	if err != nil {
		return path, nil, values
	}
	if u.Path != "" {
		path = u.EscapedPath()
	}

	var keys []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || key == "" {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		if _, seen := values[key]; seen {
			continue
		}
		values[key] = value
		keys = append(keys, key)
	}
	return path, keys, values
}

func removeKey(keys []string, name string) []string {
	for i, k := range keys {
		if k == name {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
