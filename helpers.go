package hxsearch

import (
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response. Use it for host
// pages; element routes render through Result.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// CurrentURL returns the browser's current URL from the HX-Current-URL
// header, or "" for non-HTMX requests.
func CurrentURL(r *http.Request) string {
	return r.Header.Get("HX-Current-URL")
}
