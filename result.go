package hxsearch

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// URLSyncEvent is fired after settle whenever an element changed the browser
// URL, so other URL-bound parts of the page can re-read it.
const URLSyncEvent = "url:sync"

// Result describes an element response: the body to swap in plus the HTMX
// headers and toasts that accompany it.
//
//	return hxsearch.OK(body).
//	    PushURL(loc.URL()).
//	    TriggerURLSync().
//	    Flash(hxsearch.FlashError, "Search failed")
type Result struct {
	body               templ.Component
	flashes            []Flash
	pushURL            string
	triggerAfterSettle string
	noContent          bool
}

// OK creates a result that renders body.
func OK(body templ.Component) Result {
	return Result{body: body}
}

// NoContent creates a 204 result. HTMX leaves the page untouched.
func NoContent() Result {
	return Result{noContent: true}
}

// Flash adds a toast notification.
func (r Result) Flash(level, message string) Result {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// PushURL pushes u onto the browser history via HX-Push-Url. The page is
// not reloaded.
func (r Result) PushURL(u string) Result {
	r.pushURL = u
	return r
}

// TriggerURLSync fires URLSyncEvent after the swap settles, once the pushed
// URL is in place.
func (r Result) TriggerURLSync() Result {
	r.triggerAfterSettle = URLSyncEvent
	return r
}

// Write renders the result to w. The body is rendered into a buffer first
// so a render error leaves w untouched for the caller's error handler.
func (r Result) Write(ctx context.Context, w http.ResponseWriter) error {
	if r.noContent {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	var buf bytes.Buffer
	if r.body != nil {
		if err := r.body.Render(ctx, &buf); err != nil {
			return err
		}
	}
	buf.WriteString(RenderFlashesOOB(r.flashes))

	if r.pushURL != "" {
		w.Header().Set("HX-Push-Url", r.pushURL)
	}
	if r.triggerAfterSettle != "" {
		w.Header().Set("HX-Trigger-After-Settle", r.triggerAfterSettle)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := io.Copy(w, &buf)
	return err
}
