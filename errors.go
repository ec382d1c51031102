package hxsearch

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsearch/lib/encoding"
)

// Sentinel errors for element and controller operations.
var (
	ErrNotFound         = errors.New("hxsearch: element not found")
	ErrSignatureInvalid = errors.New("hxsearch: signature verification failed")
	ErrInvalidFormat    = errors.New("hxsearch: invalid parameter format")

	// ErrIncompleteQuery means a required query-string parameter was missing
	// or empty. The search was skipped; it is not a user-facing error.
	ErrIncompleteQuery = errors.New("hxsearch: required query parameters missing")

	// ErrSuperseded means a newer search on the same controller replaced this
	// one. Its result was discarded.
	ErrSuperseded = errors.New("hxsearch: search superseded")

	// ErrCanceled means the search context was canceled by the caller or by
	// Close before the search function returned.
	ErrCanceled = errors.New("hxsearch: search canceled")

	ErrClosed           = errors.New("hxsearch: controller closed")
	ErrInvalidPage      = errors.New("hxsearch: page must be a positive integer")
	ErrNoSearchFunction = errors.New("hxsearch: no search function configured")
)

// SearchError wraps a failure returned by an injected search function.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("hxsearch: search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecodeError checks if err came from rejecting a props payload.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrSignatureInvalid) || errors.Is(err, ErrInvalidFormat)
}

// IsSearchFailure reports whether err is a search function failure, the only
// kind of error that is shown to the user.
func IsSearchFailure(err error) bool {
	var se *SearchError
	return errors.As(err, &se)
}

// IsDiscarded reports whether err marks a search that ended without
// touching the page state: skipped for missing parameters, superseded or
// canceled.
func IsDiscarded(err error) bool {
	return errors.Is(err, ErrIncompleteQuery) ||
		errors.Is(err, ErrSuperseded) ||
		errors.Is(err, ErrCanceled)
}

// WrapDecodeError maps encoding package errors onto hxsearch sentinels.
func WrapDecodeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, encoding.ErrInvalidFormat):
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return err
}

// ErrorComponent renders a search failure message inside an element.
func ErrorComponent(detail string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="hxsearch-error uk-alert uk-alert-danger" role="alert">Search failed: `+
			html.EscapeString(detail)+`</div>`)
		return err
	})
}
