package hxsearch

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels for toast notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time notification shown next to an element response. A
// search failure produces an error flash in addition to the inline message.
type Flash struct {
	Level   string
	Message string
}

// RenderFlashesOOB renders flashes as an out-of-band swap appending to the
// #toasts container.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div id="toasts" hx-swap-oob="beforeend">`)
	for _, f := range flashes {
		level := html.EscapeString(f.Level)
		sb.WriteString(`<div class="toast toast-` + level + ` uk-alert ` + alertClass(f.Level) + `" role="alert"`)
		sb.WriteString(` data-level="` + level + `" data-auto-dismiss="5000">`)
		sb.WriteString(html.EscapeString(f.Message))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// alertClass maps a flash level to its UIkit alert modifier.
func alertClass(level string) string {
	switch level {
	case FlashSuccess:
		return "uk-alert-success"
	case FlashError:
		return "uk-alert-danger"
	case FlashWarning:
		return "uk-alert-warning"
	}
	return "uk-alert-primary"
}

// ToastContainer renders the container targeted by flash OOB swaps. Put it
// in the page layout once.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container" aria-live="polite"></div>`)
		return err
	})
}
