package elements

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/pthm/hxsearch"
)

type field struct {
	name        string
	placeholder string
}

// searchForm renders the fieldset every element uses: a legend, one text
// input per field pre-filled from the query string, and a submit button.
func searchForm(f hxsearch.FormContext, legend, button string, fields ...field) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<form` + f.Attrs() + `>`)
		sb.WriteString(`<fieldset class="uk-fieldset">`)
		sb.WriteString(`<legend class="uk-legend">` + html.EscapeString(legend) + `</legend>`)
		for _, fd := range fields {
			sb.WriteString(`<div class="uk-margin">`)
			sb.WriteString(`<input name="` + html.EscapeString(fd.name) + `" class="uk-input" type="text"`)
			sb.WriteString(` placeholder="` + html.EscapeString(fd.placeholder) + `"`)
			sb.WriteString(` aria-label="` + html.EscapeString(fd.placeholder) + `"`)
			sb.WriteString(` value="` + html.EscapeString(f.Value(fd.name)) + `">`)
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`<div class="uk-margin">`)
		sb.WriteString(`<button type="submit" class="uk-button uk-button-primary">` + html.EscapeString(button) + `</button>`)
		sb.WriteString(`</div></fieldset></form>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
