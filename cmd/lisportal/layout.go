package main

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"
	"github.com/pthm/hxsearch"
	"github.com/pthm/hxsearch/elements"
)

type page struct {
	Path  string
	Title string
	Tag   string
}

var pages = []page{
	{Path: "/gwas", Title: "GWAS", Tag: elements.GWASSearchTag},
	{Path: "/genes", Title: "Genes", Tag: elements.GeneSearchTag},
	{Path: "/mines", Title: "Mines", Tag: elements.MineWebPropertiesTag},
}

// layout wraps an element placeholder in the portal chrome. The share link
// starts at the requested URI and follows url:sync as elements push new
// query strings.
func layout(current page, uri string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<title>`+html.EscapeString(current.Title)+` | LIS portal</title>`+
			`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uikit@3.21.6/dist/css/uikit.min.css">`+
			`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`+
			`</head><body><nav class="uk-navbar-container"><ul class="uk-navbar-nav">`); err != nil {
			return err
		}
		for _, p := range pages {
			class := ""
			if p.Path == current.Path {
				class = ` class="uk-active"`
			}
			if _, err := io.WriteString(w, `<li`+class+`><a href="`+html.EscapeString(p.Path)+`">`+html.EscapeString(p.Title)+`</a></li>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul></nav><main class="uk-container uk-margin">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<p class="uk-text-small"><a id="share-link" href="`+html.EscapeString(uri)+`">Link to this search</a></p></main>`); err != nil {
			return err
		}
		if err := hxsearch.ToastContainer().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<script>htmx.on("htmx:oobAfterSwap", function (evt) {`+
			`evt.detail.target.querySelectorAll(".toast[data-auto-dismiss]").forEach(function (t) {`+
			`setTimeout(function () { t.remove(); }, Number(t.dataset.autoDismiss)); }); });`+
			`htmx.on("`+hxsearch.URLSyncEvent+`", function () {`+
			`document.getElementById("share-link").href = window.location.pathname + window.location.search; });</script>`+
			`</body></html>`)
		return err
	})
}

func loading() templ.Component {
	return templ.Raw(`<div class="uk-text-muted">Loading&hellip;</div>`)
}
