package hxsearch

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

// propsParam is the request parameter carrying signed element props.
const propsParam = "p"

// WireAttrs builds the HTMX request attributes for an element route.
//
// For GET, the signed props go in the URL query string (hx-get). For other
// methods they travel in hx-vals so they are posted alongside form fields.
//
//	WireAttrs("/_c/lis-gwas-search-element/page", http.MethodGet, encoded)
//	// hx-get="/_c/lis-gwas-search-element/page?p=..."
func WireAttrs(path, method, encoded string) templ.Attributes {
	attrs := templ.Attributes{}

	if method == http.MethodGet || method == "" {
		target := path
		if encoded != "" {
			target = path + "?" + propsParam + "=" + encoded
		}
		attrs["hx-get"] = target
		return attrs
	}

	attrs["hx-"+strings.ToLower(method)] = path
	if encoded != "" {
		data, _ := json.Marshal(map[string]string{propsParam: encoded})
		attrs["hx-vals"] = string(data)
	}
	return attrs
}

// renderAttrs writes attrs as ` key="value"` pairs in key order. Boolean
// true renders the bare key; false omits it.
func renderAttrs(attrs templ.Attributes) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case bool:
			if v {
				sb.WriteString(" " + html.EscapeString(k))
			}
		case string:
			fmt.Fprintf(&sb, ` %s="%s"`, html.EscapeString(k), html.EscapeString(v))
		default:
			fmt.Fprintf(&sb, ` %s="%s"`, html.EscapeString(k), html.EscapeString(fmt.Sprint(v)))
		}
	}
	return sb.String()
}
