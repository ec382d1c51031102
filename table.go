package hxsearch

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Table is the presentational form of a result page: one header label per
// displayed attribute and one row of cells per record, in attribute order.
type Table struct {
	Header []string
	Rows   [][]string
}

// BuildTable lays out rows under attrs. A header uses labels[attr], falling
// back to the attribute name itself when no label is declared. A record
// without an attribute gets an empty cell. Nothing is sorted, filtered or
// modified.
func BuildTable[R any](attrs []string, labels map[string]string, rows []R) (Table, error) {
	t := Table{
		Header: make([]string, len(attrs)),
		Rows:   make([][]string, 0, len(rows)),
	}
	for i, attr := range attrs {
		if label, ok := labels[attr]; ok {
			t.Header[i] = label
		} else {
			t.Header[i] = attr
		}
	}

	for _, row := range rows {
		fields, err := ResultFields(row)
		if err != nil {
			return Table{}, err
		}
		cells := make([]string, len(attrs))
		for i, attr := range attrs {
			cells[i] = fields[attr]
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// TableComponent renders t as an HTML table.
func TableComponent(t Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<table class="uk-table uk-table-divider uk-table-small"><thead><tr>`)
		for _, h := range t.Header {
			sb.WriteString(`<th>`)
			sb.WriteString(html.EscapeString(h))
			sb.WriteString(`</th>`)
		}
		sb.WriteString(`</tr></thead><tbody>`)
		for _, row := range t.Rows {
			sb.WriteString(`<tr>`)
			for _, cell := range row {
				sb.WriteString(`<td>`)
				sb.WriteString(html.EscapeString(cell))
				sb.WriteString(`</td>`)
			}
			sb.WriteString(`</tr>`)
		}
		sb.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}
