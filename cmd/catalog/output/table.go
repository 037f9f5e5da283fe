package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable writes headers and rows to w as a light-bordered table with a
// row count footer.
func RenderTable(w io.Writer, headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(rows))})

	t.Render()
}
