package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"stitch/internal/report"
)

// writeTable renders a table for a terminal, or tab-separated lines when
// output is redirected so results stay script-friendly.
func writeTable(w io.Writer, data report.Table) {
	if len(data.Rows) == 0 {
		fmt.Fprintf(w, "%s: none\n", data.Title)
		return
	}
	if data.Title != "" {
		fmt.Fprintln(w, data.Title)
	}
	if stdoutIsTerminal(w) {
		fmt.Fprintln(w, renderTable(data))
		return
	}
	fmt.Fprintln(w, strings.Join(data.Headers, "\t"))
	for _, row := range data.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

func stdoutIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func renderTable(data report.Table) string {
	columns := len(data.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = data.Headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range data.Rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	rightAligned := make(map[int]bool, len(data.RightAligned))
	for _, i := range data.RightAligned {
		rightAligned[i] = true
	}
	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if rightAligned[i] {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
