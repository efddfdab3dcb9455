package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of a rendered table.
type tableColumn struct {
	Header string
	Align  text.Align
	// MaxWidth soft-wraps longer cells; zero leaves the column unbounded.
	MaxWidth int
}

var (
	reportColumns = []tableColumn{
		{Header: "Image", MaxWidth: 40},
		{Header: "Status"},
		{Header: "Serial"},
		{Header: "Region"},
		{Header: "Source"},
		{Header: "Title", MaxWidth: 48},
	}
	statsColumns = []tableColumn{
		{Header: "Region"},
		{Header: "Entries", Align: text.AlignRight},
		{Header: "File"},
	}
)

// renderTable draws rows under columns. A non-empty footer is drawn below a
// separator with the same column alignment as the body.
func renderTable(columns []tableColumn, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault

	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(tableRow(columns, headers(columns)))
	for _, row := range rows {
		tw.AppendRow(tableRow(columns, row))
	}
	if len(footer) > 0 {
		tw.AppendFooter(tableRow(columns, footer))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       col.Align,
			AlignFooter: col.Align,
			AlignHeader: text.AlignLeft,
		}
		if col.MaxWidth > 0 {
			configs[i].WidthMax = col.MaxWidth
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func headers(columns []tableColumn) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.Header
	}
	return out
}

// tableRow pads or truncates cells to the column count.
func tableRow(columns []tableColumn, cells []string) table.Row {
	row := make(table.Row, len(columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
