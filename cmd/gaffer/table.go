package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable renders headers and rows with the shared rounded style. Short
// rows are padded to the header width so ragged data cannot shift columns.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range configs {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		}
		if i < len(aligns) && aligns[i] == alignRight {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
