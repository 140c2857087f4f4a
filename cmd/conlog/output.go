package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// column describes one table column. width caps the column; 0 leaves it
// unbounded.
type column struct {
	header string
	right  bool
	width  int
}

// tableView is a go-pretty table built from plain strings. Rows shorter than
// the column list are padded.
type tableView struct {
	title   string
	columns []column
	rows    [][]string
	// countLabel, when set, adds a footer like "3 sessions".
	countLabel string
}

func (v tableView) render(colour bool) string {
	if len(v.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	style := table.StyleRounded
	if colour {
		style.Color.Header = text.Colors{text.Bold}
		style.Color.Footer = text.Colors{text.Faint}
	}
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	if v.title != "" {
		tw.SetTitle(v.title)
	}

	header := make(table.Row, len(v.columns))
	configs := make([]table.ColumnConfig, len(v.columns))
	for i, c := range v.columns {
		header[i] = c.header
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    c.width,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range v.rows {
		r := make(table.Row, len(v.columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	if v.countLabel != "" {
		footer := make(table.Row, len(v.columns))
		footer[0] = strconv.Itoa(len(v.rows)) + " " + v.countLabel
		tw.AppendFooter(footer)
	}

	return tw.Render()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// writeTable prints v followed by a newline.
func writeTable(cmd *cobra.Command, v tableView, colour bool) {
	fmt.Fprintln(cmd.OutOrStdout(), v.render(colour))
}
