package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Column widths of the fixed-width issue table.
const (
	tableValidatorWidth = 16
	tableMessageWidth   = 44
	tableFileWidth      = 29
	tableUnitWidth      = 16
	tableTextWidth      = 40
)

var tableHeader = []string{"Validator", "Message", "File", "Line", "Columns", "Unit ID", "Problem Text"}

// WriteTable renders the issues as an ASCII table. The offending span of the
// problem text is wrapped in >>> and <<< markers.
func (r *Report) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(tableHeader)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(false)

	for _, i := range r.Issues {
		table.Append(issueRow(i, tableTextWidth, true))
	}
	table.Render()

	if r.IsValid() {
		fmt.Fprintln(w, "No issues found.")
	}
}

func issueRow(i Issue, textWidth int, truncate bool) []string {
	snip, cs, ce := Snippet(i.Text, i.ColumnStart, i.ColumnEnd, textWidth)
	text := ""
	if snip != "" {
		text = Highlight(snip, cs, ce)
	}
	row := []string{
		i.Validator,
		i.Message,
		i.Filename,
		strconv.Itoa(i.Line),
		fmt.Sprintf("%d-%d", i.ColumnStart, i.ColumnEnd),
		i.UnitID,
		text,
	}
	if truncate {
		row[0] = truncateRunes(row[0], tableValidatorWidth)
		row[1] = truncateRunes(row[1], tableMessageWidth)
		row[2] = truncateRunes(row[2], tableFileWidth)
		row[5] = truncateRunes(row[5], tableUnitWidth)
	}
	return row
}

func truncateRunes(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return string(runes[:width])
	}
	return strings.TrimRight(string(runes[:width-len(ellipsis)]), " ") + ellipsis
}
