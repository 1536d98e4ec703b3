package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// FileResult is the outcome for one validated file or file pair, used for the
// summary section of the Markdown report.
type FileResult struct {
	Name   string
	Issues int
}

// WriteMarkdown writes a Markdown document with a per-file summary table, an
// issue table and a highlighted snippet for every issue that quotes a line.
func (r *Report) WriteMarkdown(w io.Writer, title string) {
	fmt.Fprintf(w, "# %s\n\n", title)

	fmt.Fprintln(w, "## Test Results")
	fmt.Fprintln(w)
	summary := markdownTable(w, []string{"File", "Result", "Issues"})
	for _, f := range r.fileResults() {
		result := "PASS"
		if f.Issues > 0 {
			result = "FAIL"
		}
		summary.Append([]string{mdEscape(f.Name), result, fmt.Sprint(f.Issues)})
	}
	summary.Render()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Validation Issues")
	fmt.Fprintln(w)
	if r.IsValid() {
		fmt.Fprintln(w, "No issues found.")
		return
	}
	issues := markdownTable(w, tableHeader)
	for _, i := range r.Issues {
		row := issueRow(i, tableTextWidth, false)
		for k := range row {
			row[k] = mdEscape(row[k])
		}
		row[6] = "`" + strings.ReplaceAll(row[6], "`", "'") + "`"
		issues.Append(row)
	}
	issues.Render()
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Highlighted Snippets")
	fmt.Fprintln(w)
	for n, i := range r.Issues {
		if i.Text == "" && i.Detail == "" {
			continue
		}
		fmt.Fprintf(w, "### %d. %s: %s (line %d)\n\n", n+1, i.Validator, i.Filename, i.Line)
		fmt.Fprintln(w, i.Message)
		fmt.Fprintln(w)
		if i.Text != "" {
			fmt.Fprintln(w, "```xml")
			fmt.Fprintln(w, Highlight(i.Text, i.ColumnStart, i.ColumnEnd))
			fmt.Fprintln(w, "```")
			fmt.Fprintln(w)
		}
		if i.Detail != "" {
			fmt.Fprintln(w, "```diff")
			fmt.Fprint(w, strings.TrimRight(i.Detail, "\n")+"\n")
			fmt.Fprintln(w, "```")
			fmt.Fprintln(w)
		}
	}
}

func (r *Report) fileResults() []FileResult {
	counts := make(map[string]int)
	var names []string
	for _, f := range r.Files {
		if _, ok := counts[f]; !ok {
			counts[f] = 0
			names = append(names, f)
		}
	}
	for _, i := range r.Issues {
		if _, ok := counts[i.Filename]; !ok {
			names = append(names, i.Filename)
		}
		counts[i.Filename]++
	}
	sort.Strings(names)
	out := make([]FileResult, 0, len(names))
	for _, n := range names {
		out = append(out, FileResult{Name: n, Issues: counts[n]})
	}
	return out
}

func markdownTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	return table
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
