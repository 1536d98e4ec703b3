package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// SnippetWidth is the width used when quoting offending lines.
const SnippetWidth = 100

var (
	spanColor   = color.New(color.FgRed, color.Bold)
	headerColor = color.New(color.FgYellow)
)

// WriteText writes human-readable validation output to w. The offending span
// of each quoted line is coloured when colour output is enabled.
func (r *Report) WriteText(w io.Writer) {
	for _, i := range r.Issues {
		fmt.Fprintln(w, headerColor.Sprint(i.String()))
		if i.Text != "" {
			snip, cs, ce := Snippet(i.Text, i.ColumnStart, i.ColumnEnd, SnippetWidth)
			fmt.Fprintf(w, "    %s\n", colorSpan(snip, cs, ce))
		}
		if i.Detail != "" {
			for _, line := range strings.Split(strings.TrimRight(i.Detail, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	if r.IsValid() {
		fmt.Fprintln(w, "No issues found.")
		return
	}
	files := make(map[string]bool)
	for _, i := range r.Issues {
		files[i.Filename] = true
	}
	fmt.Fprintf(w, "Validation finished. Issues: %d in %d file(s)\n", r.Count(), len(files))
}

func colorSpan(text string, colStart, colEnd int) string {
	runes := []rune(text)
	if len(runes) == 0 || color.NoColor {
		return text
	}
	colStart, colEnd = clampColumns(len(runes), colStart, colEnd)
	return string(runes[:colStart-1]) + spanColor.Sprint(string(runes[colStart-1:colEnd])) + string(runes[colEnd:])
}
