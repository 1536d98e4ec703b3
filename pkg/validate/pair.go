package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// checkPairFormatting compares the translated file line by line with its
// master using the same rules as the source/target comparison.
func checkPairFormatting(master, translated *xliff.Document, _ *Options) []report.Issue {
	const v = "File Pair Formatting"
	var issues []report.Issue
	for _, d := range CompareFormatLines(documentLines(master), documentLines(translated)) {
		line := d.Index + 1
		issues = append(issues, issue(translated, v, report.Formatting, line, d.ColumnStart, d.ColumnEnd,
			translated.UnitAt(line), d.Message))
	}
	return issues
}

func documentLines(doc *xliff.Document) []string {
	lines := make([]string, len(doc.Lines))
	for i := range lines {
		lines[i] = doc.Line(i + 1)
	}
	return lines
}

// checkPairUnits requires the translated file to list the same units as
// its master in the same order. Missing and extra units are reported one
// by one; when membership matches, the first misplaced unit is reported.
func checkPairUnits(master, translated *xliff.Document, _ *Options) []report.Issue {
	const v = "File Pair Units"
	if issues := pairTreeRequired(master, translated, v); issues != nil {
		return issues
	}
	want := master.Units()
	got := translated.Units()
	inMaster := make(map[string]bool, len(want))
	for _, u := range want {
		inMaster[u.ID] = true
	}
	inTranslated := make(map[string]bool, len(got))
	for _, u := range got {
		inTranslated[u.ID] = true
	}

	var issues []report.Issue
	for _, u := range want {
		if !inTranslated[u.ID] {
			issues = append(issues, nodeIssue(translated, v, report.Formatting, translated.RootElement(), u.ID,
				fmt.Sprintf("Unit '%s' of %s is missing", u.ID, master.Name)))
		}
	}
	for _, u := range got {
		if !inMaster[u.ID] {
			issues = append(issues, attrIssue(translated, v, report.Formatting, u.Node, "id", u.ID,
				fmt.Sprintf("Unit '%s' does not exist in %s", u.ID, master.Name)))
		}
	}
	if len(issues) > 0 {
		return issues
	}

	for i := range min(len(want), len(got)) {
		if want[i].ID != got[i].ID {
			return []report.Issue{attrIssue(translated, v, report.Formatting, got[i].Node, "id", got[i].ID,
				fmt.Sprintf("Unit '%s' is out of order: position %d holds '%s' in %s", got[i].ID, i+1, want[i].ID, master.Name))}
		}
	}
	return nil
}

// canonLine is one line of the canonical structure listing of a document.
type canonLine struct {
	text string
	node *xmlquery.Node
}

// canonicalStructure lists elements with sorted attributes and text,
// indented by depth. The trgLang of the root, segment states, text inside
// targets and value elements, and whitespace-only text are left out.
func canonicalStructure(doc *xliff.Document) []canonLine {
	var lines []canonLine
	var walk func(n *xmlquery.Node, depth int, skipText bool)
	walk = func(n *xmlquery.Node, depth int, skipText bool) {
		indent := strings.Repeat("  ", depth)
		var attrs []string
		for _, a := range n.Attr {
			name := a.Name.Local
			if a.Name.Space != "" {
				name = a.Name.Space + ":" + name
			}
			if (depth == 0 && name == "trgLang") || (n.Data == "segment" && name == "state") {
				continue
			}
			attrs = append(attrs, fmt.Sprintf(" %s=%q", name, a.Value))
		}
		sort.Strings(attrs)
		lines = append(lines, canonLine{text: indent + "<" + n.Data + strings.Join(attrs, "") + ">", node: n})

		skipText = skipText || n.Data == "target" || n.Data == "value"
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.ElementNode:
				walk(c, depth+1, skipText)
			case xmlquery.TextNode, xmlquery.CharDataNode:
				text := strings.TrimSpace(c.Data)
				if skipText || text == "" {
					continue
				}
				lines = append(lines, canonLine{text: indent + "  " + fmt.Sprintf("%q", text), node: n})
			}
		}
	}
	walk(doc.RootElement(), 0, false)
	return lines
}

// checkPairStructure requires both documents to have the same elements,
// attributes and text outside targets and value elements. The first
// difference is reported with a unified diff of the canonical listings.
func checkPairStructure(master, translated *xliff.Document, opts *Options) []report.Issue {
	const v = "File Pair Structure"
	if issues := pairTreeRequired(master, translated, v); issues != nil {
		return issues
	}
	want := canonicalStructure(master)
	got := canonicalStructure(translated)

	i := 0
	for i < len(want) && i < len(got) && want[i].text == got[i].text {
		i++
	}
	if i == len(want) && i == len(got) {
		return nil
	}

	expected, found := "end of document", "end of document"
	if i < len(want) {
		expected = strings.TrimSpace(want[i].text)
	}
	node := got[len(got)-1].node
	if i < len(got) {
		found = strings.TrimSpace(got[i].text)
		node = got[i].node
	}
	is := nodeIssue(translated, v, report.Formatting, node, lineUnit(translated, node),
		fmt.Sprintf("Structure differs from %s: expected %s, found %s", master.Name, expected, found))
	is.Detail = structureDiff(master.Name, translated.Name, want, got, opts.MaxDiffLines)
	return []report.Issue{is}
}

func structureDiff(from, to string, a, b []canonLine, limit int) string {
	text := func(lines []canonLine) []string {
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = l.text + "\n"
		}
		return out
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        text(a),
		B:        text(b),
		FromFile: from,
		ToFile:   to,
		Context:  2,
	})
	if err != nil {
		return ""
	}
	lines := strings.SplitAfter(strings.TrimRight(diff, "\n"), "\n")
	if len(lines) <= limit {
		return strings.Join(lines, "")
	}
	return strings.Join(lines[:limit], "") + fmt.Sprintf("... %d more diff lines", len(lines)-limit)
}

func pairTreeRequired(master, translated *xliff.Document, validator string) []report.Issue {
	if issues := treeRequired(master, validator); issues != nil {
		return issues
	}
	return treeRequired(translated, validator)
}
