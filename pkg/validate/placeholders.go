package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

var javaPlaceholderRe = regexp.MustCompile(`\{\d+\}`)

// checkJavaPlaceholders compares the per-token counts of positional
// placeholders such as {0} between each source and its target. Order is
// irrelevant.
func checkJavaPlaceholders(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "Java Placeholder"
	if issues := treeRequired(doc, v); issues != nil {
		return issues
	}
	var issues []report.Issue
	for _, u := range doc.Units() {
		for _, seg := range u.Segments {
			if seg.Source == nil || seg.Target == nil {
				continue
			}
			src := placeholderCounts(seg.Source.Node.InnerText())
			tgt := placeholderCounts(seg.Target.Node.InnerText())
			bad := firstMismatch(src, tgt)
			if bad == "" {
				continue
			}

			i := nodeIssue(doc, v, report.Placeholder, seg.Target.Node, u.ID,
				fmt.Sprintf("Placeholder mismatch for %s: source %s, target %s", bad, formatCounts(src), formatCounts(tgt)))
			if k := strings.Index(i.Text, bad); k >= 0 {
				i.ColumnStart = runeIndex(i.Text, k)
				i.ColumnEnd = i.ColumnStart + len(bad) - 1
			}
			issues = append(issues, i)
		}
	}
	return issues
}

func placeholderCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range javaPlaceholderRe.FindAllString(text, -1) {
		counts[tok]++
	}
	return counts
}

// firstMismatch returns the lexically smallest token whose counts differ,
// or "".
func firstMismatch(a, b map[string]int) string {
	var bad []string
	for tok, n := range a {
		if b[tok] != n {
			bad = append(bad, tok)
		}
	}
	for tok, n := range b {
		if a[tok] != n {
			bad = append(bad, tok)
		}
	}
	if len(bad) == 0 {
		return ""
	}
	sort.Strings(bad)
	return bad[0]
}

func formatCounts(counts map[string]int) string {
	toks := make([]string, 0, len(counts))
	for tok := range counts {
		toks = append(toks, tok)
	}
	sort.Strings(toks)
	parts := make([]string, len(toks))
	for i, tok := range toks {
		parts[i] = fmt.Sprintf("%s:%d", tok, counts[tok])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
