package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

var leadingTagRe = regexp.MustCompile(`^</?\w+`)

// LineDiff is one formatting difference found by CompareFormatLines.
type LineDiff struct {
	// Index is the 0-based position of the differing line. A line-count
	// mismatch has Index 0.
	Index int

	// ColumnStart and ColumnEnd delimit the difference in the target line,
	// 1-based and inclusive.
	ColumnStart int
	ColumnEnd   int

	Message string
}

// CompareFormatLines compares two aligned line lists for formatting
// equivalence. The lists must have the same length; each line pair must
// share its leading and trailing whitespace and start with the same tag,
// where <source and <target (and </source and </target) count as the same
// tag. A whitespace difference suppresses the tag comparison for that line.
func CompareFormatLines(source, target []string) []LineDiff {
	if len(source) != len(target) {
		return []LineDiff{{
			ColumnStart: 1,
			ColumnEnd:   1,
			Message:     fmt.Sprintf("Mismatch in line count: source=%d lines, target=%d lines.", len(source), len(target)),
		}}
	}

	var diffs []LineDiff
	for j := range source {
		src, tgt := source[j], target[j]
		srcLead, srcBody, srcTrail := splitSpace(src)
		tgtLead, tgtBody, tgtTrail := splitSpace(tgt)

		if srcLead != tgtLead || srcTrail != tgtTrail {
			cs, ce := 1, max(utf8.RuneCountInString(tgtLead), 1)
			if srcLead == tgtLead {
				total := utf8.RuneCountInString(tgt)
				cs = max(total-utf8.RuneCountInString(tgtTrail)+1, 1)
				ce = max(total, cs)
			}
			diffs = append(diffs, LineDiff{
				Index:       j,
				ColumnStart: cs,
				ColumnEnd:   ce,
				Message:     fmt.Sprintf("Line %d has different whitespace formatting in target.", j+1),
			})
			continue
		}

		srcTag := leadingTagRe.FindString(srcBody)
		tgtTag := leadingTagRe.FindString(tgtBody)
		if srcTag == "" || tgtTag == "" || equivalentTags(srcTag, tgtTag) {
			continue
		}
		cs := utf8.RuneCountInString(tgtLead) + 1
		diffs = append(diffs, LineDiff{
			Index:       j,
			ColumnStart: cs,
			ColumnEnd:   cs + utf8.RuneCountInString(tgtTag) - 1,
			Message:     fmt.Sprintf("Line %d starts with different tag: source='%s', target='%s'", j+1, srcTag, tgtTag),
		})
	}
	return diffs
}

func equivalentTags(src, tgt string) bool {
	return src == tgt ||
		(src == "<source" && tgt == "<target") ||
		(src == "</source" && tgt == "</target")
}

// splitSpace splits s into leading whitespace, body and trailing whitespace.
func splitSpace(s string) (lead, body, trail string) {
	body = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(body)]
	trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
	return lead, trimmed, body[len(trimmed):]
}

// blockLines returns the whole lines an element occupies.
func blockLines(doc *xliff.Document, n *xmlquery.Node) (first int, lines []string) {
	span, ok := doc.Span(n)
	if !ok {
		return 0, nil
	}
	last := max(span.EndLine, span.Line)
	for ln := span.Line; ln <= last; ln++ {
		lines = append(lines, doc.Line(ln))
	}
	return span.Line, lines
}

// checkTargetFormat compares the line layout of every target with its
// source.
func checkTargetFormat(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "Target Format"
	if issues := treeRequired(doc, v); issues != nil {
		return issues
	}
	var issues []report.Issue
	for _, u := range doc.Units() {
		for _, seg := range u.Segments {
			if seg.Source == nil || seg.Target == nil {
				continue
			}
			_, src := blockLines(doc, seg.Source.Node)
			start, tgt := blockLines(doc, seg.Target.Node)
			for _, d := range CompareFormatLines(src, tgt) {
				issues = append(issues, issue(doc, v, report.Formatting, start+d.Index, d.ColumnStart, d.ColumnEnd, u.ID, d.Message))
			}
		}
	}
	return issues
}
