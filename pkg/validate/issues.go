package validate

import (
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// issue builds an issue quoting line of doc.
func issue(doc *xliff.Document, validator string, cat report.Category, line, colStart, colEnd int, unitID, msg string) report.Issue {
	if line < 1 {
		line = 1
	}
	if colStart < 1 {
		colStart = 1
	}
	if colEnd < colStart {
		colEnd = colStart
	}
	return report.Issue{
		Validator:   validator,
		Category:    cat,
		Message:     msg,
		Filename:    doc.Name,
		Line:        line,
		ColumnStart: colStart,
		ColumnEnd:   colEnd,
		UnitID:      unitID,
		Text:        doc.Line(line),
	}
}

// nodeIssue builds an issue pointing at the start tag of n. The column range
// covers the tag name.
func nodeIssue(doc *xliff.Document, validator string, cat report.Category, n *xmlquery.Node, unitID, msg string) report.Issue {
	line, col := doc.LineOf(n), 1
	if span, ok := doc.Span(n); ok {
		col = span.Column
	}
	return issue(doc, validator, cat, line, col, col+utf8.RuneCountInString(n.Data), unitID, msg)
}

// attrIssue points at attribute attr of n when it is written on the line of
// the start tag, and at the tag name otherwise.
func attrIssue(doc *xliff.Document, validator string, cat report.Category, n *xmlquery.Node, attr, unitID, msg string) report.Issue {
	i := nodeIssue(doc, validator, cat, n, unitID, msg)
	span, ok := doc.Span(n)
	if !ok {
		return i
	}
	line := doc.Line(span.Line)
	from := byteIndex(line, span.Column)
	if m := attrPattern(attr).FindStringSubmatchIndex(line[from:]); m != nil {
		i.ColumnStart = runeIndex(line, from+m[2])
		i.ColumnEnd = runeIndex(line, from+m[3]) - 1
	}
	return i
}

var attrPatterns sync.Map // attribute name -> *regexp.Regexp

// attrPattern returns the compiled pattern locating attr in a start tag.
func attrPattern(attr string) *regexp.Regexp {
	if re, ok := attrPatterns.Load(attr); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := attrPatterns.LoadOrStore(attr, regexp.MustCompile(`\s(`+regexp.QuoteMeta(attr)+`)\s*=`))
	return re.(*regexp.Regexp)
}

// treeRequired returns the single diagnostic a tree-based check reports
// when the document could not be parsed, or nil when the tree is available.
func treeRequired(doc *xliff.Document, validator string) []report.Issue {
	if doc.Root != nil {
		return nil
	}
	line, col := 1, 1
	if doc.ParseErr != nil {
		line, col = doc.ParseErr.Line, doc.ParseErr.Column
	}
	return []report.Issue{issue(doc, validator, report.Malformed, line, col, col, "",
		"Document is not well-formed XML; check skipped")}
}

// lineUnit returns the id of the unit enclosing n, or "".
func lineUnit(doc *xliff.Document, n *xmlquery.Node) string {
	for p := n; p != nil; p = p.Parent {
		if p.Type == xmlquery.ElementNode && p.Data == "unit" {
			return p.SelectAttr("id")
		}
	}
	return doc.UnitAt(doc.LineOf(n))
}

// byteIndex converts a 1-based character column to a byte index in s.
func byteIndex(s string, col int) int {
	for i := range s {
		if col <= 1 {
			return i
		}
		col--
	}
	return len(s)
}

// runeIndex converts a byte index in s to a 1-based character column.
func runeIndex(s string, byteIdx int) int {
	return utf8.RuneCountInString(s[:byteIdx]) + 1
}
