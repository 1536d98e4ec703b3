package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// ExpectedDeclaration is the only accepted first line.
const ExpectedDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

var namespacePrefixRe = regexp.MustCompile(`</?([a-zA-Z0-9]+):[a-zA-Z0-9]+`)

// checkBOM requires the UTF-8 byte-order mark and tells a wrong mark
// apart from a missing one.
func checkBOM(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "UTF-8 BOM"
	var msg string
	switch doc.BOM {
	case xliff.BOMUTF8:
		return nil
	case xliff.NoBOM:
		msg = "Missing UTF-8 BOM at start of file"
	default:
		msg = fmt.Sprintf("Invalid BOM: file appears to be %s encoded.", doc.BOM)
	}
	i := issue(doc, v, report.Encoding, 1, 1, 1, "", msg)
	i.Text = "(file start)"
	return []report.Issue{i}
}

// checkDeclaration requires the exact XML declaration on line 1.
func checkDeclaration(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "XML Declaration"
	first := strings.TrimSpace(doc.Line(1))
	if !strings.HasPrefix(first, "<?xml") {
		return []report.Issue{issue(doc, v, report.Encoding, 1, 1, 1, "", "Missing XML declaration at the top of file.")}
	}
	if first != ExpectedDeclaration {
		line := doc.Line(1)
		start := strings.Index(line, "<?xml")
		end := strings.Index(line, "?>")
		if end < 0 {
			end = len(line) - 2
		}
		return []report.Issue{issue(doc, v, report.Encoding, 1, runeIndex(line, start), runeIndex(line, end+2)-1, "",
			"Invalid XML declaration. Expected: "+ExpectedDeclaration)}
	}
	return nil
}

// checkNamespacePrefixes rejects prefixed element names such as <ns0:unit>.
// Only the first occurrence is reported.
func checkNamespacePrefixes(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "XML Namespace Prefixes"
	for n := range doc.Lines {
		line := doc.Line(n + 1)
		m := namespacePrefixRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		prefix := line[m[2]:m[3]]
		col := runeIndex(line, m[2])
		return []report.Issue{issue(doc, v, report.Encoding, n+1, col, col+len([]rune(prefix)), doc.UnitAt(n+1),
			fmt.Sprintf("Namespace prefix '%s:' is not allowed. Remove namespace prefixing from elements.", prefix))}
	}
	return nil
}
