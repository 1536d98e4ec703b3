package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

var (
	rootTagRe  = regexp.MustCompile(`<xliff(\s|>|/|$)`)
	rootAttrRe = regexp.MustCompile(`([\w:.-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// rootAttr is an attribute of the <xliff> start tag with its position.
type rootAttr struct {
	name, value string
	line        int
	col, endCol int
	valueCol    int
}

// rootTag holds the <xliff> start tag, which may span several lines.
type rootTag struct {
	line, col int
	attrs     []rootAttr
}

func (t *rootTag) find(name string) (rootAttr, bool) {
	for _, a := range t.attrs {
		if a.name == name {
			return a, true
		}
	}
	return rootAttr{}, false
}

// findRootTag locates the first <xliff start tag in the raw lines and
// extracts its attributes.
func findRootTag(doc *xliff.Document) *rootTag {
	for n := range doc.Lines {
		line := doc.Line(n + 1)
		loc := rootTagRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		tag := &rootTag{line: n + 1, col: runeIndex(line, loc[0])}

		// collect the tag text up to the closing '>' outside quotes,
		// remembering where each source line starts in it
		type piece struct {
			line, offset int
			text         string
		}
		var pieces []piece
		var b strings.Builder
		var quote rune
		for ln, start := n+1, loc[0]; ln <= len(doc.Lines); ln, start = ln+1, 0 {
			text := doc.Line(ln)
			pieces = append(pieces, piece{line: ln, offset: b.Len() - start, text: text})
			end := -1
			for i, r := range text[start:] {
				if quote != 0 {
					if r == quote {
						quote = 0
					}
					continue
				}
				if r == '"' || r == '\'' {
					quote = r
					continue
				}
				if r == '>' {
					end = start + i + 1
					break
				}
			}
			if end >= 0 {
				b.WriteString(text[start:end])
				break
			}
			b.WriteString(text[start:])
			b.WriteByte('\n')
		}

		locate := func(k int) (int, int) {
			p := pieces[0]
			for _, q := range pieces {
				if q.offset <= k {
					p = q
				}
			}
			return p.line, runeIndex(p.text, min(k-p.offset, len(p.text)))
		}

		body := b.String()
		for _, m := range rootAttrRe.FindAllStringSubmatchIndex(body, -1) {
			a := rootAttr{name: body[m[2]:m[3]]}
			vs, ve := m[4], m[5]
			if vs < 0 {
				vs, ve = m[6], m[7]
			}
			a.value = body[vs:ve]
			a.line, a.col = locate(m[0])
			_, a.endCol = locate(m[1] - 1)
			_, a.valueCol = locate(vs)
			tag.attrs = append(tag.attrs, a)
		}
		return tag
	}
	return nil
}

// checkRootElement verifies the attributes of the <xliff> element: exactly
// xmlns, version, srcLang and trgLang in that order, the fixed values of the
// first three and a trgLang matching the language code of the file name.
func checkRootElement(doc *xliff.Document, opts *Options) []report.Issue {
	const v = "XLIFF Element"
	tag := findRootTag(doc)
	if tag == nil {
		i := issue(doc, v, report.Encoding, 1, 1, 1, "", "Missing <xliff> element.")
		if len(doc.Lines) == 0 {
			i.Text = "(empty file)"
		}
		return []report.Issue{i}
	}

	expected := []struct{ name, value string }{
		{"xmlns", xliff.Namespace},
		{"version", "2.0"},
		{"srcLang", opts.SourceLanguage},
		{"trgLang", ""},
	}
	tagIssue := func(line, cs, ce int, msg string) []report.Issue {
		return []report.Issue{issue(doc, v, report.Encoding, line, cs, ce, "", msg)}
	}

	for _, e := range expected {
		if _, ok := tag.find(e.name); !ok {
			return tagIssue(tag.line, tag.col, len([]rune(doc.Line(tag.line))),
				fmt.Sprintf("Missing required attribute '%s' in <xliff> tag.", e.name))
		}
	}

	var order []rootAttr
	seen := make(map[string]bool)
	for _, a := range tag.attrs {
		for _, e := range expected {
			if a.name == e.name && !seen[a.name] {
				seen[a.name] = true
				order = append(order, a)
			}
		}
	}
	for i, a := range order {
		if a.name != expected[i].name {
			return tagIssue(a.line, a.col, a.endCol, fmt.Sprintf("Attribute '%s' is out of order in <xliff> tag.", a.name))
		}
	}

	for _, a := range tag.attrs {
		allowed := false
		for _, e := range expected {
			allowed = allowed || a.name == e.name
		}
		if !allowed {
			return tagIssue(a.line, a.col, a.endCol, fmt.Sprintf("Unexpected attribute '%s' in <xliff> tag.", a.name))
		}
	}

	for _, e := range expected[:3] {
		a, _ := tag.find(e.name)
		if a.value != e.value {
			return tagIssue(a.line, a.valueCol, a.valueCol+max(len([]rune(a.value))-1, 0),
				fmt.Sprintf("Attribute '%s' has value '%s', expected '%s'.", a.name, a.value, e.value))
		}
	}

	trg, _ := tag.find("trgLang")
	if code := xliff.LanguageFromFilename(doc.Name); code != "" && !strings.HasPrefix(trg.value, code) {
		return tagIssue(trg.line, trg.valueCol, trg.valueCol+max(len([]rune(trg.value))-1, 0),
			fmt.Sprintf("trgLang '%s' does not match filename language code '%s'", trg.value, code))
	}
	return nil
}
