package validate

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

var htmlTagRe = regexp.MustCompile(`^\s*</?[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>\s*$`)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// checkInlineMarkup rebuilds the native markup of every source and target of
// units carrying original data and validates it. Fragments whose data values
// are all HTML tags are checked as HTML; anything else must be well-formed
// XML once wrapped in a root element.
func checkInlineMarkup(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "XLIFF Placeholders"
	if issues := treeRequired(doc, v); issues != nil {
		return issues
	}
	var issues []report.Issue
	for _, u := range doc.Units() {
		if len(u.Data) == 0 {
			continue
		}
		data := u.DataByID()
		for _, c := range u.Containers {
			fragment := xliff.Reconstruct(c, data)
			var problems []string
			if looksLikeHTML(c, data) {
				problems = htmlProblems(fragment)
			} else {
				problems = xmlProblems(fragment)
			}
			for _, p := range problems {
				issues = append(issues, nodeIssue(doc, v, report.Placeholder, c.Node, u.ID,
					fmt.Sprintf("Reconstructed <%s> of unit '%s' is invalid: %s", c.Name, u.ID, p)))
			}
		}
	}
	return issues
}

// looksLikeHTML reports whether every data value the content references is
// a single HTML tag.
func looksLikeHTML(c *xliff.Content, data map[string]*xliff.Data) bool {
	for _, s := range c.Spans {
		for _, ref := range s.Refs() {
			d, ok := data[ref]
			if ok && !htmlTagRe.MatchString(d.Value) {
				return false
			}
		}
	}
	return true
}

// htmlProblems tokenizes an HTML fragment and reports unbalanced tags.
func htmlProblems(fragment string) []string {
	var problems []string
	var open []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				problems = append(problems, "HTML: "+err.Error())
			}
			break
		}
		tok := z.Token()
		switch tt {
		case html.StartTagToken:
			if !voidElements[tok.Data] {
				open = append(open, tok.Data)
			}
		case html.SelfClosingTagToken:
			if !voidElements[tok.Data] {
				problems = append(problems, fmt.Sprintf("HTML: self-closing syntax on non-void element <%s/>", tok.Data))
			}
		case html.EndTagToken:
			if voidElements[tok.Data] {
				problems = append(problems, fmt.Sprintf("HTML: end tag for void element </%s>", tok.Data))
				continue
			}
			k := len(open) - 1
			for k >= 0 && open[k] != tok.Data {
				k--
			}
			if k < 0 {
				problems = append(problems, fmt.Sprintf("HTML: stray end tag </%s>", tok.Data))
				continue
			}
			for _, name := range open[k+1:] {
				problems = append(problems, fmt.Sprintf("HTML: element <%s> is not closed before </%s>", name, tok.Data))
			}
			open = open[:k]
		}
	}
	for _, name := range open {
		problems = append(problems, fmt.Sprintf("HTML: unclosed element <%s>", name))
	}
	return problems
}

// xmlProblems parses the fragment strictly inside a root element and reports
// the first error.
func xmlProblems(fragment string) []string {
	dec := xml.NewDecoder(strings.NewReader("<root>" + fragment + "</root>"))
	dec.Strict = true
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return []string{"XML: " + se.Msg}
			}
			return []string{"XML: " + err.Error()}
		}
	}
}
