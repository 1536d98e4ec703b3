package xliff

import (
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
)

var filenameLangRe = regexp.MustCompile(`\(([^()]*)\)[^()]*$`)

// LanguageFromFilename returns the language code written in the last pair of
// parentheses of a file name, e.g. "zh" for "messages(zh).xlf".
func LanguageFromFilename(name string) string {
	m := filenameLangRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractText concatenates the trimmed, non-blank text nodes below n,
// descending through inline elements.
func ExtractText(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				b.WriteString(strings.TrimSpace(c.Data))
			case xmlquery.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// Reconstruct rebuilds the native markup of a source or target by replacing
// each inline span with the data values it references. Text is re-escaped so
// the result can be parsed as a markup fragment. References that do not
// resolve contribute nothing.
func Reconstruct(content *Content, data map[string]*Data) string {
	if content == nil {
		return ""
	}
	value := func(id string) string {
		if d, ok := data[id]; ok {
			return d.Value
		}
		return ""
	}
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				xml.EscapeText(&b, []byte(c.Data))
			case xmlquery.ElementNode:
				switch c.Data {
				case "ph":
					b.WriteString(value(c.SelectAttr("dataRef")))
				case "pc":
					b.WriteString(value(c.SelectAttr("dataRefStart")))
					walk(c)
					b.WriteString(value(c.SelectAttr("dataRefEnd")))
				case "cp", "sc", "ec", "sm", "em":
				default:
					walk(c)
				}
			}
		}
	}
	walk(content.Node)
	return b.String()
}
