package doctor

import (
	"bytes"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/adammathes/xliffverify/pkg/validate"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// Fix represents a single applied fix.
type Fix struct {
	Validator   string // the check whose issue the fix resolves
	Description string
}

var (
	declarationRe = regexp.MustCompile(`^\s*<\?xml[^?]*\?>`)
	rootStartRe   = regexp.MustCompile(`<xliff(\s[^>]*)?/?>`)
	attrRe        = regexp.MustCompile(`([\w:.-]+)\s*=\s*("[^"]*"|'[^']*')`)
	prefixDeclRe  = regexp.MustCompile(`\sxmlns:([\w.-]+)\s*=\s*["']` + regexp.QuoteMeta(xliff.Namespace) + `["']`)
)

// fixEncoding returns the document body as UTF-8 without a byte-order mark.
// UTF-16 and UTF-32 input has already been decoded by the parser; input that
// is not valid UTF-8 is assumed to be Windows-1252.
func fixEncoding(doc *xliff.Document) ([]byte, []Fix) {
	const v = "UTF-8 BOM"
	switch {
	case doc.BOM == xliff.BOMUTF8:
		return doc.Body, nil
	case doc.Transcoded():
		return doc.Body, []Fix{{v, fmt.Sprintf("Transcoded from %s to UTF-8", doc.BOM)}}
	case !utf8.Valid(doc.Body):
		out, err := charmap.Windows1252.NewDecoder().Bytes(doc.Body)
		if err != nil {
			return doc.Body, nil
		}
		return out, []Fix{{v, "Transcoded from Windows-1252 to UTF-8 and added UTF-8 BOM"}}
	}
	return doc.Body, []Fix{{v, "Added UTF-8 BOM"}}
}

// fixDeclaration replaces a declaration that differs from the expected one
// and inserts it when absent.
func fixDeclaration(body []byte) ([]byte, []Fix) {
	const v = "XML Declaration"
	want := validate.ExpectedDeclaration
	loc := declarationRe.FindIndex(body)
	if loc == nil {
		out := append([]byte(want+"\n"), body...)
		return out, []Fix{{v, "Inserted XML declaration"}}
	}
	old := string(body[loc[0]:loc[1]])
	if old == want {
		return body, nil
	}
	out := append([]byte(want), body[loc[1]:]...)
	return out, []Fix{{v, fmt.Sprintf("Replaced XML declaration '%s'", strings.TrimSpace(old))}}
}

// fixNamespacePrefixes removes element prefixes bound to the XLIFF namespace
// and turns their declarations into default namespace declarations. Prefixes
// bound to other namespaces are left alone.
func fixNamespacePrefixes(body []byte) ([]byte, []Fix) {
	const v = "XML Namespace Prefixes"
	prefixes := map[string]bool{}
	for _, m := range prefixDeclRe.FindAllSubmatch(body, -1) {
		prefixes[string(m[1])] = true
	}
	if len(prefixes) == 0 {
		return body, nil
	}

	var fixes []Fix
	out := string(body)
	for _, p := range slices.Sorted(maps.Keys(prefixes)) {
		elemRe := regexp.MustCompile(`(</?)` + regexp.QuoteMeta(p) + `:`)
		count := len(elemRe.FindAllStringIndex(out, -1))
		out = elemRe.ReplaceAllString(out, "$1")

		declRe := regexp.MustCompile(`\sxmlns:` + regexp.QuoteMeta(p) + `\s*=\s*["']` + regexp.QuoteMeta(xliff.Namespace) + `["']`)
		tagRe := regexp.MustCompile(`<[^<>]*` + declRe.String() + `[^<>]*>`)
		out = tagRe.ReplaceAllStringFunc(out, func(tag string) string {
			if strings.Contains(tag, ` xmlns="`) || strings.Contains(tag, ` xmlns='`) {
				return declRe.ReplaceAllString(tag, "")
			}
			return declRe.ReplaceAllString(tag, ` xmlns="`+xliff.Namespace+`"`)
		})
		fixes = append(fixes, Fix{v, fmt.Sprintf("Removed namespace prefix '%s:' from %d tags", p, count)})
	}
	return []byte(out), fixes
}

// canonicalRootOrder is the attribute order of the <xliff> element.
var canonicalRootOrder = []string{"xmlns", "version", "srcLang", "trgLang"}

// fixRootAttributes rewrites the <xliff> start tag with its attributes in
// canonical order. A missing xmlns or version is added with its fixed
// value; other attributes follow in their original order.
func fixRootAttributes(body []byte) ([]byte, []Fix) {
	const v = "XLIFF Element"
	loc := rootStartRe.FindIndex(body)
	if loc == nil {
		return body, nil
	}
	tag := string(body[loc[0]:loc[1]])

	type attr struct{ name, quoted string }
	var attrs []attr
	var names []string
	values := map[string]string{}
	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		attrs = append(attrs, attr{m[1], m[2]})
		names = append(names, m[1])
		values[m[1]] = m[2]
	}

	var added []string
	if _, ok := values["xmlns"]; !ok {
		values["xmlns"] = `"` + xliff.Namespace + `"`
		added = append(added, "xmlns")
	}
	if _, ok := values["version"]; !ok {
		values["version"] = `"2.0"`
		added = append(added, "version")
	}

	var order []string
	for _, name := range canonicalRootOrder {
		if _, ok := values[name]; ok {
			order = append(order, name)
		}
	}
	for _, a := range attrs {
		if !slices.Contains(canonicalRootOrder, a.name) {
			order = append(order, a.name)
		}
	}
	if len(added) == 0 && slices.Equal(order, names) {
		return body, nil
	}

	var b strings.Builder
	b.WriteString("<xliff")
	for _, name := range order {
		b.WriteString(" " + name + "=" + values[name])
	}
	if strings.HasSuffix(tag, "/>") {
		b.WriteString("/>")
	} else {
		b.WriteString(">")
	}
	out := bytes.Join([][]byte{body[:loc[0]], []byte(b.String()), body[loc[1]:]}, nil)
	desc := "Reordered <xliff> attributes to " + strings.Join(canonicalRootOrder, ", ")
	if len(added) > 0 {
		desc += "; added " + strings.Join(added, ", ")
	}
	return out, []Fix{{v, desc}}
}
