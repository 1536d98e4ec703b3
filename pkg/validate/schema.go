package validate

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"gopkg.in/yaml.v3"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

//go:embed schema/xliff_core_2.0.yaml
var coreSchemaYAML []byte

var coreModel = sync.OnceValues(func() (*contentModel, error) {
	return loadContentModel(coreSchemaYAML)
})

// contentModel is the decoded form of a schema YAML document.
type contentModel struct {
	Namespace string                  `yaml:"namespace"`
	Root      string                  `yaml:"root"`
	Groups    map[string][]string     `yaml:"groups"`
	Types     map[string][]string     `yaml:"types"`
	Elements  map[string]*elementDecl `yaml:"elements"`
}

type elementDecl struct {
	Attributes map[string]*attrDecl `yaml:"attributes"`
	Content    []*particle          `yaml:"content"`
	Mixed      bool                 `yaml:"mixed"`
	Any        bool                 `yaml:"any"`
}

type attrDecl struct {
	Required bool     `yaml:"required"`
	Type     string   `yaml:"type"`
	Enum     []string `yaml:"enum"`
}

type particle struct {
	Names []string `yaml:"names"`
	Group string   `yaml:"group"`
	Other bool     `yaml:"other"`
	Min   int      `yaml:"min"`
	Max   string   `yaml:"max"`

	limit int // -1 when unbounded
}

func (p *particle) accepts(n *xmlquery.Node, ns string) bool {
	if n.NamespaceURI != ns {
		return p.Other
	}
	for _, name := range p.Names {
		if name == n.Data {
			return true
		}
	}
	return false
}

func (p *particle) full(count int) bool {
	return p.limit >= 0 && count >= p.limit
}

// builtinTypes are the simple types the model may name besides its own
// enumerations.
var builtinTypes = map[string]func(string) bool{
	"language":        regexp.MustCompile(`^[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*$`).MatchString,
	"NMTOKEN":         isNMTOKEN,
	"NMTOKENS":        isNMTOKENS,
	"positiveInteger": regexp.MustCompile(`^\+?0*[1-9][0-9]*$`).MatchString,
	"hexBinary":       regexp.MustCompile(`^([0-9a-fA-F]{2})*$`).MatchString,
	"priority": func(s string) bool {
		n, err := strconv.Atoi(s)
		return err == nil && n >= 1 && n <= 10
	},
}

var nmtokenRe = regexp.MustCompile(`^[\p{L}\p{M}\p{N}._:\-·]+$`)

func isNMTOKEN(s string) bool {
	return nmtokenRe.MatchString(s)
}

func isNMTOKENS(s string) bool {
	fields := strings.Fields(s)
	for _, f := range fields {
		if !isNMTOKEN(f) {
			return false
		}
	}
	return len(fields) > 0
}

// loadContentModel decodes a schema document and resolves its group and type
// references.
func loadContentModel(data []byte) (*contentModel, error) {
	var m contentModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding content model: %w", err)
	}
	if _, ok := m.Elements[m.Root]; !ok {
		return nil, fmt.Errorf("content model: root element %q is not declared", m.Root)
	}
	for name, decl := range m.Elements {
		for _, p := range decl.Content {
			if p.Group != "" {
				members, ok := m.Groups[p.Group]
				if !ok {
					return nil, fmt.Errorf("content model: element %q uses unknown group %q", name, p.Group)
				}
				p.Names = append(p.Names, members...)
			}
			switch p.Max {
			case "":
				p.limit = 1
			case "unbounded":
				p.limit = -1
			default:
				n, err := strconv.Atoi(p.Max)
				if err != nil || n < 1 {
					return nil, fmt.Errorf("content model: element %q has invalid max %q", name, p.Max)
				}
				p.limit = n
			}
		}
		for attr, a := range decl.Attributes {
			if a == nil {
				decl.Attributes[attr] = &attrDecl{}
				continue
			}
			if a.Type == "" {
				continue
			}
			if enum, ok := m.Types[a.Type]; ok {
				a.Enum = enum
				a.Type = ""
			} else if _, ok := builtinTypes[a.Type]; !ok {
				return nil, fmt.Errorf("content model: attribute %s/@%s has unknown type %q", name, attr, a.Type)
			}
		}
	}
	return &m, nil
}

// checkWellFormed reports the first syntax error of the strict parse.
func checkWellFormed(doc *xliff.Document, _ *Options) []report.Issue {
	e := doc.ParseErr
	if e == nil {
		return nil
	}
	return []report.Issue{issue(doc, "XML Validation", report.Malformed, e.Line, e.Column, e.Column,
		doc.UnitAt(e.Line), "XML parsing failed: "+e.Msg)}
}

// checkSchema validates the tree against the XLIFF 2.0 core content model.
// Elements and attributes of other namespaces are accepted without checks.
func checkSchema(doc *xliff.Document, _ *Options) []report.Issue {
	const v = "XLIFF Schema"
	if issues := treeRequired(doc, v); issues != nil {
		return issues
	}
	model, err := coreModel()
	if err != nil {
		return []report.Issue{issue(doc, v, report.Malformed, 1, 1, 1, "", "Schema validation failed: "+err.Error())}
	}
	sv := &schemaValidator{doc: doc, model: model}
	root := doc.RootElement()
	if root.NamespaceURI != model.Namespace || root.Data != model.Root {
		sv.fail(root, "", fmt.Sprintf("Element '%s': No matching global declaration available for the validation root.", root.Data))
		return sv.issues
	}
	sv.element(root)
	return sv.issues
}

type schemaValidator struct {
	doc    *xliff.Document
	model  *contentModel
	issues []report.Issue
}

func (sv *schemaValidator) fail(n *xmlquery.Node, attr, msg string) {
	msg = "Schema validation failed: " + msg
	if attr != "" {
		sv.issues = append(sv.issues, attrIssue(sv.doc, "XLIFF Schema", report.Malformed, n, attr, lineUnit(sv.doc, n), msg))
		return
	}
	sv.issues = append(sv.issues, nodeIssue(sv.doc, "XLIFF Schema", report.Malformed, n, lineUnit(sv.doc, n), msg))
}

func (sv *schemaValidator) element(n *xmlquery.Node) {
	decl, ok := sv.model.Elements[n.Data]
	if !ok {
		return
	}
	sv.attributes(n, decl)
	if decl.Any {
		return
	}
	sv.text(n, decl)
	kids := sv.children(n, decl)
	for _, k := range kids {
		if k.NamespaceURI == sv.model.Namespace {
			sv.element(k)
		}
	}
}

func (sv *schemaValidator) attributes(n *xmlquery.Node, decl *elementDecl) {
	present := make(map[string]bool)
	for _, a := range n.Attr {
		var name string
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns", a.NamespaceURI == "xmlns":
			continue
		case a.NamespaceURI == xmlNamespace:
			name = "xml:" + a.Name.Local
		case a.NamespaceURI == "":
			name = a.Name.Local
		default:
			continue
		}
		present[name] = true

		ad, ok := decl.Attributes[name]
		if !ok {
			sv.fail(n, name, fmt.Sprintf("Element '%s', attribute '%s': The attribute '%s' is not allowed.", n.Data, name, name))
			continue
		}
		if len(ad.Enum) > 0 && !slices.Contains(ad.Enum, a.Value) {
			quoted := make([]string, len(ad.Enum))
			for i, e := range ad.Enum {
				quoted[i] = "'" + e + "'"
			}
			sv.fail(n, name, fmt.Sprintf("Element '%s', attribute '%s': [facet 'enumeration'] The value '%s' is not an element of the set {%s}.",
				n.Data, name, a.Value, strings.Join(quoted, ", ")))
			continue
		}
		if valid, ok := builtinTypes[ad.Type]; ok && !valid(strings.TrimSpace(a.Value)) {
			sv.fail(n, name, fmt.Sprintf("Element '%s', attribute '%s': '%s' is not a valid value of the atomic type 'xs:%s'.",
				n.Data, name, a.Value, ad.Type))
		}
	}

	var missing []string
	for name, ad := range decl.Attributes {
		if ad.Required && !present[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		sv.fail(n, "", fmt.Sprintf("Element '%s': The attribute '%s' is required but missing.", n.Data, name))
	}
}

func (sv *schemaValidator) text(n *xmlquery.Node, decl *elementDecl) {
	if decl.Mixed {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if (c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode) && strings.TrimSpace(c.Data) != "" {
			if len(decl.Content) == 0 {
				sv.fail(n, "", fmt.Sprintf("Element '%s': Character content is not allowed, because the content type is empty.", n.Data))
			} else {
				sv.fail(n, "", fmt.Sprintf("Element '%s': Character content other than whitespace is not allowed because the content type is 'element-only'.", n.Data))
			}
			return
		}
	}
}

// children matches the child elements of n against the particle sequence of
// its declaration and returns them.
func (sv *schemaValidator) children(n *xmlquery.Node, decl *elementDecl) []*xmlquery.Node {
	var kids []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			kids = append(kids, c)
		}
	}

	ns := sv.model.Namespace
	counts := make([]int, len(decl.Content))
	i, last := 0, 0
	for pi, p := range decl.Content {
		for i < len(kids) && !p.full(counts[pi]) && p.accepts(kids[i], ns) {
			counts[pi]++
			i++
			last = pi
		}
		if counts[pi] < p.Min {
			expected := sv.expected(decl, counts, pi)
			if i < len(kids) {
				sv.fail(kids[i], "", fmt.Sprintf("Element '%s': This element is not expected.%s", kids[i].Data, expected))
			} else {
				sv.fail(n, "", fmt.Sprintf("Element '%s': Missing child element(s).%s", n.Data, expected))
			}
			return kids
		}
	}
	if i < len(kids) {
		sv.fail(kids[i], "", fmt.Sprintf("Element '%s': This element is not expected.%s", kids[i].Data, sv.expected(decl, counts, last)))
	}
	return kids
}

// expected lists the element names acceptable at a point where particle
// from is current.
func (sv *schemaValidator) expected(decl *elementDecl, counts []int, from int) string {
	var names []string
	for pi := from; pi < len(decl.Content); pi++ {
		p := decl.Content[pi]
		if !p.full(counts[pi]) {
			if p.Other {
				names = append(names, "##other")
			}
			names = append(names, p.Names...)
		}
		if counts[pi] < p.Min {
			break
		}
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf(" Expected is ( %s ).", names[0])
	}
	return fmt.Sprintf(" Expected is one of ( %s ).", strings.Join(names, ", "))
}
