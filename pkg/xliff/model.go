package xliff

import (
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var (
	fileExpr = xpath.MustCompile("//file")
	unitExpr = xpath.MustCompile("//unit")
)

// SpanKind distinguishes paired from self-closing inline spans.
type SpanKind int

const (
	// Paired is a <pc> span wrapping content between a start and an end datum.
	Paired SpanKind = iota
	// SelfClosing is a <ph> span standing for a single datum.
	SelfClosing
)

func (k SpanKind) String() string {
	if k == SelfClosing {
		return "ph"
	}
	return "pc"
}

// InlineSpan is a pc or ph element inside a source or target.
type InlineSpan struct {
	Kind         SpanKind
	ID           string
	DataRef      string
	DataRefStart string
	DataRefEnd   string
	Node         *xmlquery.Node
	Parent       *InlineSpan
}

// Refs returns the data references the span carries, in attribute order.
func (s *InlineSpan) Refs() []string {
	var refs []string
	for _, r := range []string{s.DataRef, s.DataRefStart, s.DataRefEnd} {
		if r != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// Content is a source or target element.
type Content struct {
	Name  string
	Node  *xmlquery.Node
	Spans []*InlineSpan
}

// Element returns the source or target element, or nil for a nil Content.
func (c *Content) Element() *xmlquery.Node {
	if c == nil {
		return nil
	}
	return c.Node
}

// Data is an entry of a unit's originalData.
type Data struct {
	ID    string
	Value string
	Node  *xmlquery.Node
}

// Segment is a translatable segment of a unit.
type Segment struct {
	ID       string
	State    string
	HasState bool
	Node     *xmlquery.Node
	Source   *Content
	Target   *Content
}

// Unit is a translatable unit with its segments and original data.
type Unit struct {
	ID       string
	Node     *xmlquery.Node
	Data     []*Data
	Segments []*Segment

	// Containers lists every source and target of the unit, including those
	// of ignorable elements, in document order.
	Containers []*Content
}

// DataByID indexes the unit's original data. Later duplicates do not replace
// earlier entries.
func (u *Unit) DataByID() map[string]*Data {
	m := make(map[string]*Data, len(u.Data))
	for _, d := range u.Data {
		if _, ok := m[d.ID]; !ok {
			m[d.ID] = d
		}
	}
	return m
}

// Files returns the file elements of the document.
func (d *Document) Files() []*xmlquery.Node {
	if d.Root == nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(d.Root, fileExpr)
}

// Units returns the typed view of every unit, in document order.
func (d *Document) Units() []*Unit {
	if d.Root == nil {
		return nil
	}
	var units []*Unit
	for _, n := range xmlquery.QuerySelectorAll(d.Root, unitExpr) {
		units = append(units, newUnit(n))
	}
	return units
}

func newUnit(n *xmlquery.Node) *Unit {
	u := &Unit{ID: n.SelectAttr("id"), Node: n}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "originalData":
			for dn := c.FirstChild; dn != nil; dn = dn.NextSibling {
				if dn.Type == xmlquery.ElementNode && dn.Data == "data" {
					u.Data = append(u.Data, &Data{ID: dn.SelectAttr("id"), Value: dn.InnerText(), Node: dn})
				}
			}
		case "segment":
			seg := &Segment{ID: c.SelectAttr("id"), Node: c}
			for _, a := range c.Attr {
				if a.Name.Space == "" && a.Name.Local == "state" {
					seg.State, seg.HasState = a.Value, true
				}
			}
			seg.Source, seg.Target = contents(c, u)
			u.Segments = append(u.Segments, seg)
		case "ignorable":
			contents(c, u)
		}
	}
	return u
}

func contents(parent *xmlquery.Node, u *Unit) (source, target *Content) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode || (c.Data != "source" && c.Data != "target") {
			continue
		}
		content := &Content{Name: c.Data, Node: c}
		collectSpans(c, nil, content)
		u.Containers = append(u.Containers, content)
		if c.Data == "source" && source == nil {
			source = content
		} else if c.Data == "target" && target == nil {
			target = content
		}
	}
	return source, target
}

func collectSpans(n *xmlquery.Node, parent *InlineSpan, content *Content) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "pc":
			span := &InlineSpan{
				Kind:         Paired,
				ID:           c.SelectAttr("id"),
				DataRefStart: c.SelectAttr("dataRefStart"),
				DataRefEnd:   c.SelectAttr("dataRefEnd"),
				Node:         c,
				Parent:       parent,
			}
			content.Spans = append(content.Spans, span)
			collectSpans(c, span, content)
		case "ph":
			content.Spans = append(content.Spans, &InlineSpan{
				Kind:    SelfClosing,
				ID:      c.SelectAttr("id"),
				DataRef: c.SelectAttr("dataRef"),
				Node:    c,
				Parent:  parent,
			})
		default:
			collectSpans(c, parent, content)
		}
	}
}
