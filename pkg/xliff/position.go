package xliff

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html/charset"
)

// Span locates an element in Body. Offsets are byte offsets; Line and Column
// point at the '<' of the start tag.
type Span struct {
	Line       int
	Column     int
	EndLine    int
	Start      int
	InnerStart int
	InnerEnd   int
	End        int
}

// SelfClosing reports whether the element was written as <name/>.
func (s Span) SelfClosing() bool {
	return s.InnerStart == s.End
}

// load runs the strict position pass, then builds the xmlquery tree and
// attaches the collected spans to its element nodes in document order. The
// tree parser runs non-strict so that undeclared prefixes reach the prefix
// check instead of failing the parse.
func (d *Document) load() {
	spans, err := d.scan()
	if err != nil {
		d.ParseErr = err
		return
	}

	root, perr := xmlquery.ParseWithOptions(bytes.NewReader(d.Body), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			CharsetReader: d.charsetReader,
		},
	})
	if perr != nil {
		d.ParseErr = &SyntaxError{Line: 1, Column: 1, Msg: perr.Error()}
		return
	}

	var elems []*xmlquery.Node
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode {
				elems = append(elems, c)
				walk(c)
			}
		}
	}
	walk(root)
	if len(elems) != len(spans) {
		d.ParseErr = &SyntaxError{Line: 1, Column: 1, Msg: "element tree does not match document structure"}
		return
	}

	d.Root = root
	d.spans = make(map[*xmlquery.Node]Span, len(elems))
	for i, n := range elems {
		n.LineNumber = spans[i].Line
		d.spans[n] = spans[i]
		if n.Data == "unit" {
			d.units = append(d.units, unitRange{id: n.SelectAttr("id"), start: spans[i].Line, end: spans[i].EndLine})
		}
	}
}

func (d *Document) charsetReader(label string, input io.Reader) (io.Reader, error) {
	if d.Transcoded() {
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

// scan walks the token stream with a strict decoder and returns one span per
// element in document order, or the first well-formedness error.
func (d *Document) scan() ([]Span, *SyntaxError) {
	dec := xml.NewDecoder(bytes.NewReader(d.Body))
	dec.Strict = true
	dec.CharsetReader = d.charsetReader

	var (
		spans   []Span
		open    []int
		roots   int
		errorAt = func(offset int, msg string) *SyntaxError {
			line, col := d.Position(offset)
			return &SyntaxError{Line: line, Column: col, Msg: msg}
		}
	)

	for {
		before := int(dec.InputOffset())
		tok, err := dec.Token()
		after := int(dec.InputOffset())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxError(d, err, after)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(open) == 0 {
				roots++
				if roots > 1 {
					return nil, errorAt(before, "Extra content at the end of the document")
				}
			}
			line, col := d.Position(before)
			spans = append(spans, Span{
				Line:       line,
				Column:     col,
				Start:      before,
				InnerStart: after,
			})
			open = append(open, len(spans)-1)
		case xml.EndElement:
			i := open[len(open)-1]
			open = open[:len(open)-1]
			if before == after {
				spans[i].InnerEnd = after
			} else {
				spans[i].InnerEnd = before
			}
			spans[i].End = after
			spans[i].EndLine, _ = d.Position(max(after-1, spans[i].Start))
		case xml.CharData:
			if len(open) == 0 && len(bytes.TrimSpace(t)) > 0 {
				at := before + len(t) - len(bytes.TrimLeft(t, " \t\r\n"))
				if roots == 0 {
					return nil, errorAt(at, "Start tag expected, '<' not found")
				}
				return nil, errorAt(at, "Extra content at the end of the document")
			}
		}
	}

	if roots == 0 {
		return nil, errorAt(len(d.Body), "Start tag expected, '<' not found")
	}
	return spans, nil
}

func syntaxError(d *Document, err error, offset int) *SyntaxError {
	line, col := d.Position(offset)
	msg := err.Error()
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		msg = se.Msg
		if se.Line > 0 && se.Line != line {
			line = se.Line
			col = 1
			if line <= len(d.Lines) {
				col = len([]rune(strings.TrimRight(d.Lines[line-1], "\r\n"))) + 1
			}
		}
	}
	return &SyntaxError{Line: line, Column: col, Msg: msg}
}
