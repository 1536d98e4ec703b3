// Package xliff loads XLIFF 2.0 documents into two independent views: the
// raw line sequence used by the text-level checks and a queryable element
// tree with exact source positions used by the structural checks.
package xliff

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Namespace is the XLIFF 2.0 core namespace URI.
const Namespace = "urn:oasis:names:tc:xliff:document:2.0"

// BOM identifies the byte-order mark found at the start of a file.
type BOM int

const (
	NoBOM BOM = iota
	BOMUTF8
	BOMUTF16LE
	BOMUTF16BE
	BOMUTF32LE
	BOMUTF32BE
)

func (b BOM) String() string {
	switch b {
	case BOMUTF8:
		return "UTF-8"
	case BOMUTF16LE:
		return "UTF-16 LE"
	case BOMUTF16BE:
		return "UTF-16 BE"
	case BOMUTF32LE:
		return "UTF-32 LE"
	case BOMUTF32BE:
		return "UTF-32 BE"
	}
	return "none"
}

// Bytes returns the mark itself.
func (b BOM) Bytes() []byte {
	switch b {
	case BOMUTF8:
		return []byte{0xEF, 0xBB, 0xBF}
	case BOMUTF16LE:
		return []byte{0xFF, 0xFE}
	case BOMUTF16BE:
		return []byte{0xFE, 0xFF}
	case BOMUTF32LE:
		return []byte{0xFF, 0xFE, 0x00, 0x00}
	case BOMUTF32BE:
		return []byte{0x00, 0x00, 0xFE, 0xFF}
	}
	return nil
}

// DetectBOM reports the byte-order mark at the start of data.
// UTF-32 marks are tested first because the UTF-32 LE mark starts with the
// UTF-16 LE one.
func DetectBOM(data []byte) BOM {
	for _, b := range []BOM{BOMUTF32LE, BOMUTF32BE, BOMUTF8, BOMUTF16LE, BOMUTF16BE} {
		if bytes.HasPrefix(data, b.Bytes()) {
			return b
		}
	}
	return NoBOM
}

// SyntaxError describes the first well-formedness violation in a document.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Document is a loaded XLIFF file. It is immutable once Parse returns and may
// be shared between goroutines.
type Document struct {
	Path string
	Name string
	Raw  []byte
	BOM  BOM

	// Body is the UTF-8 text of the file with any byte-order mark removed.
	// UTF-16 and UTF-32 input is transcoded.
	Body []byte

	// Lines holds Body split into lines with terminators preserved.
	Lines []string

	// Root is the document node of the parsed tree, nil when the file is not
	// well-formed.
	Root     *xmlquery.Node
	ParseErr *SyntaxError

	lineStarts []int
	spans      map[*xmlquery.Node]Span
	units      []unitRange
}

type unitRange struct {
	id         string
	start, end int
}

// Open reads and parses the file at path. Only I/O failures are returned as
// errors; malformed content is recorded on the Document.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc := Parse(filepath.Base(path), data)
	doc.Path = path
	return doc, nil
}

// Parse builds a Document from in-memory bytes. It never fails.
func Parse(name string, data []byte) *Document {
	doc := &Document{
		Name: name,
		Path: name,
		Raw:  data,
		BOM:  DetectBOM(data),
	}
	doc.Body = decodeBody(data, doc.BOM)
	doc.Lines = splitLines(string(doc.Body))
	doc.lineStarts = []int{0}
	for i, b := range doc.Body {
		if b == '\n' {
			doc.lineStarts = append(doc.lineStarts, i+1)
		}
	}
	doc.load()
	return doc
}

func decodeBody(data []byte, bom BOM) []byte {
	var enc encoding.Encoding
	switch bom {
	case BOMUTF8:
		return data[len(bom.Bytes()):]
	case BOMUTF16LE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case BOMUTF16BE:
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case BOMUTF32LE:
		enc = utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	case BOMUTF32BE:
		enc = utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	default:
		return data
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Transcoded reports whether Body was decoded from UTF-16 or UTF-32.
func (d *Document) Transcoded() bool {
	return d.BOM != NoBOM && d.BOM != BOMUTF8
}

// Line returns line n (1-based) without its terminator, or "" when out of range.
func (d *Document) Line(n int) string {
	if n < 1 || n > len(d.Lines) {
		return ""
	}
	return strings.TrimRight(d.Lines[n-1], "\r\n")
}

// Position converts a byte offset into Body to a 1-based line and a 1-based
// column counted in characters.
func (d *Document) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Body) {
		offset = len(d.Body)
	}
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	start := d.lineStarts[lo]
	return lo + 1, utf8.RuneCount(d.Body[start:offset]) + 1
}

// UnitAt returns the id of the unit whose element spans line, or "".
func (d *Document) UnitAt(line int) string {
	for _, u := range d.units {
		if line >= u.start && line <= u.end {
			return u.id
		}
	}
	return ""
}

// Span returns the source position of an element node.
func (d *Document) Span(n *xmlquery.Node) (Span, bool) {
	s, ok := d.spans[n]
	return s, ok
}

// LineOf returns the line on which the element's start tag begins.
func (d *Document) LineOf(n *xmlquery.Node) int {
	if s, ok := d.spans[n]; ok {
		return s.Line
	}
	if n != nil {
		return n.LineNumber
	}
	return 0
}

// Inner returns the raw text between an element's start and end tags exactly
// as written in the file.
func (d *Document) Inner(n *xmlquery.Node) string {
	s, ok := d.spans[n]
	if !ok || s.InnerStart > s.InnerEnd || s.InnerEnd > len(d.Body) {
		return ""
	}
	return string(d.Body[s.InnerStart:s.InnerEnd])
}

// Outer returns the raw text of an element including its tags.
func (d *Document) Outer(n *xmlquery.Node) string {
	s, ok := d.spans[n]
	if !ok || s.Start > s.End || s.End > len(d.Body) {
		return ""
	}
	return string(d.Body[s.Start:s.End])
}

// RootElement returns the top-level element, or nil when the tree is absent.
func (d *Document) RootElement() *xmlquery.Node {
	if d.Root == nil {
		return nil
	}
	for n := d.Root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// SrcLang returns the srcLang attribute of the root element.
func (d *Document) SrcLang() string {
	if root := d.RootElement(); root != nil {
		return root.SelectAttr("srcLang")
	}
	return ""
}

// TrgLang returns the trgLang attribute of the root element.
func (d *Document) TrgLang() string {
	if root := d.RootElement(); root != nil {
		return root.SelectAttr("trgLang")
	}
	return ""
}
