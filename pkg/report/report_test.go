package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func sampleReport() *Report {
	r := NewReport("messages(zh).xlf")
	r.Add(Issue{
		Validator:   "Java Placeholder",
		Category:    Placeholder,
		Message:     "Placeholder {1} occurs 1 time(s) in source but 0 time(s) in target",
		Filename:    "messages(zh).xlf",
		Line:        12,
		ColumnStart: 27,
		ColumnEnd:   29,
		UnitID:      "body.count",
		Text:        "        <target>You {0} | {1}</target>",
	})
	return r
}

func TestReportCounts(t *testing.T) {
	r := sampleReport()
	r.Add(Issue{Validator: "UTF-8 BOM", Category: Encoding, Filename: "b.xlf", Line: 1})

	assert.False(t, r.IsValid())
	assert.Equal(t, 2, r.Count())
	assert.False(t, r.HasIO())
	assert.Equal(t, map[Category]int{Placeholder: 1, Encoding: 1}, r.CountByCategory())
	assert.Equal(t, []string{"Java Placeholder", "UTF-8 BOM"}, r.Validators())
	assert.Len(t, r.ByFile("b.xlf"), 1)

	other := NewReport("c.xlf")
	other.Add(Issue{Validator: "I/O", Category: IO, Filename: "c.xlf"})
	r.Merge(other)
	assert.True(t, r.HasIO())
	assert.Equal(t, []string{"messages(zh).xlf", "c.xlf"}, r.Files)
}

func TestIssueString(t *testing.T) {
	i := sampleReport().Issues[0]
	assert.Equal(t, "messages(zh).xlf:12:27: [Java Placeholder] Placeholder {1} occurs 1 time(s) in source but 0 time(s) in target (unit body.count)", i.String())
	i.UnitID = ""
	assert.NotContains(t, i.String(), "unit")
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		cs, ce       int
		width        int
		want         string
		wantS, wantE int
	}{
		{"short line keeps columns after indent", "    <a>x</a>", 5, 7, 80, "<a>x</a>", 1, 3},
		{"no truncation", "abcdef", 2, 3, 0, "abcdef", 2, 3},
		{"span near start", "0123456789abcdefghij", 2, 3, 10, "0123456...", 2, 3},
		{"span near end", "0123456789abcdefghij", 18, 19, 10, "...defghij", 8, 9},
		{"span in middle", "0123456789abcdefghijklmnopqrstuvwxyz", 17, 18, 12, "...efghij...", 6, 7},
		{"span wider than window", "0123456789abcdefghijklmnopqrstuvwxyz", 11, 30, 12, "...abcdefghijklmnopqrst...", 4, 23},
		{"wide span from first column", "0123456789abcdef", 1, 12, 10, "0123456789ab...", 1, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cs, ce := Snippet(tt.text, tt.cs, tt.ce, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantS, cs)
			assert.Equal(t, tt.wantE, ce)
		})
	}
}

func TestSnippetKeepsWideSpan(t *testing.T) {
	line := strings.Repeat("a", 20) + strings.Repeat("X", 150) + strings.Repeat("b", 20)
	got, cs, ce := Snippet(line, 21, 170, 100)
	assert.Equal(t, strings.Repeat("X", 150), string([]rune(got)[cs-1:ce]))
	assert.Equal(t, "..."+strings.Repeat("X", 150)+"...", got)

	got, cs, ce = Snippet(line, 21, 170, 40)
	assert.Equal(t, 150, ce-cs+1)
	assert.Contains(t, got, strings.Repeat("X", 150))
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "a>>>bc<<<d", Highlight("abcd", 2, 3))
	assert.Equal(t, ">>>a<<<bcd", Highlight("abcd", 0, 0))
	assert.Equal(t, "abc>>>d<<<", Highlight("abcd", 9, 12))
	assert.Equal(t, "", Highlight("", 1, 1))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	sampleReport().WriteText(&buf)
	out := buf.String()
	assert.Contains(t, out, "[Java Placeholder]")
	assert.Contains(t, out, "    <target>You {0} | {1}</target>")
	assert.Contains(t, out, "Issues: 1 in 1 file(s)")

	buf.Reset()
	NewReport("ok.xlf").WriteText(&buf)
	assert.Equal(t, "No issues found.\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteJSON(&buf))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.False(t, out.Valid)
	assert.Equal(t, 1, out.IssueCount)
	assert.Equal(t, "body.count", out.Issues[0].UnitID)
	assert.Equal(t, 1, out.Categories[Placeholder])

	buf.Reset()
	require.NoError(t, NewReport().WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"issues": []`)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	sampleReport().WriteTable(&buf)
	out := buf.String()
	assert.Contains(t, out, "Problem Text")
	assert.Contains(t, out, ">>>{1}<<<")
	assert.Contains(t, out, "27-29")
	assert.Contains(t, out, "Placeholder {1} occurs 1 time(s) in sourc...")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Files = append(r.Files, "messages(fr).xlf")
	r.WriteMarkdown(&buf, "XLIFF Validation")
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# XLIFF Validation\n"))
	assert.Contains(t, out, "## Test Results")
	assert.Contains(t, out, "| messages(fr).xlf | PASS")
	assert.Contains(t, out, "| messages(zh).xlf | FAIL")
	assert.Contains(t, out, `You {0} \| >>>{1}<<<`)
	assert.Contains(t, out, "```xml\n        <target>You {0} | >>>{1}<<<</target>\n```")
}
