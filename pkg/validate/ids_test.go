package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammathes/xliffverify/pkg/report"
)

// dataUnit builds a unit with original data entries and one segment.
func dataUnit(id, data, source, target string) string {
	return `    <unit id="` + id + `">` + "\n" +
		"      <originalData>\n" +
		data +
		"      </originalData>\n" +
		"      <segment state=\"translated\">\n" +
		"        <source>" + source + "</source>\n" +
		"        <target>" + target + "</target>\n" +
		"      </segment>\n" +
		"    </unit>\n"
}

func datum(id, value string) string {
	return `        <data id="` + id + `">` + value + "</data>\n"
}

func TestCheckIdentifiersFixture(t *testing.T) {
	doc := parse("messages(zh).xlf", readFixture(t, "zh"))
	assert.Empty(t, runCheck(checkIdentifiers, doc, Options{}))
}

func TestCheckIdentifiersDuplicateUnit(t *testing.T) {
	doc := parse("a(fr).xlf", xlf("fr", unit("u1", "translated", "A", "B")+unit("u1", "translated", "C", "D")))
	issues := runCheck(checkIdentifiers, doc, Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Duplicate IDs", issues[0].Validator)
	assert.Equal(t, "Duplicate global ID: 'u1'", issues[0].Message)
	assert.Equal(t, 10, issues[0].Line)
	assert.Equal(t, report.Identifier, issues[0].Category)
}

func TestCheckIdentifiersFileAndUnitShareNamespace(t *testing.T) {
	doc := parse("a(fr).xlf", xlf("fr", unit("f1", "translated", "A", "B")))
	issues := runCheck(checkIdentifiers, doc, Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Duplicate global ID: 'f1'", issues[0].Message)
}

func TestCheckIdentifiersDuplicateData(t *testing.T) {
	u := dataUnit("u1",
		datum("d_1", "&lt;br/&gt;")+datum("d_1", "&lt;hr/&gt;"),
		`A<ph id="1" dataRef="d_1"/>`, `B<ph id="1" dataRef="d_1"/>`)
	issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Duplicate <data> ID in unit 'u1': 'd_1'", issues[0].Message)
	assert.Equal(t, 7, issues[0].Line)
}

func TestCheckIdentifiersDataSequence(t *testing.T) {
	u := dataUnit("u1",
		datum("d_1", "&lt;br/&gt;")+datum("d_3", "&lt;hr/&gt;"),
		`A<ph id="1" dataRef="d_1"/><ph id="2" dataRef="d_3"/>`, `B<ph id="1" dataRef="d_1"/><ph id="2" dataRef="d_3"/>`)
	issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "ID Sequence", issues[0].Validator)
	assert.Equal(t, "<data> IDs in unit 'u1' do not follow sequential pattern d_1, d_2, ...", issues[0].Message)
	assert.Equal(t, 4, issues[0].Line)
}

func TestCheckIdentifiersSpanSequence(t *testing.T) {
	data := datum("d_1", "&lt;b&gt;") + datum("d_2", "&lt;/b&gt;") + datum("d_3", "&lt;br/&gt;")

	t.Run("interleaved kinds", func(t *testing.T) {
		src := `<ph id="1" dataRef="d_3"/><pc id="2" dataRefStart="d_1" dataRefEnd="d_2">x</pc><ph id="3" dataRef="d_3"/>`
		u := dataUnit("u1", data, src, src)
		assert.Empty(t, runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{}))
	})

	t.Run("gap", func(t *testing.T) {
		src := `<pc id="1" dataRefStart="d_1" dataRefEnd="d_2">x</pc><ph id="3" dataRef="d_3"/>`
		u := dataUnit("u1", data, src, src)
		issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
		require.Len(t, issues, 2, "source and target are numbered separately")
		for _, i := range issues {
			assert.Equal(t, "<ph>/<pc> IDs in unit 'u1' must follow a shared sequential pattern like ph1, pc2, pc3, ph4", i.Message)
		}
		assert.Equal(t, 11, issues[0].Line)
		assert.Equal(t, 12, issues[1].Line)
	})

	t.Run("duplicate", func(t *testing.T) {
		src := `<pc id="1" dataRefStart="d_1" dataRefEnd="d_2">x</pc><ph id="1" dataRef="d_3"/>`
		u := dataUnit("u1", data, `<pc id="1" dataRefStart="d_1" dataRefEnd="d_2">x</pc><ph id="2" dataRef="d_3"/>`, src)
		issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
		require.Len(t, issues, 1)
		assert.Equal(t, 12, issues[0].Line)
	})
}

func TestCheckIdentifiersUnusedData(t *testing.T) {
	u := dataUnit("u1", datum("p_1", "&lt;br/&gt;"), "Hello", "Bonjour")
	issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Unused Data ID", issues[0].Validator)
	assert.Equal(t, "<data> ID not referenced in unit 'u1': 'p_1'", issues[0].Message)
	assert.Equal(t, 6, issues[0].Line)
	assert.Equal(t, "u1", issues[0].UnitID)
}

func TestCheckIdentifiersMissingDataRef(t *testing.T) {
	src := `A<ph id="1" dataRef="d_1"/><ph id="2" dataRef="d_2"/>`
	u := dataUnit("u1", datum("d_1", "&lt;br/&gt;"), src, src)
	issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Missing Data Ref", issues[0].Validator)
	assert.Equal(t, "Missing <data> element for referenced ID 'd_2' in unit 'u1'", issues[0].Message)
	assert.Equal(t, 4, issues[0].Line)
}

func TestCheckIdentifiersPrefixMismatch(t *testing.T) {
	data := datum("d_1", "&lt;b&gt;") + datum("d_2", "&lt;/b&gt;")
	src := `<pc id="b_1" dataRefStart="d_1" dataRefEnd="d_2">x</pc>`
	u := dataUnit("u1", data, src, `<pc id="d_1" dataRefStart="d_1" dataRefEnd="d_2">y</pc>`)
	issues := runCheck(checkIdentifiers, parse("a(fr).xlf", xlf("fr", u)), Options{})
	require.Len(t, issues, 2)
	assert.Equal(t, "Mismatched ID Prefix", issues[0].Validator)
	assert.Equal(t, "Tag 'b_1' has dataRefStart='d_1', but their prefixes do not match.", issues[0].Message)
	assert.Equal(t, "Tag 'b_1' has dataRefEnd='d_2', but their prefixes do not match.", issues[1].Message)
	assert.Equal(t, 10, issues[0].Line)
}

func TestSequential(t *testing.T) {
	assert.True(t, sequential(nil))
	assert.True(t, sequential([]int{3, 1, 2}))
	assert.False(t, sequential([]int{1, 1}))
	assert.False(t, sequential([]int{2, 3}))
}

func TestCheckIdentifiersMalformed(t *testing.T) {
	issues := runCheck(checkIdentifiers, parse("a(fr).xlf", prolog+"<xliff><file>"), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, report.Malformed, issues[0].Category)
}
