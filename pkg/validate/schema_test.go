package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammathes/xliffverify/pkg/report"
)

func TestLoadContentModel(t *testing.T) {
	m, err := loadContentModel(coreSchemaYAML)
	require.NoError(t, err)
	assert.Equal(t, "xliff", m.Root)
	assert.Equal(t, "urn:oasis:names:tc:xliff:document:2.0", m.Namespace)

	state := m.Elements["segment"].Attributes["state"]
	assert.Equal(t, []string{"initial", "translated", "reviewed", "final"}, state.Enum)

	pc := m.Elements["pc"].Content[0]
	assert.Contains(t, pc.Names, "ph")
	assert.Equal(t, -1, pc.limit)
}

func TestLoadContentModelErrors(t *testing.T) {
	_, err := loadContentModel([]byte("root: missing\nelements: {}\n"))
	assert.Error(t, err)

	_, err = loadContentModel([]byte("root: a\nelements:\n  a:\n    content:\n      - { group: nope }\n"))
	assert.ErrorContains(t, err, "unknown group")

	_, err = loadContentModel([]byte("root: a\nelements:\n  a:\n    attributes:\n      x: { type: colour }\n"))
	assert.ErrorContains(t, err, "unknown type")
}

func TestCheckWellFormed(t *testing.T) {
	valid := xlf("fr", unit("u1", "translated", "Hello", "Bonjour"))
	assert.Empty(t, runCheck(checkWellFormed, parse("a(fr).xlf", valid), Options{}))

	broken := strings.Replace(valid, "</segment>", "</segmnt>", 1)
	issues := runCheck(checkWellFormed, parse("a(fr).xlf", broken), Options{})
	require.Len(t, issues, 1)
	assert.True(t, strings.HasPrefix(issues[0].Message, "XML parsing failed: "), issues[0].Message)
	assert.Equal(t, report.Malformed, issues[0].Category)
	assert.Equal(t, 8, issues[0].Line)
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name    string
		units   string
		message string
		line    int
	}{
		{
			name:  "valid",
			units: unit("u1", "translated", "Hello", "Bonjour"),
		},
		{
			name:  "foreign elements are accepted",
			units: "    <unit id=\"u1\">\n      <mda:metadata xmlns:mda=\"urn:oasis:names:tc:xliff:metadata:2.0\"/>\n      <segment><source>Hi</source></segment>\n    </unit>\n",
		},
		{
			name:    "missing segment",
			units:   "    <unit id=\"u1\">\n    </unit>\n",
			message: "Element 'unit': Missing child element(s). Expected is one of ( segment, ignorable ).",
			line:    4,
		},
		{
			name:    "bad state",
			units:   unit("u1", "done", "Hello", "Bonjour"),
			message: "Element 'segment', attribute 'state': [facet 'enumeration'] The value 'done' is not an element of the set {'initial', 'translated', 'reviewed', 'final'}.",
			line:    5,
		},
		{
			name:    "missing unit id",
			units:   "    <unit>\n      <segment><source>Hi</source></segment>\n    </unit>\n",
			message: "Element 'unit': The attribute 'id' is required but missing.",
			line:    4,
		},
		{
			name:    "target before source",
			units:   "    <unit id=\"u1\">\n      <segment>\n        <target>Salut</target>\n        <source>Hi</source>\n      </segment>\n    </unit>\n",
			message: "Element 'target': This element is not expected. Expected is ( source ).",
			line:    6,
		},
		{
			name:    "text in element-only content",
			units:   "    <unit id=\"u1\">stray\n      <segment><source>Hi</source></segment>\n    </unit>\n",
			message: "Element 'unit': Character content other than whitespace is not allowed because the content type is 'element-only'.",
			line:    4,
		},
		{
			name:    "invalid token",
			units:   "    <unit id=\"u 1\">\n      <segment><source>Hi</source></segment>\n    </unit>\n",
			message: "Element 'unit', attribute 'id': 'u 1' is not a valid value of the atomic type 'xs:NMTOKEN'.",
			line:    4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := runCheck(checkSchema, parse("a(fr).xlf", xlf("fr", tt.units)), Options{})
			if tt.message == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1, "issues: %v", issues)
			assert.Equal(t, "Schema validation failed: "+tt.message, issues[0].Message)
			assert.Equal(t, tt.line, issues[0].Line)
			assert.Equal(t, "XLIFF Schema", issues[0].Validator)
		})
	}
}

func TestCheckSchemaAttributeColumns(t *testing.T) {
	units := "    <unit id=\"u1\">\n      <segment colour=\"red\"><source>Hi</source></segment>\n    </unit>\n"
	issues := runCheck(checkSchema, parse("a(fr).xlf", xlf("fr", units)), Options{})
	require.Len(t, issues, 1)
	i := issues[0]
	assert.Equal(t, "Schema validation failed: Element 'segment', attribute 'colour': The attribute 'colour' is not allowed.", i.Message)
	assert.Equal(t, 5, i.Line)
	assert.Equal(t, 16, i.ColumnStart)
	assert.Equal(t, 21, i.ColumnEnd)
	assert.Equal(t, "u1", i.UnitID)
}

func TestCheckSchemaRootNamespace(t *testing.T) {
	doc := strings.Replace(xlf("fr", unit("u1", "", "Hi", "Salut")), `xmlns="urn:oasis:names:tc:xliff:document:2.0" `, "", 1)
	issues := runCheck(checkSchema, parse("a(fr).xlf", doc), Options{})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "No matching global declaration available for the validation root.")
}

func TestCheckSchemaMalformed(t *testing.T) {
	issues := runCheck(checkSchema, parse("a(fr).xlf", prolog+"<xliff>"), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Document is not well-formed XML; check skipped", issues[0].Message)
	assert.Equal(t, report.Malformed, issues[0].Category)
}
