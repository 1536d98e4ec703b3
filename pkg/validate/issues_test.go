package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammathes/xliffverify/pkg/report"
)

func TestAttrIssueColumns(t *testing.T) {
	doc := parse("a(fr).xlf", xlf("fr", `    <unit   id="u1" name="x">`+"\n"+
		`      <segment state="translated"><source>a</source><target>b</target></segment>`+"\n"+
		"    </unit>\n"))
	require.Nil(t, doc.ParseErr)
	n := doc.Units()[0].Node

	i := attrIssue(doc, "Duplicate IDs", report.Identifier, n, "id", "u1", "m")
	assert.Equal(t, 4, i.Line)
	assert.Equal(t, 13, i.ColumnStart)
	assert.Equal(t, 14, i.ColumnEnd)

	i = attrIssue(doc, "Duplicate IDs", report.Identifier, n, "name", "u1", "m")
	assert.Equal(t, 20, i.ColumnStart)
	assert.Equal(t, 23, i.ColumnEnd)
}

func TestAttrPatternIsShared(t *testing.T) {
	assert.Same(t, attrPattern("dataRef"), attrPattern("dataRef"))
	assert.NotSame(t, attrPattern("dataRef"), attrPattern("dataRefStart"))
	assert.False(t, attrPattern("dataRef").MatchString(` dataRefStart="d_1"`))
}
