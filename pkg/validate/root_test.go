package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withRoot replaces the <xliff> start tag of a valid document.
func withRoot(tag string) string {
	doc := xlf("fr", unit("u1", "translated", "Hello", "Bonjour"))
	start := strings.Index(doc, "<xliff")
	end := start + strings.Index(doc[start:], ">") + 1
	return doc[:start] + tag + doc[end:]
}

func TestCheckRootElement(t *testing.T) {
	const ns = `xmlns="urn:oasis:names:tc:xliff:document:2.0"`
	tests := []struct {
		name    string
		file    string
		tag     string
		message string
	}{
		{
			name: "valid",
			file: "messages(fr).xlf",
			tag:  `<xliff ` + ns + ` version="2.0" srcLang="en" trgLang="fr">`,
		},
		{
			name: "region subtag matches language prefix",
			file: "messages(fr).xlf",
			tag:  `<xliff ` + ns + ` version="2.0" srcLang="en" trgLang="fr-CA">`,
		},
		{
			name: "no language in file name",
			file: "messages.xlf",
			tag:  `<xliff ` + ns + ` version="2.0" srcLang="en" trgLang="de">`,
		},
		{
			name:    "missing trgLang",
			file:    "messages(fr).xlf",
			tag:     `<xliff ` + ns + ` version="2.0" srcLang="en">`,
			message: "Missing required attribute 'trgLang' in <xliff> tag.",
		},
		{
			name:    "out of order",
			file:    "messages(fr).xlf",
			tag:     `<xliff version="2.0" ` + ns + ` srcLang="en" trgLang="fr">`,
			message: "Attribute 'version' is out of order in <xliff> tag.",
		},
		{
			name:    "extra attribute",
			file:    "messages(fr).xlf",
			tag:     `<xliff ` + ns + ` version="2.0" srcLang="en" trgLang="fr" xml:space="preserve">`,
			message: "Unexpected attribute 'xml:space' in <xliff> tag.",
		},
		{
			name:    "wrong source language",
			file:    "messages(fr).xlf",
			tag:     `<xliff ` + ns + ` version="2.0" srcLang="de" trgLang="fr">`,
			message: "Attribute 'srcLang' has value 'de', expected 'en'.",
		},
		{
			name:    "trgLang does not match file name",
			file:    "messages(zh).xlf",
			tag:     `<xliff ` + ns + ` version="2.0" srcLang="en" trgLang="fr">`,
			message: "trgLang 'fr' does not match filename language code 'zh'",
		},
		{
			name:    "trgLang prefix is case sensitive",
			file:    "messages(zh).xlf",
			tag:     `<xliff ` + ns + ` version="2.0" srcLang="en" trgLang="ZH">`,
			message: "trgLang 'ZH' does not match filename language code 'zh'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := runCheck(checkRootElement, parse(tt.file, withRoot(tt.tag)), Options{})
			if tt.message == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, tt.message, issues[0].Message)
			assert.Equal(t, 2, issues[0].Line)
		})
	}
}

func TestCheckRootElementMultiLineTag(t *testing.T) {
	tag := "<xliff xmlns=\"urn:oasis:names:tc:xliff:document:2.0\"\n       version=\"2.0\" srcLang=\"en\"\n       trgLang=\"de\">"
	issues := runCheck(checkRootElement, parse("messages(fr).xlf", withRoot(tag)), Options{})
	require.Len(t, issues, 1)
	i := issues[0]
	assert.Equal(t, "trgLang 'de' does not match filename language code 'fr'", i.Message)
	assert.Equal(t, 4, i.Line)
	assert.Equal(t, 17, i.ColumnStart)
	assert.Equal(t, 18, i.ColumnEnd)
}

func TestCheckRootElementMissing(t *testing.T) {
	doc := prolog + "<document/>\n"
	issues := runCheck(checkRootElement, parse("messages(fr).xlf", doc), Options{})
	require.Len(t, issues, 1)
	assert.Equal(t, "Missing <xliff> element.", issues[0].Message)
}

func TestCheckRootElementSourceLanguageOption(t *testing.T) {
	tag := `<xliff xmlns="urn:oasis:names:tc:xliff:document:2.0" version="2.0" srcLang="de" trgLang="fr">`
	issues := runCheck(checkRootElement, parse("messages(fr).xlf", withRoot(tag)), Options{SourceLanguage: "de"})
	assert.Empty(t, issues)
}
