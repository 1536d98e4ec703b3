// Package synth generates synthetic XLIFF 2.0 master/translation pairs and
// injects named faults into the translation. It feeds the stress tests and
// the xlifffuzz command.
package synth

import (
	"fmt"
	"html"
	"math/rand"
	"strings"

	"github.com/adammathes/xliffverify/pkg/validate"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// Datum is one <data> entry of a unit.
type Datum struct {
	ID    string
	Value string
}

// Unit is a generated one-segment unit. Source and Target hold XLIFF
// markup, so inline elements are written verbatim.
type Unit struct {
	ID           string
	State        string
	SegmentAttrs string
	Data         []Datum
	Source       string
	Target       string
	TargetIndent string
}

func (u Unit) clone() *Unit {
	u.Data = append([]Datum(nil), u.Data...)
	return &u
}

// Builder holds the unit model of one generated file pair. Faults change
// the translation only; the master is fixed when the builder is created.
type Builder struct {
	Name       string
	SourceLang string
	Lang       string
	Units      []*Unit

	master []*Unit

	// translation rendering switches
	OmitBOM          bool
	SingleQuotedDecl bool
	SwapLangAttrs    bool
	PrefixedUnit     int // index of a unit written as <ns0:unit>, or -1
}

var vocabulary = []struct{ en, fr string }{
	{"welcome", "bienvenue"}, {"message", "courriel"}, {"account", "compte"},
	{"settings", "réglages"}, {"save", "enregistrer"}, {"cancel", "annuler"},
	{"profile", "profil"}, {"search", "chercher"}, {"network", "réseau"},
	{"update", "actualiser"}, {"delete", "supprimer"}, {"archive", "classer"},
}

func phrase(rng *rand.Rand, words int) (en, fr string) {
	var a, b []string
	for range words {
		w := vocabulary[rng.Intn(len(vocabulary))]
		a = append(a, w.en)
		b = append(b, w.fr)
	}
	return strings.Join(a, " "), strings.Join(b, " ")
}

// NewBuilder generates a pair named name(SourceLang).xlf / name(lang).xlf
// with n units, at least five. Units cycle through plain text, Java
// placeholders and inline markup; the first two are always plain so they
// share the same layout.
func NewBuilder(name, lang string, n int, rng *rand.Rand) *Builder {
	n = max(n, 5)
	b := &Builder{Name: name, SourceLang: "en", Lang: lang, PrefixedUnit: -1}
	for i := range n {
		u := &Unit{ID: fmt.Sprintf("synth.u%03d", i+1), State: "translated"}
		en, fr := phrase(rng, 1+rng.Intn(3))
		switch {
		case i < 2 || i%3 == 0:
			u.Source, u.Target = en, fr
		case i%3 == 1:
			u.Source = en + " {0} " + en + " {1}"
			u.Target = fr + " {1} " + fr + " {0}"
		default:
			u.Data = []Datum{{"d_1", "<b>"}, {"d_2", "</b>"}, {"d_3", "<br/>"}}
			span := `<pc id="1" dataRefStart="d_1" dataRefEnd="d_2">%s</pc><ph id="2" dataRef="d_3"/>`
			u.Source = en + " " + fmt.Sprintf(span, en)
			u.Target = fr + " " + fmt.Sprintf(span, fr)
		}
		b.Units = append(b.Units, u)
	}
	for _, u := range b.Units {
		m := u.clone()
		m.Target, m.State = m.Source, "final"
		b.master = append(b.master, m)
	}
	return b
}

// MasterName returns the file name of the master document.
func (b *Builder) MasterName() string {
	return b.Name + "(" + b.SourceLang + ").xlf"
}

// TranslationName returns the file name of the translated document.
func (b *Builder) TranslationName() string {
	return b.Name + "(" + b.Lang + ").xlf"
}

// Master renders the master document.
func (b *Builder) Master() []byte {
	var sb strings.Builder
	sb.Write(xliff.BOMUTF8.Bytes())
	sb.WriteString(validate.ExpectedDeclaration + "\n")
	fmt.Fprintf(&sb, `<xliff xmlns="%s" version="2.0" srcLang="%s" trgLang="%s">`+"\n", xliff.Namespace, b.SourceLang, b.SourceLang)
	writeUnits(&sb, b.master, -1)
	return []byte(sb.String())
}

// Translation renders the translated document with every applied fault.
func (b *Builder) Translation() []byte {
	var sb strings.Builder
	if !b.OmitBOM {
		sb.Write(xliff.BOMUTF8.Bytes())
	}
	if b.SingleQuotedDecl {
		sb.WriteString(`<?xml version='1.0' encoding='UTF-8'?>` + "\n")
	} else {
		sb.WriteString(validate.ExpectedDeclaration + "\n")
	}
	langs := fmt.Sprintf(`srcLang="%s" trgLang="%s"`, b.SourceLang, b.Lang)
	if b.SwapLangAttrs {
		langs = fmt.Sprintf(`trgLang="%s" srcLang="%s"`, b.Lang, b.SourceLang)
	}
	fmt.Fprintf(&sb, `<xliff xmlns="%s" version="2.0" %s>`+"\n", xliff.Namespace, langs)
	writeUnits(&sb, b.Units, b.PrefixedUnit)
	return []byte(sb.String())
}

func writeUnits(sb *strings.Builder, units []*Unit, prefixed int) {
	sb.WriteString("  <file id=\"f1\">\n")
	for i, u := range units {
		tag := "unit"
		if i == prefixed {
			tag = "ns0:unit"
		}
		fmt.Fprintf(sb, "    <%s id=\"%s\">\n", tag, u.ID)
		if len(u.Data) > 0 {
			sb.WriteString("      <originalData>\n")
			for _, d := range u.Data {
				fmt.Fprintf(sb, "        <data id=\"%s\">%s</data>\n", d.ID, html.EscapeString(d.Value))
			}
			sb.WriteString("      </originalData>\n")
		}
		fmt.Fprintf(sb, "      <segment state=\"%s\"%s>\n", u.State, u.SegmentAttrs)
		fmt.Fprintf(sb, "        <source>%s</source>\n", u.Source)
		indent := u.TargetIndent
		if indent == "" {
			indent = "        "
		}
		fmt.Fprintf(sb, "%s<target>%s</target>\n", indent, u.Target)
		sb.WriteString("      </segment>\n")
		fmt.Fprintf(sb, "    </%s>\n", tag)
	}
	sb.WriteString("  </file>\n")
	sb.WriteString("</xliff>\n")
}

// unitsWith returns the indexes of the units matching pred.
func (b *Builder) unitsWith(pred func(*Unit) bool) []int {
	var out []int
	for i, u := range b.Units {
		if pred(u) {
			out = append(out, i)
		}
	}
	return out
}

func plain(u *Unit) bool {
	return len(u.Data) == 0 && !strings.Contains(u.Source, "{")
}

func withPlaceholders(u *Unit) bool {
	return strings.Contains(u.Source, "{1}")
}

func withData(u *Unit) bool {
	return len(u.Data) > 0
}
