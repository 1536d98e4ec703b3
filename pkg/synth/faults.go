package synth

import (
	"math/rand"
	"strings"
)

// Fault is a named mutation of the translated document. Validator names
// the first check that reports it when the fault is applied alone, and
// Pair marks faults only the file-pair checks can see.
type Fault struct {
	Name        string
	Description string
	Validator   string
	Pair        bool
	Weight      int
	Apply       func(b *Builder, rng *rand.Rand)
}

func pick(rng *rand.Rand, idx []int) int {
	return idx[rng.Intn(len(idx))]
}

// Faults is the catalogue of injectable faults, ordered by the check that
// detects them.
var Faults = []Fault{
	{
		Name:        "bom_removed",
		Description: "Drop the UTF-8 byte-order mark",
		Validator:   "UTF-8 BOM",
		Weight:      3,
		Apply:       func(b *Builder, _ *rand.Rand) { b.OmitBOM = true },
	},
	{
		Name:        "declaration_single_quotes",
		Description: "Write the XML declaration with single quotes",
		Validator:   "XML Declaration",
		Weight:      3,
		Apply:       func(b *Builder, _ *rand.Rand) { b.SingleQuotedDecl = true },
	},
	{
		Name:        "namespace_prefix",
		Description: "Write one unit element with a namespace prefix",
		Validator:   "XML Namespace Prefixes",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			b.PrefixedUnit = rng.Intn(len(b.Units))
		},
	},
	{
		Name:        "root_attribute_order",
		Description: "Write trgLang before srcLang on the root element",
		Validator:   "XLIFF Element",
		Weight:      3,
		Apply:       func(b *Builder, _ *rand.Rand) { b.SwapLangAttrs = true },
	},
	{
		Name:        "broken_end_tag",
		Description: "Misspell the end tag of one segment",
		Validator:   "XML Validation",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[rng.Intn(len(b.Units))]
			u.Target += "</segmnt>"
		},
	},
	{
		Name:        "invalid_state",
		Description: "Use a segment state outside the XLIFF enumeration",
		Validator:   "XLIFF Schema",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			b.Units[rng.Intn(len(b.Units))].State = "done"
		},
	},
	{
		Name:        "duplicate_unit",
		Description: "Give a unit the id of its predecessor",
		Validator:   "Duplicate IDs",
		Weight:      3,
		Apply: func(b *Builder, rng *rand.Rand) {
			i := 1 + rng.Intn(len(b.Units)-1)
			b.Units[i].ID = b.Units[i-1].ID
		},
	},
	{
		Name:        "span_id_gap",
		Description: "Renumber a <ph> so the span ids skip a number",
		Validator:   "ID Sequence",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[pick(rng, b.unitsWith(withData))]
			u.Target = strings.Replace(u.Target, `<ph id="2"`, `<ph id="3"`, 1)
		},
	},
	{
		Name:        "dangling_data_ref",
		Description: "Point a <ph> at a <data> entry that does not exist",
		Validator:   "Missing Data Ref",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[pick(rng, b.unitsWith(withData))]
			u.Source = strings.Replace(u.Source, `dataRef="d_3"`, `dataRef="d_4"`, 1)
			u.Target = strings.Replace(u.Target, `dataRef="d_3"`, `dataRef="d_4"`, 1)
		},
	},
	{
		Name:        "unused_data",
		Description: "Add a <data> entry no span references",
		Validator:   "Unused Data ID",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[pick(rng, b.unitsWith(withData))]
			u.Data = append(u.Data, Datum{"d_4", "<hr/>"})
		},
	},
	{
		Name:        "placeholder_drop",
		Description: "Remove a {n} placeholder from a target",
		Validator:   "Java Placeholder",
		Weight:      4,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[pick(rng, b.unitsWith(withPlaceholders))]
			u.Target = strings.Replace(u.Target, " {1}", "", 1)
		},
	},
	{
		Name:        "whitespace_drift",
		Description: "Indent a target line differently from its source",
		Validator:   "Target Format",
		Weight:      3,
		Apply: func(b *Builder, rng *rand.Rand) {
			b.Units[rng.Intn(len(b.Units))].TargetIndent = "          "
		},
	},
	{
		Name:        "untranslated_target",
		Description: "Copy the source into the target",
		Validator:   "Untranslated Targets",
		Weight:      4,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[pick(rng, b.unitsWith(plain))]
			u.Target = u.Source
		},
	},
	{
		Name:        "initial_state_drift",
		Description: "Mark a translated segment as initial",
		Validator:   "Initial State",
		Weight:      3,
		Apply: func(b *Builder, rng *rand.Rand) {
			b.Units[pick(rng, b.unitsWith(plain))].State = "initial"
		},
	},
	{
		Name:        "html_imbalance",
		Description: "Change a closing tag in <data> so the rebuilt HTML is unbalanced",
		Validator:   "XLIFF Placeholders",
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			u := b.Units[pick(rng, b.unitsWith(withData))]
			u.Data[1].Value = "</i>"
		},
	},
	{
		Name:        "unit_swap",
		Description: "Swap the first two units",
		Validator:   "File Pair Units",
		Pair:        true,
		Weight:      3,
		Apply: func(b *Builder, _ *rand.Rand) {
			b.Units[0], b.Units[1] = b.Units[1], b.Units[0]
		},
	},
	{
		Name:        "segment_attribute",
		Description: "Add an attribute to one translated segment",
		Validator:   "File Pair Structure",
		Pair:        true,
		Weight:      2,
		Apply: func(b *Builder, rng *rand.Rand) {
			b.Units[rng.Intn(len(b.Units))].SegmentAttrs = ` canResegment="no"`
		},
	},
}

// FaultByName looks a fault up in the catalogue.
func FaultByName(name string) (Fault, bool) {
	for _, f := range Faults {
		if f.Name == name {
			return f, true
		}
	}
	return Fault{}, false
}

// conflicts lists faults that must not be combined because one hides or
// undoes the other.
var conflicts = map[string][]string{
	"unit_swap":           {"duplicate_unit"},
	"duplicate_unit":      {"unit_swap"},
	"initial_state_drift": {"untranslated_target", "invalid_state"},
	"untranslated_target": {"initial_state_drift"},
	"invalid_state":       {"initial_state_drift"},
	"span_id_gap":         {"dangling_data_ref", "unused_data", "html_imbalance"},
	"dangling_data_ref":   {"span_id_gap", "unused_data", "html_imbalance"},
	"unused_data":         {"span_id_gap", "dangling_data_ref", "html_imbalance"},
	"html_imbalance":      {"span_id_gap", "dangling_data_ref", "unused_data"},
}

// ApplyRandom applies up to n distinct faults chosen by weight and returns
// them in the order applied.
func ApplyRandom(b *Builder, n int, rng *rand.Rand) []Fault {
	used := map[string]bool{}
	var applied []Fault
	for range n {
		total := 0
		for _, f := range Faults {
			if !used[f.Name] {
				total += f.Weight
			}
		}
		if total == 0 {
			break
		}
		r := rng.Intn(total)
		for _, f := range Faults {
			if used[f.Name] {
				continue
			}
			r -= f.Weight
			if r < 0 {
				f.Apply(b, rng)
				applied = append(applied, f)
				used[f.Name] = true
				for _, c := range conflicts[f.Name] {
					used[c] = true
				}
				break
			}
		}
	}
	return applied
}
