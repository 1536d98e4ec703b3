package validate

import (
	"fmt"
	"sort"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// Kind tells whether a check inspects one document or a master/translation pair.
type Kind int

const (
	SingleFile Kind = iota
	FilePair
)

func (k Kind) String() string {
	if k == FilePair {
		return "pair"
	}
	return "single"
}

// SingleFunc inspects one document.
type SingleFunc func(doc *xliff.Document, opts *Options) []report.Issue

// PairFunc compares a translated document against its master.
type PairFunc func(master, translated *xliff.Document, opts *Options) []report.Issue

// Check is one entry of the registry. Exactly one of the two functions is
// set, according to Kind.
type Check struct {
	Number int
	Name   string
	Kind   Kind
	single SingleFunc
	pair   PairFunc
}

// SingleFileCheck declares a check that runs against one document.
func SingleFileCheck(number int, name string, fn SingleFunc) Check {
	return Check{Number: number, Name: name, Kind: SingleFile, single: fn}
}

// FilePairCheck declares a check that compares two documents.
func FilePairCheck(number int, name string, fn PairFunc) Check {
	return Check{Number: number, Name: name, Kind: FilePair, pair: fn}
}

// Registry is an ordered, immutable collection of checks.
type Registry struct {
	checks []Check
}

// NewRegistry orders checks by number. Numbers must be unique and every
// check must carry the function matching its kind.
func NewRegistry(checks ...Check) (*Registry, error) {
	sorted := make([]Check, len(checks))
	copy(sorted, checks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	seen := make(map[int]string)
	for _, c := range sorted {
		if prev, ok := seen[c.Number]; ok {
			return nil, fmt.Errorf("check number %d used by both %q and %q", c.Number, prev, c.Name)
		}
		seen[c.Number] = c.Name
		if (c.Kind == SingleFile && c.single == nil) || (c.Kind == FilePair && c.pair == nil) {
			return nil, fmt.Errorf("check %d %q has no %s function", c.Number, c.Name, c.Kind)
		}
	}
	return &Registry{checks: sorted}, nil
}

// Checks returns the checks of the given kind in execution order.
func (r *Registry) Checks(kind Kind) []Check {
	var out []Check
	for _, c := range r.checks {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// All returns every check in execution order.
func (r *Registry) All() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// DefaultRegistry returns the standard XLIFF 2.0 check sequence.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		SingleFileCheck(1, "UTF-8 BOM", checkBOM),
		SingleFileCheck(2, "XML Declaration", checkDeclaration),
		SingleFileCheck(3, "XML Namespace Prefixes", checkNamespacePrefixes),
		SingleFileCheck(4, "XLIFF Element", checkRootElement),
		SingleFileCheck(5, "XML Validation", checkWellFormed),
		SingleFileCheck(6, "XLIFF Schema", checkSchema),
		SingleFileCheck(7, "Duplicate IDs", checkIdentifiers),
		SingleFileCheck(8, "Java Placeholder", checkJavaPlaceholders),
		SingleFileCheck(9, "Target Format", checkTargetFormat),
		SingleFileCheck(10, "Untranslated Targets", checkUntranslated),
		SingleFileCheck(11, "Initial State", checkInitialState),
		SingleFileCheck(12, "XLIFF Placeholders", checkInlineMarkup),
		FilePairCheck(13, "File Pair Formatting", checkPairFormatting),
		FilePairCheck(14, "File Pair Units", checkPairUnits),
		FilePairCheck(15, "File Pair Structure", checkPairStructure),
	)
	if err != nil {
		panic(err)
	}
	return r
}
