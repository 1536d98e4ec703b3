package stress_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/synth"
	"github.com/adammathes/xliffverify/pkg/validate"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// testResult wraps the issues of one synthetic pair validation.
type testResult struct {
	issues []report.Issue
}

func validateSynthetic(t *testing.T, b *synth.Builder, reportAll bool) *testResult {
	t.Helper()
	v := validate.New(nil, validate.Options{ReportAll: reportAll})
	master := xliff.Parse(b.MasterName(), b.Master())
	translated := xliff.Parse(b.TranslationName(), b.Translation())
	return &testResult{issues: v.ValidatePair(master, translated)}
}

func (r *testResult) first() string {
	if len(r.issues) == 0 {
		return ""
	}
	return r.issues[0].Validator
}

func (r *testResult) has(validator string) bool {
	for _, i := range r.issues {
		if i.Validator == validator {
			return true
		}
	}
	return false
}

func (r *testResult) dump(t *testing.T) {
	t.Helper()
	for _, i := range r.issues {
		t.Logf("  %s", i)
	}
}

func TestSyntheticValidPairs(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := synth.NewBuilder("stress", "fr", 5+rng.Intn(20), rng)
		r := validateSynthetic(t, b, true)
		if len(r.issues) > 0 {
			t.Errorf("seed %d: expected valid pair", seed)
			r.dump(t)
		}
	}
}

// TestSyntheticSingleFault injects each fault alone and expects its
// validator to raise the first issue, both in fail-fast and report-all
// mode.
func TestSyntheticSingleFault(t *testing.T) {
	for _, f := range synth.Faults {
		t.Run(f.Name, func(t *testing.T) {
			for seed := int64(0); seed < 25; seed++ {
				rng := rand.New(rand.NewSource(seed))
				b := synth.NewBuilder("stress", "de", 5+rng.Intn(10), rng)
				f.Apply(b, rng)

				r := validateSynthetic(t, b, false)
				if r.first() != f.Validator {
					t.Errorf("seed %d: first issue from %q, want %q", seed, r.first(), f.Validator)
					r.dump(t)
				}
				if all := validateSynthetic(t, b, true); !all.has(f.Validator) {
					t.Errorf("seed %d: report-all mode misses %q", seed, f.Validator)
					all.dump(t)
				}
			}
		})
	}
}

// TestSyntheticFailFastStopsAtOneCheck checks that fail-fast validation of a
// faulty pair reports issues of a single check only.
func TestSyntheticFailFastStopsAtOneCheck(t *testing.T) {
	numbers := make(map[string]int)
	for _, c := range validate.DefaultRegistry().All() {
		numbers[c.Name] = c.Number
	}
	// check 7 reports under several names
	for _, name := range []string{"ID Sequence", "Mismatched ID Prefix", "Missing Data Ref", "Unused Data ID"} {
		numbers[name] = numbers["Duplicate IDs"]
	}

	for seed := int64(0); seed < 300; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := synth.NewBuilder("stress", "ja", 5+rng.Intn(10), rng)
		applied := synth.ApplyRandom(b, 1+rng.Intn(3), rng)
		r := validateSynthetic(t, b, false)
		if len(r.issues) == 0 {
			t.Errorf("seed %d: faults %v not detected", seed, faultNames(applied))
			continue
		}

		checks := make(map[int]bool)
		for _, i := range r.issues {
			checks[numbers[i.Validator]] = true
		}
		if len(checks) != 1 {
			t.Errorf("seed %d: fail-fast reported %d checks", seed, len(checks))
			r.dump(t)
		}

		expected := false
		for _, f := range applied {
			expected = expected || r.first() == f.Validator
		}
		if !expected {
			t.Errorf("seed %d: first issue from %q, faults %v", seed, r.first(), faultNames(applied))
			r.dump(t)
		}
	}
}

func TestSyntheticLargeFile(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	b := synth.NewBuilder("large", "pt-BR", 2000, rng)
	if r := validateSynthetic(t, b, true); len(r.issues) > 0 {
		t.Errorf("expected valid pair, got %d issues", len(r.issues))
	}

	f, _ := synth.FaultByName("unit_swap")
	f.Apply(b, rng)
	r := validateSynthetic(t, b, false)
	if r.first() != "File Pair Units" {
		t.Fatalf("first issue from %q, want File Pair Units", r.first())
	}
	if !strings.Contains(r.issues[0].Message, "is out of order") {
		t.Errorf("unexpected message %q", r.issues[0].Message)
	}
}

func faultNames(faults []synth.Fault) []string {
	names := make([]string, len(faults))
	for i, f := range faults {
		names[i] = f.Name
	}
	return names
}
