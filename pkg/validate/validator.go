// Package validate runs the XLIFF 2.0 integrity checks. Single documents go
// through an ordered pipeline of single-file checks; a translated document
// and its master additionally go through the file-pair checks.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/adammathes/xliffverify/pkg/logging"
	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// ErrUsage is returned when the number of paths is neither one nor two.
var ErrUsage = errors.New("expected one file, or a master file and a translated file")

// Options configures validation behavior.
type Options struct {
	// SourceLanguage is the required srcLang of every document. Defaults to "en".
	SourceLanguage string

	// InitialState is the segment state meaning "not yet translated".
	// Segments without a state attribute are in this state. Defaults to "initial".
	InitialState string

	// UntranslatedExclusions lists unit ids whose targets may equal their
	// sources. Nil selects "header.application_name"; an empty slice
	// exempts nothing.
	UntranslatedExclusions []string

	// ReportAll disables fail-fast: every check runs and all issues are
	// returned, and pair checks run even when a document failed a
	// single-file check.
	ReportAll bool

	// MaxDiffLines bounds the structural diff attached to pair-structure
	// issues. Defaults to 20.
	MaxDiffLines int

	// Logger receives one debug record per executed check. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// DefaultExclusions is the exclusion set used when none is configured.
var DefaultExclusions = []string{"header.application_name"}

func (o Options) withDefaults() Options {
	if o.SourceLanguage == "" {
		o.SourceLanguage = "en"
	}
	if o.InitialState == "" {
		o.InitialState = "initial"
	}
	if o.UntranslatedExclusions == nil {
		o.UntranslatedExclusions = DefaultExclusions
	}
	if o.MaxDiffLines <= 0 {
		o.MaxDiffLines = 20
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

func (o *Options) excluded(unitID string) bool {
	for _, id := range o.UntranslatedExclusions {
		if id == unitID {
			return true
		}
	}
	return false
}

// Validator runs the checks of a registry with fixed options. It holds no
// mutable state and may be used from several goroutines.
type Validator struct {
	registry *Registry
	opts     Options
}

// New creates a validator. A nil registry selects DefaultRegistry.
func New(registry *Registry, opts Options) *Validator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Validator{registry: registry, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (v *Validator) Options() Options {
	return v.opts
}

// ValidateDocument runs the single-file pipeline. Unless ReportAll is set it
// stops after the first check that reports anything.
func (v *Validator) ValidateDocument(doc *xliff.Document) []report.Issue {
	var issues []report.Issue
	for _, c := range v.registry.Checks(SingleFile) {
		v.opts.Logger.Debug("running check", "number", c.Number, "name", c.Name, "file", doc.Name)
		found := c.single(doc, &v.opts)
		issues = append(issues, found...)
		if len(found) > 0 {
			v.opts.Logger.Debug("check failed", "number", c.Number, "name", c.Name, "file", doc.Name, "issues", len(found))
			if !v.opts.ReportAll {
				break
			}
		}
	}
	return issues
}

// ValidatePair runs the single-file pipeline on both documents and, when
// both pass, the file-pair checks. Pair checks are fail-fast as well.
func (v *Validator) ValidatePair(master, translated *xliff.Document) []report.Issue {
	issues := v.ValidateDocument(master)
	issues = append(issues, v.ValidateDocument(translated)...)
	if len(issues) > 0 && !v.opts.ReportAll {
		return issues
	}

	for _, c := range v.registry.Checks(FilePair) {
		v.opts.Logger.Debug("running pair check", "number", c.Number, "name", c.Name, "master", master.Name, "file", translated.Name)
		found := c.pair(master, translated, &v.opts)
		issues = append(issues, found...)
		if len(found) > 0 && !v.opts.ReportAll {
			break
		}
	}
	return issues
}

// ValidateFile loads and validates one file. Unreadable files yield a single
// I/O issue.
func (v *Validator) ValidateFile(path string) *report.Report {
	r := report.NewReport(filepath.Base(path))
	doc, err := xliff.Open(path)
	if err != nil {
		r.Add(ioIssue(path, err))
		return r
	}
	r.Add(v.ValidateDocument(doc)...)
	return r
}

// ValidatePairFiles loads a master and a translated file and validates them
// as a pair.
func (v *Validator) ValidatePairFiles(masterPath, translatedPath string) *report.Report {
	r := report.NewReport(filepath.Base(masterPath), filepath.Base(translatedPath))
	master, err := xliff.Open(masterPath)
	if err != nil {
		r.Add(ioIssue(masterPath, err))
	}
	translated, err := xliff.Open(translatedPath)
	if err != nil {
		r.Add(ioIssue(translatedPath, err))
	}
	if r.HasIO() {
		return r
	}
	r.Add(v.ValidatePair(master, translated)...)
	return r
}

// ValidateFiles validates one path as a single file or two paths as a
// master/translation pair, master first.
func (v *Validator) ValidateFiles(paths ...string) (*report.Report, error) {
	switch len(paths) {
	case 1:
		return v.ValidateFile(paths[0]), nil
	case 2:
		return v.ValidatePairFiles(paths[0], paths[1]), nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrUsage, len(paths))
}

// Validate runs all single-file checks on an XLIFF file and returns a report.
func Validate(path string) (*report.Report, error) {
	return ValidateWithOptions(path, Options{})
}

// ValidateWithOptions runs single-file validation with the given options.
func ValidateWithOptions(path string, opts Options) (*report.Report, error) {
	return New(nil, opts).ValidateFiles(path)
}

// ValidatePair validates a translated file against its master.
func ValidatePair(masterPath, translatedPath string, opts Options) (*report.Report, error) {
	return New(nil, opts).ValidateFiles(masterPath, translatedPath)
}

func ioIssue(path string, err error) report.Issue {
	return report.Issue{
		Validator:   "File Access",
		Category:    report.IO,
		Message:     fmt.Sprintf("Cannot read file: %v", err),
		Filename:    filepath.Base(path),
		Line:        1,
		ColumnStart: 1,
		ColumnEnd:   1,
	}
}
