// Package doctor implements a repair mode ("doctor") that applies safe,
// mechanical fixes for the encoding-level defects of an XLIFF file.
//
// The approach:
//  1. Read the file and run the validator in report-all mode
//  2. Apply the fixes in memory, in file order
//  3. Write the repaired file atomically
//  4. Re-validate the output to confirm the fixes worked
//
// Fixes:
//   - UTF-8 BOM: transcodes UTF-16/UTF-32 input, or adds a missing mark
//   - XML Declaration: replaces or inserts the exact declaration
//   - XML Namespace Prefixes: strips prefixes bound to the XLIFF namespace
//   - XLIFF Element: puts the root attributes in canonical order
//
// Content problems (ids, placeholders, translations) are never touched.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/validate"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// Result holds the outcome of a doctor run.
type Result struct {
	Fixes  []Fix
	Before *report.Report
	After  *report.Report
	Output string // empty when nothing was written
}

// DefaultOutput returns the path used when no output path is given:
// messages(zh).xlf becomes messages(zh).fixed.xlf.
func DefaultOutput(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".fixed" + ext
}

// Repair validates inputPath, applies fixes and writes the repaired file to
// outputPath. If outputPath is empty, DefaultOutput is used. A file that
// needs no fix is not written.
func Repair(inputPath, outputPath string) (*Result, error) {
	return RepairWithOptions(inputPath, outputPath, validate.Options{})
}

// RepairWithOptions is Repair with explicit validator options. ReportAll is
// always enabled so the reports list every remaining issue.
func RepairWithOptions(inputPath, outputPath string, opts validate.Options) (*Result, error) {
	if outputPath == "" {
		outputPath = DefaultOutput(inputPath)
	}
	opts.ReportAll = true
	v := validate.New(nil, opts)
	logger := v.Options().Logger

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("doctor: %w", err)
	}
	doc := xliff.Parse(filepath.Base(inputPath), data)
	before := report.NewReport(doc.Name)
	before.Add(v.ValidateDocument(doc)...)

	if before.IsValid() {
		return &Result{Before: before, After: before}, nil
	}

	fixed, fixes := applyFixes(doc)
	if len(fixes) == 0 {
		return &Result{Before: before, After: before}, nil
	}
	for _, f := range fixes {
		logger.Debug("applied fix", "validator", f.Validator, "fix", f.Description, "file", doc.Name)
	}

	if err := writeAtomic(outputPath, fixed); err != nil {
		return nil, fmt.Errorf("doctor: writing repaired file: %w", err)
	}

	after := report.NewReport(filepath.Base(outputPath))
	after.Add(v.ValidateDocument(xliff.Parse(filepath.Base(outputPath), fixed))...)

	return &Result{
		Fixes:  fixes,
		Before: before,
		After:  after,
		Output: outputPath,
	}, nil
}

// applyFixes runs every fix against the document bytes. Each fix sees the
// output of the previous one.
func applyFixes(doc *xliff.Document) ([]byte, []Fix) {
	var fixes []Fix
	body, fix := fixEncoding(doc)
	fixes = append(fixes, fix...)

	for _, step := range []func([]byte) ([]byte, []Fix){
		fixDeclaration,
		fixNamespacePrefixes,
		fixRootAttributes,
	} {
		var found []Fix
		body, found = step(body)
		fixes = append(fixes, found...)
	}
	return append(xliff.BOMUTF8.Bytes(), body...), fixes
}
