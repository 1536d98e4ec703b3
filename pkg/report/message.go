package report

import (
	"fmt"
	"sort"
)

// Category groups issues by the kind of defect they describe.
type Category string

const (
	Encoding     Category = "encoding"
	Malformed    Category = "malformed"
	Identifier   Category = "identifier"
	Formatting   Category = "formatting"
	Completeness Category = "completeness"
	Placeholder  Category = "placeholder"
	IO           Category = "io"
)

// Issue is a single validation finding. Line and columns are 1-based;
// ColumnEnd is inclusive.
type Issue struct {
	Validator   string   `json:"validator"`
	Category    Category `json:"category"`
	Message     string   `json:"message"`
	Filename    string   `json:"filename"`
	Line        int      `json:"line"`
	ColumnStart int      `json:"column_start"`
	ColumnEnd   int      `json:"column_end"`
	UnitID      string   `json:"unit_id,omitempty"`
	Text        string   `json:"text"`
	Detail      string   `json:"detail,omitempty"`
}

func (i Issue) String() string {
	loc := fmt.Sprintf("%s:%d:%d", i.Filename, i.Line, i.ColumnStart)
	if i.UnitID != "" {
		return fmt.Sprintf("%s: [%s] %s (unit %s)", loc, i.Validator, i.Message, i.UnitID)
	}
	return fmt.Sprintf("%s: [%s] %s", loc, i.Validator, i.Message)
}

// Report collects the issues of a validation run.
type Report struct {
	Files  []string `json:"files"`
	Issues []Issue  `json:"issues"`
}

// NewReport creates an empty report for the given files.
func NewReport(files ...string) *Report {
	return &Report{Files: files}
}

// Add appends issues to the report.
func (r *Report) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// Merge appends every issue of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Files = append(r.Files, other.Files...)
	r.Issues = append(r.Issues, other.Issues...)
}

// Count returns the number of issues.
func (r *Report) Count() int {
	return len(r.Issues)
}

// IsValid returns true if no issues were found.
func (r *Report) IsValid() bool {
	return len(r.Issues) == 0
}

// HasIO reports whether any file could not be read.
func (r *Report) HasIO() bool {
	for _, i := range r.Issues {
		if i.Category == IO {
			return true
		}
	}
	return false
}

// CountByCategory returns the number of issues per category.
func (r *Report) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for _, i := range r.Issues {
		counts[i.Category]++
	}
	return counts
}

// Validators returns the sorted, distinct validator names that reported issues.
func (r *Report) Validators() []string {
	seen := make(map[string]bool)
	var names []string
	for _, i := range r.Issues {
		if !seen[i.Validator] {
			seen[i.Validator] = true
			names = append(names, i.Validator)
		}
	}
	sort.Strings(names)
	return names
}

// ByFile returns the issues reported against filename, in report order.
func (r *Report) ByFile(filename string) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Filename == filename {
			out = append(out, i)
		}
	}
	return out
}
