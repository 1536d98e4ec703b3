package report

import (
	"encoding/json"
	"io"
)

// JSONOutput is the JSON structure written to output files.
type JSONOutput struct {
	Valid      bool             `json:"valid"`
	Files      []string         `json:"files"`
	Issues     []Issue          `json:"issues"`
	IssueCount int              `json:"issue_count"`
	Categories map[Category]int `json:"categories"`
}

// WriteJSON writes the report in JSON format to w.
func (r *Report) WriteJSON(w io.Writer) error {
	out := JSONOutput{
		Valid:      r.IsValid(),
		Files:      r.Files,
		Issues:     r.Issues,
		IssueCount: r.Count(),
		Categories: r.CountByCategory(),
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	if out.Files == nil {
		out.Files = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
