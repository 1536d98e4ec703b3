package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

var (
	dataSeqRe = regexp.MustCompile(`^(.+?)_(\d+)$`)
	spanSeqRe = regexp.MustCompile(`(\d+)$`)
)

// checkIdentifiers covers identifier integrity: global uniqueness of file and
// unit ids, sequential numbering of data and span ids, resolution of data
// references in both directions and matching id prefixes.
func checkIdentifiers(doc *xliff.Document, _ *Options) []report.Issue {
	if issues := treeRequired(doc, "Duplicate IDs"); issues != nil {
		return issues
	}
	issues := globalIDs(doc)
	for _, u := range doc.Units() {
		issues = append(issues, dataIDs(doc, u)...)
		issues = append(issues, spanSequences(doc, u)...)
		issues = append(issues, dataRefs(doc, u)...)
	}
	return issues
}

func globalIDs(doc *xliff.Document) []report.Issue {
	var issues []report.Issue
	seen := make(map[string]bool)
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			if c.Data == "file" || c.Data == "unit" {
				id := c.SelectAttr("id")
				if seen[id] {
					unitID := ""
					if c.Data == "unit" {
						unitID = id
					}
					issues = append(issues, attrIssue(doc, "Duplicate IDs", report.Identifier, c, "id", unitID,
						fmt.Sprintf("Duplicate global ID: '%s'", id)))
				}
				seen[id] = true
			}
			walk(c)
		}
	}
	walk(doc.Root)
	return issues
}

// dataIDs reports duplicate data ids and data ids of the form base_n whose
// numbers are not exactly 1..count.
func dataIDs(doc *xliff.Document, u *xliff.Unit) []report.Issue {
	var issues []report.Issue
	seen := make(map[string]bool)
	var base string
	var nums []int
	for _, d := range u.Data {
		if d.ID == "" {
			continue
		}
		if seen[d.ID] {
			issues = append(issues, attrIssue(doc, "Duplicate IDs", report.Identifier, d.Node, "id", u.ID,
				fmt.Sprintf("Duplicate <data> ID in unit '%s': '%s'", u.ID, d.ID)))
			continue
		}
		seen[d.ID] = true
		if m := dataSeqRe.FindStringSubmatch(d.ID); m != nil {
			if base == "" {
				base = m[1]
			}
			n, _ := strconv.Atoi(m[2])
			nums = append(nums, n)
		}
	}
	if !sequential(nums) {
		issues = append(issues, nodeIssue(doc, "ID Sequence", report.Identifier, u.Node, u.ID,
			fmt.Sprintf("<data> IDs in unit '%s' do not follow sequential pattern %s_1, %s_2, ...", u.ID, base, base)))
	}
	return issues
}

// spanSequences requires the trailing numbers of the pc and ph ids of every
// source and target to form one sequence 1..n, in any order and split
// between both kinds in any way.
func spanSequences(doc *xliff.Document, u *xliff.Unit) []report.Issue {
	var issues []report.Issue
	for _, c := range u.Containers {
		var nums []int
		var first *xliff.InlineSpan
		for _, s := range c.Spans {
			m := spanSeqRe.FindStringSubmatch(s.ID)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if first == nil {
				first = s
			}
			nums = append(nums, n)
		}
		if !sequential(nums) {
			issues = append(issues, attrIssue(doc, "ID Sequence", report.Identifier, first.Node, "id", u.ID,
				fmt.Sprintf("<ph>/<pc> IDs in unit '%s' must follow a shared sequential pattern like ph1, pc2, pc3, ph4", u.ID)))
		}
	}
	return issues
}

// sequential reports whether nums, once sorted, is exactly 1..len(nums).
func sequential(nums []int) bool {
	sorted := slices.Clone(nums)
	slices.Sort(sorted)
	for i, n := range sorted {
		if n != i+1 {
			return false
		}
	}
	return true
}

// dataRefs resolves every span reference of the unit against its original
// data and reports unresolved references, unreferenced data and references
// whose underscore prefix differs from the referring span's.
func dataRefs(doc *xliff.Document, u *xliff.Unit) []report.Issue {
	var issues []report.Issue
	data := u.DataByID()
	referenced := make(map[string]bool)
	var order []string

	for _, c := range u.Containers {
		for _, s := range c.Spans {
			for _, ref := range spanRefs(s) {
				if !referenced[ref.id] {
					referenced[ref.id] = true
					order = append(order, ref.id)
				}
				tagPrefix, tagOK := idPrefix(s.ID)
				refPrefix, refOK := idPrefix(ref.id)
				if tagOK && refOK && tagPrefix != refPrefix {
					issues = append(issues, attrIssue(doc, "Mismatched ID Prefix", report.Identifier, s.Node, ref.attr, u.ID,
						fmt.Sprintf("Tag '%s' has %s='%s', but their prefixes do not match.", s.ID, ref.attr, ref.id)))
				}
			}
		}
	}

	for _, id := range order {
		if _, ok := data[id]; !ok {
			issues = append(issues, nodeIssue(doc, "Missing Data Ref", report.Identifier, u.Node, u.ID,
				fmt.Sprintf("Missing <data> element for referenced ID '%s' in unit '%s'", id, u.ID)))
		}
	}
	reported := make(map[string]bool)
	for _, d := range u.Data {
		if d.ID == "" || referenced[d.ID] || reported[d.ID] {
			continue
		}
		reported[d.ID] = true
		issues = append(issues, attrIssue(doc, "Unused Data ID", report.Identifier, d.Node, "id", u.ID,
			fmt.Sprintf("<data> ID not referenced in unit '%s': '%s'", u.ID, d.ID)))
	}
	return issues
}

type spanRef struct {
	attr, id string
}

func spanRefs(s *xliff.InlineSpan) []spanRef {
	var refs []spanRef
	for _, r := range []spanRef{{"dataRefStart", s.DataRefStart}, {"dataRefEnd", s.DataRefEnd}, {"dataRef", s.DataRef}} {
		if r.id != "" {
			refs = append(refs, r)
		}
	}
	return refs
}

// idPrefix returns the part of id before its first underscore.
func idPrefix(id string) (string, bool) {
	prefix, _, ok := strings.Cut(id, "_")
	return prefix, ok
}
