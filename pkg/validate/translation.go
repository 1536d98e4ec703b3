package validate

import (
	"fmt"
	"strings"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// checkUntranslated looks for targets that were never translated. It only
// applies to documents whose trgLang differs from srcLang, and skips
// segments in the initial state and excluded units.
func checkUntranslated(doc *xliff.Document, opts *Options) []report.Issue {
	const v = "Untranslated Targets"
	if issues := treeRequired(doc, v); issues != nil {
		return issues
	}
	if doc.TrgLang() == doc.SrcLang() {
		return nil
	}

	var issues []report.Issue
	for _, u := range doc.Units() {
		if opts.excluded(u.ID) {
			continue
		}
		for _, seg := range u.Segments {
			if segmentState(seg, opts) == opts.InitialState {
				continue
			}
			if seg.Target == nil {
				issues = append(issues, nodeIssue(doc, v, report.Completeness, seg.Node, u.ID, "Target is missing"))
				continue
			}

			src := xliff.ExtractText(seg.Source.Element())
			tgt := xliff.ExtractText(seg.Target.Node)
			var msg string
			switch {
			case tgt == "":
				msg = "Target is empty"
			case tgt == src:
				msg = "Target is identical to source"
			case src != "" && strings.Contains(tgt, src):
				msg = "Target contains unmodified source text"
			default:
				continue
			}
			issues = append(issues, nodeIssue(doc, v, report.Completeness, seg.Target.Node, u.ID, msg))
		}
	}
	return issues
}

// checkInitialState requires segments in the initial state to have no
// target, or a target whose content is written exactly like the source's.
func checkInitialState(doc *xliff.Document, opts *Options) []report.Issue {
	const v = "Initial State"
	if issues := treeRequired(doc, v); issues != nil {
		return issues
	}
	var issues []report.Issue
	for _, u := range doc.Units() {
		for _, seg := range u.Segments {
			if seg.Target == nil || segmentState(seg, opts) != opts.InitialState {
				continue
			}
			if doc.Inner(seg.Source.Element()) == doc.Inner(seg.Target.Node) {
				continue
			}
			issues = append(issues, nodeIssue(doc, v, report.Completeness, seg.Target.Node, u.ID,
				fmt.Sprintf("Segment in state '%s' has a target that differs from its source", opts.InitialState)))
		}
	}
	return issues
}

// segmentState returns the state of seg, treating an absent state as the
// initial one.
func segmentState(seg *xliff.Segment, opts *Options) string {
	if !seg.HasState {
		return opts.InitialState
	}
	return seg.State
}
