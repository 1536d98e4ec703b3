// Package batch validates every XLIFF file of a directory. Translations are
// paired with the master file of the same name, and jobs run on a bounded
// worker pool.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adammathes/xliffverify/pkg/report"
	"github.com/adammathes/xliffverify/pkg/validate"
	"github.com/adammathes/xliffverify/pkg/xliff"
)

// Job is one pipeline invocation. Master is empty for single-file jobs.
type Job struct {
	Master string
	Path   string
}

// Paths returns the job's files in the order the validator expects them.
func (j Job) Paths() []string {
	if j.Master == "" {
		return []string{j.Path}
	}
	return []string{j.Master, j.Path}
}

func (j Job) String() string {
	if j.Master == "" {
		return filepath.Base(j.Path)
	}
	return filepath.Base(j.Master) + " -> " + filepath.Base(j.Path)
}

// Result is the outcome of one job.
type Result struct {
	Job      Job
	Report   *report.Report
	Duration time.Duration
}

// Discover lists the .xlf files directly inside dir, matching the extension
// case-insensitively, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xlf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// MasterName returns the name of the master file for name(xx).xlf, or ""
// when the name carries no language or already is the master.
func MasterName(name, masterLang string) string {
	lang := xliff.LanguageFromFilename(name)
	if lang == "" || lang == masterLang {
		return ""
	}
	i := strings.LastIndex(name, "("+lang+")")
	return name[:i] + "(" + masterLang + ")" + name[i+len(lang)+2:]
}

// Plan turns a file list into jobs. Files whose master is in the list are
// validated as pairs; masters and files without a master run alone. Jobs
// keep the order of files.
func Plan(files []string, masterLang string) []Job {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		job := Job{Path: f}
		if m := MasterName(filepath.Base(f), masterLang); m != "" {
			if master := filepath.Join(filepath.Dir(f), m); present[master] {
				job.Master = master
			}
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Run executes jobs with at most workers running at once. Results are
// returned in job order. When ctx is cancelled, jobs that have not started
// are skipped and the context error is returned.
func Run(ctx context.Context, v *validate.Validator, jobs []Job, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	logger := v.Options().Logger
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			r, err := v.ValidateFiles(job.Paths()...)
			if err != nil {
				return fmt.Errorf("batch: %s: %w", job, err)
			}
			results[i] = Result{Job: job, Report: r, Duration: time.Since(start)}
			logger.Debug("job finished", slog.String("job", job.String()),
				slog.Int("issues", r.Count()), slog.Duration("duration", results[i].Duration))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge combines the job reports into one. A master validated both alone
// and as part of a pair contributes its files and issues once.
func Merge(results []Result) *report.Report {
	out := report.NewReport()
	seenFile := make(map[string]bool)
	seenIssue := make(map[report.Issue]bool)
	for _, res := range results {
		if res.Report == nil {
			continue
		}
		for _, f := range res.Report.Files {
			if !seenFile[f] {
				seenFile[f] = true
				out.Files = append(out.Files, f)
			}
		}
		for _, i := range res.Report.Issues {
			if !seenIssue[i] {
				seenIssue[i] = true
				out.Add(i)
			}
		}
	}
	return out
}
