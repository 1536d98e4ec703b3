package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"

	"github.com/adammathes/xliffverify/pkg/batch"
	"github.com/adammathes/xliffverify/pkg/config"
	"github.com/adammathes/xliffverify/pkg/doctor"
	"github.com/adammathes/xliffverify/pkg/logging"
	"github.com/adammathes/xliffverify/pkg/validate"
)

// setup loads configuration and initializes the process logger.
func (g *Globals) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		if _, err := logging.ParseLevel(g.LogLevel); err != nil {
			return nil, nil, fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = g.LogLevel
	}
	return cfg, cfg.Logger(), nil
}

// CheckCmd validates one file or a master/translation pair.
type CheckCmd struct {
	Files     []string `arg:"" name:"file" help:"File to validate, or master file followed by translated file." type:"path"`
	Format    string   `short:"f" enum:"text,json,table,markdown" default:"text" help:"Report format (text, json, table, markdown)."`
	Output    string   `short:"o" help:"Write the report to this file instead of stdout."`
	ReportAll bool     `name:"report-all" help:"Run every check instead of stopping at the first failing one."`
}

func (c *CheckCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	opts := cfg.Options(logger)
	opts.ReportAll = opts.ReportAll || c.ReportAll

	r, err := validate.New(nil, opts).ValidateFiles(c.Files...)
	if errors.Is(err, validate.ErrUsage) {
		fmt.Fprintf(os.Stderr, "xliffverify: %v\n", err)
		return exitStatus(exitFatal)
	}
	if err != nil {
		return err
	}
	logger.Info("validation finished", "files", r.Files, "issues", r.Count())
	if err := writeReport(r, c.Format, c.Output, "XLIFF Validation Report"); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return reportStatus(r)
}

// BatchCmd validates a directory, pairing translations with their masters.
type BatchCmd struct {
	Dir       string `arg:"" name:"dir" help:"Directory containing .xlf files." type:"existingdir"`
	Workers   int    `short:"w" help:"Number of parallel jobs (default from configuration)."`
	Format    string `short:"f" enum:"text,json,table,markdown" default:"text" help:"Report format (text, json, table, markdown)."`
	Output    string `short:"o" help:"Write the report to this file instead of stdout."`
	ReportAll bool   `name:"report-all" help:"Run every check instead of stopping at the first failing one."`
}

func (c *BatchCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	opts := cfg.Options(logger)
	opts.ReportAll = opts.ReportAll || c.ReportAll
	workers := c.Workers
	if workers < 1 {
		workers = cfg.Batch.Workers
	}

	files, err := batch.Discover(c.Dir)
	if err != nil {
		return err
	}
	jobs := batch.Plan(files, cfg.Batch.MasterLanguage)
	logger.Info("batch started", "dir", c.Dir, "files", len(files), "jobs", len(jobs), "workers", workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	start := time.Now()
	results, err := batch.Run(ctx, validate.New(nil, opts), jobs, workers)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.Report.IsValid() {
			failed++
		}
		if c.Format == "text" {
			status := color.GreenString("PASS")
			if !res.Report.IsValid() {
				status = color.RedString("FAIL")
			}
			fmt.Fprintf(os.Stderr, "%s %s (%d issues)\n", status, res.Job, res.Report.Count())
		}
	}
	logger.Info("batch finished", "jobs", len(results), "failed", failed, "duration", time.Since(start))

	merged := batch.Merge(results)
	if err := writeReport(merged, c.Format, c.Output, "XLIFF Batch Validation Report"); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return reportStatus(merged)
}

// DoctorCmd repairs a file and re-validates the result.
type DoctorCmd struct {
	File   string `arg:"" name:"file" help:"XLIFF file to repair." type:"existingfile"`
	Output string `short:"o" help:"Output path (default: <name>.fixed.xlf)."`
}

func (c *DoctorCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	res, err := doctor.RepairWithOptions(c.File, c.Output, cfg.Options(logger))
	if err != nil {
		return err
	}

	if len(res.Fixes) == 0 {
		if res.Before.IsValid() {
			fmt.Println("No issues found; nothing to repair.")
			return nil
		}
		fmt.Println("No automatic fixes apply. Remaining issues:")
		res.Before.WriteText(os.Stdout)
		return exitStatus(exitIssues)
	}

	fmt.Printf("Applied %d fixes:\n", len(res.Fixes))
	for _, f := range res.Fixes {
		fmt.Printf("  [%s] %s\n", f.Validator, f.Description)
	}
	fmt.Printf("Wrote %s (issues before: %d, after: %d)\n", res.Output, res.Before.Count(), res.After.Count())
	if !res.After.IsValid() {
		fmt.Println("Remaining issues:")
		res.After.WriteText(os.Stdout)
		return exitStatus(exitIssues)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("xliffverify %s\n", version)
	return nil
}
