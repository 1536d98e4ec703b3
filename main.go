package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/adammathes/xliffverify/pkg/report"
)

const version = "0.1.0"

// Exit codes: 0=valid, 1=issues found, 2=usage, I/O or fatal error.
const (
	exitValid  = 0
	exitIssues = 1
	exitFatal  = 2
)

// exitStatus is returned by commands that finished normally but must set a
// non-zero exit code.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// Globals holds the flags shared by every command.
type Globals struct {
	Config   string `help:"YAML configuration file (default: $XLIFFVERIFY_CONFIG)." type:"path"`
	LogLevel string `name:"log-level" help:"Override the log level (debug, info, warn, error)."`
}

var cli struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Validate one XLIFF file, or a master file and its translation."`
	Batch   BatchCmd   `cmd:"" help:"Validate every XLIFF file of a directory."`
	Doctor  DoctorCmd  `cmd:"" help:"Repair encoding-level defects of an XLIFF file."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// writeReport renders r in the requested format to path, or to stdout when
// path is empty or "-".
func writeReport(r *report.Report, format, path, title string) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch format {
	case "json":
		return r.WriteJSON(w)
	case "table":
		r.WriteTable(w)
	case "markdown":
		r.WriteMarkdown(w, title)
	default:
		r.WriteText(w)
	}
	return nil
}

// reportStatus maps a finished report to an exit status.
func reportStatus(r *report.Report) error {
	switch {
	case r.HasIO():
		return exitStatus(exitFatal)
	case !r.IsValid():
		return exitStatus(exitIssues)
	}
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("xliffverify"),
		kong.Description("Structural and semantic integrity validator for XLIFF 2.0 files"),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			if code != exitValid {
				code = exitFatal
			}
			os.Exit(code)
		}),
	)

	err := ctx.Run(&cli.Globals)
	var status exitStatus
	switch {
	case err == nil:
		os.Exit(exitValid)
	case errors.As(err, &status):
		os.Exit(int(status))
	default:
		fmt.Fprintf(os.Stderr, "xliffverify: %v\n", err)
		os.Exit(exitFatal)
	}
}
