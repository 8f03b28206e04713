// Package main implements the codesweep CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/codesweep/codesweep/internal/cli"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
	"github.com/codesweep/codesweep/internal/logging"
	"github.com/codesweep/codesweep/internal/pipeline"
	"github.com/codesweep/codesweep/internal/report"
)

// version is set via -ldflags at release time.
var version = "dev"

// Exit codes: 0 clean, 1 findings at or above the fail-on severity, 2 errors.
const (
	exitClean    = 0
	exitFindings = 1
	exitError    = 2
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return exitClean
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
	})

	env := pipeline.Environment{
		Logger:     logging.NewSlogAdapter(logger),
		FSResolver: fileset.NewOSResolver,
		Writer:     report.NewOSWriter(),
		Version:    version,
	}

	pipe := pipeline.Pipeline{Env: env}
	summary, runErr := pipe.Run(ctx, pipeline.RunOptions{
		ConfigPath:   opts.ConfigPath,
		Inputs:       opts.Inputs,
		OutOverride:  opts.Out,
		FailOn:       opts.FailOn,
		Formats:      opts.Formats,
		DryRun:       opts.DryRun,
		ListFiles:    opts.ListFiles,
		ListRules:    opts.ListRules,
		StrictConfig: opts.StrictConfig,
		NoHistory:    opts.NoHistory,
		NoCache:      opts.NoCache,
		Verbose:      opts.Verbose,
	})
	if runErr != nil {
		_, _ = fmt.Fprintln(stderr, runErr.Error())
		return exitError
	}

	if opts.ListFiles {
		for _, file := range summary.Files {
			_, _ = fmt.Fprintln(stdout, file)
		}
		return exitClean
	}

	if opts.ListRules {
		for _, id := range summary.Rules {
			_, _ = fmt.Fprintln(stdout, id)
		}
		return exitClean
	}

	if summary.Findings.Len() > 0 {
		formatter := finding.NewFormatter()
		if opts.Verbose {
			formatter = finding.NewVerboseFormatter()
		}
		if err := formatter.WriteAll(stderr, summary.Findings); err != nil {
			_, _ = fmt.Fprintln(stderr, err.Error())
			return exitError
		}
	}

	printSummary(stdout, summary)

	if summary.Failed() {
		return exitFindings
	}
	return exitClean
}

func printSummary(w io.Writer, summary pipeline.Summary) {
	counts := summary.Findings.Summary()
	_, _ = fmt.Fprintf(w, "scanned %d files: %d findings (%d critical, %d high, %d medium, %d low, %d info)\n",
		summary.FilesScanned, counts.Total, counts.Critical, counts.High, counts.Medium, counts.Low, counts.Info)
	if summary.Suppressed > 0 {
		_, _ = fmt.Fprintf(w, "%d findings suppressed by policy\n", summary.Suppressed)
	}
	if summary.Diff != nil {
		_, _ = fmt.Fprintf(w, "vs previous run: %d new, %d fixed, %d persisting\n",
			len(summary.Diff.New), len(summary.Diff.Fixed), summary.Diff.Persisting)
	}
	for _, path := range summary.Reports {
		_, _ = fmt.Fprintf(w, "report: %s\n", path)
	}
}
