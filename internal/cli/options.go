package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Options are the parsed command line flags. ConfigPath stays empty when the
// flag is not given, the pipeline then falls back to codesweep.toml and
// tolerates its absence.
type Options struct {
	ConfigPath   string
	Out          string
	FailOn       string
	Formats      []string
	DryRun       bool
	ListFiles    bool
	ListRules    bool
	StrictConfig bool
	NoHistory    bool
	NoCache      bool
	Verbose      bool
	Inputs       []string
}

func Parse(args []string) (Options, error) {
	var opts Options
	var formats string

	fs := flag.NewFlagSet("codesweep", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file")
	fs.StringVar(&opts.Out, "out", "", "Override report directory; relative paths are resolved against the config directory")
	fs.StringVar(&opts.FailOn, "fail-on", "", "Minimum severity that fails the run (info, low, medium, high, critical)")
	fs.StringVar(&formats, "format", "", "Comma-separated report formats (text, json, sarif)")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Scan without writing report files")
	fs.BoolVar(&opts.ListFiles, "list-files", false, "List files selected for scanning and exit")
	fs.BoolVar(&opts.ListRules, "list-rules", false, "List active rule IDs and exit")
	fs.BoolVar(&opts.StrictConfig, "strict-config", false, "Treat configuration warnings as errors")
	fs.BoolVar(&opts.NoHistory, "no-history", false, "Skip recording the run in the history store")
	fs.BoolVar(&opts.NoCache, "no-cache", false, "Bypass the result cache")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		usage := Usage(fs)
		if errors.Is(err, flag.ErrHelp) {
			return Options{}, fmt.Errorf("%w\n\n%s", err, usage)
		}
		return Options{}, fmt.Errorf("%w\n\n%s", err, usage)
	}

	for _, format := range strings.Split(formats, ",") {
		format = strings.TrimSpace(format)
		if format != "" {
			opts.Formats = append(opts.Formats, format)
		}
	}

	opts.Inputs = fs.Args()
	return opts, nil
}

func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	fmt.Fprintf(&buf, "  %s [flags] [input glob patterns]\n\nFlags:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
