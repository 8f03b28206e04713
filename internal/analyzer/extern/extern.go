// Package extern drives external scanner processes and converts their output
// into findings. Tools are declared in the configuration with a command line,
// a timeout, and the languages they cover. A command's {file} placeholder is
// replaced with the target path before running.
//
// Output parsing is chosen by tool name: cargo-audit and cargo-clippy have
// dedicated parsers, everything else is expected to emit SARIF on stdout.
package extern

import (
	"context"
	"errors"
	"fmt"

	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
	"github.com/codesweep/codesweep/internal/logging"
)

// Name is the registry name of this analyzer.
const Name = "extern"

type Analyzer struct {
	tools  []analyzer.Tool
	runner *Runner
	log    logging.Logger
}

// New creates the external tool analyzer. At least one tool is required.
func New(opts analyzer.Options) (analyzer.Analyzer, error) {
	if len(opts.Tools) == 0 {
		return nil, errors.New("extern: no tools configured")
	}
	for _, tool := range opts.Tools {
		if len(tool.Command) == 0 {
			return nil, fmt.Errorf("extern: tool %q has no command", tool.Name)
		}
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Analyzer{tools: opts.Tools, runner: NewRunner(log), log: log}, nil
}

func (a *Analyzer) Name() string { return Name }

// Languages returns the union of the configured tools' languages. If any
// tool declares no languages the analyzer covers everything.
func (a *Analyzer) Languages() []fileset.Language {
	seen := make(map[fileset.Language]bool)
	var langs []fileset.Language
	for _, tool := range a.tools {
		if len(tool.Languages) == 0 {
			return nil
		}
		for _, lang := range tool.Languages {
			if !seen[lang] {
				seen[lang] = true
				langs = append(langs, lang)
			}
		}
	}
	return langs
}

// Analyze runs every tool covering the target's language. A tool timeout is
// reported as a finding, not an error, so one stuck tool does not sink the
// scan. Any other tool failure aborts.
func (a *Analyzer) Analyze(ctx context.Context, target analyzer.Target) ([]finding.Finding, error) {
	var findings []finding.Finding

	for _, tool := range a.tools {
		if !toolCovers(tool, target.Language) {
			continue
		}

		output, err := a.runner.Run(ctx, tool, target.Path)
		switch {
		case errors.Is(err, ErrTimeout):
			findings = append(findings, finding.New(finding.SeverityMedium,
				fmt.Sprintf("tool %s timed out after %s", tool.Name, tool.Timeout)).
				Rule("extern.tool.timeout").
				At(target.Path, 1, 1).
				Category("tooling").
				Language(target.Language).
				Source(Name).
				Build())
			continue
		case err != nil:
			return nil, fmt.Errorf("extern: tool %s: %w", tool.Name, err)
		}

		parsed, err := a.parse(tool, target, output)
		if err != nil {
			return nil, fmt.Errorf("extern: tool %s output: %w", tool.Name, err)
		}
		findings = append(findings, parsed...)
	}

	return findings, nil
}

func (a *Analyzer) parse(tool analyzer.Tool, target analyzer.Target, output []byte) ([]finding.Finding, error) {
	switch tool.Name {
	case "cargo-audit":
		return parseCargoAudit(output, target.Path)
	case "cargo-clippy":
		return parseClippy(output, target.Path), nil
	default:
		return ConvertSARIF(output, target.Path)
	}
}

func toolCovers(tool analyzer.Tool, lang fileset.Language) bool {
	if len(tool.Languages) == 0 {
		return true
	}
	for _, l := range tool.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
