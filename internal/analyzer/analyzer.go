// Package analyzer defines the analysis abstraction layer.
//
// Each analysis strategy (regex pattern matching, Go AST inspection,
// external tool orchestration) implements the Analyzer interface and is
// registered under a name. The pipeline routes every resolved file to the
// analyzers that cover its language.
//
// Usage:
//
//	a, err := analyzer.New("pattern", analyzer.Options{Rules: set})
//	if err != nil {
//	    return err
//	}
//	findings, err := a.Analyze(ctx, analyzer.Target{Path: path, Language: lang, Content: src})
package analyzer

import (
	"context"
	"time"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
	"github.com/codesweep/codesweep/internal/logging"
	"github.com/codesweep/codesweep/internal/rules"
)

// Target is one file handed to an analyzer. Content is read once by the
// pipeline and shared across analyzers.
type Target struct {
	Path     string
	Language fileset.Language
	Content  []byte
}

// Analyzer inspects a single target and reports findings.
type Analyzer interface {
	// Name returns the analyzer identifier (e.g. "pattern", "goast").
	Name() string

	// Languages returns the languages the analyzer covers. An empty slice
	// means every language.
	Languages() []fileset.Language

	// Analyze scans one target. Findings carry the analyzer name in their
	// Source field.
	Analyze(ctx context.Context, target Target) ([]finding.Finding, error)
}

// Tool describes one external scanner command an extern analyzer drives.
type Tool struct {
	Name      string
	Command   []string
	Timeout   time.Duration
	Languages []fileset.Language
}

// Options carries the shared dependencies analyzer factories may need.
type Options struct {
	Rules  *rules.Set
	Logger logging.Logger
	Tools  []Tool
}

// Covers reports whether the analyzer handles the given language.
func Covers(a Analyzer, lang fileset.Language) bool {
	langs := a.Languages()
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
