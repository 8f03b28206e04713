// Package pattern implements the regex rule analyzer. It applies every
// compiled rule for the target's language line by line and reports a finding
// per match.
package pattern

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
	"github.com/codesweep/codesweep/internal/rules"
)

// Name is the registry name of this analyzer.
const Name = "pattern"

type Analyzer struct {
	rules *rules.Set
}

// New creates the pattern analyzer. A rule set is required.
func New(opts analyzer.Options) (analyzer.Analyzer, error) {
	if opts.Rules == nil {
		return nil, errors.New("pattern: rule set is required")
	}
	return &Analyzer{rules: opts.Rules}, nil
}

func (a *Analyzer) Name() string { return Name }

// Languages returns the languages the rule set covers.
func (a *Analyzer) Languages() []fileset.Language {
	return a.rules.Languages()
}

// Analyze applies the language's rules to each line of the target. Binary
// content is skipped. Line and column numbers are 1-based.
func (a *Analyzer) Analyze(ctx context.Context, target analyzer.Target) ([]finding.Finding, error) {
	compiled := a.rules.ForLanguage(target.Language)
	if len(compiled) == 0 {
		return nil, nil
	}
	if bytes.IndexByte(target.Content, 0) >= 0 {
		return nil, nil
	}

	var findings []finding.Finding
	lines := bytes.Split(target.Content, []byte("\n"))

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, rule := range compiled {
			loc := rule.Regexp.FindIndex(line)
			if loc == nil {
				continue
			}
			findings = append(findings, finding.New(rule.Severity, rule.Message).
				Rule(rule.ID).
				At(target.Path, i+1, loc[0]+1).
				Category(rule.Category).
				Language(target.Language).
				CWE(rule.CWE).
				CVSS(rule.CVSS).
				Snippet(strings.TrimSpace(string(line))).
				Suggest(rule.Suggestion).
				Source(Name).
				Build())
		}
	}

	return findings, nil
}
