// Package finding defines the security finding model shared by analyzers,
// reports, and the history store. It captures file locations, matched source
// snippets, fix suggestions, and severity levels.
package finding

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/fileset"
)

// Severity indicates the seriousness of a finding.
type Severity int

const (
	// SeverityInfo indicates an informational observation.
	SeverityInfo Severity = iota
	// SeverityLow indicates a style or hardening concern.
	SeverityLow
	// SeverityMedium indicates a weakness that needs a preconditioned attacker.
	SeverityMedium
	// SeverityHigh indicates a directly exploitable weakness.
	SeverityHigh
	// SeverityCritical indicates an exploitable weakness with severe impact.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Report returns the upper-case severity label used in rendered reports.
func (s Severity) Report() string {
	return strings.ToUpper(s.String())
}

// ParseSeverity parses a severity level from a string.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "low":
		return SeverityLow, nil
	case "medium", "med":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical", "crit":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// Severities lists all severity levels from most to least severe, the order
// reports group findings in.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// Location represents a position in a scanned file.
type Location struct {
	Path   string
	Line   int
	Column int
}

// Finding represents a single security issue located in a scanned file.
type Finding struct {
	// RuleID identifies the rule that produced the finding (e.g. "go.sql.concat").
	RuleID   string
	Message  string
	Severity Severity

	// Category groups related rules (e.g. "command-injection").
	Category string
	Language fileset.Language
	CWE      string

	// CVSS is the base score attached to the rule, zero when unset.
	CVSS decimal.Decimal

	Location Location

	// Snippet is the trimmed source line that matched.
	Snippet string

	// Suggestion describes how to fix the issue.
	Suggestion string

	// Source names the analyzer that produced the finding.
	Source string
}

// HasLocation returns true if the finding has a valid location.
func (f Finding) HasLocation() bool {
	return f.Location.Path != "" && f.Location.Line > 0
}

// Digest returns a stable identity for baseline comparison across runs.
// Column is deliberately excluded so cosmetic shifts within a line do not
// churn the history diff.
func (f Finding) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", f.RuleID, f.Location.Path, f.Location.Line, f.Message)
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// String returns the one-line rendering used in CLI output.
func (f Finding) String() string {
	var b strings.Builder
	if f.HasLocation() {
		fmt.Fprintf(&b, "%s:%d:%d: ", f.Location.Path, f.Location.Line, f.Location.Column)
	}
	fmt.Fprintf(&b, "%s: %s", f.Severity, f.Message)
	if f.RuleID != "" {
		fmt.Fprintf(&b, " [%s]", f.RuleID)
	}
	return b.String()
}

// Builder provides a fluent API for constructing findings.
type Builder struct {
	f Finding
}

// New creates a builder with the given severity and message.
func New(severity Severity, message string) *Builder {
	return &Builder{f: Finding{Severity: severity, Message: message}}
}

// Rule sets the rule ID.
func (b *Builder) Rule(id string) *Builder {
	b.f.RuleID = id
	return b
}

// At sets the location.
func (b *Builder) At(path string, line, column int) *Builder {
	b.f.Location = Location{Path: path, Line: line, Column: column}
	return b
}

// Category sets the category.
func (b *Builder) Category(category string) *Builder {
	b.f.Category = category
	return b
}

// Language sets the language.
func (b *Builder) Language(lang fileset.Language) *Builder {
	b.f.Language = lang
	return b
}

// CWE sets the CWE identifier.
func (b *Builder) CWE(cwe string) *Builder {
	b.f.CWE = cwe
	return b
}

// CVSS sets the CVSS base score.
func (b *Builder) CVSS(score decimal.Decimal) *Builder {
	b.f.CVSS = score
	return b
}

// Snippet sets the matched source line.
func (b *Builder) Snippet(snippet string) *Builder {
	b.f.Snippet = snippet
	return b
}

// Suggest sets the fix suggestion.
func (b *Builder) Suggest(suggestion string) *Builder {
	b.f.Suggestion = suggestion
	return b
}

// Source sets the producing analyzer name.
func (b *Builder) Source(source string) *Builder {
	b.f.Source = source
	return b
}

// Build returns the constructed finding.
func (b *Builder) Build() Finding {
	return b.f
}
