package finding

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Collection holds a set of findings.
type Collection struct {
	findings []Finding
}

// NewCollection creates a new empty collection.
func NewCollection() *Collection {
	return &Collection{findings: make([]Finding, 0)}
}

// Add adds a finding to the collection.
func (c *Collection) Add(f Finding) {
	c.findings = append(c.findings, f)
}

// AddAll adds all findings from another collection.
func (c *Collection) AddAll(other *Collection) {
	c.findings = append(c.findings, other.findings...)
}

// All returns a copy of all findings.
func (c *Collection) All() []Finding {
	return append([]Finding(nil), c.findings...)
}

// Len returns the number of findings.
func (c *Collection) Len() int {
	return len(c.findings)
}

// Filter returns findings matching the given predicate.
func (c *Collection) Filter(predicate func(Finding) bool) []Finding {
	var result []Finding
	for _, f := range c.findings {
		if predicate(f) {
			result = append(result, f)
		}
	}
	return result
}

// BySeverity returns findings of a specific severity.
func (c *Collection) BySeverity(severity Severity) []Finding {
	return c.Filter(func(f Finding) bool { return f.Severity == severity })
}

// ByRule returns findings produced by a specific rule.
func (c *Collection) ByRule(ruleID string) []Finding {
	return c.Filter(func(f Finding) bool { return f.RuleID == ruleID })
}

// ByPath returns findings located in a specific file.
func (c *Collection) ByPath(path string) []Finding {
	return c.Filter(func(f Finding) bool { return f.Location.Path == path })
}

// AtOrAbove returns findings at or above the given severity.
func (c *Collection) AtOrAbove(severity Severity) []Finding {
	return c.Filter(func(f Finding) bool { return f.Severity >= severity })
}

// SortByLocation sorts findings by file path, line, and column.
func (c *Collection) SortByLocation() {
	slices.SortStableFunc(c.findings, func(a, b Finding) int {
		if a.Location.Path != b.Location.Path {
			if a.Location.Path < b.Location.Path {
				return -1
			}
			return 1
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line - b.Location.Line
		}
		return a.Location.Column - b.Location.Column
	})
}

// Summary provides a quick overview of a collection.
type Summary struct {
	Total             int
	Critical          int
	High              int
	Medium            int
	Low               int
	Info              int
	FilesWithFindings int
}

// Count returns the count for the given severity.
func (s Summary) Count(severity Severity) int {
	switch severity {
	case SeverityCritical:
		return s.Critical
	case SeverityHigh:
		return s.High
	case SeverityMedium:
		return s.Medium
	case SeverityLow:
		return s.Low
	case SeverityInfo:
		return s.Info
	default:
		return 0
	}
}

// Summary returns per-severity counts and the number of distinct files
// carrying at least one finding.
func (c *Collection) Summary() Summary {
	s := Summary{Total: len(c.findings)}
	files := make(map[string]struct{})
	for _, f := range c.findings {
		switch f.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		case SeverityMedium:
			s.Medium++
		case SeverityLow:
			s.Low++
		case SeverityInfo:
			s.Info++
		}
		if f.Location.Path != "" {
			files[f.Location.Path] = struct{}{}
		}
	}
	s.FilesWithFindings = len(files)
	return s
}

// RiskScore sums the CVSS scores of all findings using exact decimal
// arithmetic.
func (c *Collection) RiskScore() decimal.Decimal {
	total := decimal.Zero
	for _, f := range c.findings {
		total = total.Add(f.CVSS)
	}
	return total
}
