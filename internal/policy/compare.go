package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/finding"
)

var stringFields = map[string]func(finding.Finding) string{
	"rule":     func(f finding.Finding) string { return f.RuleID },
	"path":     func(f finding.Finding) string { return f.Location.Path },
	"language": func(f finding.Finding) string { return string(f.Language) },
	"category": func(f finding.Finding) string { return f.Category },
	"message":  func(f finding.Finding) string { return f.Message },
	"cwe":      func(f finding.Finding) string { return f.CWE },
}

func (c *comparison) compile() (matchFunc, error) {
	value := unquote(c.Value)

	switch c.Field {
	case "severity":
		return compileSeverity(c.Op, value)
	case "cvss":
		return compileCVSS(c.Op, value)
	}

	accessor, ok := stringFields[c.Field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", c.Field)
	}

	switch c.Op {
	case "==":
		return func(f finding.Finding) bool { return accessor(f) == value }, nil
	case "!=":
		return func(f finding.Finding) bool { return accessor(f) != value }, nil
	case "=~":
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: invalid pattern: %w", c.Field, err)
		}
		return func(f finding.Finding) bool { return re.MatchString(accessor(f)) }, nil
	default:
		return nil, fmt.Errorf("operator %q not supported for field %q", c.Op, c.Field)
	}
}

func compileSeverity(op, value string) (matchFunc, error) {
	want, err := finding.ParseSeverity(value)
	if err != nil {
		return nil, err
	}
	cmp, err := ordering(op)
	if err != nil {
		return nil, fmt.Errorf("field \"severity\": %w", err)
	}
	return func(f finding.Finding) bool { return cmp(int(f.Severity) - int(want)) }, nil
}

func compileCVSS(op, value string) (matchFunc, error) {
	want, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("field \"cvss\": invalid number %q", value)
	}
	cmp, err := ordering(op)
	if err != nil {
		return nil, fmt.Errorf("field \"cvss\": %w", err)
	}
	return func(f finding.Finding) bool { return cmp(f.CVSS.Cmp(want)) }, nil
}

// ordering maps an operator to a predicate over a three-way comparison result.
func ordering(op string) (func(int) bool, error) {
	switch op {
	case "==":
		return func(c int) bool { return c == 0 }, nil
	case "!=":
		return func(c int) bool { return c != 0 }, nil
	case ">=":
		return func(c int) bool { return c >= 0 }, nil
	case "<=":
		return func(c int) bool { return c <= 0 }, nil
	case ">":
		return func(c int) bool { return c > 0 }, nil
	case "<":
		return func(c int) bool { return c < 0 }, nil
	default:
		return nil, fmt.Errorf("operator %q not supported", op)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
