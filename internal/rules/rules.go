// Package rules defines the pattern rule model and the YAML rule-pack loader.
// Built-in packs live in the builtin subpackage; user packs are loaded from
// the paths listed in the scanner configuration.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

// Rule is the declarative form of a pattern rule as it appears in a pack.
type Rule struct {
	ID         string `yaml:"id"`
	Pattern    string `yaml:"pattern"`
	Message    string `yaml:"message"`
	Severity   string `yaml:"severity"`
	Category   string `yaml:"category"`
	CWE        string `yaml:"cwe"`
	CVSS       string `yaml:"cvss"`
	Suggestion string `yaml:"suggestion"`
}

// Pack groups the rules for one language.
type Pack struct {
	Language string `yaml:"language"`
	Name     string `yaml:"name"`
	Rules    []Rule `yaml:"rules"`
}

// Compiled is a rule with its pattern compiled and fields validated.
type Compiled struct {
	ID         string
	Message    string
	Severity   finding.Severity
	Category   string
	CWE        string
	CVSS       decimal.Decimal
	Suggestion string
	Language   fileset.Language
	Regexp     *regexp.Regexp
}

// Set holds compiled rules indexed by language.
type Set struct {
	byLanguage map[fileset.Language][]Compiled
	ids        []string
}

// RuleError reports a problem with a specific rule in a pack.
type RuleError struct {
	Pack   string
	RuleID string
	Err    error
}

// Error implements the error interface.
func (e RuleError) Error() string {
	return fmt.Sprintf("pack %q rule %q: %v", e.Pack, e.RuleID, e.Err)
}

// Unwrap returns the underlying error.
func (e RuleError) Unwrap() error { return e.Err }

// Compile validates and compiles packs into a Set. Duplicate rule IDs across
// packs are an error.
func Compile(packs ...Pack) (*Set, error) {
	set := &Set{byLanguage: make(map[fileset.Language][]Compiled)}
	seen := make(map[string]string)

	for _, pack := range packs {
		name := pack.Name
		if name == "" {
			name = pack.Language
		}
		if pack.Language == "" {
			return nil, fmt.Errorf("pack %q: language is required", name)
		}
		lang := fileset.Language(strings.ToLower(pack.Language))

		for _, rule := range pack.Rules {
			compiled, err := compileRule(name, lang, rule)
			if err != nil {
				return nil, err
			}
			if prev, ok := seen[compiled.ID]; ok {
				return nil, RuleError{Pack: name, RuleID: compiled.ID,
					Err: fmt.Errorf("duplicate rule ID (previously defined in pack %q)", prev)}
			}
			seen[compiled.ID] = name
			set.byLanguage[lang] = append(set.byLanguage[lang], compiled)
			set.ids = append(set.ids, compiled.ID)
		}
	}

	slices.Sort(set.ids)
	return set, nil
}

func compileRule(pack string, lang fileset.Language, rule Rule) (Compiled, error) {
	if rule.ID == "" {
		return Compiled{}, RuleError{Pack: pack, Err: fmt.Errorf("rule is missing an id")}
	}
	if rule.Pattern == "" {
		return Compiled{}, RuleError{Pack: pack, RuleID: rule.ID, Err: fmt.Errorf("pattern is required")}
	}
	if rule.Message == "" {
		return Compiled{}, RuleError{Pack: pack, RuleID: rule.ID, Err: fmt.Errorf("message is required")}
	}

	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return Compiled{}, RuleError{Pack: pack, RuleID: rule.ID, Err: fmt.Errorf("invalid pattern: %w", err)}
	}

	severity, err := finding.ParseSeverity(rule.Severity)
	if err != nil {
		return Compiled{}, RuleError{Pack: pack, RuleID: rule.ID, Err: err}
	}

	cvss := decimal.Zero
	if rule.CVSS != "" {
		cvss, err = decimal.NewFromString(rule.CVSS)
		if err != nil {
			return Compiled{}, RuleError{Pack: pack, RuleID: rule.ID, Err: fmt.Errorf("invalid cvss %q: %w", rule.CVSS, err)}
		}
		if cvss.IsNegative() || cvss.GreaterThan(decimal.NewFromInt(10)) {
			return Compiled{}, RuleError{Pack: pack, RuleID: rule.ID, Err: fmt.Errorf("cvss %s out of range", cvss)}
		}
	}

	return Compiled{
		ID:         rule.ID,
		Message:    rule.Message,
		Severity:   severity,
		Category:   rule.Category,
		CWE:        rule.CWE,
		CVSS:       cvss,
		Suggestion: rule.Suggestion,
		Language:   lang,
		Regexp:     re,
	}, nil
}

// ForLanguage returns the compiled rules for a language.
func (s *Set) ForLanguage(lang fileset.Language) []Compiled {
	return s.byLanguage[lang]
}

// Languages returns the languages with at least one rule, sorted.
func (s *Set) Languages() []fileset.Language {
	langs := make([]fileset.Language, 0, len(s.byLanguage))
	for lang := range s.byLanguage {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// IDs returns all rule IDs, sorted.
func (s *Set) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the total number of rules.
func (s *Set) Len() int {
	return len(s.ids)
}

// Lookup returns the compiled rule with the given ID.
func (s *Set) Lookup(id string) (Compiled, bool) {
	for _, rules := range s.byLanguage {
		for _, rule := range rules {
			if rule.ID == id {
				return rule, true
			}
		}
	}
	return Compiled{}, false
}

// Fingerprint returns a stable hash of the rule IDs and patterns, used to key
// the scan cache so rule changes invalidate cached results.
func (s *Set) Fingerprint() string {
	h := sha256.New()
	for _, lang := range s.Languages() {
		for _, rule := range s.byLanguage[lang] {
			fmt.Fprintf(h, "%s|%s|%d\n", rule.ID, rule.Regexp.String(), rule.Severity)
		}
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
