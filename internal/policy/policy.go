// Package policy implements the finding filter expression language used for
// suppressions and gating. Expressions combine field comparisons with boolean
// operators, for example:
//
//	severity >= high and language == go
//	rule == "go.sql.concat" or category =~ "crypto"
//	not (path =~ "_test\.go$")
//
// Ordering comparisons apply to severity and cvss only; string fields support
// equality and the =~ regexp operator.
package policy

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/codesweep/codesweep/internal/finding"
)

//nolint:govet // Participle struct tags are DSL, not reflect tags
type expr struct {
	Left  *andExpr   `parser:"@@"`
	Right []*andExpr `parser:"('or' @@)*"`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type andExpr struct {
	Left  *notExpr   `parser:"@@"`
	Right []*notExpr `parser:"('and' @@)*"`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type notExpr struct {
	Not  bool  `parser:"@'not'?"`
	Term *term `parser:"@@"`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type term struct {
	Group *expr       `parser:"'(' @@ ')'"`
	Cmp   *comparison `parser:"| @@"`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type comparison struct {
	Field string `parser:"@Ident"`
	Op    string `parser:"@Operator"`
	Value string `parser:"@(String | Ident | Number)"`
}

//nolint:govet // Participle DSL uses unkeyed fields
var policyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Operator", Pattern: `==|!=|>=|<=|=~|>|<`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
	{Name: "Paren", Pattern: `[()]`},
})

var parser = participle.MustBuild[expr](
	participle.Lexer(policyLexer),
)

type matchFunc func(finding.Finding) bool

// Policy is a compiled filter expression.
type Policy struct {
	src   string
	match matchFunc
}

// Parse compiles an expression. Field names, operators, severity values, and
// regexp patterns are all validated here so Match never fails.
func Parse(src string) (*Policy, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("policy: empty expression")
	}
	ast, err := parser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("policy %q: %w", src, err)
	}
	match, err := ast.compile()
	if err != nil {
		return nil, fmt.Errorf("policy %q: %w", src, err)
	}
	return &Policy{src: src, match: match}, nil
}

// MustParse is Parse that panics on error, for fixed expressions.
func MustParse(src string) *Policy {
	p, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseAll compiles every expression in order.
func ParseAll(srcs []string) ([]*Policy, error) {
	policies := make([]*Policy, 0, len(srcs))
	for _, src := range srcs {
		p, err := Parse(src)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, nil
}

// Match reports whether the finding satisfies the expression.
func (p *Policy) Match(f finding.Finding) bool { return p.match(f) }

// String returns the source expression.
func (p *Policy) String() string { return p.src }

// AnyMatch reports whether any policy matches the finding.
func AnyMatch(policies []*Policy, f finding.Finding) bool {
	for _, p := range policies {
		if p.Match(f) {
			return true
		}
	}
	return false
}

func (e *expr) compile() (matchFunc, error) {
	left, err := e.Left.compile()
	if err != nil {
		return nil, err
	}
	if len(e.Right) == 0 {
		return left, nil
	}
	rest := make([]matchFunc, len(e.Right))
	for i, alt := range e.Right {
		if rest[i], err = alt.compile(); err != nil {
			return nil, err
		}
	}
	return func(f finding.Finding) bool {
		if left(f) {
			return true
		}
		for _, m := range rest {
			if m(f) {
				return true
			}
		}
		return false
	}, nil
}

func (e *andExpr) compile() (matchFunc, error) {
	left, err := e.Left.compile()
	if err != nil {
		return nil, err
	}
	if len(e.Right) == 0 {
		return left, nil
	}
	rest := make([]matchFunc, len(e.Right))
	for i, conj := range e.Right {
		if rest[i], err = conj.compile(); err != nil {
			return nil, err
		}
	}
	return func(f finding.Finding) bool {
		if !left(f) {
			return false
		}
		for _, m := range rest {
			if !m(f) {
				return false
			}
		}
		return true
	}, nil
}

func (e *notExpr) compile() (matchFunc, error) {
	inner, err := e.Term.compile()
	if err != nil {
		return nil, err
	}
	if !e.Not {
		return inner, nil
	}
	return func(f finding.Finding) bool { return !inner(f) }, nil
}

func (e *term) compile() (matchFunc, error) {
	if e.Group != nil {
		return e.Group.compile()
	}
	return e.Cmp.compile()
}
