// Package goast implements the AST analyzer for Go sources. It parses the
// target and inspects call sites and imports for issues line-oriented
// patterns cannot see reliably, such as string concatenation flowing into a
// query call.
package goast

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

// Name is the registry name of this analyzer.
const Name = "goast"

var sqlMethods = map[string]bool{
	"Query":           true,
	"QueryRow":        true,
	"QueryContext":    true,
	"QueryRowContext": true,
	"Exec":            true,
	"ExecContext":     true,
}

var weakHashImports = map[string]string{
	"crypto/md5":  "MD5 is broken for security use",
	"crypto/sha1": "SHA-1 is broken for security use",
}

type Analyzer struct{}

// New creates the Go AST analyzer.
func New(analyzer.Options) (analyzer.Analyzer, error) {
	return &Analyzer{}, nil
}

func (a *Analyzer) Name() string { return Name }

func (a *Analyzer) Languages() []fileset.Language {
	return []fileset.Language{fileset.LangGo}
}

// Analyze parses the target as a Go file. Sources that do not parse are
// skipped silently, the pattern rules still cover them.
func (a *Analyzer) Analyze(ctx context.Context, target analyzer.Target) ([]finding.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, target.Path, target.Content, parser.SkipObjectResolution)
	if err != nil {
		return nil, nil
	}

	v := &visitor{fset: fset, path: target.Path}
	v.checkImports(file)

	insp := inspector.New([]*ast.File{file})
	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, v.checkCall)
	insp.Preorder([]ast.Node{(*ast.AssignStmt)(nil)}, v.checkAssign)

	return v.findings, nil
}

type visitor struct {
	fset     *token.FileSet
	path     string
	findings []finding.Finding
}

func (v *visitor) add(n ast.Node, b *finding.Builder) {
	pos := v.fset.Position(n.Pos())
	v.findings = append(v.findings, b.
		At(v.path, pos.Line, pos.Column).
		Language(fileset.LangGo).
		Source(Name).
		Build())
}

func (v *visitor) checkImports(file *ast.File) {
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		switch {
		case path == "math/rand" || path == "math/rand/v2":
			v.add(spec, finding.New(finding.SeverityMedium, "math/rand is not a cryptographic RNG").
				Rule("go.ast.import-mathrand").
				Category("weak-crypto").
				CWE("CWE-338").
				CVSS(decimal.RequireFromString("5.3")).
				Suggest("use crypto/rand for anything security sensitive"))
		default:
			if reason, ok := weakHashImports[path]; ok {
				v.add(spec, finding.New(finding.SeverityHigh, reason).
					Rule("go.ast.import-weakhash").
					Category("weak-crypto").
					CWE("CWE-328").
					CVSS(decimal.RequireFromString("7.4")).
					Suggest("use crypto/sha256 or stronger"))
			}
		}
	}
}

func (v *visitor) checkCall(n ast.Node) {
	call := n.(*ast.CallExpr)
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}

	switch {
	case sqlMethods[sel.Sel.Name]:
		v.checkSQLCall(call)
	case isPkgSelector(sel, "exec", "Command"), isPkgSelector(sel, "exec", "CommandContext"):
		v.checkExecCall(call, sel)
	case isPkgSelector(sel, "template", "HTML"), isPkgSelector(sel, "template", "JS"),
		isPkgSelector(sel, "template", "URL"):
		v.add(call, finding.New(finding.SeverityHigh, "template."+sel.Sel.Name+" bypasses context escaping").
			Rule("go.ast.template-noescape").
			Category("xss").
			CWE("CWE-79").
			CVSS(decimal.RequireFromString("7.1")).
			Suggest("keep auto-escaping and pass plain strings"))
	}
}

// checkSQLCall flags query arguments assembled with + or fmt.Sprintf.
func (v *visitor) checkSQLCall(call *ast.CallExpr) {
	for _, arg := range call.Args {
		if !looksLikeQuery(arg) {
			continue
		}
		v.add(call, finding.New(finding.SeverityHigh, "SQL query built from dynamic strings").
			Rule("go.ast.sql-concat").
			Category("sql-injection").
			CWE("CWE-89").
			CVSS(decimal.RequireFromString("8.2")).
			Suggest("use placeholder parameters instead of concatenation"))
		return
	}
}

func (v *visitor) checkExecCall(call *ast.CallExpr, sel *ast.SelectorExpr) {
	args := call.Args
	if sel.Sel.Name == "CommandContext" && len(args) > 0 {
		args = args[1:]
	}
	if len(args) == 0 {
		return
	}
	if _, ok := stringLiteral(args[0]); ok {
		return
	}
	v.add(call, finding.New(finding.SeverityHigh, "command name is not a literal").
		Rule("go.ast.exec-nonliteral").
		Category("command-injection").
		CWE("CWE-78").
		CVSS(decimal.RequireFromString("7.8")).
		Suggest("pass a fixed binary name and untrusted input as arguments"))
}

// checkAssign flags discarded single error results, `_ = doWork()`.
func (v *visitor) checkAssign(n ast.Node) {
	assign := n.(*ast.AssignStmt)
	if len(assign.Lhs) != 1 || len(assign.Rhs) != 1 {
		return
	}
	ident, ok := assign.Lhs[0].(*ast.Ident)
	if !ok || ident.Name != "_" {
		return
	}
	if _, ok := assign.Rhs[0].(*ast.CallExpr); !ok {
		return
	}
	v.add(assign, finding.New(finding.SeverityLow, "result of call discarded with blank identifier").
		Rule("go.ast.error-discard").
		Category("error-handling").
		CWE("CWE-252").
		CVSS(decimal.RequireFromString("3.1")).
		Suggest("handle or at least log the returned error"))
}

// looksLikeQuery reports whether the expression is a dynamically assembled
// string that contains an SQL keyword in one of its literal parts.
func looksLikeQuery(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return false
		}
		return containsSQLKeyword(e) && hasNonLiteral(e)
	case *ast.CallExpr:
		if sel, ok := e.Fun.(*ast.SelectorExpr); ok && isPkgSelector(sel, "fmt", "Sprintf") {
			if len(e.Args) > 1 {
				if lit, ok := stringLiteral(e.Args[0]); ok {
					return hasSQLKeyword(lit)
				}
			}
		}
	}
	return false
}

func containsSQLKeyword(expr ast.Expr) bool {
	found := false
	ast.Inspect(expr, func(n ast.Node) bool {
		if lit, ok := n.(*ast.BasicLit); ok && lit.Kind == token.STRING {
			if s, err := strconv.Unquote(lit.Value); err == nil && hasSQLKeyword(s) {
				found = true
			}
		}
		return !found
	})
	return found
}

func hasNonLiteral(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		return hasNonLiteral(e.X) || hasNonLiteral(e.Y)
	case *ast.BasicLit:
		return false
	default:
		return true
	}
}

func hasSQLKeyword(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "DROP "} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func stringLiteral(expr ast.Expr) (string, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

func isPkgSelector(sel *ast.SelectorExpr, pkg, name string) bool {
	ident, ok := sel.X.(*ast.Ident)
	return ok && ident.Name == pkg && sel.Sel.Name == name
}
