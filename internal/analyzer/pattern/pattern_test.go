package pattern

import (
	"context"
	"testing"

	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
	"github.com/codesweep/codesweep/internal/rules"
)

func testSet(t *testing.T) *rules.Set {
	t.Helper()
	set, err := rules.Compile(rules.Pack{
		Language: "python",
		Name:     "test",
		Rules: []rules.Rule{
			{ID: "python.cmd.os-system", Pattern: `\bos\.system\s*\(`, Message: "shell command execution",
				Severity: "critical", Category: "command-injection", CWE: "CWE-78", CVSS: "9.8",
				Suggestion: "use subprocess with an argument list"},
			{ID: "python.eval", Pattern: `\beval\s*\(`, Message: "eval usage", Severity: "high"},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return set
}

func TestNewRequiresRules(t *testing.T) {
	t.Parallel()

	if _, err := New(analyzer.Options{}); err == nil {
		t.Fatal("New succeeded without rules")
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	a, err := New(analyzer.Options{Rules: testSet(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	src := "import os\n\nresult = os.system(cmd)\nvalue = eval(expr)\n"
	findings, err := a.Analyze(context.Background(), analyzer.Target{
		Path:     "app/main.py",
		Language: fileset.LangPython,
		Content:  []byte(src),
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}

	first := findings[0]
	if first.RuleID != "python.cmd.os-system" {
		t.Errorf("RuleID = %q", first.RuleID)
	}
	if first.Location.Line != 3 {
		t.Errorf("Line = %d, want 3", first.Location.Line)
	}
	if first.Location.Column != 10 {
		t.Errorf("Column = %d, want 10", first.Location.Column)
	}
	if first.Snippet != "result = os.system(cmd)" {
		t.Errorf("Snippet = %q", first.Snippet)
	}
	if first.Severity != finding.SeverityCritical {
		t.Errorf("Severity = %v", first.Severity)
	}
	if first.Source != Name {
		t.Errorf("Source = %q, want %q", first.Source, Name)
	}
	if first.Suggestion == "" {
		t.Errorf("Suggestion not carried over")
	}
}

func TestAnalyzeSkipsOtherLanguages(t *testing.T) {
	t.Parallel()

	a, err := New(analyzer.Options{Rules: testSet(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	findings, err := a.Analyze(context.Background(), analyzer.Target{
		Path:     "main.go",
		Language: fileset.LangGo,
		Content:  []byte("os.system(cmd)"),
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings for an uncovered language, want 0", len(findings))
	}
}

func TestAnalyzeSkipsBinary(t *testing.T) {
	t.Parallel()

	a, err := New(analyzer.Options{Rules: testSet(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	findings, err := a.Analyze(context.Background(), analyzer.Target{
		Path:     "blob.py",
		Language: fileset.LangPython,
		Content:  []byte("os.system(\x00binary)"),
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if findings != nil {
		t.Errorf("binary content produced findings: %v", findings)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	t.Parallel()

	a, err := New(analyzer.Options{Rules: testSet(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Analyze(ctx, analyzer.Target{
		Path:     "main.py",
		Language: fileset.LangPython,
		Content:  []byte("os.system(cmd)\n"),
	}); err == nil {
		t.Errorf("Analyze ignored cancelled context")
	}
}
