package analyzer

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

type fakeAnalyzer struct {
	name  string
	langs []fileset.Language
}

func (f *fakeAnalyzer) Name() string                  { return f.name }
func (f *fakeAnalyzer) Languages() []fileset.Language { return f.langs }
func (f *fakeAnalyzer) Analyze(context.Context, Target) ([]finding.Finding, error) {
	return nil, nil
}

func newRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	r.Register("beta", func(Options) (Analyzer, error) { return &fakeAnalyzer{name: "beta"}, nil })
	r.Register("alpha", func(Options) (Analyzer, error) { return &fakeAnalyzer{name: "alpha"}, nil })

	if diff := cmp.Diff([]string{"alpha", "beta"}, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if !r.IsRegistered("alpha") || r.IsRegistered("gamma") {
		t.Errorf("IsRegistered gave wrong answers")
	}

	a, err := r.New("alpha", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Name() != "alpha" {
		t.Errorf("Name() = %q", a.Name())
	}

	if _, err := r.New("gamma", Options{}); err == nil {
		t.Errorf("New(gamma) succeeded for an unregistered name")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	r.Register("dup", func(Options) (Analyzer, error) { return nil, nil })

	defer func() {
		if recover() == nil {
			t.Errorf("duplicate registration did not panic")
		}
	}()
	r.Register("dup", func(Options) (Analyzer, error) { return nil, nil })
}

func TestCovers(t *testing.T) {
	t.Parallel()

	scoped := &fakeAnalyzer{name: "s", langs: []fileset.Language{fileset.LangGo}}
	if !Covers(scoped, fileset.LangGo) {
		t.Errorf("Covers(go) = false")
	}
	if Covers(scoped, fileset.LangRust) {
		t.Errorf("Covers(rust) = true")
	}

	open := &fakeAnalyzer{name: "o"}
	if !Covers(open, fileset.LangRust) {
		t.Errorf("unrestricted analyzer should cover everything")
	}
}
