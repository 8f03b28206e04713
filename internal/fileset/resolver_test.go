package fileset

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

func TestResolveSortsAndDeduplicates(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"src/main.c":   {Data: []byte("int main() {}")},
		"src/util.c":   {Data: []byte("")},
		"src/util.h":   {Data: []byte("")},
		"lib/vendor.c": {Data: []byte("")},
	}

	resolver := NewResolver(fsys)
	paths, err := resolver.Resolve([]string{"src/*.c", "src/*.c", "lib/*.c"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := []string{"lib/vendor.c", "src/main.c", "src/util.c"}
	if !slices.Equal(paths, want) {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestResolveNoPatterns(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(fstest.MapFS{})
	if _, err := resolver.Resolve(nil); !errors.Is(err, ErrNoPatterns) {
		t.Fatalf("expected ErrNoPatterns, got %v", err)
	}
}

func TestResolveNoMatches(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(fstest.MapFS{"a.go": {Data: []byte("")}})
	_, err := resolver.Resolve([]string{"*.php", "*.rb"})

	var noMatch NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchError, got %v", err)
	}
	if !slices.Equal(noMatch.Patterns, []string{"*.php", "*.rb"}) {
		t.Fatalf("unexpected missing patterns: %v", noMatch.Patterns)
	}
}

func TestResolveInvalidPattern(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(fstest.MapFS{"a.go": {Data: []byte("")}})
	_, err := resolver.Resolve([]string{"[unclosed"})

	var patternErr PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternError, got %v", err)
	}
	if patternErr.Pattern != "[unclosed" {
		t.Fatalf("unexpected pattern: %q", patternErr.Pattern)
	}
}

func TestResolveExcluding(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"src/main.go":       {Data: []byte("")},
		"src/main_test.go":  {Data: []byte("")},
		"vendor/lib/dep.go": {Data: []byte("")},
	}

	resolver := NewResolver(fsys)
	paths, err := resolver.ResolveExcluding([]string{"src/*.go", "vendor/lib/*.go"}, []string{"*_test.go", "vendor/*"})
	if err != nil {
		t.Fatalf("ResolveExcluding returned error: %v", err)
	}

	want := []string{"src/main.go"}
	if !slices.Equal(paths, want) {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestResolveExcludingInvalidPattern(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(fstest.MapFS{"a.go": {Data: []byte("")}})
	_, err := resolver.ResolveExcluding([]string{"*.go"}, []string{"[unclosed"})

	var patternErr PatternError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternError, got %v", err)
	}
	if patternErr.Pattern != "[unclosed" {
		t.Fatalf("unexpected pattern: %q", patternErr.Pattern)
	}
}

func TestResolveExcludingOSResolver(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	files := []string{"src/app.py", "vendor/lib/dep.py"}
	for _, name := range files {
		path := filepath.Join(base, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("pass\n"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	resolver, err := NewOSResolver(base)
	if err != nil {
		t.Fatalf("NewOSResolver returned error: %v", err)
	}

	// Relative exclude patterns must keep working even though the resolver
	// returns absolute paths.
	paths, err := resolver.ResolveExcluding([]string{"src/*.py", "vendor/lib/*.py"}, []string{"vendor/*"})
	if err != nil {
		t.Fatalf("ResolveExcluding returned error: %v", err)
	}

	want := []string{filepath.Join(base, "src", "app.py")}
	if !slices.Equal(paths, want) {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestExclude(t *testing.T) {
	t.Parallel()

	paths := []string{
		"src/main.go",
		"src/main_test.go",
		"vendor/lib/dep.go",
		"docs/readme.py",
	}

	kept, err := Exclude(paths, []string{"*_test.go", "vendor/*"})
	if err != nil {
		t.Fatalf("Exclude returned error: %v", err)
	}

	want := []string{"src/main.go", "docs/readme.py"}
	if !slices.Equal(kept, want) {
		t.Fatalf("unexpected kept paths: %v", kept)
	}
}

func TestExcludeNoPatterns(t *testing.T) {
	t.Parallel()

	paths := []string{"a.go", "b.go"}
	kept, err := Exclude(paths, nil)
	if err != nil {
		t.Fatalf("Exclude returned error: %v", err)
	}
	if !slices.Equal(kept, paths) {
		t.Fatalf("expected all paths kept, got %v", kept)
	}
}
