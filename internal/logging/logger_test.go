package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewDefaultLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Writer: &buf})

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message logged at default level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("info message missing: %q", out)
	}
}

func TestNewOmitsTimestamps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Writer: &buf})

	logger.Info("scanning", "files", 3)

	out := buf.String()
	if strings.Contains(out, "time=") {
		t.Fatalf("timestamp present in output: %q", out)
	}
	if !strings.Contains(out, "files=3") {
		t.Fatalf("attribute missing: %q", out)
	}
}

func TestNewVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Verbose: true, Writer: &buf})

	logger.Debug("visible")

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Fatalf("debug message missing in verbose mode: %q", out)
	}
	if !strings.Contains(out, "source=") {
		t.Fatalf("source location missing in verbose mode: %q", out)
	}
}

func TestSlogAdapterWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := NewSlogAdapter(New(Options{Writer: &buf}))

	child := adapter.With("component", "scanner")
	child.Info("ready")

	out := buf.String()
	if !strings.Contains(out, "component=scanner") {
		t.Fatalf("expected attribute in output, got %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	nop := NewNopLogger()
	nop.Debug("a")
	nop.Info("b")
	nop.Warn("c")
	nop.Error("d")

	if nop.With("k", "v") != nop {
		t.Fatal("With should return the same NopLogger")
	}
}
