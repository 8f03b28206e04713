package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const vulnerableSource = `import os

def handler(path):
    os.system("rm -rf " + path)
`

func writeFixture(t *testing.T, config string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "codesweep.toml"), []byte(config), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte(vulnerableSource), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return filepath.Join(dir, "codesweep.toml")
}

func TestRunFindingsExitCode(t *testing.T) {
	configPath := writeFixture(t, "[scan]\ninputs = [\"*.py\"]\n")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--config", configPath}, stdout, stderr)
	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1; stderr=%q", exitCode, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "scanned 1 files") {
		t.Fatalf("stdout %q missing scan summary", out)
	}
	if !strings.Contains(out, "findings.txt") {
		t.Fatalf("stdout %q missing report path", out)
	}

	reportPath := filepath.Join(filepath.Dir(configPath), "reports", "findings.txt")
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "python.cmd.os-system") {
		t.Fatal("report missing expected rule ID")
	}
}

func TestRunCleanExitCode(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "codesweep.toml")
	if err := os.WriteFile(config, []byte("[scan]\ninputs = [\"*.py\"]\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("def add(a, b):\n    return a + b\n"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	exitCode := run(context.Background(), []string{"--config", config}, &bytes.Buffer{}, &bytes.Buffer{})
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", exitCode)
	}
}

func TestRunFailOnFlag(t *testing.T) {
	configPath := writeFixture(t, "[scan]\ninputs = [\"*.py\"]\n")

	exitCode := run(context.Background(), []string{"--config", configPath, "--fail-on", "critical"}, &bytes.Buffer{}, &bytes.Buffer{})
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0 with a critical gate over high findings", exitCode)
	}
}

func TestRunListRules(t *testing.T) {
	configPath := writeFixture(t, "[scan]\ninputs = [\"*.py\"]\n")
	stdout := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--config", configPath, "--list-rules"}, stdout, &bytes.Buffer{})
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", exitCode)
	}
	if !strings.Contains(stdout.String(), "python.cmd.os-system") {
		t.Fatal("list-rules output missing builtin rule")
	}
}

func TestRunListFiles(t *testing.T) {
	configPath := writeFixture(t, "[scan]\ninputs = [\"*.py\"]\n")
	stdout := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--config", configPath, "--list-files"}, stdout, &bytes.Buffer{})
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", exitCode)
	}
	if !strings.Contains(stdout.String(), "app.py") {
		t.Fatalf("list-files output %q missing app.py", stdout.String())
	}
}

func TestRunMissingConfig(t *testing.T) {
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "nope.toml")}, &bytes.Buffer{}, stderr)
	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
	if stderr.Len() == 0 {
		t.Fatal("expected error output on stderr")
	}
}

func TestRunHelp(t *testing.T) {
	stdout := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"-h"}, stdout, &bytes.Buffer{})
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", exitCode)
	}
	if !strings.Contains(stdout.String(), "Usage of codesweep") {
		t.Fatal("help output missing usage")
	}
}

func TestRunUnknownFlag(t *testing.T) {
	exitCode := run(context.Background(), []string{"--bogus"}, &bytes.Buffer{}, &bytes.Buffer{})
	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
}
