package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

func testMeta() Metadata {
	return Metadata{
		RunID:        uuid.MustParse("3b53876a-54c1-4465-97ff-9b23690b81b2"),
		StartedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Duration:     1420 * time.Millisecond,
		FilesScanned: 12,
		Version:      "1.4.0",
	}
}

func testFindings() *finding.Collection {
	c := finding.NewCollection()
	c.Add(finding.New(finding.SeverityCritical, "shell command execution").
		Rule("python.cmd.os-system").
		At("app/main.py", 10, 5).
		Category("command-injection").
		Language(fileset.LangPython).
		CWE("CWE-78").
		CVSS(decimal.RequireFromString("9.8")).
		Snippet("os.system(cmd)").
		Suggest("use subprocess with an argument list").
		Source("pattern").
		Build())
	c.Add(finding.New(finding.SeverityMedium, "non-cryptographic RNG").
		Rule("go.ast.import-mathrand").
		At("internal/token/token.go", 3, 8).
		Language(fileset.LangGo).
		Source("goast").
		Build())
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range Formats() {
		r, err := New(format, Options{})
		if err != nil {
			t.Fatalf("New(%s): %v", format, err)
		}
		if r.Format() != format {
			t.Errorf("Format() = %q, want %q", r.Format(), format)
		}
		if r.FileName() == "" {
			t.Errorf("FileName() empty for %s", format)
		}
	}

	if _, err := New("xml", Options{}); err == nil {
		t.Error("New(xml) succeeded")
	}
}

func TestTextRender(t *testing.T) {
	t.Parallel()

	r, err := New("text", Options{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := r.Render(testMeta(), testFindings())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"CODESWEEP SECURITY REPORT",
		"3b53876a-54c1-4465-97ff-9b23690b81b2",
		"12 scanned, 2 with findings",
		"Findings:  2 total",
		"CRITICAL (1)",
		"MEDIUM (1)",
		"app/main.py:10:5",
		"[python.cmd.os-system]",
		"os.system(cmd)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q\n%s", want, text)
		}
	}

	// Severity groups run from most to least severe.
	if strings.Index(text, "CRITICAL (1)") > strings.Index(text, "MEDIUM (1)") {
		t.Errorf("severity groups out of order")
	}
}

func TestTextRenderEmpty(t *testing.T) {
	t.Parallel()

	r, _ := New("text", Options{})
	out, err := r.Render(testMeta(), finding.NewCollection())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "No findings.") {
		t.Errorf("empty report missing placeholder:\n%s", out)
	}
}

func TestJSONRender(t *testing.T) {
	t.Parallel()

	r, _ := New("json", Options{})
	out, err := r.Render(testMeta(), testFindings())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc["total_findings"].(float64) != 2 {
		t.Errorf("total_findings = %v", doc["total_findings"])
	}
	if doc["risk_score"] != "9.8" {
		t.Errorf("risk_score = %v", doc["risk_score"])
	}

	findings := doc["findings"].([]any)
	first := findings[0].(map[string]any)
	if first["rule_id"] != "python.cmd.os-system" {
		t.Errorf("rule_id = %v", first["rule_id"])
	}
	loc := first["location"].(map[string]any)
	if loc["file"] != "app/main.py" || loc["line"].(float64) != 10 || loc["column"].(float64) != 5 {
		t.Errorf("location = %v", loc)
	}
	if first["severity"] != "critical" {
		t.Errorf("severity = %v", first["severity"])
	}

	summary := doc["summary"].(map[string]any)
	if summary["critical"].(float64) != 1 || summary["medium"].(float64) != 1 {
		t.Errorf("summary = %v", summary)
	}
}

func TestSARIFRender(t *testing.T) {
	t.Parallel()

	r, _ := New("sarif", Options{})
	out, err := r.Render(testMeta(), testFindings())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID         string `json:"id"`
						Properties *struct {
							SecuritySeverity string `json:"security-severity"`
						} `json:"properties"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}

	if doc.Version != "2.1.0" {
		t.Errorf("version = %q", doc.Version)
	}
	run := doc.Runs[0]
	if run.Tool.Driver.Name != "codesweep" {
		t.Errorf("driver = %q", run.Tool.Driver.Name)
	}
	if len(run.Results) != 2 || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("results = %d, rules = %d", len(run.Results), len(run.Tool.Driver.Rules))
	}

	// Rules are sorted by ID.
	if run.Tool.Driver.Rules[0].ID != "go.ast.import-mathrand" {
		t.Errorf("rules[0] = %q", run.Tool.Driver.Rules[0].ID)
	}

	critical := run.Results[0]
	if critical.Level != "error" {
		t.Errorf("critical level = %q, want error", critical.Level)
	}
	if critical.Locations[0].PhysicalLocation.ArtifactLocation.URI != "app/main.py" {
		t.Errorf("uri = %q", critical.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	}
	if critical.Locations[0].PhysicalLocation.Region.StartLine != 10 {
		t.Errorf("startLine = %d", critical.Locations[0].PhysicalLocation.Region.StartLine)
	}
}

func TestSARIFLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity finding.Severity
		want     string
	}{
		{finding.SeverityCritical, "error"},
		{finding.SeverityHigh, "error"},
		{finding.SeverityMedium, "warning"},
		{finding.SeverityLow, "note"},
		{finding.SeverityInfo, "none"},
	}
	for _, tc := range tests {
		if got := sarifLevel(tc.severity); got != tc.want {
			t.Errorf("sarifLevel(%v) = %q, want %q", tc.severity, got, tc.want)
		}
	}
}
