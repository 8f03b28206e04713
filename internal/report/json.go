package report

import (
	"encoding/json"
	"time"

	"github.com/codesweep/codesweep/internal/finding"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Format() string   { return "json" }
func (r *jsonRenderer) FileName() string { return "findings.json" }

type jsonReport struct {
	RunID         string        `json:"run_id"`
	ScanTime      string        `json:"scan_time"`
	DurationMS    int64         `json:"duration_ms"`
	FilesScanned  int           `json:"files_scanned"`
	TotalFindings int           `json:"total_findings"`
	RiskScore     string        `json:"risk_score"`
	Summary       jsonSummary   `json:"summary"`
	Findings      []jsonFinding `json:"findings"`
}

type jsonSummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

type jsonFinding struct {
	RuleID     string       `json:"rule_id"`
	Message    string       `json:"message"`
	Severity   string       `json:"severity"`
	Category   string       `json:"category,omitempty"`
	Language   string       `json:"language,omitempty"`
	CWE        string       `json:"cwe,omitempty"`
	CVSS       string       `json:"cvss,omitempty"`
	Location   jsonLocation `json:"location"`
	Snippet    string       `json:"snippet,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
	Source     string       `json:"source,omitempty"`
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (r *jsonRenderer) Render(meta Metadata, findings *finding.Collection) ([]byte, error) {
	summary := findings.Summary()

	doc := jsonReport{
		RunID:         meta.RunID.String(),
		ScanTime:      meta.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:    meta.Duration.Milliseconds(),
		FilesScanned:  meta.FilesScanned,
		TotalFindings: findings.Len(),
		RiskScore:     findings.RiskScore().StringFixed(1),
		Summary: jsonSummary{
			Critical: summary.Critical,
			High:     summary.High,
			Medium:   summary.Medium,
			Low:      summary.Low,
			Info:     summary.Info,
		},
		Findings: make([]jsonFinding, 0, findings.Len()),
	}

	for _, f := range findings.All() {
		entry := jsonFinding{
			RuleID:   f.RuleID,
			Message:  f.Message,
			Severity: f.Severity.String(),
			Category: f.Category,
			Language: string(f.Language),
			CWE:      f.CWE,
			Location: jsonLocation{
				File:   f.Location.Path,
				Line:   f.Location.Line,
				Column: f.Location.Column,
			},
			Snippet:    f.Snippet,
			Suggestion: f.Suggestion,
			Source:     f.Source,
		}
		if !f.CVSS.IsZero() {
			entry.CVSS = f.CVSS.String()
		}
		doc.Findings = append(doc.Findings, entry)
	}

	return json.MarshalIndent(doc, "", "  ")
}
