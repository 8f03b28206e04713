package extern

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

type cargoAuditReport struct {
	Vulnerabilities struct {
		List []struct {
			Advisory struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				CVSS  string `json:"cvss"`
			} `json:"advisory"`
			Package struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"package"`
		} `json:"list"`
	} `json:"vulnerabilities"`
}

// parseCargoAudit converts `cargo audit --json` output. Every advisory is
// critical, a known-vulnerable dependency is in the build regardless of how
// it is called.
func parseCargoAudit(data []byte, path string) ([]finding.Finding, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var report cargoAuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode cargo audit report: %w", err)
	}

	var findings []finding.Finding
	for _, vuln := range report.Vulnerabilities.List {
		msg := fmt.Sprintf("%s %s: %s", vuln.Package.Name, vuln.Package.Version, vuln.Advisory.Title)
		b := finding.New(finding.SeverityCritical, msg).
			Rule(vuln.Advisory.ID).
			At(path, 1, 1).
			Category("vulnerable-dependency").
			Language(fileset.LangRust).
			Suggest(fmt.Sprintf("upgrade %s to a patched release", vuln.Package.Name)).
			Source(Name)
		if score, err := decimal.NewFromString(vuln.Advisory.CVSS); err == nil {
			b = b.CVSS(score)
		}
		findings = append(findings, b.Build())
	}

	return findings, nil
}

type clippyLine struct {
	Reason  string `json:"reason"`
	Message struct {
		Code *struct {
			Code string `json:"code"`
		} `json:"code"`
		Level   string `json:"level"`
		Message string `json:"message"`
		Spans   []struct {
			FileName    string `json:"file_name"`
			LineStart   int    `json:"line_start"`
			ColumnStart int    `json:"column_start"`
			IsPrimary   bool   `json:"is_primary"`
		} `json:"spans"`
	} `json:"message"`
}

// Lints mentioning these are escalated to high, they tend to be memory or
// injection adjacent rather than stylistic.
var clippyEscalations = []string{"unsafe", "overflow", "uninit", "transmute", "dangling"}

// parseClippy converts `cargo clippy --message-format=json` output, one JSON
// object per line. Lines that are not compiler messages are skipped, as are
// malformed lines.
func parseClippy(data []byte, fallbackPath string) []finding.Finding {
	var findings []finding.Finding

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry clippyLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Reason != "compiler-message" || entry.Message.Message == "" {
			continue
		}

		severity := clippySeverity(entry.Message.Level, entry.Message.Message)

		ruleID := "clippy.lint"
		if entry.Message.Code != nil && entry.Message.Code.Code != "" {
			ruleID = strings.ReplaceAll(entry.Message.Code.Code, "::", ".")
		}

		path, lineNo, column := fallbackPath, 1, 1
		for _, span := range entry.Message.Spans {
			if !span.IsPrimary {
				continue
			}
			path, lineNo, column = span.FileName, span.LineStart, span.ColumnStart
			break
		}

		findings = append(findings, finding.New(severity, entry.Message.Message).
			Rule(ruleID).
			At(path, lineNo, column).
			Category("lint").
			Language(fileset.LangRust).
			Source(Name).
			Build())
	}

	return findings
}

func clippySeverity(level, message string) finding.Severity {
	lower := strings.ToLower(message)
	for _, kw := range clippyEscalations {
		if strings.Contains(lower, kw) {
			return finding.SeverityHigh
		}
	}
	switch level {
	case "error":
		return finding.SeverityHigh
	case "warning":
		return finding.SeverityMedium
	default:
		return finding.SeverityLow
	}
}
