package extern

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/finding"
)

// Minimal view of a SARIF 2.1.0 log, only the fields conversion needs.
type sarifLog struct {
	Runs []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool struct {
		Driver struct {
			Name  string      `json:"name"`
			Rules []sarifRule `json:"rules"`
		} `json:"driver"`
	} `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifRule struct {
	ID                   string `json:"id"`
	DefaultConfiguration struct {
		Level string `json:"level"`
	} `json:"defaultConfiguration"`
	Properties struct {
		SecuritySeverity string `json:"security-severity"`
	} `json:"properties"`
}

type sarifResult struct {
	RuleID  string `json:"ruleId"`
	Level   string `json:"level"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	Locations []struct {
		PhysicalLocation struct {
			ArtifactLocation struct {
				URI string `json:"uri"`
			} `json:"artifactLocation"`
			Region struct {
				StartLine   int `json:"startLine"`
				StartColumn int `json:"startColumn"`
			} `json:"region"`
		} `json:"physicalLocation"`
	} `json:"locations"`
}

// ConvertSARIF turns a SARIF log into findings. Results without a location
// are attributed to fallbackPath. Levels map error to high, warning to
// medium, note to low, and everything else to info.
func ConvertSARIF(data []byte, fallbackPath string) ([]finding.Finding, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var log sarifLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("decode sarif: %w", err)
	}

	var findings []finding.Finding
	for _, run := range log.Runs {
		rules := make(map[string]sarifRule, len(run.Tool.Driver.Rules))
		for _, rule := range run.Tool.Driver.Rules {
			rules[rule.ID] = rule
		}

		for _, result := range run.Results {
			rule := rules[result.RuleID]

			level := result.Level
			if level == "" {
				level = rule.DefaultConfiguration.Level
			}

			path, line, column := fallbackPath, 1, 1
			if len(result.Locations) > 0 {
				phys := result.Locations[0].PhysicalLocation
				if phys.ArtifactLocation.URI != "" {
					path = phys.ArtifactLocation.URI
				}
				if phys.Region.StartLine > 0 {
					line = phys.Region.StartLine
				}
				if phys.Region.StartColumn > 0 {
					column = phys.Region.StartColumn
				}
			}

			b := finding.New(sarifSeverity(level), result.Message.Text).
				Rule(result.RuleID).
				At(path, line, column).
				Category(strings.ToLower(run.Tool.Driver.Name)).
				Source(Name)
			if score, err := decimal.NewFromString(rule.Properties.SecuritySeverity); err == nil {
				b = b.CVSS(score)
			}
			findings = append(findings, b.Build())
		}
	}

	return findings, nil
}

func sarifSeverity(level string) finding.Severity {
	switch strings.ToLower(level) {
	case "error":
		return finding.SeverityHigh
	case "warning":
		return finding.SeverityMedium
	case "note":
		return finding.SeverityLow
	default:
		return finding.SeverityInfo
	}
}
