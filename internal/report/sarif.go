package report

import (
	"encoding/json"
	"sort"

	"github.com/codesweep/codesweep/internal/finding"
)

type sarifRenderer struct{}

func (r *sarifRenderer) Format() string   { return "sarif" }
func (r *sarifRenderer) FileName() string { return "findings.sarif" }

type sarifDoc struct {
	Schema  string        `json:"$schema"`
	Version string        `json:"version"`
	Runs    []sarifRunDoc `json:"runs"`
}

type sarifRunDoc struct {
	Tool    sarifToolDoc     `json:"tool"`
	Results []sarifResultDoc `json:"results"`
}

type sarifToolDoc struct {
	Driver sarifDriverDoc `json:"driver"`
}

type sarifDriverDoc struct {
	Name           string         `json:"name"`
	Version        string         `json:"version,omitempty"`
	InformationURI string         `json:"informationUri,omitempty"`
	Rules          []sarifRuleDoc `json:"rules"`
}

type sarifRuleDoc struct {
	ID               string          `json:"id"`
	ShortDescription sarifMessageDoc `json:"shortDescription"`
	Properties       *sarifPropsDoc  `json:"properties,omitempty"`
}

type sarifPropsDoc struct {
	SecuritySeverity string `json:"security-severity,omitempty"`
	CWE              string `json:"cwe,omitempty"`
	Category         string `json:"category,omitempty"`
}

type sarifMessageDoc struct {
	Text string `json:"text"`
}

type sarifResultDoc struct {
	RuleID    string             `json:"ruleId"`
	Level     string             `json:"level"`
	Message   sarifMessageDoc    `json:"message"`
	Locations []sarifLocationDoc `json:"locations"`
}

type sarifLocationDoc struct {
	PhysicalLocation sarifPhysicalDoc `json:"physicalLocation"`
}

type sarifPhysicalDoc struct {
	ArtifactLocation sarifArtifactDoc `json:"artifactLocation"`
	Region           sarifRegionDoc   `json:"region"`
}

type sarifArtifactDoc struct {
	URI string `json:"uri"`
}

type sarifRegionDoc struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// Render emits a SARIF 2.1.0 log with one run. Rule metadata is derived from
// the first finding seen per rule ID.
func (r *sarifRenderer) Render(meta Metadata, findings *finding.Collection) ([]byte, error) {
	ruleSeen := make(map[string]sarifRuleDoc)
	results := make([]sarifResultDoc, 0, findings.Len())

	for _, f := range findings.All() {
		if _, ok := ruleSeen[f.RuleID]; !ok && f.RuleID != "" {
			rule := sarifRuleDoc{
				ID:               f.RuleID,
				ShortDescription: sarifMessageDoc{Text: f.Message},
			}
			props := sarifPropsDoc{CWE: f.CWE, Category: f.Category}
			if !f.CVSS.IsZero() {
				props.SecuritySeverity = f.CVSS.String()
			}
			if props != (sarifPropsDoc{}) {
				rule.Properties = &props
			}
			ruleSeen[f.RuleID] = rule
		}

		results = append(results, sarifResultDoc{
			RuleID:  f.RuleID,
			Level:   sarifLevel(f.Severity),
			Message: sarifMessageDoc{Text: f.Message},
			Locations: []sarifLocationDoc{{
				PhysicalLocation: sarifPhysicalDoc{
					ArtifactLocation: sarifArtifactDoc{URI: f.Location.Path},
					Region: sarifRegionDoc{
						StartLine:   max(f.Location.Line, 1),
						StartColumn: f.Location.Column,
					},
				},
			}},
		})
	}

	ruleIDs := make([]string, 0, len(ruleSeen))
	for id := range ruleSeen {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	rules := make([]sarifRuleDoc, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		rules = append(rules, ruleSeen[id])
	}

	doc := sarifDoc{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRunDoc{{
			Tool: sarifToolDoc{Driver: sarifDriverDoc{
				Name:           "codesweep",
				Version:        meta.Version,
				InformationURI: "https://github.com/codesweep/codesweep",
				Rules:          rules,
			}},
			Results: results,
		}},
	}

	return json.MarshalIndent(doc, "", "  ")
}

func sarifLevel(s finding.Severity) string {
	switch s {
	case finding.SeverityCritical, finding.SeverityHigh:
		return "error"
	case finding.SeverityMedium:
		return "warning"
	case finding.SeverityLow:
		return "note"
	default:
		return "none"
	}
}
