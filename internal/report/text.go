package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/codesweep/codesweep/internal/finding"
)

const bannerWidth = 78

type textRenderer struct {
	opts Options
}

func (r *textRenderer) Format() string   { return "text" }
func (r *textRenderer) FileName() string { return "findings.txt" }

// Render groups findings by severity, most severe first, under a header with
// the run summary.
func (r *textRenderer) Render(meta Metadata, findings *finding.Collection) ([]byte, error) {
	var b bytes.Buffer

	banner := strings.Repeat("=", bannerWidth)
	rule := strings.Repeat("-", bannerWidth)

	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "CODESWEEP SECURITY REPORT")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Run:       %s\n", meta.RunID)
	fmt.Fprintf(&b, "Started:   %s\n", meta.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Duration:  %s\n", meta.Duration.Round(timeRounding(meta.Duration)))
	fmt.Fprintf(&b, "Files:     %d scanned, %d with findings\n",
		meta.FilesScanned, findings.Summary().FilesWithFindings)
	fmt.Fprintf(&b, "Findings:  %d total\n", findings.Len())
	if score := findings.RiskScore(); !score.IsZero() {
		fmt.Fprintf(&b, "Risk:      %s\n", score.StringFixed(1))
	}
	fmt.Fprintln(&b, banner)

	if findings.Len() == 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "No findings.")
		return b.Bytes(), nil
	}

	formatter := &finding.Formatter{
		ShowSnippet:    true,
		ShowSuggestion: true,
		ShowCWE:        r.opts.Verbose,
		Colorize:       r.opts.Color,
	}

	for _, severity := range finding.Severities() {
		group := findings.BySeverity(severity)
		if len(group) == 0 {
			continue
		}

		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "%s (%d)\n", severity.Report(), len(group))
		fmt.Fprintln(&b, rule)
		for _, f := range group {
			if err := formatter.Write(&b, f); err != nil {
				return nil, err
			}
		}
	}

	return b.Bytes(), nil
}

func timeRounding(d time.Duration) time.Duration {
	if d >= time.Second {
		return 10 * time.Millisecond
	}
	return time.Millisecond
}
