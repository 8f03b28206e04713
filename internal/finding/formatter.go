package finding

import (
	"fmt"
	"io"
	"strings"
)

// Formatter renders findings for terminal display.
type Formatter struct {
	// ShowSnippet controls whether to display the matched source line.
	ShowSnippet bool
	// ShowSuggestion controls whether to display fix suggestions.
	ShowSuggestion bool
	// ShowCWE controls whether to display CWE identifiers.
	ShowCWE bool
	// Colorize controls whether to use ANSI color codes.
	Colorize bool
}

// NewFormatter creates a formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowSnippet:    true,
		ShowSuggestion: true,
		ShowCWE:        false,
		Colorize:       false,
	}
}

// NewVerboseFormatter creates a formatter with all options enabled.
func NewVerboseFormatter() *Formatter {
	return &Formatter{
		ShowSnippet:    true,
		ShowSuggestion: true,
		ShowCWE:        true,
		Colorize:       true,
	}
}

// Format formats a single finding as a string.
func (fm *Formatter) Format(f Finding) string {
	var b strings.Builder
	fm.formatFinding(&b, f)
	return b.String()
}

// Write writes a single finding to the writer.
func (fm *Formatter) Write(w io.Writer, f Finding) error {
	_, err := fmt.Fprint(w, fm.Format(f))
	return err
}

// WriteAll writes all findings in a collection to the writer.
func (fm *Formatter) WriteAll(w io.Writer, c *Collection) error {
	for _, f := range c.All() {
		if err := fm.Write(w, f); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary prints per-severity counts on a single line.
func (fm *Formatter) PrintSummary(w io.Writer, c *Collection) {
	summary := c.Summary()
	if summary.Total == 0 {
		return
	}

	parts := make([]string, 0, 5)
	for _, sev := range Severities() {
		if n := summary.Count(sev); n > 0 {
			parts = append(parts, fm.colorize(fmt.Sprintf("%d %s", n, sev), fm.severityColor(sev)))
		}
	}
	_, _ = fmt.Fprintf(w, "%s\n", strings.Join(parts, ", "))
}

func (fm *Formatter) formatFinding(b *strings.Builder, f Finding) {
	if f.HasLocation() {
		location := fm.colorize(fmt.Sprintf("%s:%d:%d", f.Location.Path, f.Location.Line, f.Location.Column), colorCyan)
		fmt.Fprintf(b, "%s: ", location)
	}

	severity := fm.colorize(f.Severity.String(), fm.severityColor(f.Severity))
	fmt.Fprintf(b, "%s: %s", severity, f.Message)

	if f.RuleID != "" {
		fmt.Fprintf(b, " %s", fm.colorize(fmt.Sprintf("[%s]", f.RuleID), colorMagenta))
	}
	if fm.ShowCWE && f.CWE != "" {
		fmt.Fprintf(b, " (%s)", f.CWE)
	}
	b.WriteString("\n")

	if fm.ShowSnippet && f.Snippet != "" {
		fmt.Fprintf(b, "  %s %s\n", fm.colorize("-->", colorBlue), f.Snippet)
	}
	if fm.ShowSuggestion && f.Suggestion != "" {
		fmt.Fprintf(b, "  %s %s\n", fm.colorize("help:", colorGreen), f.Suggestion)
	}
}

func (fm *Formatter) severityColor(s Severity) string {
	switch s {
	case SeverityCritical, SeverityHigh:
		return colorRed
	case SeverityMedium:
		return colorYellow
	case SeverityLow:
		return colorBlue
	case SeverityInfo:
		return colorCyan
	default:
		return colorReset
	}
}

func (fm *Formatter) colorize(s, color string) string {
	if !fm.Colorize {
		return s
	}
	return color + s + colorReset
}

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)
