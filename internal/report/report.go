// Package report renders scan results in the supported output formats and
// writes them to disk atomically.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codesweep/codesweep/internal/finding"
)

// Metadata describes the run a report belongs to.
type Metadata struct {
	RunID        uuid.UUID
	StartedAt    time.Time
	Duration     time.Duration
	FilesScanned int
	Version      string
}

// Renderer turns a finding collection into one output document.
type Renderer interface {
	// Format returns the format identifier ("text", "json", "sarif").
	Format() string

	// FileName returns the file name the report is written under.
	FileName() string

	// Render produces the document.
	Render(meta Metadata, findings *finding.Collection) ([]byte, error)
}

// Options tunes rendering.
type Options struct {
	Color   bool
	Verbose bool
}

// New creates a renderer for the given format.
func New(format string, opts Options) (Renderer, error) {
	switch format {
	case "text":
		return &textRenderer{opts: opts}, nil
	case "json":
		return &jsonRenderer{}, nil
	case "sarif":
		return &sarifRenderer{}, nil
	default:
		return nil, fmt.Errorf("report: unsupported format %q", format)
	}
}

// Formats returns the supported format identifiers.
func Formats() []string {
	return []string{"text", "json", "sarif"}
}
