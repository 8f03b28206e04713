// Package history persists scan runs so consecutive scans can be compared.
// Two backends are supported: a local SQLite database for single-machine use
// and PostgreSQL for shared CI setups.
package history

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/finding"
)

// Run is one recorded scan.
type Run struct {
	ID           uuid.UUID
	StartedAt    time.Time
	Duration     time.Duration
	FilesScanned int
	Total        int
	Critical     int
	High         int
	Medium       int
	Low          int
	Info         int
	RiskScore    decimal.Decimal
}

// NewRun builds a Run record from a finished scan.
func NewRun(id uuid.UUID, startedAt time.Time, duration time.Duration, filesScanned int, findings *finding.Collection) Run {
	summary := findings.Summary()
	return Run{
		ID:           id,
		StartedAt:    startedAt,
		Duration:     duration,
		FilesScanned: filesScanned,
		Total:        summary.Total,
		Critical:     summary.Critical,
		High:         summary.High,
		Medium:       summary.Medium,
		Low:          summary.Low,
		Info:         summary.Info,
		RiskScore:    findings.RiskScore(),
	}
}

// Diff is the comparison of a scan against the previous recorded run,
// keyed by finding digests.
type Diff struct {
	// New findings appear in the current scan only.
	New []finding.Finding
	// Fixed findings were recorded previously and are gone now.
	Fixed []finding.Finding
	// Persisting counts findings present in both.
	Persisting int
}

// Store persists runs and their findings.
type Store interface {
	// Init creates the schema if it does not exist.
	Init(ctx context.Context) error

	// RecordRun stores a run and its findings.
	RecordRun(ctx context.Context, run Run, findings []finding.Finding) error

	// LatestRun returns the most recent run, if any.
	LatestRun(ctx context.Context) (Run, bool, error)

	// ListRuns returns up to limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// FindingsForRun returns the findings recorded for a run.
	FindingsForRun(ctx context.Context, id uuid.UUID) ([]finding.Finding, error)

	// Diff compares current findings against the latest recorded run.
	Diff(ctx context.Context, current []finding.Finding) (Diff, error)

	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the SQLite database file.
	Path string
	// DSN is the PostgreSQL connection string.
	DSN string
}

// Open connects a Store for the configured backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "sqlite":
		return openSQLite(opts.Path)
	case "postgres":
		return openPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("history: unsupported backend %q", opts.Backend)
	}
}

// ComputeDiff compares two finding lists by digest.
func ComputeDiff(previous, current []finding.Finding) Diff {
	prevDigests := make(map[string]finding.Finding, len(previous))
	for _, f := range previous {
		prevDigests[f.Digest()] = f
	}

	var diff Diff
	currentDigests := make(map[string]struct{}, len(current))
	for _, f := range current {
		digest := f.Digest()
		currentDigests[digest] = struct{}{}
		if _, ok := prevDigests[digest]; ok {
			diff.Persisting++
		} else {
			diff.New = append(diff.New, f)
		}
	}

	for digest, f := range prevDigests {
		if _, ok := currentDigests[digest]; !ok {
			diff.Fixed = append(diff.Fixed, f)
		}
	}
	slices.SortStableFunc(diff.Fixed, func(a, b finding.Finding) int {
		if c := strings.Compare(a.Location.Path, b.Location.Path); c != 0 {
			return c
		}
		if c := a.Location.Line - b.Location.Line; c != 0 {
			return c
		}
		return strings.Compare(a.RuleID, b.RuleID)
	})

	return diff
}
