package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL,
	files_scanned INTEGER NOT NULL,
	total         INTEGER NOT NULL,
	critical      INTEGER NOT NULL,
	high          INTEGER NOT NULL,
	medium        INTEGER NOT NULL,
	low           INTEGER NOT NULL,
	info          INTEGER NOT NULL,
	risk_score    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	digest     TEXT NOT NULL,
	rule_id    TEXT NOT NULL,
	severity   TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	language   TEXT NOT NULL DEFAULT '',
	cwe        TEXT NOT NULL DEFAULT '',
	cvss       TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL,
	line       INTEGER NOT NULL,
	col        INTEGER NOT NULL,
	message    TEXT NOT NULL,
	snippet    TEXT NOT NULL DEFAULT '',
	suggestion TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS findings_run_idx ON findings(run_id);
`

type sqliteStore struct {
	db *sql.DB
}

func openSQLite(path string) (Store, error) {
	if path == "" {
		return nil, errors.New("history: sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes; one connection avoids lock errors.
	db.SetMaxOpenConns(1)
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("history: create schema: %w", err)
	}
	return nil
}

func (s *sqliteStore) RecordRun(ctx context.Context, run Run, findings []finding.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, files_scanned, total,
			critical, high, medium, low, info, risk_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(), run.FilesScanned, run.Total,
		run.Critical, run.High, run.Medium, run.Low, run.Info,
		run.RiskScore.String())
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (run_id, digest, rule_id, severity, category,
			language, cwe, cvss, path, line, col, message, snippet, suggestion, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history: prepare findings insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range findings {
		_, err = stmt.ExecContext(ctx,
			run.ID.String(), f.Digest(), f.RuleID, f.Severity.String(),
			f.Category, string(f.Language), f.CWE, f.CVSS.String(),
			f.Location.Path, f.Location.Line, f.Location.Column,
			f.Message, f.Snippet, f.Suggestion, f.Source)
		if err != nil {
			return fmt.Errorf("history: insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

func (s *sqliteStore) LatestRun(ctx context.Context) (Run, bool, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return Run{}, false, err
	}
	if len(runs) == 0 {
		return Run{}, false, nil
	}
	return runs[0], true, nil
}

func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, files_scanned, total,
			critical, high, medium, low, info, risk_score
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			id         string
			startedAt  string
			durationMS int64
			riskScore  string
		)
		err = rows.Scan(&id, &startedAt, &durationMS, &run.FilesScanned, &run.Total,
			&run.Critical, &run.High, &run.Medium, &run.Low, &run.Info, &riskScore)
		if err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history: run id %q: %w", id, err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("history: run timestamp %q: %w", startedAt, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if run.RiskScore, err = decimal.NewFromString(riskScore); err != nil {
			return nil, fmt.Errorf("history: run risk score %q: %w", riskScore, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *sqliteStore) FindingsForRun(ctx context.Context, id uuid.UUID) ([]finding.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, severity, category, language, cwe, cvss,
			path, line, col, message, snippet, suggestion, source
		FROM findings WHERE run_id = ? ORDER BY path, line, rule_id`, id.String())
	if err != nil {
		return nil, fmt.Errorf("history: findings for run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []finding.Finding
	for rows.Next() {
		var (
			f        finding.Finding
			severity string
			language string
			cvss     string
		)
		err = rows.Scan(&f.RuleID, &severity, &f.Category, &language, &f.CWE, &cvss,
			&f.Location.Path, &f.Location.Line, &f.Location.Column,
			&f.Message, &f.Snippet, &f.Suggestion, &f.Source)
		if err != nil {
			return nil, fmt.Errorf("history: scan finding: %w", err)
		}
		if f.Severity, err = finding.ParseSeverity(severity); err != nil {
			return nil, fmt.Errorf("history: stored finding: %w", err)
		}
		f.Language = fileset.Language(language)
		if cvss != "" {
			if f.CVSS, err = decimal.NewFromString(cvss); err != nil {
				return nil, fmt.Errorf("history: stored cvss %q: %w", cvss, err)
			}
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func (s *sqliteStore) Diff(ctx context.Context, current []finding.Finding) (Diff, error) {
	latest, ok, err := s.LatestRun(ctx)
	if err != nil {
		return Diff{}, err
	}
	if !ok {
		return Diff{New: current}, nil
	}
	previous, err := s.FindingsForRun(ctx, latest.ID)
	if err != nil {
		return Diff{}, err
	}
	return ComputeDiff(previous, current), nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
