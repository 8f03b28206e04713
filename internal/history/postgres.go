package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id            UUID PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
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
	run_id     UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
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

type postgresStore struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, dsn string) (Store, error) {
	if dsn == "" {
		return nil, errors.New("history: postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: connect postgres: %w", err)
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("history: create schema: %w", err)
	}
	return nil
}

func (s *postgresStore) RecordRun(ctx context.Context, run Run, findings []finding.Finding) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, files_scanned, total,
			critical, high, medium, low, info, risk_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.StartedAt.UTC(), run.Duration.Milliseconds(),
		run.FilesScanned, run.Total,
		run.Critical, run.High, run.Medium, run.Low, run.Info,
		run.RiskScore.String())
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	rows := make([][]any, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []any{
			run.ID, f.Digest(), f.RuleID, f.Severity.String(),
			f.Category, string(f.Language), f.CWE, f.CVSS.String(),
			f.Location.Path, f.Location.Line, f.Location.Column,
			f.Message, f.Snippet, f.Suggestion, f.Source,
		})
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"findings"},
		[]string{"run_id", "digest", "rule_id", "severity", "category",
			"language", "cwe", "cvss", "path", "line", "col",
			"message", "snippet", "suggestion", "source"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("history: copy findings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

func (s *postgresStore) LatestRun(ctx context.Context) (Run, bool, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return Run{}, false, err
	}
	if len(runs) == 0 {
		return Run{}, false, nil
	}
	return runs[0], true, nil
}

func (s *postgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, started_at, duration_ms, files_scanned, total,
			critical, high, medium, low, info, risk_score
		FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			id         uuid.UUID
			startedAt  time.Time
			durationMS int64
			riskScore  string
		)
		err = rows.Scan(&id, &startedAt, &durationMS, &run.FilesScanned, &run.Total,
			&run.Critical, &run.High, &run.Medium, &run.Low, &run.Info, &riskScore)
		if err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		run.ID = id
		run.StartedAt = startedAt
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if run.RiskScore, err = decimal.NewFromString(riskScore); err != nil {
			return nil, fmt.Errorf("history: run risk score %q: %w", riskScore, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *postgresStore) FindingsForRun(ctx context.Context, id uuid.UUID) ([]finding.Finding, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT rule_id, severity, category, language, cwe, cvss,
			path, line, col, message, snippet, suggestion, source
		FROM findings WHERE run_id = $1 ORDER BY path, line, rule_id`, id)
	if err != nil {
		return nil, fmt.Errorf("history: findings for run: %w", err)
	}
	defer rows.Close()

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

func (s *postgresStore) Diff(ctx context.Context, current []finding.Finding) (Diff, error) {
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

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
