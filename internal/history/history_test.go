package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

func sampleFindings() []finding.Finding {
	return []finding.Finding{
		finding.New(finding.SeverityCritical, "shell command execution").
			Rule("python.cmd.os-system").
			At("app/main.py", 10, 5).
			Category("command-injection").
			Language(fileset.LangPython).
			CWE("CWE-78").
			CVSS(decimal.RequireFromString("9.8")).
			Snippet("os.system(cmd)").
			Source("pattern").
			Build(),
		finding.New(finding.SeverityMedium, "weak hash").
			Rule("go.ast.import-weakhash").
			At("internal/hash.go", 4, 2).
			Language(fileset.LangGo).
			Source("goast").
			Build(),
	}
}

func openTestStore(t *testing.T) Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(context.Background(), Options{Backend: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return store
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Options{Backend: "sqlite"}); err == nil {
		t.Error("Open accepted an empty sqlite path")
	}
	if _, err := Open(context.Background(), Options{Backend: "postgres"}); err == nil {
		t.Error("Open accepted an empty postgres dsn")
	}
	if _, err := Open(context.Background(), Options{Backend: "mysql"}); err == nil {
		t.Error("Open accepted an unknown backend")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	if _, ok, err := store.LatestRun(ctx); err != nil || ok {
		t.Fatalf("LatestRun on empty store: ok=%v err=%v", ok, err)
	}

	coll := finding.NewCollection()
	for _, f := range sampleFindings() {
		coll.Add(f)
	}

	run := NewRun(uuid.New(), time.Now().UTC(), 900*time.Millisecond, 7, coll)
	if err := store.RecordRun(ctx, run, coll.All()); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	latest, ok, err := store.LatestRun(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestRun: ok=%v err=%v", ok, err)
	}
	if latest.ID != run.ID {
		t.Errorf("ID = %s, want %s", latest.ID, run.ID)
	}
	if latest.Total != 2 || latest.Critical != 1 || latest.Medium != 1 {
		t.Errorf("counts = %+v", latest)
	}
	if latest.FilesScanned != 7 {
		t.Errorf("FilesScanned = %d", latest.FilesScanned)
	}
	if got := latest.RiskScore.String(); got != "9.8" {
		t.Errorf("RiskScore = %s", got)
	}
	if latest.Duration != 900*time.Millisecond {
		t.Errorf("Duration = %s", latest.Duration)
	}

	stored, err := store.FindingsForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("FindingsForRun: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d findings, want 2", len(stored))
	}
	first := stored[0]
	if first.RuleID != "python.cmd.os-system" {
		t.Errorf("RuleID = %q", first.RuleID)
	}
	if first.Severity != finding.SeverityCritical {
		t.Errorf("Severity = %v", first.Severity)
	}
	if first.Location.Path != "app/main.py" || first.Location.Line != 10 || first.Location.Column != 5 {
		t.Errorf("Location = %+v", first.Location)
	}
	if first.Language != fileset.LangPython {
		t.Errorf("Language = %q", first.Language)
	}
	if got := first.CVSS.String(); got != "9.8" {
		t.Errorf("CVSS = %s", got)
	}
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			ID:        uuid.New(),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			RiskScore: decimal.Zero,
		}
		if err := store.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestSQLiteDiff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	previous := sampleFindings()
	run := Run{ID: uuid.New(), StartedAt: time.Now().UTC(), RiskScore: decimal.Zero}
	if err := store.RecordRun(ctx, run, previous); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	// Keep the first finding, fix the second, add one.
	current := []finding.Finding{
		previous[0],
		finding.New(finding.SeverityHigh, "eval usage").
			Rule("python.eval").
			At("app/main.py", 30, 1).
			Build(),
	}

	diff, err := store.Diff(ctx, current)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diff.Persisting != 1 {
		t.Errorf("Persisting = %d, want 1", diff.Persisting)
	}
	if len(diff.New) != 1 || diff.New[0].RuleID != "python.eval" {
		t.Errorf("New = %v", diff.New)
	}
	if len(diff.Fixed) != 1 || diff.Fixed[0].RuleID != "go.ast.import-weakhash" {
		t.Errorf("Fixed = %v", diff.Fixed)
	}
}

func TestComputeDiffNoBaseline(t *testing.T) {
	t.Parallel()

	diff := ComputeDiff(nil, sampleFindings())
	if len(diff.New) != 2 || len(diff.Fixed) != 0 || diff.Persisting != 0 {
		t.Errorf("diff = %+v", diff)
	}
}

// Postgres integration runs only when a test database is provided.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("CODESWEEP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CODESWEEP_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := Open(ctx, Options{Backend: "postgres", DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	coll := finding.NewCollection()
	for _, f := range sampleFindings() {
		coll.Add(f)
	}
	run := NewRun(uuid.New(), time.Now().UTC(), time.Second, 3, coll)
	if err := store.RecordRun(ctx, run, coll.All()); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	stored, err := store.FindingsForRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("FindingsForRun: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d findings, want 2", len(stored))
	}
}
