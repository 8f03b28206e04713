// Package pipeline orchestrates a full scan: configuration loading, rule
// compilation, analysis, suppression, reporting, and history recording.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codesweep/codesweep/internal/analyzer"
	_ "github.com/codesweep/codesweep/internal/analyzer/all" // register built-in analyzers
	"github.com/codesweep/codesweep/internal/cache"
	"github.com/codesweep/codesweep/internal/config"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
	"github.com/codesweep/codesweep/internal/history"
	"github.com/codesweep/codesweep/internal/logging"
	"github.com/codesweep/codesweep/internal/policy"
	"github.com/codesweep/codesweep/internal/report"
	"github.com/codesweep/codesweep/internal/rules"
	"github.com/codesweep/codesweep/internal/rules/builtin"
)

// staticAnalyzers run on file content alone, so their results are cacheable.
// The extern analyzer shells out to tools and always runs.
var staticAnalyzers = []string{"pattern", "goast"}

// Environment captures external dependencies used by the pipeline.
type Environment struct {
	FSResolver func(string) (fileset.Resolver, error)
	Logger     logging.Logger
	Writer     report.Writer
	Cache      cache.Cache
	OpenStore  func(context.Context, history.Options) (history.Store, error)
	Version    string
}

// Pipeline orchestrates configuration loading, analysis, and reporting.
type Pipeline struct {
	Env Environment
}

// RunOptions configures a pipeline execution. Non-zero fields override the
// corresponding configuration file settings.
type RunOptions struct {
	ConfigPath   string
	Inputs       []string
	OutOverride  string
	FailOn       string
	Formats      []string
	DryRun       bool
	ListFiles    bool
	ListRules    bool
	StrictConfig bool
	NoHistory    bool
	NoCache      bool
	Verbose      bool
}

// Summary captures the results of a run.
type Summary struct {
	RunID        uuid.UUID
	StartedAt    time.Time
	Duration     time.Duration
	Files        []string
	Rules        []string
	FilesScanned int
	Findings     *finding.Collection
	Suppressed   int
	Reports      []string
	Diff         *history.Diff
	FailOn       finding.Severity
	Warnings     []string
}

// Failed reports whether findings at or above the fail-on severity remain
// after suppression.
func (s *Summary) Failed() bool {
	if s.Findings == nil {
		return false
	}
	return len(s.Findings.AtOrAbove(s.FailOn)) > 0
}

// ScanError wraps failures encountered while analyzing a file.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Run executes the pipeline according to the provided options.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	summary := Summary{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Findings:  finding.NewCollection(),
	}

	log := p.Env.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	configPath := opts.ConfigPath
	explicit := configPath != ""
	if !explicit {
		configPath = "codesweep.toml"
	}
	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		return summary, fmt.Errorf("resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absConfigPath)

	resolverFn := p.Env.FSResolver
	if resolverFn == nil {
		resolverFn = fileset.NewOSResolver
	}
	resolver, err := resolverFn(baseDir)
	if err != nil {
		return summary, fmt.Errorf("resolve filesystem: %w", err)
	}

	loadOpts := config.LoadOptions{
		Strict:   opts.StrictConfig,
		Resolver: &resolver,
		Inputs:   opts.Inputs,
	}

	// A missing default config file is fine, an explicitly named one is not.
	var loaded config.Result
	if _, statErr := os.Stat(absConfigPath); statErr != nil && !explicit && errors.Is(statErr, fs.ErrNotExist) {
		loaded, err = config.Default(absConfigPath, loadOpts)
	} else {
		loaded, err = config.Load(absConfigPath, loadOpts)
	}
	if err != nil {
		return summary, err
	}
	for _, warning := range loaded.Warnings {
		log.Warn(warning)
	}
	summary.Warnings = loaded.Warnings

	plan := loaded.Plan
	if opts.OutOverride != "" {
		override := opts.OutOverride
		if !filepath.IsAbs(override) {
			override = filepath.Join(baseDir, override)
		}
		plan.Out = filepath.Clean(override)
	}
	if opts.FailOn != "" {
		severity, parseErr := finding.ParseSeverity(opts.FailOn)
		if parseErr != nil {
			return summary, fmt.Errorf("fail-on: %w", parseErr)
		}
		plan.FailOn = severity
	}
	if len(opts.Formats) > 0 {
		plan.Formats = opts.Formats
	}
	summary.FailOn = plan.FailOn
	summary.Files = plan.Files

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if opts.ListFiles {
		return summary, nil
	}

	packs := builtin.Packs(plan.DisablePacks)
	extraPacks, err := rules.LoadFiles(plan.PackPaths)
	if err != nil {
		return summary, err
	}
	set, err := rules.Compile(append(packs, extraPacks...)...)
	if err != nil {
		return summary, err
	}
	summary.Rules = set.IDs()
	log.Debug("rules compiled", "count", set.Len(), "languages", len(set.Languages()))

	if opts.ListRules {
		return summary, nil
	}

	policies, err := policy.ParseAll(plan.Suppress)
	if err != nil {
		return summary, fmt.Errorf("policy.suppress: %w", err)
	}

	analyzerOpts := analyzer.Options{Rules: set, Logger: log, Tools: plan.Tools}
	static := make([]analyzer.Analyzer, 0, len(staticAnalyzers))
	for _, name := range staticAnalyzers {
		a, newErr := analyzer.New(name, analyzerOpts)
		if newErr != nil {
			return summary, newErr
		}
		static = append(static, a)
	}
	var extern analyzer.Analyzer
	if len(plan.Tools) > 0 {
		extern, err = analyzer.New("extern", analyzerOpts)
		if err != nil {
			return summary, err
		}
	}

	cacheTTL := plan.Cache.TTL
	if cacheTTL <= 0 {
		// An injected cache may be used without cache settings in the file.
		cacheTTL = 24 * time.Hour
	}
	results, scanned, err := p.scan(ctx, scanConfig{
		files:       plan.Files,
		jobs:        plan.Jobs,
		static:      static,
		extern:      extern,
		cache:       p.resultCache(plan, opts, log),
		cacheTTL:    cacheTTL,
		fingerprint: set.Fingerprint(),
	})
	if err != nil {
		return summary, err
	}

	for i := range results {
		if scanned[i] {
			summary.FilesScanned++
		}
		for _, f := range results[i] {
			if policy.AnyMatch(policies, f) {
				summary.Suppressed++
				continue
			}
			summary.Findings.Add(f)
		}
	}
	summary.Findings.SortByLocation()
	summary.Duration = time.Since(summary.StartedAt)

	log.Info("scan complete",
		"files", summary.FilesScanned,
		"findings", summary.Findings.Len(),
		"suppressed", summary.Suppressed,
		"duration", summary.Duration)

	if plan.History.Enabled && !opts.NoHistory && !opts.DryRun {
		p.recordHistory(ctx, plan.History, &summary, log)
	}

	if err := p.writeReports(plan, opts, &summary); err != nil {
		return summary, err
	}

	return summary, nil
}

type scanConfig struct {
	files       []string
	jobs        int
	static      []analyzer.Analyzer
	extern      analyzer.Analyzer
	cache       cache.Cache
	cacheTTL    time.Duration
	fingerprint string
}

// scan analyzes every file concurrently. results is indexed like cfg.files;
// scanned marks files with a supported language and readable content.
func (p *Pipeline) scan(ctx context.Context, cfg scanConfig) ([][]finding.Finding, []bool, error) {
	results := make([][]finding.Finding, len(cfg.files))
	scanned := make([]bool, len(cfg.files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.jobs)

	for i, path := range cfg.files {
		g.Go(func() error {
			lang, ok := fileset.DetectLanguage(path)
			if !ok {
				return nil
			}
			content, err := os.ReadFile(filepath.Clean(path))
			if err != nil {
				return &ScanError{Path: path, Err: err}
			}
			scanned[i] = true
			target := analyzer.Target{Path: path, Language: lang, Content: content}

			var found []finding.Finding
			if cfg.cache != nil {
				key := cache.Key(cfg.fingerprint, content)
				if cached, hit := cfg.cache.Get(gctx, key); hit {
					found = cached
				} else {
					found, err = runAnalyzers(gctx, cfg.static, target)
					if err != nil {
						return &ScanError{Path: path, Err: err}
					}
					cfg.cache.Set(gctx, key, found, cfg.cacheTTL)
				}
			} else {
				found, err = runAnalyzers(gctx, cfg.static, target)
				if err != nil {
					return &ScanError{Path: path, Err: err}
				}
			}

			if cfg.extern != nil && analyzer.Covers(cfg.extern, lang) {
				externFindings, externErr := cfg.extern.Analyze(gctx, target)
				if externErr != nil {
					return &ScanError{Path: path, Err: externErr}
				}
				found = append(found, externFindings...)
			}

			results[i] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, scanned, nil
}

func runAnalyzers(ctx context.Context, analyzers []analyzer.Analyzer, target analyzer.Target) ([]finding.Finding, error) {
	var out []finding.Finding
	for _, a := range analyzers {
		if !analyzer.Covers(a, target.Language) {
			continue
		}
		found, err := a.Analyze(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Name(), err)
		}
		out = append(out, found...)
	}
	return out, nil
}

// resultCache picks the cache for this run, nil disables caching.
func (p *Pipeline) resultCache(plan config.Plan, opts RunOptions, log logging.Logger) cache.Cache {
	if opts.NoCache {
		return nil
	}
	if p.Env.Cache != nil {
		return p.Env.Cache
	}
	if !plan.Cache.Enabled {
		return nil
	}
	fc, err := cache.NewFileCache(plan.Cache.Dir)
	if err != nil {
		log.Warn("cache disabled", "dir", plan.Cache.Dir, "error", err)
		return nil
	}
	return fc
}

// recordHistory stores the run and computes the diff against the previous
// one. History failures do not abort the scan, reports still get written.
func (p *Pipeline) recordHistory(ctx context.Context, plan config.HistoryPlan, summary *Summary, log logging.Logger) {
	open := p.Env.OpenStore
	if open == nil {
		open = history.Open
	}

	store, err := open(ctx, history.Options{
		Backend: string(plan.Backend),
		Path:    plan.Path,
		DSN:     plan.DSN,
	})
	if err != nil {
		log.Warn("history disabled", "error", err)
		return
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn("close history store", "error", closeErr)
		}
	}()

	if err := store.Init(ctx); err != nil {
		log.Warn("history schema init failed", "error", err)
		return
	}

	current := summary.Findings.All()
	diff, err := store.Diff(ctx, current)
	if err != nil {
		log.Warn("history diff failed", "error", err)
	} else {
		summary.Diff = &diff
	}

	run := history.NewRun(summary.RunID, summary.StartedAt, summary.Duration, summary.FilesScanned, summary.Findings)
	if err := store.RecordRun(ctx, run, current); err != nil {
		log.Warn("record run failed", "error", err)
	}
}

func (p *Pipeline) writeReports(plan config.Plan, opts RunOptions, summary *Summary) error {
	meta := report.Metadata{
		RunID:        summary.RunID,
		StartedAt:    summary.StartedAt,
		Duration:     summary.Duration,
		FilesScanned: summary.FilesScanned,
		Version:      p.version(),
	}
	renderOpts := report.Options{Color: plan.Color, Verbose: opts.Verbose}

	writer := p.Env.Writer
	if writer == nil {
		writer = report.NewOSWriter()
	}

	for _, format := range plan.Formats {
		renderer, err := report.New(format, renderOpts)
		if err != nil {
			return err
		}
		data, err := renderer.Render(meta, summary.Findings)
		if err != nil {
			return fmt.Errorf("render %s report: %w", format, err)
		}

		path := filepath.Join(plan.Out, renderer.FileName())
		summary.Reports = append(summary.Reports, path)
		if opts.DryRun {
			continue
		}

		same, err := report.FileMatches(path, data)
		if err != nil {
			return &report.WriteError{Path: path, Err: err}
		}
		if same {
			continue
		}
		if err := writer.WriteFile(path, data); err != nil {
			return &report.WriteError{Path: path, Err: err}
		}
	}
	return nil
}

func (p *Pipeline) version() string {
	if p.Env.Version != "" {
		return p.Env.Version
	}
	return "dev"
}
