// Package config loads and validates the codesweep configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/fileset"
	"github.com/codesweep/codesweep/internal/finding"
)

// Backend identifies the history store implementation to target.
type Backend string

const (
	// BackendSQLite targets modernc.org/sqlite.
	BackendSQLite Backend = "sqlite"
	// BackendPostgres targets github.com/jackc/pgx/v5.
	BackendPostgres Backend = "postgres"
)

var validBackends = map[Backend]struct{}{
	BackendSQLite:   {},
	BackendPostgres: {},
}

var validFormats = map[string]struct{}{
	"text":  {},
	"json":  {},
	"sarif": {},
}

// ScanConfig captures input selection settings.
type ScanConfig struct {
	Inputs  []string `toml:"inputs"`
	Exclude []string `toml:"exclude"`
	Jobs    int      `toml:"jobs"`
}

// RulesConfig captures rule pack settings.
type RulesConfig struct {
	Packs   []string `toml:"packs"`
	Disable []string `toml:"disable"`
}

// PolicyConfig captures gating and suppression settings.
type PolicyConfig struct {
	FailOn   string   `toml:"fail_on"`
	Suppress []string `toml:"suppress"`
}

// ReportConfig captures report output settings.
type ReportConfig struct {
	Out     string   `toml:"out"`
	Formats []string `toml:"formats"`
	Color   bool     `toml:"color"`
}

// HistoryConfig captures scan history settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	DSN     string `toml:"dsn"`
}

// CacheConfig captures per-file result cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"`
}

// ToolConfig declares one external scanner command.
type ToolConfig struct {
	Name      string   `toml:"name"`
	Command   []string `toml:"command"`
	Timeout   string   `toml:"timeout"`
	Languages []string `toml:"languages"`
}

// Config mirrors the expected codesweep TOML schema.
type Config struct {
	Scan    ScanConfig    `toml:"scan"`
	Rules   RulesConfig   `toml:"rules"`
	Policy  PolicyConfig  `toml:"policy"`
	Report  ReportConfig  `toml:"report"`
	History HistoryConfig `toml:"history"`
	Cache   CacheConfig   `toml:"cache"`
	Tools   []ToolConfig  `toml:"tools"`
}

// HistoryPlan is the normalized history configuration.
type HistoryPlan struct {
	Enabled bool
	Backend Backend
	Path    string
	DSN     string
}

// CachePlan is the normalized cache configuration.
type CachePlan struct {
	Enabled bool
	Dir     string
	TTL     time.Duration
}

// Plan is the fully-resolved configuration used by downstream stages.
type Plan struct {
	Files        []string
	Jobs         int
	PackPaths    []string
	DisablePacks []string
	FailOn       finding.Severity
	Suppress     []string
	Out          string
	Formats      []string
	Color        bool
	History      HistoryPlan
	Cache        CachePlan
	Tools        []analyzer.Tool
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	Strict   bool
	Resolver *fileset.Resolver

	// Inputs overrides scan.inputs when non-empty, CLI arguments win over
	// the file.
	Inputs []string
}

// Result wraps a loaded plan alongside any non-fatal warnings.
type Result struct {
	Plan     Plan
	Warnings []string
}

// envOverrides are applied after the file, CODESWEEP_* variables win.
type envOverrides struct {
	Jobs       int    `env:"JOBS"`
	FailOn     string `env:"FAIL_ON"`
	Out        string `env:"OUT"`
	NoColor    bool   `env:"NO_COLOR"`
	HistoryDSN string `env:"HISTORY_DSN"`
	CacheDir   string `env:"CACHE_DIR"`
}

// Load reads, validates, and resolves a codesweep configuration file.
func Load(path string, opts LoadOptions) (Result, error) {
	var res Result

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	unknownKeys, err := collectUnknownKeys(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if len(unknownKeys) > 0 {
		slices.Sort(unknownKeys)
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknownKeys, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	return resolve(path, cfg, opts, res)
}

// Default builds a plan without a configuration file, from defaults, the
// environment, and opts.Inputs. path anchors relative file defaults the way
// the missing configuration file would have.
func Default(path string, opts LoadOptions) (Result, error) {
	if path == "" {
		path = "codesweep.toml"
	}
	return resolve(path, Config{}, opts, Result{})
}

func resolve(path string, cfg Config, opts LoadOptions, res Result) (Result, error) {
	overrides, err := env.ParseAsWithOptions[envOverrides](env.Options{Prefix: "CODESWEEP_"})
	if err != nil {
		return res, fmt.Errorf("environment: %w", err)
	}
	applyOverrides(&cfg, overrides)

	inputs := cfg.Scan.Inputs
	if len(opts.Inputs) > 0 {
		inputs = opts.Inputs
	}

	baseDir := filepath.Dir(path)

	var resolver fileset.Resolver
	if opts.Resolver != nil {
		resolver = *opts.Resolver
	} else {
		resolver, err = fileset.NewOSResolver(baseDir)
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	files, err := resolveInputs(resolver, inputs, cfg.Scan.Exclude)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	jobs := cfg.Scan.Jobs
	if jobs < 0 {
		return res, fmt.Errorf("%s: scan.jobs must not be negative", path)
	}
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}

	failOn := finding.SeverityHigh
	if cfg.Policy.FailOn != "" {
		failOn, err = finding.ParseSeverity(cfg.Policy.FailOn)
		if err != nil {
			return res, fmt.Errorf("%s: policy.fail_on: %w", path, err)
		}
	}

	out := cfg.Report.Out
	if out == "" {
		out = "reports"
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(baseDir, filepath.Clean(out))
	}

	formats := cfg.Report.Formats
	if len(formats) == 0 {
		formats = []string{"text"}
	}
	for _, format := range formats {
		if _, ok := validFormats[format]; !ok {
			return res, fmt.Errorf("%s: unsupported report format %q", path, format)
		}
	}

	history, err := resolveHistory(path, baseDir, cfg.History)
	if err != nil {
		return res, err
	}

	cache, err := resolveCache(path, baseDir, cfg.Cache)
	if err != nil {
		return res, err
	}

	tools, err := resolveTools(path, cfg.Tools)
	if err != nil {
		return res, err
	}

	res.Plan = Plan{
		Files:        files,
		Jobs:         jobs,
		PackPaths:    joinAll(baseDir, cfg.Rules.Packs),
		DisablePacks: cfg.Rules.Disable,
		FailOn:       failOn,
		Suppress:     cfg.Policy.Suppress,
		Out:          out,
		Formats:      formats,
		Color:        cfg.Report.Color,
		History:      history,
		Cache:        cache,
		Tools:        tools,
	}

	return res, nil
}

func applyOverrides(cfg *Config, overrides envOverrides) {
	if overrides.Jobs > 0 {
		cfg.Scan.Jobs = overrides.Jobs
	}
	if overrides.FailOn != "" {
		cfg.Policy.FailOn = overrides.FailOn
	}
	if overrides.Out != "" {
		cfg.Report.Out = overrides.Out
	}
	if overrides.NoColor {
		cfg.Report.Color = false
	}
	if overrides.HistoryDSN != "" {
		cfg.History.DSN = overrides.HistoryDSN
	}
	if overrides.CacheDir != "" {
		cfg.Cache.Dir = overrides.CacheDir
	}
}

func resolveInputs(resolver fileset.Resolver, inputs, exclude []string) ([]string, error) {
	// Excludes apply inside the resolver, against names relative to the
	// config directory, before the resolver rewrites them to OS paths.
	paths, err := resolver.ResolveExcluding(inputs, exclude)
	if err != nil {
		if errors.Is(err, fileset.ErrNoPatterns) {
			return nil, errors.New("scan.inputs must include at least one pattern")
		}

		var noMatchErr fileset.NoMatchError
		if errors.As(err, &noMatchErr) {
			return nil, fmt.Errorf("scan.inputs matched no files: %s", strings.Join(noMatchErr.Patterns, ", "))
		}

		var patternErr fileset.PatternError
		if errors.As(err, &patternErr) {
			return nil, fmt.Errorf("scan: invalid glob pattern %q: %w", patternErr.Pattern, patternErr.Err)
		}

		return nil, fmt.Errorf("scan.inputs: %w", err)
	}

	return paths, nil
}

func resolveHistory(path, baseDir string, cfg HistoryConfig) (HistoryPlan, error) {
	plan := HistoryPlan{Enabled: cfg.Enabled}
	if !cfg.Enabled {
		return plan, nil
	}

	backend := Backend(cfg.Backend)
	if backend == "" {
		backend = BackendSQLite
	}
	if _, ok := validBackends[backend]; !ok {
		return plan, fmt.Errorf("%s: unsupported history backend %q", path, cfg.Backend)
	}
	plan.Backend = backend

	switch backend {
	case BackendSQLite:
		dbPath := cfg.Path
		if dbPath == "" {
			dbPath = "codesweep.db"
		}
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(baseDir, dbPath)
		}
		plan.Path = dbPath
	case BackendPostgres:
		if cfg.DSN == "" {
			return plan, fmt.Errorf("%s: history.dsn is required for the postgres backend", path)
		}
		plan.DSN = cfg.DSN
	}

	return plan, nil
}

func resolveCache(path, baseDir string, cfg CacheConfig) (CachePlan, error) {
	plan := CachePlan{Enabled: cfg.Enabled}
	if !cfg.Enabled {
		return plan, nil
	}

	dir := cfg.Dir
	if dir == "" {
		dir = ".codesweep-cache"
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}
	plan.Dir = dir

	plan.TTL = 24 * time.Hour
	if cfg.TTL != "" {
		ttl, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			return plan, fmt.Errorf("%s: cache.ttl: %w", path, err)
		}
		if ttl <= 0 {
			return plan, fmt.Errorf("%s: cache.ttl must be positive", path)
		}
		plan.TTL = ttl
	}

	return plan, nil
}

func resolveTools(path string, cfgs []ToolConfig) ([]analyzer.Tool, error) {
	tools := make([]analyzer.Tool, 0, len(cfgs))
	seen := make(map[string]struct{}, len(cfgs))

	for _, cfg := range cfgs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("%s: tools entry is missing a name", path)
		}
		if _, ok := seen[cfg.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate tool %q", path, cfg.Name)
		}
		seen[cfg.Name] = struct{}{}

		if len(cfg.Command) == 0 {
			return nil, fmt.Errorf("%s: tool %q has no command", path, cfg.Name)
		}

		tool := analyzer.Tool{Name: cfg.Name, Command: cfg.Command}
		if cfg.Timeout != "" {
			timeout, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("%s: tool %q timeout: %w", path, cfg.Name, err)
			}
			tool.Timeout = timeout
		}
		for _, lang := range cfg.Languages {
			tool.Languages = append(tool.Languages, fileset.Language(strings.ToLower(lang)))
		}
		tools = append(tools, tool)
	}

	return tools, nil
}

func collectUnknownKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := map[string]map[string]struct{}{
		"scan":    {"inputs": {}, "exclude": {}, "jobs": {}},
		"rules":   {"packs": {}, "disable": {}},
		"policy":  {"fail_on": {}, "suppress": {}},
		"report":  {"out": {}, "formats": {}, "color": {}},
		"history": {"enabled": {}, "backend": {}, "path": {}, "dsn": {}},
		"cache":   {"enabled": {}, "dir": {}, "ttl": {}},
		"tools":   {"name": {}, "command": {}, "timeout": {}, "languages": {}},
	}

	unknown := make([]string, 0)
	for key, value := range raw {
		fields, ok := known[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}

		switch record := value.(type) {
		case map[string]any:
			for field := range record {
				if _, ok := fields[field]; !ok {
					unknown = append(unknown, key+"."+field)
				}
			}
		case []any:
			for _, entry := range record {
				table, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				for field := range table {
					if _, ok := fields[field]; !ok {
						unknown = append(unknown, key+"."+field)
					}
				}
			}
		}
	}

	return unknown, nil
}

func joinAll(baseDir string, paths []string) []string {
	joined := make([]string, 0, len(paths))
	for _, path := range paths {
		if filepath.IsAbs(path) {
			joined = append(joined, filepath.Clean(path))
			continue
		}
		joined = append(joined, filepath.Join(baseDir, path))
	}
	return joined
}
