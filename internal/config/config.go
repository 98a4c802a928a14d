// Package config loads the configuration record that drives scanning,
// bulk indexing, and the monitoring pipeline (spec.md §6.5): repo
// identity, exclusion/inclusion lists, the dependency-directory policy,
// and pipeline timing knobs. Configuration is read from a KDL file
// (kdl_config.go), validated (validator.go), and enriched with
// language-specific build-artifact exclusions (build_artifact_detector.go).
// gitignore.go provides the .gitignore matcher the scanner applies when
// RespectGitignore is set.
package config

import (
	"os"
)

// DependencyMode controls how the scanner treats dependency directories
// (node_modules, vendor, site-packages, ...) per spec.md §4.5.
type DependencyMode int

const (
	// DependencyModeExclude skips dependency directories entirely (default).
	DependencyModeExclude DependencyMode = iota
	// DependencyModeSmart walks only known entry-point files within
	// dependency directories (package.json, __init__.py, lib.rs, ...).
	DependencyModeSmart
	// DependencyModeIncludeAll walks dependency directories like any other.
	DependencyModeIncludeAll
)

func (m DependencyMode) String() string {
	switch m {
	case DependencyModeSmart:
		return "smart"
	case DependencyModeIncludeAll:
		return "include_all"
	default:
		return "exclude"
	}
}

// ParseDependencyMode parses the KDL string value for dependency_mode.
// Unrecognized values fall back to DependencyModeExclude.
func ParseDependencyMode(s string) DependencyMode {
	switch s {
	case "smart":
		return DependencyModeSmart
	case "include_all":
		return DependencyModeIncludeAll
	default:
		return DependencyModeExclude
	}
}

// Config is the configuration record spec.md §6.5 describes, plus the
// project-root/gitignore fields the scanner and loader need to find and
// apply it.
type Config struct {
	// ProjectRoot is the absolute path the scanner walks from and every
	// relative pattern below is resolved against. Set from the KDL
	// project_root option (resolved relative to the KDL file's directory)
	// when present, otherwise from the directory the config is loaded
	// from (or the CLI's --root flag).
	ProjectRoot string

	RepoID    string
	CommitSHA string

	// ExcludeDirs augments the default exclusion patterns (doublestar
	// globs); it does not replace them.
	ExcludeDirs []string
	// IncludeExtensions narrows the scanner's extension allow-list, when
	// non-empty. Empty means "every registered parser extension".
	IncludeExtensions []string

	DependencyMode DependencyMode

	DebounceDurationMs int
	BatchSize          int
	EnableBatching     bool
	ProcessingTimeoutMs int
	MaxFileSizeBytes    int64
	// MaxQueueSize bounds the file watcher's output channel (spec.md
	// §4.8/§9): when full, the watcher discards the newly emitted event
	// rather than blocking; events already queued are kept. Modified is
	// idempotent at file level.
	MaxQueueSize int

	// RespectGitignore enables .gitignore-derived exclusions on top of
	// ExcludeDirs (ambient concern, carried from the teacher).
	RespectGitignore bool
	// FollowSymlinks, when false (the default), turns on the scanner's
	// visited-directory check that prunes a directory already seen under
	// another path. The scanner's walk does not descend into symlinked
	// directories with either setting.
	FollowSymlinks bool
}

const (
	DefaultDebounceDurationMs  = 100
	DefaultBatchSize           = 10
	DefaultEnableBatching      = true
	DefaultProcessingTimeoutMs = 30000
	DefaultMaxFileSizeBytes    = 10 * 1024 * 1024
	DefaultMaxQueueSize        = 256
)

// defaultExcludeDirs are applied regardless of KDL content; ExcludeDirs
// from the config file are appended to, not substituted for, these.
var defaultExcludeDirs = []string{
	"**/.git/**",
	"**/.*/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/target/**",
	"**/bin/**",
	"**/obj/**",
	"**/__pycache__/**",
	"**/*.pyc",
}

// Default returns a Config with spec.md §6.5's documented defaults and
// ProjectRoot set to the current working directory.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		ProjectRoot:         cwd,
		ExcludeDirs:         append([]string(nil), defaultExcludeDirs...),
		DependencyMode:      DependencyModeExclude,
		DebounceDurationMs:  DefaultDebounceDurationMs,
		BatchSize:           DefaultBatchSize,
		EnableBatching:      DefaultEnableBatching,
		ProcessingTimeoutMs: DefaultProcessingTimeoutMs,
		MaxFileSizeBytes:    DefaultMaxFileSizeBytes,
		MaxQueueSize:        DefaultMaxQueueSize,
		RespectGitignore:    true,
		FollowSymlinks:      false,
	}
}

// Load reads .uastgraph.kdl from rootDir, falling back to Default() if no
// such file exists, then enriches the result with build-artifact
// exclusions and validates it.
func Load(rootDir string) (*Config, error) {
	cfg, err := LoadKDL(rootDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
		cfg.ProjectRoot = rootDir
	}

	cfg.EnrichExclusionsWithBuildArtifacts()

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnrichExclusionsWithBuildArtifacts detects language-specific build
// output directories under ProjectRoot and appends them to ExcludeDirs.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.ProjectRoot == "" {
		return
	}
	detector := NewBuildArtifactDetector(c.ProjectRoot)
	if detected := detector.DetectOutputDirectories(); len(detected) > 0 {
		c.ExcludeDirs = DeduplicatePatterns(append(c.ExcludeDirs, detected...))
	}
}
