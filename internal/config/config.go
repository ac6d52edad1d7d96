// Package config loads and validates gwm configuration.
//
// Configuration lives in a YAML file (default ~/.config/gwm/config.yaml).
// A missing file yields the documented defaults without error; malformed
// numeric limits fall back to their defaults rather than failing the load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values applied when the corresponding field is absent.
const (
	DefaultIsolateVirtualEnvs = false
	DefaultMaxFileSizeMB      = 100
	DefaultMaxDirSizeMB       = 500
	DefaultMaxScanDepth       = 5
	DefaultCopyParallelism    = 4
)

// DefaultCopyPatterns are the include patterns used when copy_ignored_files
// configures none.
var DefaultCopyPatterns = []string{".env", ".env.*", ".env.local", ".env.*.local"}

// DefaultExcludePatterns are the exclude patterns used when
// copy_ignored_files configures none.
var DefaultExcludePatterns = []string{".env.example", ".env.sample"}

// OptionalInt64 is a YAML scalar that distinguishes "absent" from "set",
// and tolerates malformed values by staying unset so the documented default
// applies instead of failing the whole load.
type OptionalInt64 struct {
	Set   bool
	Value int64
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OptionalInt64) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err != nil {
		*o = OptionalInt64{}
		return nil
	}
	*o = OptionalInt64{Set: true, Value: n}
	return nil
}

// Or returns the value when set, otherwise fallback.
func (o OptionalInt64) Or(fallback int64) int64 {
	if o.Set {
		return o.Value
	}
	return fallback
}

// CopyIgnoredFilesConfig controls which gitignored files are mirrored into
// a new worktree.
type CopyIgnoredFilesConfig struct {
	// Enabled turns the feature on; defaults to true when absent.
	Enabled *bool `yaml:"enabled"`

	// Patterns are restricted globs for files to copy. Absent means the
	// defaults; an explicitly empty list (together with empty
	// exclude_patterns) mirrors nothing.
	Patterns []string `yaml:"patterns"`

	// ExcludePatterns remove files from the copy set and take precedence.
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// IsEnabled reports the effective enabled flag.
func (c *CopyIgnoredFilesConfig) IsEnabled() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return true
}

// EffectivePatterns returns the configured include patterns, or the
// defaults when the field was absent.
func (c *CopyIgnoredFilesConfig) EffectivePatterns() []string {
	if c.Patterns != nil {
		return c.Patterns
	}
	return DefaultCopyPatterns
}

// EffectiveExcludePatterns returns the configured exclude patterns, or the
// defaults when the field was absent.
func (c *CopyIgnoredFilesConfig) EffectiveExcludePatterns() []string {
	if c.ExcludePatterns != nil {
		return c.ExcludePatterns
	}
	return DefaultExcludePatterns
}

// CustomVirtualEnvPattern adds one ecosystem's artifact directories to the
// built-in virtual environment table.
type CustomVirtualEnvPattern struct {
	// Language identifies the ecosystem (e.g. "elixir").
	Language string `yaml:"language"`
	// Patterns are directory names or relative paths to classify.
	Patterns []string `yaml:"patterns"`
	// Commands are optional setup hints shown by `gwm detect`.
	Commands []string `yaml:"commands"`
}

// VirtualEnvConfig controls virtual environment isolation and the copy
// engine's resource limits.
type VirtualEnvConfig struct {
	// IsolateVirtualEnvs skips venv artifacts and rewrites symlinks that
	// point back into the source tree.
	IsolateVirtualEnvs *bool `yaml:"isolate_virtual_envs"`

	// Mode is the deprecated predecessor of isolate_virtual_envs; the value
	// "skip" means isolate.
	Mode string `yaml:"mode"`

	// CustomPatterns extend the built-in ecosystem table.
	CustomPatterns []CustomVirtualEnvPattern `yaml:"custom_patterns"`

	// MaxFileSizeMB bounds single files, in MiB. Negative disables the
	// limit. Note: 0 is an enabled limit that rejects every file with a
	// positive size, not "unlimited".
	MaxFileSizeMB OptionalInt64 `yaml:"max_file_size_mb"`

	// MaxDirSizeMB bounds the cumulative bytes committed to a directory and
	// all its descendants, in MiB. Negative disables the budget.
	MaxDirSizeMB OptionalInt64 `yaml:"max_dir_size_mb"`

	// MaxScanDepth bounds venv detection recursion; negative is unlimited.
	MaxScanDepth OptionalInt64 `yaml:"max_scan_depth"`

	// CopyParallelism bounds concurrent transfers; 0 uses all logical CPUs.
	CopyParallelism OptionalInt64 `yaml:"copy_parallelism"`

	// MaxCopySizeMB is the deprecated predecessor of max_file_size_mb.
	MaxCopySizeMB OptionalInt64 `yaml:"max_copy_size_mb"`
}

// ShouldIsolate resolves the effective isolation flag, honoring the
// deprecated mode field: isolate_virtual_envs > mode > default.
func (c *VirtualEnvConfig) ShouldIsolate() bool {
	if c.IsolateVirtualEnvs != nil {
		return *c.IsolateVirtualEnvs
	}
	if c.Mode != "" {
		return c.Mode == "skip"
	}
	return DefaultIsolateVirtualEnvs
}

// EffectiveMaxFileSizeMB resolves the per-file limit in MiB:
// max_file_size_mb > max_copy_size_mb > default.
func (c *VirtualEnvConfig) EffectiveMaxFileSizeMB() int64 {
	if c.MaxFileSizeMB.Set {
		return c.MaxFileSizeMB.Value
	}
	return c.MaxCopySizeMB.Or(DefaultMaxFileSizeMB)
}

// EffectiveMaxDirSizeMB resolves the directory budget in MiB.
func (c *VirtualEnvConfig) EffectiveMaxDirSizeMB() int64 {
	return c.MaxDirSizeMB.Or(DefaultMaxDirSizeMB)
}

// MaxFileBytes converts the per-file limit to bytes; negative means
// disabled.
func (c *VirtualEnvConfig) MaxFileBytes() int64 {
	return MiBToBytes(c.EffectiveMaxFileSizeMB())
}

// MaxDirBytes converts the directory budget to bytes; negative means
// disabled.
func (c *VirtualEnvConfig) MaxDirBytes() int64 {
	return MiBToBytes(c.EffectiveMaxDirSizeMB())
}

// EffectiveMaxScanDepth resolves the detection depth bound.
func (c *VirtualEnvConfig) EffectiveMaxScanDepth() int {
	return int(c.MaxScanDepth.Or(DefaultMaxScanDepth))
}

// EffectiveCopyParallelism resolves the transfer parallelism level.
// 0 means "use all logical CPUs" and is passed through; a negative value
// is malformed and falls back to the default.
func (c *VirtualEnvConfig) EffectiveCopyParallelism() int {
	p := c.CopyParallelism.Or(DefaultCopyParallelism)
	if p < 0 {
		return DefaultCopyParallelism
	}
	return int(p)
}

// MiBToBytes converts a mebibyte limit to bytes. Any negative value
// collapses to -1, the disabled sentinel.
func MiBToBytes(mb int64) int64 {
	if mb < 0 {
		return -1
	}
	return mb * 1024 * 1024
}

// Config is the top-level gwm configuration.
type Config struct {
	// CopyIgnoredFiles configures which gitignored files to mirror.
	CopyIgnoredFiles CopyIgnoredFilesConfig `yaml:"copy_ignored_files"`

	// VirtualEnvHandling configures isolation and resource limits.
	VirtualEnvHandling VirtualEnvConfig `yaml:"virtual_env_handling"`

	// ManifestPath overrides where the materialization history database is
	// kept. Empty selects the default under the user state directory.
	ManifestPath string `yaml:"manifest_path"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config whose accessors resolve to the documented
// defaults.
func DefaultConfig() *Config {
	return &Config{LogLevel: "info"}
}

// LoadConfig loads configuration from path. A missing file returns the
// defaults without error; a file that is not valid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// EffectiveManifestPath resolves where the history database lives.
func (c *Config) EffectiveManifestPath() string {
	if c.ManifestPath != "" {
		return c.ManifestPath
	}
	return DefaultManifestPath()
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/gwm/config.yaml or ~/.config/gwm/config.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gwm", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gwm", "config.yaml")
	}
	return filepath.Join(home, ".config", "gwm", "config.yaml")
}

// DefaultManifestPath returns the default location of the materialization
// history database.
func DefaultManifestPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gwm", "manifest.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gwm", "manifest.db")
	}
	return filepath.Join(home, ".local", "state", "gwm", "manifest.db")
}
