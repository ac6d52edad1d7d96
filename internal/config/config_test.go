package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.CopyIgnoredFiles.IsEnabled() {
		t.Error("copy_ignored_files should default to enabled")
	}
	if got := cfg.CopyIgnoredFiles.EffectivePatterns(); len(got) != 4 || got[0] != ".env" {
		t.Errorf("default patterns = %v", got)
	}
	if got := cfg.CopyIgnoredFiles.EffectiveExcludePatterns(); len(got) != 2 {
		t.Errorf("default exclude patterns = %v", got)
	}

	ve := &cfg.VirtualEnvHandling
	if ve.ShouldIsolate() {
		t.Error("isolation should default to off")
	}
	if got := ve.EffectiveMaxFileSizeMB(); got != DefaultMaxFileSizeMB {
		t.Errorf("max file size = %d, want %d", got, DefaultMaxFileSizeMB)
	}
	if got := ve.EffectiveMaxDirSizeMB(); got != DefaultMaxDirSizeMB {
		t.Errorf("max dir size = %d, want %d", got, DefaultMaxDirSizeMB)
	}
	if got := ve.EffectiveMaxScanDepth(); got != DefaultMaxScanDepth {
		t.Errorf("max scan depth = %d, want %d", got, DefaultMaxScanDepth)
	}
	if got := ve.EffectiveCopyParallelism(); got != DefaultCopyParallelism {
		t.Errorf("copy parallelism = %d, want %d", got, DefaultCopyParallelism)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if !cfg.CopyIgnoredFiles.IsEnabled() {
		t.Error("missing file must yield defaults")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
copy_ignored_files:
  enabled: false
  patterns: [".env", "*.secret"]
  exclude_patterns: []
virtual_env_handling:
  isolate_virtual_envs: true
  max_file_size_mb: 10
  max_dir_size_mb: -1
  copy_parallelism: 0
  custom_patterns:
    - language: elixir
      patterns: ["_build", "deps"]
      commands: ["mix deps.get"]
log_level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.CopyIgnoredFiles.IsEnabled() {
		t.Error("enabled: false must stick")
	}
	if got := cfg.CopyIgnoredFiles.EffectivePatterns(); len(got) != 2 {
		t.Errorf("patterns = %v", got)
	}
	// Explicitly empty exclude list stays empty (it is part of the
	// "mirror nothing" opt-out contract), it must not fall back to defaults.
	if got := cfg.CopyIgnoredFiles.EffectiveExcludePatterns(); len(got) != 0 {
		t.Errorf("explicit empty exclude_patterns = %v, want empty", got)
	}

	ve := &cfg.VirtualEnvHandling
	if !ve.ShouldIsolate() {
		t.Error("isolate_virtual_envs: true must stick")
	}
	if got := ve.MaxFileBytes(); got != 10*1024*1024 {
		t.Errorf("MaxFileBytes = %d, want %d", got, 10*1024*1024)
	}
	if got := ve.MaxDirBytes(); got != -1 {
		t.Errorf("negative dir size must disable the budget, got %d", got)
	}
	if got := ve.EffectiveCopyParallelism(); got != 0 {
		t.Errorf("copy_parallelism 0 must pass through (use all CPUs), got %d", got)
	}
	if len(ve.CustomPatterns) != 1 || ve.CustomPatterns[0].Language != "elixir" {
		t.Errorf("custom patterns = %+v", ve.CustomPatterns)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadConfigDeprecatedFields(t *testing.T) {
	path := writeConfig(t, `
virtual_env_handling:
  mode: skip
  max_copy_size_mb: 25
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	ve := &cfg.VirtualEnvHandling
	if !ve.ShouldIsolate() {
		t.Error("mode: skip must enable isolation")
	}
	if got := ve.EffectiveMaxFileSizeMB(); got != 25 {
		t.Errorf("max_copy_size_mb fallback = %d, want 25", got)
	}
}

func TestLoadConfigDeprecatedFieldsLosePrecedence(t *testing.T) {
	path := writeConfig(t, `
virtual_env_handling:
  isolate_virtual_envs: false
  mode: skip
  max_file_size_mb: 5
  max_copy_size_mb: 25
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	ve := &cfg.VirtualEnvHandling
	if ve.ShouldIsolate() {
		t.Error("isolate_virtual_envs takes precedence over mode")
	}
	if got := ve.EffectiveMaxFileSizeMB(); got != 5 {
		t.Errorf("max_file_size_mb takes precedence, got %d", got)
	}
}

func TestLoadConfigMalformedNumericFallsBack(t *testing.T) {
	path := writeConfig(t, `
virtual_env_handling:
  max_file_size_mb: "lots"
  max_scan_depth: [3]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("malformed numeric limits must not fail the load: %v", err)
	}

	ve := &cfg.VirtualEnvHandling
	if got := ve.EffectiveMaxFileSizeMB(); got != DefaultMaxFileSizeMB {
		t.Errorf("malformed max_file_size_mb must fall back to default, got %d", got)
	}
	if got := ve.EffectiveMaxScanDepth(); got != DefaultMaxScanDepth {
		t.Errorf("malformed max_scan_depth must fall back to default, got %d", got)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfig(t, "copy_ignored_files: [not: a: mapping\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("structurally broken YAML must error")
	}
}

func TestMiBToBytes(t *testing.T) {
	tests := []struct {
		mb   int64
		want int64
	}{
		{mb: 1, want: 1024 * 1024},
		{mb: 100, want: 100 * 1024 * 1024},
		{mb: 0, want: 0},
		{mb: -1, want: -1},
		{mb: -500, want: -1},
	}
	for _, tt := range tests {
		if got := MiBToBytes(tt.mb); got != tt.want {
			t.Errorf("MiBToBytes(%d) = %d, want %d", tt.mb, got, tt.want)
		}
	}
}

func TestEffectiveManifestPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ManifestPath = "/tmp/custom.db"
	if got := cfg.EffectiveManifestPath(); got != "/tmp/custom.db" {
		t.Errorf("override ignored, got %q", got)
	}

	cfg.ManifestPath = ""
	if got := cfg.EffectiveManifestPath(); got == "" {
		t.Error("default manifest path must not be empty")
	}
}
