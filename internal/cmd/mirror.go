package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/gwm/internal/config"
	"github.com/harrison/gwm/internal/copier"
	"github.com/harrison/gwm/internal/filelock"
	"github.com/harrison/gwm/internal/gitutil"
	"github.com/harrison/gwm/internal/logger"
	"github.com/harrison/gwm/internal/manifest"
	"github.com/harrison/gwm/internal/scanner"
	"github.com/harrison/gwm/internal/virtualenv"
)

// NewMirrorCommand creates and returns the mirror subcommand.
func NewMirrorCommand() *cobra.Command {
	var (
		configPath  string
		sourceDir   string
		parallelism int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "mirror <target-worktree>",
		Short: "Copy ignored files from the primary worktree into a target worktree",
		Long: `Scan the source worktree for untracked files matching the configured
patterns and copy them into the target worktree, honoring per-file and
per-directory size limits.

The source defaults to the repository's primary worktree as reported by
"git worktree list". With --dry-run the scan result is printed and nothing
is copied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMirror(cmd, args[0], configPath, sourceDir, parallelism, dryRun)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "config file location")
	cmd.Flags().StringVar(&sourceDir, "source", "", "source worktree (default: the primary worktree)")
	cmd.Flags().IntVar(&parallelism, "parallelism", -1, "concurrent transfers; 0 = all CPUs (default: from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the scan result without copying")

	return cmd
}

func runMirror(cmd *cobra.Command, target, configPath, sourceDir string, parallelism int, dryRun bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	if !cfg.CopyIgnoredFiles.IsEnabled() {
		log.Infof("copy_ignored_files is disabled, nothing to do")
		return nil
	}

	target, err = filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("failed to resolve target path: %w", err)
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return fmt.Errorf("target worktree %s is not a directory", target)
	}

	source, err := resolveSource(sourceDir, target)
	if err != nil {
		return err
	}
	if source == target {
		return fmt.Errorf("source and target are the same directory: %s", source)
	}

	tracked, err := gitutil.TrackedFiles(source)
	if err != nil {
		return err
	}

	ve := &cfg.VirtualEnvHandling
	classifier := virtualenv.NewClassifier(customGroups(ve.CustomPatterns))
	policy := scanner.Policy{
		IncludePatterns:  cfg.CopyIgnoredFiles.EffectivePatterns(),
		ExcludePatterns:  cfg.CopyIgnoredFiles.EffectiveExcludePatterns(),
		IsolationEnabled: ve.ShouldIsolate(),
	}

	candidates := scanner.Scan(source, policy, classifier, func(rel string) bool {
		return tracked[rel]
	})
	log.Debugf("scan found %d candidate(s) under %s", len(candidates), source)

	if dryRun {
		if len(candidates) == 0 {
			log.Infof("nothing to mirror")
			return nil
		}
		for _, rel := range candidates {
			log.Infof("would copy %s", rel)
		}
		return nil
	}

	lock := filelock.ForWorktree(target)
	acquired, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("another gwm invocation is materializing into %s", target)
	}
	defer lock.Unlock()

	start := time.Now()
	outcome := copier.Copy(source, target, candidates, copier.Options{
		Limits: copier.Limits{
			MaxFileBytes: ve.MaxFileBytes(),
			MaxDirBytes:  ve.MaxDirBytes(),
		},
		Isolation:   ve.ShouldIsolate(),
		Parallelism: effectiveParallelism(parallelism, ve),
		Classifier:  classifier,
	})
	duration := time.Since(start)

	log.Summary(outcome)

	// History is best-effort: a broken manifest database never fails the
	// materialization that already happened.
	if err := recordOutcome(cfg, source, target, start, duration, outcome); err != nil {
		log.Warnf("failed to record history: %v", err)
	}
	return nil
}

// resolveSource picks the source worktree: the explicit flag, or the
// primary worktree of the repository containing target.
func resolveSource(sourceDir, target string) (string, error) {
	if sourceDir != "" {
		abs, err := filepath.Abs(sourceDir)
		if err != nil {
			return "", fmt.Errorf("failed to resolve source path: %w", err)
		}
		return abs, nil
	}
	primary, err := gitutil.PrimaryWorktree(target)
	if err != nil {
		return "", fmt.Errorf("cannot determine the primary worktree (use --source): %w", err)
	}
	return primary, nil
}

// effectiveParallelism prefers the flag when given (>= 0) over the config.
func effectiveParallelism(flag int, ve *config.VirtualEnvConfig) int {
	if flag >= 0 {
		return flag
	}
	return ve.EffectiveCopyParallelism()
}

// customGroups converts config custom patterns into classifier groups.
func customGroups(patterns []config.CustomVirtualEnvPattern) []virtualenv.Group {
	groups := make([]virtualenv.Group, 0, len(patterns))
	for _, p := range patterns {
		groups = append(groups, virtualenv.Group{
			Ecosystem:  p.Language,
			Patterns:   p.Patterns,
			SetupHints: p.Commands,
		})
	}
	return groups
}

func recordOutcome(cfg *config.Config, source, target string, start time.Time, duration time.Duration, out copier.Outcome) error {
	store, err := manifest.Open(cfg.EffectiveManifestPath())
	if err != nil {
		return err
	}
	defer store.Close()

	inv := manifest.Invocation{
		ID:                 uuid.NewString(),
		SourceRoot:         source,
		TargetRoot:         target,
		StartedAt:          start,
		Duration:           duration,
		Copied:             len(out.Copied),
		SkippedVirtualEnvs: len(out.SkippedVirtualEnvs),
		SkippedOversize:    len(out.SkippedOversize),
	}

	var files []manifest.FileRecord
	for _, p := range out.Copied {
		files = append(files, manifest.FileRecord{RelPath: p, Status: manifest.StatusCopied})
	}
	for _, p := range out.SkippedVirtualEnvs {
		files = append(files, manifest.FileRecord{RelPath: p, Status: manifest.StatusSkippedVirtualEnv})
	}
	for _, p := range out.SkippedOversize {
		files = append(files, manifest.FileRecord{RelPath: p, Status: manifest.StatusSkippedOversize})
	}

	return store.Record(context.Background(), inv, files)
}
