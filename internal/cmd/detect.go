package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/gwm/internal/config"
	"github.com/harrison/gwm/internal/logger"
	"github.com/harrison/gwm/internal/virtualenv"
)

// NewDetectCommand creates and returns the detect subcommand.
func NewDetectCommand() *cobra.Command {
	var (
		configPath string
		maxDepth   int
	)

	cmd := &cobra.Command{
		Use:   "detect [dir]",
		Short: "Report virtual environments under a directory",
		Long: `Walk a directory and report every virtual environment or dependency
artifact found (Python venvs, node_modules, vendored trees, custom
patterns), with setup hints for recreating them in a fresh worktree.

These directories are never mirrored when virtual-env isolation is on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runDetect(cmd, dir, configPath, maxDepth)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "config file location")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "walk depth; negative is unlimited (default: from config)")

	return cmd
}

func runDetect(cmd *cobra.Command, dir, configPath string, maxDepth int) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !cmd.Flags().Changed("max-depth") {
		maxDepth = cfg.VirtualEnvHandling.EffectiveMaxScanDepth()
	}

	classifier := virtualenv.NewClassifier(customGroups(cfg.VirtualEnvHandling.CustomPatterns))
	detections := classifier.DetectAll(abs, maxDepth)

	if len(detections) == 0 {
		log.Infof("no virtual environments found under %s", abs)
		return nil
	}

	log.Infof("Virtual environments detected:")
	for _, d := range detections {
		log.Infof("  %s  (%s)", d.RelPath, d.Ecosystem)
	}

	hints := classifier.SetupHintsFor(detections)
	if len(hints) > 0 {
		log.Infof("To recreate them in a new worktree:")
		for _, h := range hints {
			log.Infof("  %s", h)
		}
	}
	return nil
}
