package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gwm/internal/config"
	"github.com/harrison/gwm/internal/manifest"
)

// NewHistoryCommand creates and returns the history subcommand.
func NewHistoryCommand() *cobra.Command {
	var (
		configPath string
		limit      int
		showFiles  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent mirror invocations",
		Long: `List recent mirror runs recorded in the manifest database:
when they ran, source and target, and how many files were
copied or skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, configPath, limit, showFiles)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "config file location")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of invocations to show")
	cmd.Flags().BoolVar(&showFiles, "files", false, "list per-file records for each invocation")

	return cmd
}

func runHistory(cmd *cobra.Command, configPath string, limit int, showFiles bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := manifest.Open(cfg.EffectiveManifestPath())
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	invocations, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(invocations) == 0 {
		fmt.Fprintln(out, "No mirror invocations recorded")
		return nil
	}

	for _, inv := range invocations {
		fmt.Fprintf(out, "%s  %s -> %s\n",
			inv.StartedAt.Local().Format("2006-01-02 15:04:05"),
			inv.SourceRoot, inv.TargetRoot)
		fmt.Fprintf(out, "  copied %d, skipped %d virtual env(s), %d oversize, took %s\n",
			inv.Copied, inv.SkippedVirtualEnvs, inv.SkippedOversize, inv.Duration)

		if !showFiles {
			continue
		}
		files, err := store.Files(ctx, inv.ID)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "    %-20s %s\n", f.Status, f.RelPath)
		}
	}
	return nil
}
