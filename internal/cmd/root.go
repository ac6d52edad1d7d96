// Package cmd wires the gwm command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for gwm.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gwm",
		Short: "Mirror ignored files into git worktrees",
		Long: `gwm materializes gitignored-but-needed files (.env files, local
secrets) from a primary worktree into a newly created one, while refusing to
mirror virtual environments and other regenerable dependency trees.

Tracked files are never touched: they appear in the new worktree via
checkout. Size limits and virtual-env isolation are configured in
~/.config/gwm/config.yaml.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMirrorCommand())
	cmd.AddCommand(NewDetectCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
