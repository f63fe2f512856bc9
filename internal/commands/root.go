package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transfermatch-dev/transfermatch/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "transfermatch",
		Short:   "Unify bank statements and reconcile transfers between accounts",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
