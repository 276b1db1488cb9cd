// Package commands implements the strata CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

// Execute runs the root command.
func Execute(ctx context.Context, version, commit string) error {
	rootCmd := newRootCommand(version, commit)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Layered configuration fragment tooling",
		Long: `strata inspects, validates, and merges layered configuration
fragments. Fragments are JSON, YAML, or TOML files; merging follows the
same strategies the library applies to entity configuration layers.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newMergeCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
