package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strataconf/strata"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate configuration fragments",
		Long: `Validate checks each fragment file against the basic shape schema:
plugins and routes must be string lists, settings must be a map, and all
values must be JSON-like. Every violation is reported, not just the first.`,
		Example: `  strata validate services/svc-a.yaml
  strata validate configs/**/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := strata.New()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				frag, err := readFragment(path)
				if err != nil {
					return err
				}
				res := mgr.Validate(frag)
				for _, w := range res.Warnings {
					fmt.Fprintf(out, "%s: warning: %s\n", path, w)
				}
				for _, e := range res.Errors {
					fmt.Fprintf(out, "%s: error: %s\n", path, e)
				}
				if !res.Valid {
					invalid++
				} else {
					fmt.Fprintf(out, "%s: ok\n", path)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d fragment(s) invalid", invalid, len(args))
			}
			return nil
		},
	}

	return cmd
}
