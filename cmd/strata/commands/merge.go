package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/strataconf/strata/format"
	"github.com/strataconf/strata/merge"
)

func newMergeCommand() *cobra.Command {
	var (
		strategy   string
		arrayMerge string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "merge <file>...",
		Short: "Merge configuration fragments",
		Long: `Merge folds fragment files left to right: each file is merged on top
of the accumulated result, so later files win conflicts under the merge and
override strategies.`,
		Example: `  # Deep-merge two fragments
  strata merge defaults.yaml overrides.yaml

  # Fill gaps only, never overwrite
  strata merge base.json extras.json --strategy extend

  # Emit TOML instead of JSON
  strata merge a.yaml b.yaml -o toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := mergeOptions(strategy, arrayMerge)
			if err != nil {
				return err
			}

			fragments := make([]merge.Fragment, 0, len(args))
			for _, path := range args {
				frag, err := readFragment(path)
				if err != nil {
					return err
				}
				fragments = append(fragments, frag)
			}

			log.Debug().
				Int("fragments", len(fragments)).
				Str("strategy", string(opts.Strategy)).
				Msg("merging fragments")

			result := merge.Layers(fragments, opts)
			data, err := format.Encode(output, result)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(merge.StrategyMerge), "merge strategy (override, merge, extend)")
	cmd.Flags().StringVar(&arrayMerge, "array-merge", "", "array handling (concat, unique, replace); default depends on strategy")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json, yaml, toml)")

	return cmd
}

// mergeOptions translates flag values into merge options, rejecting unknown
// names up front rather than silently falling back to defaults.
func mergeOptions(strategy, arrayMerge string) (merge.Options, error) {
	s := merge.Strategy(strategy)
	if !s.Valid() {
		return merge.Options{}, fmt.Errorf("unknown strategy %q", strategy)
	}
	opts := merge.DefaultOptions(s)
	if arrayMerge != "" {
		mode := merge.ArrayMode(arrayMerge)
		if !mode.Valid() {
			return merge.Options{}, fmt.Errorf("unknown array-merge mode %q", arrayMerge)
		}
		opts.ArrayMerge = mode
	}
	return opts, nil
}

func readFragment(path string) (merge.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	frag, err := format.Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frag, nil
}
