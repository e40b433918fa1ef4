package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	i18ncompact "github.com/shopify/i18ncompact"
)

func newStatCmd() *cobra.Command {
	var (
		cachePath string
		separator string
	)

	cmd := &cobra.Command{
		Use:   "stat <dir>",
		Short: "Compact a directory and print string-length / fan-out diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := newDirLoader(args[0])
			if err != nil {
				return err
			}

			store := i18ncompact.New(&i18ncompact.Options{
				Separator: separator,
				CachePath: cachePath,
				Stats:     true,
			})
			if err := store.EagerLoad(loader); err != nil {
				return err
			}

			summary := store.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "samples: %d\n", summary.Samples)
			fmt.Fprintf(cmd.OutOrStdout(), "string length  p50=%d p90=%d p99=%d max=%d\n",
				summary.StringLenP50, summary.StringLenP90, summary.StringLenP99, summary.StringLenMax)
			fmt.Fprintf(cmd.OutOrStdout(), "fan-out        p50=%d p90=%d p99=%d max=%d\n",
				summary.FanoutP50, summary.FanoutP90, summary.FanoutP99, summary.FanoutMax)

			if series := store.StatsStringLengthSeries(40); len(series) > 0 {
				plot := asciigraph.Plot(series, asciigraph.Height(12), asciigraph.Caption("string length by quantile bucket"))
				fmt.Fprintln(cmd.OutOrStdout(), plot)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path to also save")
	cmd.Flags().StringVar(&separator, "separator", ".", "flat key separator")
	return cmd
}
