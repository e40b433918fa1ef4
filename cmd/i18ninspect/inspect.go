package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shopify/i18ncompact/internal/cachefile"
)

func newInspectCmd() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a table of what a cache file contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cachePath == "" {
				return fmt.Errorf("i18ninspect: --cache is required")
			}
			result, fp, err := cachefile.Inspect(cachePath)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"locale", "columns with values"})
			for _, locale := range result.State.Columns.Locales() {
				col, _ := result.State.Columns.Lookup(locale)
				count := 0
				for i := 0; i < col.Len(); i++ {
					if _, ok := col.Get(i); ok {
						count++
					}
				}
				table.Append([]string{string(locale), strconv.Itoa(count)})
			}
			table.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "\nfingerprint: %s\n", fp)
			fmt.Fprintf(cmd.OutOrStdout(), "schema columns: %d\n", result.State.Schema.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "arena bytes: %d\n", len(result.State.Arena))
			fmt.Fprintf(cmd.OutOrStdout(), "object table entries: %d\n", result.State.Objects.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "pending rule positions: %d\n", len(result.ProcPositions))
			return nil
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path to read")
	return cmd
}
