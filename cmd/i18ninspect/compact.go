package main

import (
	"fmt"

	"github.com/spf13/cobra"

	i18ncompact "github.com/shopify/i18ncompact"
)

func newCompactCmd() *cobra.Command {
	var (
		cachePath string
		separator string
		compress  bool
		digest    bool
	)

	cmd := &cobra.Command{
		Use:   "compact <dir>",
		Short: "Compact a directory of locale fixture files into a cache file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := newDirLoader(args[0])
			if err != nil {
				return err
			}

			store := i18ncompact.New(&i18ncompact.Options{
				Separator:        separator,
				CachePath:        cachePath,
				CacheDigest:      digest,
				CacheCompression: compress,
			})
			if err := store.EagerLoad(loader); err != nil {
				return err
			}

			d := store.Describe()
			fmt.Fprintf(cmd.OutOrStdout(), "compacted %d locale(s), %d schema columns, %d arena bytes, %d object table entries\n",
				len(d.CompactedLocales), d.SchemaColumns, d.ArenaBytes, d.ObjectTableSize)
			if cachePath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "cache written to %s\n", cachePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path to write")
	cmd.Flags().StringVar(&separator, "separator", ".", "flat key separator")
	cmd.Flags().BoolVar(&compress, "compress", false, "wrap the cache frame in zstd")
	cmd.Flags().BoolVar(&digest, "digest", false, "fingerprint by file content instead of mtime")
	return cmd
}
