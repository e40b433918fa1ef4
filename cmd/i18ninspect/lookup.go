package main

import (
	"fmt"

	"github.com/cockroachdb/redact"
	"github.com/spf13/cobra"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/cachefile"
	"github.com/shopify/i18ncompact/internal/lookup"
)

func newLookupCmd() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "lookup <locale> <key>",
		Short: "Print the decoded value for a single key in a cache file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cachePath == "" {
				return fmt.Errorf("i18ninspect: --cache is required")
			}
			locale, key := base.Locale(args[0]), args[1]

			result, _, err := cachefile.Inspect(cachePath)
			if err != nil {
				return err
			}
			engine := &lookup.Engine{
				Separator: result.State.Separator,
				Schema:    result.State.Schema,
				Columns:   result.State.Columns,
				Arena:     result.State.Arena,
				Objects:   result.State.Objects,
				Subtree:   result.State.Subtree,
			}

			value, ok, lookupErr := engine.Lookup(locale, key)

			// Translation values may carry user-identifying content (e.g. a
			// name in an interpolation default), so the log line redacts
			// the value; the command's real output below does not.
			logLine := redact.Sprintf("lookup(%s, %s) = %v", redact.SafeString(string(locale)), redact.SafeString(key), value)
			fmt.Fprintln(cmd.ErrOrStderr(), logLine.Redact().StripMarkers())

			if lookupErr != nil {
				return fmt.Errorf("i18ninspect: %s.%s: %w", locale, key, lookupErr)
			}
			if !ok {
				return fmt.Errorf("i18ninspect: %s.%s not found", locale, key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
			return nil
		},
	}

	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path to read")
	return cmd
}
