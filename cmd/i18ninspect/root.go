package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "i18ninspect",
		Short:         "Inspect and build compacted translation index cache files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCompactCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newStatCmd())
	root.AddCommand(newLookupCmd())
	return root
}
