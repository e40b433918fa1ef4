// Command i18ninspect is a small cobra-based tool for exercising a
// compacted translation index from the command line: compact a
// directory of fixture files into a cache, inspect what a cache file
// contains, print diagnostics, and look up a single key.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
