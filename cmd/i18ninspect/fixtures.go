package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shopify/i18ncompact/internal/base"
)

// dirLoader implements i18ncompact.Loader over a directory of
// "<locale>.yaml" fixture files, one per locale. This is the test-only
// loader the CLI ships with: parsing a production framework's actual
// source format (real YAML/PO translation files, pluralization rules,
// lazy procs) is the external framework's job, not this package's.
type dirLoader struct {
	dir   string
	paths []string
}

func newDirLoader(dir string) (*dirLoader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext != ".yaml" && ext != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return &dirLoader{dir: dir, paths: paths}, nil
}

func (l *dirLoader) SourcePaths() []string { return l.paths }

func (l *dirLoader) Load() (map[base.Locale]map[string]any, error) {
	out := make(map[base.Locale]map[string]any, len(l.paths))
	for _, p := range l.paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, err
		}
		locale := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		out[base.Locale(locale)] = tree
	}
	return out, nil
}

// ExtractRules always returns nil: fixture files have no concept of an
// executable leaf, so every rule slot (there are none) stays whatever a
// cache reload already gave it.
func (l *dirLoader) ExtractRules() map[string]base.Rule { return nil }
