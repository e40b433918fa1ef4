package schema

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultSeparator is used when a store does not override it (spec.md §3,
// "separator may be overridden per-store").
const DefaultSeparator = "."

// Join builds a flat key from a parent flat key and a single path
// component, using sep as the separator. An empty parent means component
// is a root-level key.
func Join(sep, parent, component string) string {
	if parent == "" {
		return component
	}
	return parent + sep + component
}

// Split strips the last path component of a flat key, returning the
// parent flat key and the local component. ok is false for a root-level
// key (one with no separator).
func Split(sep, flatKey string) (parent, component string, ok bool) {
	i := strings.LastIndex(flatKey, sep)
	if i < 0 {
		return "", flatKey, false
	}
	return flatKey[:i], flatKey[i+len(sep):], true
}

// StripLocalePrefix removes a leading "<locale><sep>" prefix from a flat
// key, as the lookup engine does when callers pass a key that already
// embeds the locale (spec.md §4.7 step 1).
func StripLocalePrefix(sep, locale, flatKey string) string {
	prefix := locale + sep
	if strings.HasPrefix(flatKey, prefix) {
		return flatKey[len(prefix):]
	}
	return flatKey
}

// CheckSeparator validates that got matches want, returning an error
// otherwise. The separator is a build-time input, not a schema property
// (spec.md §9): mixing separators between compaction and lookup on the
// same store is a caller bug, not a recoverable condition.
func CheckSeparator(want, got string) error {
	if want != got {
		return errors.Newf("schema: separator mismatch: store uses %q, call used %q", want, got)
	}
	return nil
}
