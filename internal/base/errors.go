package base

import (
	"github.com/cockroachdb/errors"
)

// ErrCorrupt marks the errors the cache reader returns for a file it
// cannot decode (cachefile.Inspect on a non-cache or malformed file, a gob
// section that panics while decoding). cachefile.Load reports those
// conditions, and a fingerprint mismatch, as ok=false with a nil error
// instead. Callers test with errors.Is(err, ErrCorrupt) instead of
// matching strings.
var ErrCorrupt = errors.New("i18ncompact: corrupt cache file")

// ErrAssertion marks the invariant violations the Compactor returns as
// errors: a flat key that is a leaf in one locale and a subtree root in
// another, and a leaf value of an unsupported Go type. Both can be caused
// by the input trees. An out-of-range packed offset or length is not
// reported this way; base.PackString panics on it.
var ErrAssertion = errors.New("i18ncompact: invariant violation")

// ErrPlaceholderRule is returned by the lookup engine when a decoded value
// is an executable-rule placeholder that a cache reload could not
// re-extract from source (spec.md §9, second open question).
var ErrPlaceholderRule = errors.New("i18ncompact: placeholder rule leaked from cache")

// CorruptionErrorf wraps a cache deserialization failure, tagging it with
// ErrCorrupt.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorrupt)
}

// AssertionFailedf wraps an invariant violation, tagging it with
// ErrAssertion.
func AssertionFailedf(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrAssertion)
}
