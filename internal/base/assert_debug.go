//go:build i18ncompact_invariants

package base

// AssertOrError panics with err. Building with the i18ncompact_invariants
// tag (mirroring pebble's internal/invariants gate) turns every invariant
// violation into an immediate crash instead of a returned error, which is
// what you want while developing against the Compactor.
func AssertOrError(err error) error {
	panic(err)
}
