//go:build !i18ncompact_invariants

package base

// AssertOrError returns err unmodified. Builds without the
// i18ncompact_invariants tag treat an invariant violation as a plain
// error from Compact! rather than crashing the process (spec.md §7,
// item 6: "treat as fatal in release builds" is interpreted here as
// "fail the call," not "panic the server").
func AssertOrError(err error) error {
	return err
}
