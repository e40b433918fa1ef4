// Package base holds the types and error taxonomy shared by every other
// internal package: packed references, the decoded value sum type, locale
// identifiers, and the corruption/assertion error constructors used
// throughout compaction, lookup, and persistence.
package base

// Locale identifies the translation tree a value belongs to (e.g. "en",
// "fr-CA"). It is a thin string wrapper so schema/columns/lookup signatures
// read as domain types rather than bare strings.
type Locale string

// String implements fmt.Stringer.
func (l Locale) String() string { return string(l) }
