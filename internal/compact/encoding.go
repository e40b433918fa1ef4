package compact

import (
	"unicode/utf8"

	"github.com/shopify/i18ncompact/internal/base"
)

// detectEncoding classifies s for the arena's fixed encoding table.
// Pure-ASCII strings get their own tag so two locales that happen to
// share ASCII text dedup identically to UTF-8 text that also happens to
// be ASCII-only — both tags are correct, but ASCII is cheaper to assert
// about downstream (e.g. safe to byte-compare case-insensitively).
func detectEncoding(s string) base.EncodingID {
	if isASCII(s) {
		return base.EncodingASCII
	}
	if utf8.ValidString(s) {
		return base.EncodingUTF8
	}
	return base.EncodingBinary
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// normalizeNumber widens the Go numeric literal kinds a caller's nested
// tree might contain (the external framework may hand us int, int64, or
// float64 depending on its own parser) into the float64 the object table
// stores.
func normalizeNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
