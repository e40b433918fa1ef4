package cachefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/compact"
)

func buildState(t *testing.T) *compact.State {
	t.Helper()
	trees := map[base.Locale]compact.Tree{
		"en": {
			"greeting": "hello",
			"menu":     compact.Tree{"file": "File", "edit": "Edit"},
			"count":    3.0,
			"list":     []any{"a", "b"},
			"rule":     base.Rule{Eval: func(args ...any) any { return "evaluated" }},
		},
		"fr": {"greeting": "salut"},
	}
	st, err := compact.Compact(".", trees, nil)
	require.NoError(t, err)
	return st
}

func procPositionsFor(st *compact.State) map[int][]ProcRef {
	idx, ok := st.Schema.Lookup("rule")
	if !ok {
		return nil
	}
	col, _ := st.Columns.Lookup("en")
	ref, ok := col.Get(idx)
	if !ok {
		return nil
	}
	decoded := base.Decode(ref)
	return map[int][]ProcRef{decoded.ObjIndex: {{Locale: "en", FlatKey: "rule"}}}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := buildState(t)
	procPositions := procPositionsFor(st)

	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	fp := Fingerprint("abc123")

	saved := Save(path, fp, st, procPositions, Options{})
	require.True(t, saved)

	result, ok, err := Load(path, fp)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, st.Separator, result.State.Separator)
	require.Equal(t, st.Schema.Len(), result.State.Schema.Len())
	require.ElementsMatch(t, st.Columns.Locales(), result.State.Columns.Locales())

	// rule positions come back as placeholders until patched.
	idx, ok := result.State.Schema.Lookup("rule")
	require.True(t, ok)
	col, ok := result.State.Columns.Lookup("en")
	require.True(t, ok)
	ref, ok := col.Get(idx)
	require.True(t, ok)
	obj := result.State.Objects.Get(base.Decode(ref).ObjIndex)
	require.True(t, obj.Rule.Placeholder)
	require.Len(t, result.ProcPositions, 1)
}

func TestSaveLoadCompressedRoundTrip(t *testing.T) {
	st := buildState(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	fp := Fingerprint("abc123")

	saved := Save(path, fp, st, nil, Options{Compression: true})
	require.True(t, saved)

	result, ok, err := Load(path, fp)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, st.Schema.Len(), result.State.Schema.Len())
}

func TestLoadRejectsFingerprintMismatch(t *testing.T) {
	st := buildState(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")

	require.True(t, Save(path, Fingerprint("abc123"), st, nil, Options{}))

	_, ok, err := Load(path, Fingerprint("different"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadMissingFileIsMiss(t *testing.T) {
	_, ok, err := Load(filepath.Join(t.TempDir(), "nope.bin"), Fingerprint("x"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadCorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a cache file"), 0o644))

	_, ok, err := Load(path, Fingerprint("x"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInspectIgnoresFingerprint(t *testing.T) {
	st := buildState(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	require.True(t, Save(path, Fingerprint("whatever-it-was"), st, nil, Options{}))

	result, fp, err := Inspect(path)
	require.NoError(t, err)
	require.Equal(t, Fingerprint("whatever-it-was"), fp)
	require.Equal(t, st.Schema.Len(), result.State.Schema.Len())
}

func TestPatchRulesRestoresRealRule(t *testing.T) {
	st := buildState(t)
	procPositions := procPositionsFor(st)
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")
	require.True(t, Save(path, Fingerprint("fp"), st, procPositions, Options{}))

	result, ok, err := Load(path, Fingerprint("fp"))
	require.NoError(t, err)
	require.True(t, ok)

	extracted := map[string]base.Rule{"rule": {Eval: func(args ...any) any { return "re-evaluated" }}}
	require.NoError(t, PatchRules(result.State, result.ProcPositions, extracted))

	idx, _ := result.State.Schema.Lookup("rule")
	col, _ := result.State.Columns.Lookup("en")
	ref, _ := col.Get(idx)
	obj := result.State.Objects.Get(base.Decode(ref).ObjIndex)
	require.False(t, obj.Rule.Placeholder)
	require.Equal(t, "re-evaluated", obj.Rule.Eval())
}

func TestThrottleSkipsRepeatedSave(t *testing.T) {
	st := buildState(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.bin")

	th := NewThrottle(time.Hour)
	opts := Options{Throttle: th}
	require.True(t, Save(path, Fingerprint("fp"), st, nil, opts))
	require.False(t, Save(path, Fingerprint("fp2"), st, nil, opts), "second save within the interval must be skipped")
}
