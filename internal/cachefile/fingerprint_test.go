package cachefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeMtimeStableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "en.yml")
	require.NoError(t, os.WriteFile(p, []byte("en: {}"), 0o644))

	fp1, err := ComputeMtime([]string{p})
	require.NoError(t, err)
	fp2, err := ComputeMtime([]string{p})
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)
}

func TestComputeMtimeChangesOnTouch(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "en.yml")
	require.NoError(t, os.WriteFile(p, []byte("en: {}"), 0o644))

	fp1, err := ComputeMtime([]string{p})
	require.NoError(t, err)

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(p, future, future))

	fp2, err := ComputeMtime([]string{p})
	require.NoError(t, err)
	require.NotEqual(t, fp1, fp2)
}

func TestComputeDigestStableUnderTouchAloneButChangesOnContent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "en.yml")
	require.NoError(t, os.WriteFile(p, []byte("en: {}"), 0o644))

	fp1, err := ComputeDigest([]string{p})
	require.NoError(t, err)

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(p, future, future))
	fp2, err := ComputeDigest([]string{p})
	require.NoError(t, err)
	require.Equal(t, fp1, fp2, "digest mode must ignore mtime")

	require.NoError(t, os.WriteFile(p, []byte("en: {greeting: hi}"), 0o644))
	fp3, err := ComputeDigest([]string{p})
	require.NoError(t, err)
	require.NotEqual(t, fp1, fp3, "digest mode must react to content changes")
}

func TestComputeMtimeMissingFile(t *testing.T) {
	_, err := ComputeMtime([]string{"/nonexistent/path/en.yml"})
	require.Error(t, err)
}
