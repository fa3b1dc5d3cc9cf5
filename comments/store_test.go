package comments_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/comments"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := comments.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, s.All())
}

func TestAddAssignsMonotonicIDsAndSaveLoadRoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := comments.Load(dir)
	require.NoError(t, err)

	old, new := bufferFromString("a\nb\nc\n"), bufferFromString("a\nX\nc\n")
	result := diffengine.Compute(old, new, 3)
	require.Len(t, result.Hunks, 1)

	c1 := s.Add("f.go", "needs a test", result, 0, old, new, 1000)
	c2 := s.Add("f.go", "also this", result, 0, old, new, 2000)
	assert.Equal(t, uint64(1), c1.ID)
	assert.Equal(t, uint64(2), c2.ID)
	assert.Equal(t, comments.StatusOpen, c1.Status)

	require.NoError(t, s.Save())

	reloaded, err := comments.Load(dir)
	require.NoError(t, err)
	got := reloaded.All()
	require.Len(t, got, 2)
	assert.Equal(t, c1, got[0])
	assert.Equal(t, c2, got[1])

	_, err = os.Stat(filepath.Join(dir, ".quickdiff", "comments.json"))
	require.NoError(t, err)

	// No leftover temp files from the atomic write.
	entries, err := os.ReadDir(filepath.Join(dir, ".quickdiff"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestResolveMarksCommentResolved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := comments.Load(dir)
	require.NoError(t, err)

	old, new := bufferFromString("a\nb\n"), bufferFromString("a\nX\n")
	result := diffengine.Compute(old, new, 3)
	c := s.Add("f.go", "fix me", result, 0, old, new, 1000)

	assert.True(t, s.Resolve(c.ID, 5000))
	got := s.All()[0]
	assert.Equal(t, comments.StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAtMs)
	assert.Equal(t, int64(5000), *got.ResolvedAtMs)

	assert.False(t, s.Resolve(999, 6000))
}

func TestForPathFiltersByPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := comments.Load(dir)
	require.NoError(t, err)

	old, new := bufferFromString("a\nb\n"), bufferFromString("a\nX\n")
	result := diffengine.Compute(old, new, 3)
	s.Add("a.go", "on a", result, 0, old, new, 1000)
	s.Add("b.go", "on b", result, 0, old, new, 1000)

	assert.Len(t, s.ForPath("a.go"), 1)
	assert.Len(t, s.ForPath("b.go"), 1)
	assert.Empty(t, s.ForPath("c.go"))
}

func TestLoadInvalidJSONReturnsPersistenceCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".quickdiff"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".quickdiff", "comments.json"), []byte("not json"), 0o644))

	_, err := comments.Load(dir)
	require.Error(t, err)
	var qerr *quickdiff.Error
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, quickdiff.KindPersistenceCorrupt, qerr.Kind)
}

func TestLoadUnsupportedVersionReturnsPersistenceCorrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".quickdiff"), 0o755))
	doc := `{"version": 99, "next_id": 1, "comments": []}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".quickdiff", "comments.json"), []byte(doc), 0o644))

	_, err := comments.Load(dir)
	require.Error(t, err)
	var qerr *quickdiff.Error
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, quickdiff.KindPersistenceCorrupt, qerr.Kind)
}

func TestSaveCreatesQuickdiffDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := comments.Load(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save())

	info, err := os.Stat(filepath.Join(dir, ".quickdiff"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
