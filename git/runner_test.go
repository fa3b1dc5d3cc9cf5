package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary git repository with a known history.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	writeFile(t, dir, "README.md", "# Test Repo\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "command git %v failed: %s", args, string(output))
	return string(output)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(files []quickdiff.ChangedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	sort.Strings(out)
	return out
}

func TestSourceChangedFilesWorkingTreeIncludesUntrackedAndModified(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)

	writeFile(t, dir, "README.md", "# Test Repo\n\nmodified\n")
	writeFile(t, dir, "new.txt", "brand new\n")

	src := git.NewWorkingTree(dir)
	files, err := src.ChangedFiles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "new.txt"}, paths(files))
	for _, f := range files {
		if f.Path == "new.txt" {
			assert.Equal(t, quickdiff.Untracked, f.Kind)
		}
		if f.Path == "README.md" {
			assert.Equal(t, quickdiff.Modified, f.Kind)
		}
	}
}

func TestSourceChangedFilesRange(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)

	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "feature.txt", "feature content\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Add feature")

	src := git.NewRange(dir, "main", "feature")
	files, err := src.ChangedFiles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"feature.txt"}, paths(files))
	assert.Equal(t, quickdiff.Added, files[0].Kind)
}

func TestSourceBlobsRange(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)

	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "README.md", "# Test Repo\n\nchanged on feature\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Change readme")

	src := git.NewRange(dir, "main", "feature")
	ctx := context.Background()

	oldB, err := src.OldBlob(ctx, "README.md")
	require.NoError(t, err)
	assert.Equal(t, "# Test Repo\n", string(oldB))

	newB, err := src.NewBlob(ctx, "README.md")
	require.NoError(t, err)
	assert.Equal(t, "# Test Repo\n\nchanged on feature\n", string(newB))
}

func TestSourceNewBlobReadsWorkingTree(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)
	writeFile(t, dir, "README.md", "uncommitted change\n")

	src := git.NewWorkingTree(dir)
	b, err := src.NewBlob(context.Background(), "README.md")
	require.NoError(t, err)
	assert.Equal(t, "uncommitted change\n", string(b))
}

func TestSourceOldBlobEmptyForAddedFile(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)

	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "new.txt", "new\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "add new.txt")

	src := git.NewRange(dir, "main", "feature")
	b, err := src.OldBlob(context.Background(), "new.txt")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestSourceEnforcesMaxBlobBytes(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)
	writeFile(t, dir, "big.txt", strings.Repeat("x", 100))

	src := git.NewWorkingTree(dir)
	src.MaxBlobBytes = 10

	_, err := src.NewBlob(context.Background(), "big.txt")
	require.Error(t, err)
	var qerr *quickdiff.Error
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, quickdiff.KindFileTooLarge, qerr.Kind)
}

func TestMergeBase(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)
	mainHead := strings.TrimSpace(runGit(t, dir, "rev-parse", "HEAD"))

	runGit(t, dir, "checkout", "-b", "feature")
	writeFile(t, dir, "feature.txt", "feature content\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Feature commit")

	base, err := git.MergeBase(context.Background(), dir, "main", "feature")
	require.NoError(t, err)
	assert.Equal(t, mainHead, base)
}

func TestCurrentBranch(t *testing.T) {
	t.Parallel()
	dir := setupTestRepo(t)

	branch, err := git.CurrentBranch(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestIsRepoDetectsNonRepo(t *testing.T) {
	t.Parallel()
	assert.False(t, git.IsRepo(context.Background(), t.TempDir()))

	dir := setupTestRepo(t)
	assert.True(t, git.IsRepo(context.Background(), dir))
}
