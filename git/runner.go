// Package git implements quickdiff's ChangedFileSource and BlobSource
// collaborators against a local git checkout, shelling out to the git
// binary the way the teacher's own Runner does.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fwojciec/quickdiff"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var (
	_ quickdiff.ChangedFileSource = (*Source)(nil)
	_ quickdiff.BlobSource        = (*Source)(nil)
)

// defaultMaxBlobBytes bounds how much of any one blob Source will read,
// per spec.md §6's "MUST enforce an upper byte size to prevent OOM".
const defaultMaxBlobBytes = 32 << 20 // 32MiB

// Source reads changed files and blob content from a local git checkout
// for one of quickdiff's DiffSourceKind variants. oldRef/newRef resolve
// the two sides being compared; an empty newRef means the working tree,
// an empty oldRef means "file does not exist on the old side" (used for
// freshly added/untracked files).
type Source struct {
	RepoRoot     string
	Kind         quickdiff.DiffSourceKind
	OldRef       string
	NewRef       string
	MaxBlobBytes int64
}

// NewWorkingTree compares the working tree (including untracked files)
// against HEAD.
func NewWorkingTree(repoRoot string) *Source {
	return &Source{RepoRoot: repoRoot, Kind: quickdiff.SourceWorkingTree, OldRef: "HEAD", MaxBlobBytes: defaultMaxBlobBytes}
}

// NewCommit compares a single commit against its first parent.
func NewCommit(repoRoot, commit string) *Source {
	return &Source{RepoRoot: repoRoot, Kind: quickdiff.SourceCommit, OldRef: commit + "^", NewRef: commit, MaxBlobBytes: defaultMaxBlobBytes}
}

// NewRange compares two explicit refs, from..to.
func NewRange(repoRoot, from, to string) *Source {
	return &Source{RepoRoot: repoRoot, Kind: quickdiff.SourceRange, OldRef: from, NewRef: to, MaxBlobBytes: defaultMaxBlobBytes}
}

// NewBase compares the working tree against the merge-base of baseRef and
// HEAD, resolved eagerly so every later git invocation sees a fixed
// commit even if HEAD moves mid-session.
func NewBase(ctx context.Context, repoRoot, baseRef string) (*Source, error) {
	base, err := MergeBase(ctx, repoRoot, baseRef, "HEAD")
	if err != nil {
		return nil, err
	}
	return &Source{RepoRoot: repoRoot, Kind: quickdiff.SourceBase, OldRef: base, MaxBlobBytes: defaultMaxBlobBytes}, nil
}

// ChangedFiles lists the files that differ between OldRef and NewRef. For
// the working tree (NewRef == ""), tracked changes and untracked files
// are fetched concurrently and merged.
func (s *Source) ChangedFiles(ctx context.Context) ([]quickdiff.ChangedFile, error) {
	var tracked []quickdiff.ChangedFile
	var untracked []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tracked, err = s.trackedChanges(gctx)
		return err
	})
	if s.NewRef == "" {
		g.Go(func() error {
			var err error
			untracked, err = s.untrackedFiles(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, path := range untracked {
		tracked = append(tracked, quickdiff.ChangedFile{Path: path, Kind: quickdiff.Untracked})
	}
	return tracked, nil
}

func (s *Source) trackedChanges(ctx context.Context) ([]quickdiff.ChangedFile, error) {
	args := []string{"-C", s.RepoRoot, "diff", "--no-color", "--name-status", "-M", s.OldRef}
	if s.NewRef != "" {
		args = append(args, s.NewRef)
	}
	out, err := runGit(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseNameStatus(out), nil
}

func (s *Source) untrackedFiles(ctx context.Context) ([]string, error) {
	out, err := runGit(ctx, "-C", s.RepoRoot, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func parseNameStatus(out string) []quickdiff.ChangedFile {
	var files []quickdiff.ChangedFile
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		cf := quickdiff.ChangedFile{Kind: kindFromStatus(status)}
		if strings.HasPrefix(status, "R") && len(fields) >= 3 {
			cf.OldPath = fields[1]
			cf.Path = fields[2]
		} else {
			cf.Path = fields[1]
		}
		files = append(files, cf)
	}
	return files
}

func kindFromStatus(status string) quickdiff.ChangeKind {
	switch status[0] {
	case 'A':
		return quickdiff.Added
	case 'D':
		return quickdiff.Deleted
	case 'R':
		return quickdiff.Renamed
	default:
		return quickdiff.Modified
	}
}

// OldBlob returns the file's content at OldRef, or nil if the file has no
// old side (e.g. it was added).
func (s *Source) OldBlob(ctx context.Context, path string) ([]byte, error) {
	if s.OldRef == "" {
		return nil, nil
	}
	return s.blobAt(ctx, s.OldRef, path)
}

// NewBlob returns the file's content at NewRef, or the working tree's
// copy if NewRef is empty, or nil if the file has no new side (deleted).
func (s *Source) NewBlob(ctx context.Context, path string) ([]byte, error) {
	if s.NewRef == "" {
		data, err := os.ReadFile(filepath.Join(s.RepoRoot, path))
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, quickdiff.NewError(quickdiff.KindBlobFetchFailed, err)
		}
		if int64(len(data)) > s.maxBytes() {
			return nil, quickdiff.NewError(quickdiff.KindFileTooLarge, fmt.Errorf("%s exceeds %d bytes", path, s.maxBytes()))
		}
		return data, nil
	}
	return s.blobAt(ctx, s.NewRef, path)
}

func (s *Source) blobAt(ctx context.Context, ref, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", s.RepoRoot, "show", ref+":"+path)
	var buf limitedBuffer
	buf.max = s.maxBytes()
	cmd.Stdout = &buf
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if buf.exceeded {
		return nil, quickdiff.NewError(quickdiff.KindFileTooLarge, fmt.Errorf("%s at %s exceeds %d bytes", path, ref, s.maxBytes()))
	}
	if err != nil {
		// Path did not exist at ref (added/deleted on this side): not an
		// error, just an empty blob.
		if strings.Contains(stderr.String(), "does not exist") || strings.Contains(stderr.String(), "exists on disk, but not in") {
			return nil, nil
		}
		return nil, quickdiff.NewError(quickdiff.KindBlobFetchFailed, fmt.Errorf("git show %s:%s: %w: %s", ref, path, err, stderr.String()))
	}
	return buf.Bytes(), nil
}

func (s *Source) maxBytes() int64 {
	if s.MaxBlobBytes > 0 {
		return s.MaxBlobBytes
	}
	return defaultMaxBlobBytes
}

// limitedBuffer caps how many bytes it will accept, so a pathological
// blob never gets fully materialized in memory before being rejected.
type limitedBuffer struct {
	bytes.Buffer
	max      int64
	exceeded bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.exceeded {
		return len(p), nil // discard, cmd.Run still needs stdout drained
	}
	if int64(b.Len()+len(p)) > b.max {
		b.exceeded = true
		return len(p), nil
	}
	return b.Buffer.Write(p)
}

func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// CurrentBranch returns the name of the branch checked out in repoRoot.
func CurrentBranch(ctx context.Context, repoRoot string) (string, error) {
	out, err := runGit(ctx, "-C", repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", quickdiff.NewError(quickdiff.KindNotARepo, err)
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the common ancestor commit of a and b.
func MergeBase(ctx context.Context, repoRoot, a, b string) (string, error) {
	out, err := runGit(ctx, "-C", repoRoot, "merge-base", a, b)
	if err != nil {
		return "", quickdiff.NewError(quickdiff.KindRevisionUnresolved, err)
	}
	return strings.TrimSpace(out), nil
}

// ResolveRevision resolves a ref expression to a commit hash, returning a
// RevisionUnresolved error if it does not name a valid object.
func ResolveRevision(ctx context.Context, repoRoot, ref string) (string, error) {
	out, err := runGit(ctx, "-C", repoRoot, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", quickdiff.NewError(quickdiff.KindRevisionUnresolved, err)
	}
	return strings.TrimSpace(out), nil
}

// IsRepo reports whether dir is inside a git working tree.
func IsRepo(ctx context.Context, dir string) bool {
	_, err := runGit(ctx, "-C", dir, "rev-parse", "--is-inside-work-tree")
	return err == nil
}
