// Package gh implements the --pr mode collaborators by shelling out to
// the gh CLI: PRSource supplies ChangedFiles, blobs and a combined patch
// for a single pull request, and Client exposes the review actions
// (approve/comment) spec.md §6 lists for --pr mode.
package gh

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/quickdiff"
)

// DefaultTimeout bounds every gh CLI invocation that doesn't already
// carry a deadline.
const DefaultTimeout = 30 * time.Second

// defaultMaxBlobBytes mirrors git.Source's bound; gh-fetched blobs are
// subject to the same OOM guard spec.md §6 requires of every BlobSource.
const defaultMaxBlobBytes = 32 << 20

// CommandRunner executes `gh` with the given arguments and returns stdout.
// Tests inject a fake to avoid shelling out.
type CommandRunner func(ctx context.Context, args ...string) (string, error)

// Client wraps the gh CLI for the actions that don't belong to any one
// pull request: repo identification and review actions.
type Client struct {
	run     CommandRunner
	Timeout time.Duration
}

// NewClient verifies the gh CLI is installed and authenticated.
func NewClient() (*Client, error) {
	if _, err := exec.LookPath("gh"); err != nil {
		return nil, fmt.Errorf("gh CLI not found: install from https://cli.github.com")
	}
	c := &Client{run: defaultRunner}
	if _, err := c.exec(context.Background(), "auth", "status"); err != nil {
		return nil, fmt.Errorf("gh not authenticated: run 'gh auth login' first")
	}
	return c, nil
}

// NewTestClient builds a Client around a fake CommandRunner.
func NewTestClient(runner CommandRunner) *Client {
	return &Client{run: runner}
}

func defaultRunner(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gh %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) exec(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.run(ctx, args...)
}

// Approve approves pull request number, optionally with a review body.
func (c *Client) Approve(ctx context.Context, number int, body string) error {
	args := []string{"pr", "review", strconv.Itoa(number), "--approve"}
	if body != "" {
		args = append(args, "--body", body)
	}
	_, err := c.exec(ctx, args...)
	return err
}

// Comment posts a top-level comment on pull request number.
func (c *Client) Comment(ctx context.Context, number int, body string) error {
	_, err := c.exec(ctx, "pr", "comment", strconv.Itoa(number), "--body", body)
	return err
}

// PR returns the collaborator for a single pull request's changed
// files, blobs and combined patch.
func (c *Client) PR(number int) *PRSource {
	return &PRSource{client: c, Number: number, MaxBlobBytes: defaultMaxBlobBytes}
}

// Compile-time interface verification.
var (
	_ quickdiff.ChangedFileSource = (*PRSource)(nil)
	_ quickdiff.BlobSource        = (*PRSource)(nil)
	_ quickdiff.PatchSource       = (*PRSource)(nil)
)

// PRSource reads changed files, blob content and the combined patch for
// a single pull request. Metadata (owner/repo, base/head SHAs) is
// resolved once, lazily, on first use.
type PRSource struct {
	client       *Client
	Number       int
	MaxBlobBytes int64

	meta     once[prMeta]
	repoSlug once[string]
}

type prMeta struct {
	BaseRefOid string `json:"baseRefOid"`
	HeadRefOid string `json:"headRefOid"`
	Files      []struct {
		Path      string `json:"path"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
	} `json:"files"`
}

// once lazily computes and caches a value, the same pattern
// gitdiff.Source uses around sync.Once for its own parse cache.
type once[T any] struct {
	do  sync.Once
	val T
	err error
}

func (o *once[T]) get(compute func() (T, error)) (T, error) {
	o.do.Do(func() { o.val, o.err = compute() })
	return o.val, o.err
}

func (s *PRSource) fetchMeta(ctx context.Context) (prMeta, error) {
	out, err := s.client.exec(ctx, "pr", "view", strconv.Itoa(s.Number),
		"--json", "baseRefOid,headRefOid,files")
	if err != nil {
		return prMeta{}, quickdiff.NewError(quickdiff.KindRevisionUnresolved, err)
	}
	var m prMeta
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		return prMeta{}, quickdiff.NewError(quickdiff.KindRevisionUnresolved, fmt.Errorf("parse gh pr view output: %w", err))
	}
	return m, nil
}

// ChangedFiles lists the files touched by the pull request.
func (s *PRSource) ChangedFiles(ctx context.Context) ([]quickdiff.ChangedFile, error) {
	m, err := s.meta.get(func() (prMeta, error) { return s.fetchMeta(ctx) })
	if err != nil {
		return nil, err
	}
	files := make([]quickdiff.ChangedFile, 0, len(m.Files))
	for _, f := range m.Files {
		files = append(files, quickdiff.ChangedFile{Path: f.Path, Kind: quickdiff.Modified})
	}
	return files, nil
}

// Patch returns the pull request's combined unified diff.
func (s *PRSource) Patch(ctx context.Context) (io.Reader, error) {
	out, err := s.client.exec(ctx, "pr", "diff", strconv.Itoa(s.Number))
	if err != nil {
		return nil, quickdiff.NewError(quickdiff.KindPatchParseFailed, err)
	}
	return strings.NewReader(out), nil
}

// OldBlob fetches path's content at the pull request's base commit.
func (s *PRSource) OldBlob(ctx context.Context, path string) ([]byte, error) {
	m, err := s.meta.get(func() (prMeta, error) { return s.fetchMeta(ctx) })
	if err != nil {
		return nil, err
	}
	return s.blobAt(ctx, m.BaseRefOid, path)
}

// NewBlob fetches path's content at the pull request's head commit.
func (s *PRSource) NewBlob(ctx context.Context, path string) ([]byte, error) {
	m, err := s.meta.get(func() (prMeta, error) { return s.fetchMeta(ctx) })
	if err != nil {
		return nil, err
	}
	return s.blobAt(ctx, m.HeadRefOid, path)
}

func (s *PRSource) blobAt(ctx context.Context, sha, path string) ([]byte, error) {
	if sha == "" || path == "" {
		return nil, nil
	}
	owner, repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.client.exec(ctx, "api",
		fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, path),
		"-f", fmt.Sprintf("ref=%s", sha), "--jq", ".content")
	if err != nil {
		// File doesn't exist at this ref (added/removed on this side).
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.TrimSpace(out), "\n", ""))
	if err != nil {
		return nil, quickdiff.NewError(quickdiff.KindBlobFetchFailed, fmt.Errorf("decode %s@%s: %w", path, sha, err))
	}
	if max := s.maxBytes(); int64(len(decoded)) > max {
		return nil, quickdiff.NewError(quickdiff.KindFileTooLarge, fmt.Errorf("%s@%s exceeds %d bytes", path, sha, max))
	}
	return decoded, nil
}

func (s *PRSource) maxBytes() int64 {
	if s.MaxBlobBytes > 0 {
		return s.MaxBlobBytes
	}
	return defaultMaxBlobBytes
}

func (s *PRSource) repo(ctx context.Context) (owner, name string, err error) {
	slug, err := s.repoSlug.get(func() (string, error) {
		out, err := s.client.exec(ctx, "repo", "view", "--json", "owner,name", "--jq", ".owner.login + \"/\" + .name")
		if err != nil {
			return "", quickdiff.NewError(quickdiff.KindNotARepo, err)
		}
		return strings.TrimSpace(out), nil
	})
	if err != nil {
		return "", "", err
	}
	owner, name, ok := strings.Cut(slug, "/")
	if !ok {
		return "", "", quickdiff.NewError(quickdiff.KindNotARepo, fmt.Errorf("unexpected repo slug %q", slug))
	}
	return owner, name, nil
}
