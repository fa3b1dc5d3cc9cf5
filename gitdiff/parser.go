// Package gitdiff parses unified diff content (the PatchSource
// collaborator's "--stdin"/pull-request patch text) into ChangedFiles
// plus, where no richer BlobSource is available, synthetic old/new
// buffers replayed from the patch hunks themselves.
package gitdiff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/buffer"
)

var (
	_ quickdiff.ChangedFileSource = (*Source)(nil)
	_ quickdiff.BlobSource        = (*Source)(nil)
)

// ParsedFile is one file's worth of a parsed patch: its identity, its
// added/deleted line counts, and the two line slices
// ReconstructBuffers replays into synthetic old/new buffers.
type ParsedFile struct {
	ChangedFile quickdiff.ChangedFile
	Additions   int
	Deletions   int

	oldLines []string
	newLines []string
}

// Parse reads unified diff content and returns one ParsedFile per file
// section, in patch order.
func Parse(r io.Reader) ([]ParsedFile, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, quickdiff.NewError(quickdiff.KindPatchParseFailed, err)
	}

	parsed := make([]ParsedFile, 0, len(files))
	for _, f := range files {
		parsed = append(parsed, convertFile(f))
	}
	return parsed, nil
}

func convertFile(f *gitdiff.File) ParsedFile {
	pf := ParsedFile{ChangedFile: quickdiff.ChangedFile{Path: f.NewName}}

	switch {
	case f.IsNew:
		pf.ChangedFile.Kind = quickdiff.Added
	case f.IsDelete:
		pf.ChangedFile.Kind = quickdiff.Deleted
		pf.ChangedFile.Path = f.OldName
	case f.IsRename:
		pf.ChangedFile.Kind = quickdiff.Renamed
		pf.ChangedFile.OldPath = f.OldName
	default:
		pf.ChangedFile.Kind = quickdiff.Modified
	}

	for _, frag := range f.TextFragments {
		replayFragment(&pf, frag)
	}
	return pf
}

// replayFragment appends a text fragment's context/delete lines to the
// old side and its context/add lines to the new side, in source order,
// so the concatenation of every fragment's lines (joined across the gaps
// skipped by unified diff context) reconstructs each side's visible
// content well enough to diff and highlight.
func replayFragment(pf *ParsedFile, frag *gitdiff.TextFragment) {
	for _, l := range frag.Lines {
		text := strings.TrimSuffix(l.Line, "\n")
		switch l.Op {
		case gitdiff.OpContext:
			pf.oldLines = append(pf.oldLines, text)
			pf.newLines = append(pf.newLines, text)
		case gitdiff.OpAdd:
			pf.newLines = append(pf.newLines, text)
			pf.Additions++
		case gitdiff.OpDelete:
			pf.oldLines = append(pf.oldLines, text)
			pf.Deletions++
		}
	}
}

// ReconstructBuffers builds synthetic old/new TextBuffers from the lines
// replayed out of the patch. This loses any unchanged lines the patch
// elided outside its context window, so line numbers outside the patched
// hunks will not match the real file; it is only used when no BlobSource
// can supply the real content (spec.md §9's resolved Open Question).
func (pf ParsedFile) ReconstructBuffers() (old, new *buffer.TextBuffer) {
	old = buffer.New([]byte(strings.Join(pf.oldLines, "\n")))
	new = buffer.New([]byte(strings.Join(pf.newLines, "\n")))
	return old, new
}

// Source adapts a quickdiff.PatchSource into ChangedFileSource and
// BlobSource, parsing the patch exactly once. When blobs is non-nil its
// OldBlob/NewBlob are tried first (e.g. --pr mode backed by gh, which can
// fetch full file content); ReconstructBuffers is the fallback for
// sources with no repository access of their own (--stdin).
type Source struct {
	patch quickdiff.PatchSource
	blobs quickdiff.BlobSource

	once  sync.Once
	files []ParsedFile
	err   error
}

// NewSource returns a Source reading from patch, optionally backed by a
// richer blobs collaborator.
func NewSource(patch quickdiff.PatchSource, blobs quickdiff.BlobSource) *Source {
	return &Source{patch: patch, blobs: blobs}
}

// ChangedFiles returns the files the underlying patch touches.
func (s *Source) ChangedFiles(ctx context.Context) ([]quickdiff.ChangedFile, error) {
	files, err := s.parseOnce(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]quickdiff.ChangedFile, len(files))
	for i, f := range files {
		out[i] = f.ChangedFile
	}
	return out, nil
}

// OldBlob returns blobs's old content for path when available, otherwise
// the synthetic reconstruction from the patch.
func (s *Source) OldBlob(ctx context.Context, path string) ([]byte, error) {
	if s.blobs != nil {
		return s.blobs.OldBlob(ctx, path)
	}
	pf, err := s.fileFor(ctx, path)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(pf.oldLines, "\n")), nil
}

// NewBlob returns blobs's new content for path when available, otherwise
// the synthetic reconstruction from the patch.
func (s *Source) NewBlob(ctx context.Context, path string) ([]byte, error) {
	if s.blobs != nil {
		return s.blobs.NewBlob(ctx, path)
	}
	pf, err := s.fileFor(ctx, path)
	if err != nil {
		return nil, err
	}
	return []byte(strings.Join(pf.newLines, "\n")), nil
}

func (s *Source) fileFor(ctx context.Context, path string) (ParsedFile, error) {
	files, err := s.parseOnce(ctx)
	if err != nil {
		return ParsedFile{}, err
	}
	for _, f := range files {
		if f.ChangedFile.Path == path {
			return f, nil
		}
	}
	return ParsedFile{}, fmt.Errorf("gitdiff: no patch content for %s", path)
}

func (s *Source) parseOnce(ctx context.Context) ([]ParsedFile, error) {
	s.once.Do(func() {
		r, err := s.patch.Patch(ctx)
		if err != nil {
			s.err = quickdiff.NewError(quickdiff.KindPatchParseFailed, err)
			return
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			s.err = quickdiff.NewError(quickdiff.KindPatchParseFailed, err)
			return
		}
		s.files, s.err = Parse(&buf)
	})
	return s.files, s.err
}
