package mock

import (
	"context"
	"io"

	"github.com/fwojciec/quickdiff"
)

// Compile-time interface verification.
var (
	_ quickdiff.ChangedFileSource = (*ChangedFileSource)(nil)
	_ quickdiff.BlobSource        = (*BlobSource)(nil)
	_ quickdiff.PatchSource       = (*PatchSource)(nil)
)

// ChangedFileSource is a mock implementation of quickdiff.ChangedFileSource.
type ChangedFileSource struct {
	ChangedFilesFn func(ctx context.Context) ([]quickdiff.ChangedFile, error)
}

func (s *ChangedFileSource) ChangedFiles(ctx context.Context) ([]quickdiff.ChangedFile, error) {
	return s.ChangedFilesFn(ctx)
}

// BlobSource is a mock implementation of quickdiff.BlobSource.
type BlobSource struct {
	OldBlobFn func(ctx context.Context, path string) ([]byte, error)
	NewBlobFn func(ctx context.Context, path string) ([]byte, error)
}

func (s *BlobSource) OldBlob(ctx context.Context, path string) ([]byte, error) {
	return s.OldBlobFn(ctx, path)
}

func (s *BlobSource) NewBlob(ctx context.Context, path string) ([]byte, error) {
	return s.NewBlobFn(ctx, path)
}

// PatchSource is a mock implementation of quickdiff.PatchSource.
type PatchSource struct {
	PatchFn func(ctx context.Context) (io.Reader, error)
}

func (s *PatchSource) Patch(ctx context.Context) (io.Reader, error) {
	return s.PatchFn(ctx)
}
