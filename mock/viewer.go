package mock

import (
	"context"

	"github.com/fwojciec/quickdiff"
)

// Compile-time interface verification.
var _ quickdiff.Viewer = (*Viewer)(nil)

// Viewer is a mock implementation of quickdiff.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, files []quickdiff.ChangedFile, blobs quickdiff.BlobSource) error
}

func (v *Viewer) View(ctx context.Context, files []quickdiff.ChangedFile, blobs quickdiff.BlobSource) error {
	return v.ViewFn(ctx, files, blobs)
}
