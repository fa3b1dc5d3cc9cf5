package quickdiff_test

import (
	"testing"

	"github.com/fwojciec/quickdiff"
	"github.com/stretchr/testify/assert"
)

func TestChangeKindString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind quickdiff.ChangeKind
		want string
	}{
		{quickdiff.Added, "added"},
		{quickdiff.Modified, "modified"},
		{quickdiff.Deleted, "deleted"},
		{quickdiff.Untracked, "untracked"},
		{quickdiff.Renamed, "renamed"},
		{quickdiff.ChangeKind(99), "unknown"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.kind.String())
	}
}

func TestErrorKindFatal(t *testing.T) {
	t.Parallel()

	assert.True(t, quickdiff.KindNotARepo.Fatal())
	assert.True(t, quickdiff.KindPersistenceCorrupt.Fatal())
	assert.False(t, quickdiff.KindHighlightBudgetExceeded.Fatal())
	assert.False(t, quickdiff.KindWorkerInternal.Fatal())
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	inner := assert.AnError
	err := quickdiff.NewError(quickdiff.KindBlobFetchFailed, inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "blob_fetch_failed")
}
