package diffengine_test

import (
	"testing"

	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoHunkResult() *diffengine.DiffResult {
	old := buffer.New([]byte("change1\n" + repeatLine("eq", 20) + "change2\n"))
	new := buffer.New([]byte("CHANGE1\n" + repeatLine("eq", 20) + "CHANGE2\n"))
	return diffengine.Compute(old, new, 3)
}

func TestViewProjectionFullViewIsIdentity(t *testing.T) {
	t.Parallel()

	result := twoHunkResult()
	vp := diffengine.NewViewProjection(result, diffengine.FullView)

	require.Equal(t, len(result.Rows), vp.Len())
	for i, pr := range vp.Rows() {
		assert.Equal(t, i, pr.SourceRow)
		assert.False(t, pr.Separator)
	}
}

func TestViewProjectionHunksOnlyElidesUnchangedRowsAndAddsSeparator(t *testing.T) {
	t.Parallel()

	result := twoHunkResult()
	require.Len(t, result.Hunks, 2)

	vp := diffengine.NewViewProjection(result, diffengine.HunksOnlyView)

	wantRows := result.Hunks[0].RowCount + 1 + result.Hunks[1].RowCount
	require.Equal(t, wantRows, vp.Len())

	sepCount := 0
	for _, pr := range vp.Rows() {
		if pr.Separator {
			sepCount++
			assert.Equal(t, -1, pr.SourceRow)
		}
	}
	assert.Equal(t, 1, sepCount)
}

func TestViewProjectionSetModePreservesFirstVisibleHunk(t *testing.T) {
	t.Parallel()

	result := twoHunkResult()
	require.Len(t, result.Hunks, 2)

	vp := diffengine.NewViewProjection(result, diffengine.FullView)

	secondHunkFirstRow := result.Hunks[1].StartRow
	idx := vp.SetMode(diffengine.HunksOnlyView, secondHunkFirstRow)

	require.Equal(t, diffengine.HunksOnlyView, vp.Mode())
	projected := vp.Rows()[idx]
	assert.Equal(t, secondHunkFirstRow, projected.SourceRow)

	idx = vp.SetMode(diffengine.FullView, secondHunkFirstRow)
	require.Equal(t, diffengine.FullView, vp.Mode())
	assert.Equal(t, secondHunkFirstRow, vp.Rows()[idx].SourceRow)
}

func TestViewProjectionSetModeFromUnchangedRowSnapsToNearestHunk(t *testing.T) {
	t.Parallel()

	result := twoHunkResult()
	vp := diffengine.NewViewProjection(result, diffengine.FullView)

	// Hunks[0].EndRow() is the first unchanged row past the first hunk's
	// context, inside the gap hunks-only mode elides; the toggle snaps to
	// the next hunk.
	idx := vp.SetMode(diffengine.HunksOnlyView, result.Hunks[0].EndRow())
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, result.Hunks[1].StartRow, vp.Rows()[idx].SourceRow)
}
