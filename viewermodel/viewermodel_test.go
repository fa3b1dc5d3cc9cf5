package viewermodel_test

import (
	"testing"

	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/fwojciec/quickdiff/viewermodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openModelWithHunkAtRowZero(t *testing.T) *viewermodel.Model {
	t.Helper()
	// Hunk starts immediately (old/new differ on line 1), so a naive
	// "jump to next hunk after row 0" would skip straight past it.
	old := bufferFromLines(t, "a", "b", "ctx1", "ctx2", "ctx3", "ctx4")
	new := bufferFromLines(t, "X", "b", "ctx1", "ctx2", "ctx3", "ctx4")
	result := diffengine.Compute(old, new, 3)
	require.NotEmpty(t, result.Hunks)
	require.Equal(t, 0, result.Hunks[0].StartRow)

	m := viewermodel.New()
	m.OpenFile(result, nil, nil, old, new)
	return m
}

func bufferFromLines(t *testing.T, lines ...string) *buffer.TextBuffer {
	t.Helper()
	s := ""
	for _, l := range lines {
		s += l + "\n"
	}
	return buffer.New([]byte(s))
}

func TestOpenFilePositionsViewportAtFirstHunkEvenWhenItStartsAtRowZero(t *testing.T) {
	t.Parallel()

	m := openModelWithHunkAtRowZero(t)
	assert.Equal(t, 0, m.ScrollY)
	assert.Equal(t, 0, m.ScrollX)
}

func TestOpenFileWithNoHunksPositionsAtZero(t *testing.T) {
	t.Parallel()

	old := bufferFromLines(t, "a", "b", "c")
	new := bufferFromLines(t, "a", "b", "c")
	result := diffengine.Compute(old, new, 3)
	require.Empty(t, result.Hunks)

	m := viewermodel.New()
	m.OpenFile(result, nil, nil, old, new)
	assert.Equal(t, 0, m.ScrollY)
}

func TestScrollClampsToProjectionBounds(t *testing.T) {
	t.Parallel()

	old := bufferFromLines(t, "a", "b", "c")
	new := bufferFromLines(t, "a", "X", "c")
	result := diffengine.Compute(old, new, 3)
	m := viewermodel.New()
	m.OpenFile(result, nil, nil, old, new)

	m.Scroll(-100, -100)
	assert.Equal(t, 0, m.ScrollY)
	assert.Equal(t, 0, m.ScrollX)

	m.Scroll(100, 5)
	assert.Equal(t, m.Projection().Len()-1, m.ScrollY)
	assert.Equal(t, 5, m.ScrollX)
}

func TestJumpNextPrevHunkFromHunkAtRowZero(t *testing.T) {
	t.Parallel()

	old := bufferFromLines(t, "a", "ctx1", "ctx2", "ctx3", "ctx4", "ctx5", "ctx6", "ctx7", "b")
	new := bufferFromLines(t, "X", "ctx1", "ctx2", "ctx3", "ctx4", "ctx5", "ctx6", "ctx7", "Y")
	result := diffengine.Compute(old, new, 1)
	require.Len(t, result.Hunks, 2)

	m := viewermodel.New()
	m.OpenFile(result, nil, nil, old, new)
	assert.Equal(t, 0, m.CurrentHunkIndex())

	m.JumpNextHunk()
	assert.Equal(t, 1, m.CurrentHunkIndex())

	m.JumpNextHunk() // no more hunks after the last one
	assert.Equal(t, 1, m.CurrentHunkIndex())

	m.JumpPrevHunk()
	assert.Equal(t, 0, m.CurrentHunkIndex())
}

func TestToggleViewModePreservesCurrentHunk(t *testing.T) {
	t.Parallel()

	old := bufferFromLines(t, "a", "ctx1", "ctx2", "ctx3", "ctx4", "ctx5", "ctx6", "ctx7", "b")
	new := bufferFromLines(t, "X", "ctx1", "ctx2", "ctx3", "ctx4", "ctx5", "ctx6", "ctx7", "Y")
	result := diffengine.Compute(old, new, 1)
	require.Len(t, result.Hunks, 2)

	m := viewermodel.New()
	m.OpenFile(result, nil, nil, old, new)
	m.JumpNextHunk()
	require.Equal(t, 1, m.CurrentHunkIndex())

	m.ToggleViewMode()
	assert.Equal(t, diffengine.HunksOnlyView, m.ViewMode)
	assert.Equal(t, 1, m.CurrentHunkIndex())

	m.ToggleViewMode()
	assert.Equal(t, diffengine.FullView, m.ViewMode)
	assert.Equal(t, 1, m.CurrentHunkIndex())
}

func TestTogglePaneFullscreensAndRestores(t *testing.T) {
	t.Parallel()

	m := viewermodel.New()
	assert.Equal(t, viewermodel.SplitPanes, m.PaneMode)

	m.TogglePane(viewermodel.OldSide)
	assert.Equal(t, viewermodel.OldOnly, m.PaneMode)

	m.TogglePane(viewermodel.OldSide)
	assert.Equal(t, viewermodel.SplitPanes, m.PaneMode)

	m.TogglePane(viewermodel.NewSide)
	assert.Equal(t, viewermodel.NewOnly, m.PaneMode)
}

func TestToggleFocusFlips(t *testing.T) {
	t.Parallel()

	m := viewermodel.New()
	assert.Equal(t, viewermodel.OldSide, m.Focus)
	m.ToggleFocus()
	assert.Equal(t, viewermodel.NewSide, m.Focus)
	m.ToggleFocus()
	assert.Equal(t, viewermodel.OldSide, m.Focus)
}

func TestMarkDirtyAndConsumeDirty(t *testing.T) {
	t.Parallel()

	m := viewermodel.New()
	assert.False(t, m.ConsumeDirty())

	m.MarkDirty()
	assert.True(t, m.ConsumeDirty())
	assert.False(t, m.ConsumeDirty())
}
