// Package viewermodel holds the navigation and viewport state a terminal
// diff viewer mutates in response to input, independent of any particular
// UI toolkit. It owns no rendering and no terminal I/O.
package viewermodel

import (
	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/fwojciec/quickdiff/highlight"
)

// PaneMode controls whether both panes are shown side by side or one pane
// is fullscreened.
type PaneMode int

const (
	SplitPanes PaneMode = iota
	OldOnly
	NewOnly
)

// Side identifies one of the two panes.
type Side int

const (
	OldSide Side = iota
	NewSide
)

// Model holds everything navigation and rendering need for the currently
// open file: the immutable result/cache/buffer tuple installed by
// OpenFile, plus the mutable viewport and mode state input mutates.
type Model struct {
	Result   *diffengine.DiffResult
	OldCache *highlight.Cache
	NewCache *highlight.Cache
	OldBuf   *buffer.TextBuffer
	NewBuf   *buffer.TextBuffer

	projection *diffengine.ViewProjection
	hunkIndex  *diffengine.HunkIndex

	ScrollY int
	ScrollX int

	PaneMode PaneMode
	ViewMode diffengine.ViewMode
	Focus    Side

	dirty bool
}

// New returns an empty Model with no file loaded.
func New() *Model {
	return &Model{ViewMode: diffengine.FullView, PaneMode: SplitPanes}
}

// OpenFile installs a freshly computed diff/highlight/buffer tuple as a
// unit, replacing whatever was open before. Per spec.md's initial-viewport
// rule, the viewport is positioned at the projection row for the first
// hunk's start row, not at "the next hunk after row 0" (which would skip a
// hunk that starts at row 0 itself).
func (m *Model) OpenFile(result *diffengine.DiffResult, oldCache, newCache *highlight.Cache, oldBuf, newBuf *buffer.TextBuffer) {
	m.Result = result
	m.OldCache = oldCache
	m.NewCache = newCache
	m.OldBuf = oldBuf
	m.NewBuf = newBuf
	m.hunkIndex = diffengine.NewHunkIndex(result.Hunks)
	m.projection = diffengine.NewViewProjection(result, m.ViewMode)

	m.ScrollX = 0
	m.ScrollY = 0
	if len(result.Hunks) > 0 {
		m.ScrollY = m.projectedIndexForSourceRow(result.Hunks[0].StartRow)
	}
	m.MarkDirty()
}

// Projection returns the view projection for the currently open file, or
// nil if no file is open.
func (m *Model) Projection() *diffengine.ViewProjection { return m.projection }

// Scroll moves the viewport by rows (vertical, in projected row units) and
// cols (horizontal, in display columns). Negative values scroll up/left.
// ScrollY is clamped to the projection's row count; ScrollX only floors at
// 0, since its upper bound depends on the widest visible line, which is a
// rendering concern.
func (m *Model) Scroll(rows, cols int) {
	if m.projection == nil {
		return
	}
	m.ScrollY = clamp(m.ScrollY+rows, 0, max(0, m.projection.Len()-1))
	m.ScrollX = max(0, m.ScrollX+cols)
	m.MarkDirty()
}

// ToggleViewMode flips between full and hunks-only, preserving whichever
// hunk was first visible across the switch.
func (m *Model) ToggleViewMode() {
	if m.projection == nil {
		return
	}
	next := diffengine.FullView
	if m.ViewMode == diffengine.FullView {
		next = diffengine.HunksOnlyView
	}
	m.ViewMode = next
	m.ScrollY = m.projection.SetMode(next, m.sourceRowAt(m.ScrollY))
	m.MarkDirty()
}

// TogglePane fullscreens side, or returns to the split view if side is
// already fullscreened.
func (m *Model) TogglePane(side Side) {
	want := OldOnly
	if side == NewSide {
		want = NewOnly
	}
	if m.PaneMode == want {
		m.PaneMode = SplitPanes
	} else {
		m.PaneMode = want
	}
	m.MarkDirty()
}

// ToggleFocus switches which pane receives pane-scoped input.
func (m *Model) ToggleFocus() {
	if m.Focus == OldSide {
		m.Focus = NewSide
	} else {
		m.Focus = OldSide
	}
	m.MarkDirty()
}

// JumpNextHunk moves the viewport to the start of the next hunk after the
// current position, if any.
func (m *Model) JumpNextHunk() {
	if m.hunkIndex == nil || m.projection == nil {
		return
	}
	sourceRow := m.sourceRowAt(m.ScrollY)
	next := m.hunkIndex.NextHunk(sourceRow)
	if next < 0 {
		return
	}
	m.ScrollY = m.projectedIndexForSourceRow(m.Result.Hunks[next].StartRow)
	m.MarkDirty()
}

// JumpPrevHunk moves the viewport to the start of the previous hunk
// before the current position, if any.
func (m *Model) JumpPrevHunk() {
	if m.hunkIndex == nil || m.projection == nil {
		return
	}
	sourceRow := m.sourceRowAt(m.ScrollY)
	prev := m.hunkIndex.PrevHunk(sourceRow)
	if prev < 0 {
		return
	}
	m.ScrollY = m.projectedIndexForSourceRow(m.Result.Hunks[prev].StartRow)
	m.MarkDirty()
}

// CurrentHunkIndex returns the index of the hunk containing (or nearest
// above) the current viewport position, or -1 if the file has no hunks.
func (m *Model) CurrentHunkIndex() int {
	if m.hunkIndex == nil {
		return -1
	}
	sourceRow := m.sourceRowAt(m.ScrollY)
	if idx := m.hunkIndex.HunkAt(sourceRow); idx >= 0 {
		return idx
	}
	return m.hunkIndex.PrevHunk(sourceRow)
}

// CurrentNewLine returns the new-side line number the viewport is
// currently positioned at, or 0 if no file is open or the row has no
// new-side line (a pure deletion).
func (m *Model) CurrentNewLine() int {
	if m.projection == nil || m.Result == nil {
		return 0
	}
	sourceRow := m.sourceRowAt(m.ScrollY)
	if sourceRow < 0 || sourceRow >= len(m.Result.Rows) {
		return 0
	}
	return m.Result.Rows[sourceRow].NewLine
}

// MarkDirty sets the dirty flag, requesting a redraw.
func (m *Model) MarkDirty() { m.dirty = true }

// ConsumeDirty reports whether the model is dirty and clears the flag.
func (m *Model) ConsumeDirty() bool {
	was := m.dirty
	m.dirty = false
	return was
}

// sourceRowAt returns the DiffResult row index a projected row refers to,
// walking backward over separator rows (which carry no source row).
func (m *Model) sourceRowAt(projectedIndex int) int {
	rows := m.projection.Rows()
	if len(rows) == 0 {
		return 0
	}
	if projectedIndex >= len(rows) {
		projectedIndex = len(rows) - 1
	}
	for i := projectedIndex; i >= 0; i-- {
		if !rows[i].Separator {
			return rows[i].SourceRow
		}
	}
	return 0
}

// projectedIndexForSourceRow finds the projected row index for a given
// source row, falling back to 0 if it isn't present in the current
// projection (e.g. an elided row in hunks-only mode).
func (m *Model) projectedIndexForSourceRow(sourceRow int) int {
	for i, row := range m.projection.Rows() {
		if !row.Separator && row.SourceRow == sourceRow {
			return i
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
