package diffengine

// ViewMode selects which rows ViewProjection exposes.
type ViewMode int

// The two view modes a viewer can be in.
const (
	FullView ViewMode = iota
	HunksOnlyView
)

// ProjectionRow is one row of a ViewProjection's row stream. SourceRow
// indexes into the underlying DiffResult.Rows; Separator rows carry no
// SourceRow (it is left at -1) and mark a gap elided by HunksOnlyView.
type ProjectionRow struct {
	SourceRow int
	Separator bool
}

// ViewProjection presents a DiffResult's row stream either in full or
// collapsed to just its hunks (with a separator marker between
// non-adjacent hunks), and lets a mode toggle preserve which hunk was
// first visible before the switch.
type ViewProjection struct {
	result *DiffResult
	mode   ViewMode
	rows   []ProjectionRow
}

// NewViewProjection builds a ViewProjection over result in the given mode.
func NewViewProjection(result *DiffResult, mode ViewMode) *ViewProjection {
	vp := &ViewProjection{result: result, mode: mode}
	vp.rebuild()
	return vp
}

// Mode returns the projection's current view mode.
func (vp *ViewProjection) Mode() ViewMode { return vp.mode }

// Rows returns the current projected row stream.
func (vp *ViewProjection) Rows() []ProjectionRow { return vp.rows }

// Len returns the number of projected rows.
func (vp *ViewProjection) Len() int { return len(vp.rows) }

func (vp *ViewProjection) rebuild() {
	if vp.mode == FullView {
		rows := make([]ProjectionRow, len(vp.result.Rows))
		for i := range rows {
			rows[i] = ProjectionRow{SourceRow: i}
		}
		vp.rows = rows
		return
	}

	var rows []ProjectionRow
	for _, h := range vp.result.Hunks {
		if len(rows) > 0 {
			rows = append(rows, ProjectionRow{SourceRow: -1, Separator: true})
		}
		for r := h.StartRow; r < h.EndRow(); r++ {
			rows = append(rows, ProjectionRow{SourceRow: r})
		}
	}
	vp.rows = rows
}

// SetMode switches the projection to mode. firstVisibleSourceRow is the
// source row index of whatever row was at the top of the viewport before
// the switch; SetMode locates the hunk containing (or nearest to) that
// row and returns the projected-row index of that hunk's first row under
// the new mode, so the caller can reposition its scroll offset to keep the
// same hunk in view across the toggle.
func (vp *ViewProjection) SetMode(mode ViewMode, firstVisibleSourceRow int) (projectedIndex int) {
	hunkIdx := hunkContaining(vp.result.Hunks, firstVisibleSourceRow)

	vp.mode = mode
	vp.rebuild()

	if hunkIdx < 0 {
		return 0
	}

	targetSourceRow := vp.result.Hunks[hunkIdx].StartRow
	for i, pr := range vp.rows {
		if !pr.Separator && pr.SourceRow == targetSourceRow {
			return i
		}
	}
	return 0
}

// hunkContaining returns the index of the hunk containing row, or, if row
// falls in an unchanged gap, the nearest hunk at or after row (the last
// hunk when row lies past every hunk); it returns -1 only when hunks is
// empty.
func hunkContaining(hunks []Hunk, row int) int {
	for i, h := range hunks {
		if row >= h.StartRow && row < h.EndRow() {
			return i
		}
	}
	for i, h := range hunks {
		if h.StartRow >= row {
			return i
		}
	}
	if len(hunks) > 0 {
		return len(hunks) - 1
	}
	return -1
}
