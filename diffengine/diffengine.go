// Package diffengine computes the unified row stream, hunk boundaries, and
// inline change spans for a pair of TextBuffers. It is the core algorithm
// of the diff viewer: everything downstream (the hunk index, view
// projection, highlight cache, and renderer) consumes a *DiffResult.
package diffengine

import (
	"strings"

	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/worddiff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// RowKind is the closed set of row kinds a DiffResult's row stream can
// contain.
type RowKind int

// The closed set of row kinds.
const (
	Equal RowKind = iota
	Delete
	Insert
	Replace
)

func (k RowKind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// RenderRow is one row of the unified diff view. OldLine/NewLine are
// 1-indexed; 0 means the row has no line on that side (Delete rows have no
// NewLine, Insert rows have no OldLine).
type RenderRow struct {
	Kind    RowKind
	OldLine int
	NewLine int
}

// LineRange is an inclusive 0-indexed line range. An empty range (no lines
// on this side) has no valid zero value, since 0 is itself a valid line
// index; use Empty to test for it.
type LineRange struct {
	Start, End int
}

// emptyLineRange is the sentinel Empty reports true for: an inverted range
// no real Start/End pair can ever produce.
var emptyLineRange = LineRange{Start: 0, End: -1}

// Empty reports whether the range contains no lines.
func (r LineRange) Empty() bool { return r.End < r.Start }

// Hunk is a contiguous block of the row stream containing at least one
// non-Equal row, expanded by the requested context and merged with
// neighboring hunks that would otherwise be separated by too little
// unchanged context.
type Hunk struct {
	StartRow int
	RowCount int
	// OldLineRange/NewLineRange cover only the hunk's non-Equal rows, not
	// the context-expanded row window StartRow/RowCount describe.
	OldLineRange LineRange
	NewLineRange LineRange
}

// EndRow returns the exclusive end of the hunk's row range.
func (h Hunk) EndRow() int { return h.StartRow + h.RowCount }

// Side identifies the old or new half of a Replace row.
type Side int

// The two sides a Replace row can carry an inline span on.
const (
	OldSide Side = iota
	NewSide
)

// InlineSpan marks a byte range within a Replace row's old or new line
// content that differs at the word/character level.
type InlineSpan struct {
	Row   int // index into DiffResult.Rows
	Side  Side
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
}

// DiffResult is the immutable output of Compute: the full row stream, the
// hunks within it, and the inline spans for every Replace row.
type DiffResult struct {
	Rows   []RenderRow
	Hunks  []Hunk
	Inline []InlineSpan
}

// DefaultContext is the number of unchanged lines kept around each hunk
// when the caller does not specify one, matching the conventional unified
// diff default.
const DefaultContext = 3

// Compute runs a line-level diff between old and new, pairs adjacent
// delete/insert runs into Replace rows, groups the result into hunks
// (merging hunks separated by at most 2*context unchanged rows), and
// computes inline spans for every Replace row. A negative context falls
// back to DefaultContext; 0 is a valid, explicit request for no context.
func Compute(old, new *buffer.TextBuffer, context int) *DiffResult {
	if context < 0 {
		context = DefaultContext
	}
	if len(old.Content()) == 0 && len(new.Content()) == 0 {
		return &DiffResult{}
	}

	rows := diffRows(old, new)
	rows = pairReplacements(rows)

	return &DiffResult{
		Rows:   rows,
		Hunks:  buildHunks(rows, context),
		Inline: computeInlineSpans(rows, old, new),
	}
}

// diffRows runs sergi/go-diff's line-level diff technique: lines are
// encoded as runes via DiffLinesToRunes so that DiffMainRunes's
// character-level Myers diff operates at line granularity, the same trick
// codalotl's internal/diff package uses.
func diffRows(old, new *buffer.TextBuffer) []RenderRow {
	oldText := strings.Join(old.Lines(), "\n")
	newText := strings.Join(new.Lines(), "\n")

	dmp := diffmatchpatch.New()
	oldRunes, newRunes, _ := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var rows []RenderRow
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		n := len([]rune(d.Text)) // one rune per encoded line
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for i := 0; i < n; i++ {
				rows = append(rows, RenderRow{Kind: Equal, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			}
		case diffmatchpatch.DiffDelete:
			for i := 0; i < n; i++ {
				rows = append(rows, RenderRow{Kind: Delete, OldLine: oldLine})
				oldLine++
			}
		case diffmatchpatch.DiffInsert:
			for i := 0; i < n; i++ {
				rows = append(rows, RenderRow{Kind: Insert, NewLine: newLine})
				newLine++
			}
		}
	}
	return rows
}

// pairReplacements merges each adjacent run of Delete rows followed by a
// run of Insert rows into Replace rows, one per matched (delete, insert)
// pair in order; any leftover delete-only or insert-only rows keep their
// original kind.
func pairReplacements(rows []RenderRow) []RenderRow {
	out := make([]RenderRow, 0, len(rows))
	i := 0
	for i < len(rows) {
		if rows[i].Kind != Delete {
			out = append(out, rows[i])
			i++
			continue
		}

		delStart := i
		for i < len(rows) && rows[i].Kind == Delete {
			i++
		}
		delEnd := i

		insStart := i
		for i < len(rows) && rows[i].Kind == Insert {
			i++
		}
		insEnd := i

		delCount := delEnd - delStart
		insCount := insEnd - insStart
		pairCount := min(delCount, insCount)

		for j := 0; j < pairCount; j++ {
			out = append(out, RenderRow{
				Kind:    Replace,
				OldLine: rows[delStart+j].OldLine,
				NewLine: rows[insStart+j].NewLine,
			})
		}
		for j := pairCount; j < delCount; j++ {
			out = append(out, rows[delStart+j])
		}
		for j := pairCount; j < insCount; j++ {
			out = append(out, rows[insStart+j])
		}
	}
	return out
}

// buildHunks groups non-Equal rows into context-expanded, gap-merged
// hunks.
func buildHunks(rows []RenderRow, context int) []Hunk {
	type span struct{ start, end int }

	var changeRuns []span
	i := 0
	for i < len(rows) {
		if rows[i].Kind == Equal {
			i++
			continue
		}
		start := i
		for i < len(rows) && rows[i].Kind != Equal {
			i++
		}
		changeRuns = append(changeRuns, span{start, i})
	}
	if len(changeRuns) == 0 {
		return nil
	}

	expanded := make([]span, len(changeRuns))
	for i, r := range changeRuns {
		expanded[i] = span{
			start: max(0, r.start-context),
			end:   min(len(rows), r.end+context),
		}
	}

	merged := []span{expanded[0]}
	for _, s := range expanded[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			last.end = max(last.end, s.end)
			continue
		}
		merged = append(merged, s)
	}

	hunks := make([]Hunk, 0, len(merged))
	for _, m := range merged {
		h := Hunk{StartRow: m.start, RowCount: m.end - m.start}
		h.OldLineRange, h.NewLineRange = lineRangeOf(rows[m.start:m.end])
		hunks = append(hunks, h)
	}
	return hunks
}

// lineRangeOf returns the 0-indexed line range spanned by rows' non-Equal
// entries only, on each side independently: the range of the change
// itself, not the context window a hunk expands it into.
func lineRangeOf(rows []RenderRow) (oldR, newR LineRange) {
	oldR, newR = emptyLineRange, emptyLineRange
	for _, r := range rows {
		if r.Kind == Equal {
			continue
		}
		if r.OldLine != 0 {
			line := r.OldLine - 1
			if oldR.Empty() || line < oldR.Start {
				oldR.Start = line
			}
			if line > oldR.End {
				oldR.End = line
			}
		}
		if r.NewLine != 0 {
			line := r.NewLine - 1
			if newR.Empty() || line < newR.Start {
				newR.Start = line
			}
			if line > newR.End {
				newR.End = line
			}
		}
	}
	return oldR, newR
}

// computeInlineSpans runs worddiff's byte-range diff on every Replace
// row's old/new line text.
func computeInlineSpans(rows []RenderRow, old, new *buffer.TextBuffer) []InlineSpan {
	var spans []InlineSpan
	for i, r := range rows {
		if r.Kind != Replace {
			continue
		}
		oldText := old.LineString(r.OldLine - 1)
		newText := new.LineString(r.NewLine - 1)
		oldSpans, newSpans := worddiff.ByteSpans(oldText, newText)
		for _, s := range oldSpans {
			spans = append(spans, InlineSpan{Row: i, Side: OldSide, Start: s.Start, End: s.End})
		}
		for _, s := range newSpans {
			spans = append(spans, InlineSpan{Row: i, Side: NewSide, Start: s.Start, End: s.End})
		}
	}
	return spans
}
