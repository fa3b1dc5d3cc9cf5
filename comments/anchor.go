// Package comments implements hunk-anchored review comments: a digest-based
// selector that locates a hunk again after the diff has been recomputed
// against drifted content, and JSON persistence for the comment set.
package comments

import (
	"fmt"
	"hash/fnv"

	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
)

// SelectorKind is the closed set of anchor selector kinds. Only one exists
// today; the field exists so a future selector shape can be added without
// breaking the persisted format.
type SelectorKind string

// DiffHunkV1 is the only selector kind quickdiff currently produces.
const DiffHunkV1 SelectorKind = "DiffHunkV1"

// AnchorSelector locates a hunk by the content digest of its changed rows,
// with its line ranges kept alongside for the overlap fallback.
type AnchorSelector struct {
	Kind         SelectorKind
	OldLineRange diffengine.LineRange
	NewLineRange diffengine.LineRange
	DigestHex    string
}

// Anchor holds the selectors for one comment. v1 always produces exactly
// one selector; the slice shape leaves room for future selector kinds to
// be layered on without a format migration.
type Anchor struct {
	Selectors []AnchorSelector
}

// SelectorFromHunk builds the v1 selector for hunk hunkIdx of result. old
// and new are the buffers result was computed from; the digest is taken
// over the hunk's changed line *content*, not its line numbers, so a
// comment's anchor survives unrelated line insertions/deletions elsewhere
// in the file shifting this hunk's position.
func SelectorFromHunk(result *diffengine.DiffResult, hunkIdx int, old, new *buffer.TextBuffer) AnchorSelector {
	hunk := result.Hunks[hunkIdx]
	rows := result.Rows[hunk.StartRow:hunk.EndRow()]
	return AnchorSelector{
		Kind:         DiffHunkV1,
		OldLineRange: hunk.OldLineRange,
		NewLineRange: hunk.NewLineRange,
		DigestHex:    digest(rows, old, new),
	}
}

// digest computes the FNV-1a 64-bit hex digest of a hunk's changed rows:
// for each row in order, Delete/Replace rows feed "-" + the row's old line
// content + "\n", and Insert/Replace rows feed "+" + the row's new line
// content + "\n"; Equal rows contribute nothing.
func digest(rows []diffengine.RenderRow, old, new *buffer.TextBuffer) string {
	h := fnv.New64a()
	for _, r := range rows {
		switch r.Kind {
		case diffengine.Delete:
			fmt.Fprintf(h, "-%s\n", old.LineString(r.OldLine-1))
		case diffengine.Insert:
			fmt.Fprintf(h, "+%s\n", new.LineString(r.NewLine-1))
		case diffengine.Replace:
			fmt.Fprintf(h, "-%s\n", old.LineString(r.OldLine-1))
			fmt.Fprintf(h, "+%s\n", new.LineString(r.NewLine-1))
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Find locates the hunk an anchor refers to in result, which was computed
// from old and new: first by exact digest match across the anchor's
// selectors, then by the hunk whose line ranges overlap the stored ranges
// the most, accepted only when that overlap reaches 50% on either side.
// Returns -1 if neither succeeds, in which case the comment should be
// displayed as detached rather than deleted.
func Find(result *diffengine.DiffResult, anchor Anchor, old, new *buffer.TextBuffer) int {
	for _, sel := range anchor.Selectors {
		if idx := findByDigest(result, sel, old, new); idx >= 0 {
			return idx
		}
	}
	for _, sel := range anchor.Selectors {
		if idx := findByOverlap(result, sel); idx >= 0 {
			return idx
		}
	}
	return -1
}

func findByDigest(result *diffengine.DiffResult, sel AnchorSelector, old, new *buffer.TextBuffer) int {
	for i, hunk := range result.Hunks {
		rows := result.Rows[hunk.StartRow:hunk.EndRow()]
		if digest(rows, old, new) == sel.DigestHex {
			return i
		}
	}
	return -1
}

func findByOverlap(result *diffengine.DiffResult, sel AnchorSelector) int {
	best := -1
	bestOverlap := 0.0
	for i, hunk := range result.Hunks {
		overlap := rangeOverlapFraction(sel.OldLineRange, hunk.OldLineRange)
		if o := rangeOverlapFraction(sel.NewLineRange, hunk.NewLineRange); o > overlap {
			overlap = o
		}
		if overlap >= 0.5 && overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	return best
}

// rangeOverlapFraction returns the fraction of a covered by its
// intersection with b, relative to a's own length. Returns 0 if either
// range is empty.
func rangeOverlapFraction(a, b diffengine.LineRange) float64 {
	if a.Empty() || b.Empty() {
		return 0
	}
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if end < start {
		return 0
	}
	overlapLen := float64(end - start + 1)
	aLen := float64(a.End - a.Start + 1)
	return overlapLen / aLen
}
