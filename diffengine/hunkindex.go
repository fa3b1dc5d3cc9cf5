package diffengine

import "sort"

// HunkIndex answers next/prev/containing-hunk queries over a DiffResult's
// Hunks slice in O(log N) by binary search, since Hunks is always sorted by
// StartRow.
type HunkIndex struct {
	hunks []Hunk
}

// NewHunkIndex builds a HunkIndex over hunks, which must already be sorted
// by StartRow (true of any Hunks slice produced by Compute).
func NewHunkIndex(hunks []Hunk) *HunkIndex {
	return &HunkIndex{hunks: hunks}
}

// Len returns the number of hunks.
func (h *HunkIndex) Len() int { return len(h.hunks) }

// At returns the i'th hunk.
func (h *HunkIndex) At(i int) Hunk { return h.hunks[i] }

// HunkAt returns the index of the hunk containing row, or -1 if row falls
// between hunks.
func (h *HunkIndex) HunkAt(row int) int {
	i := sort.Search(len(h.hunks), func(i int) bool {
		return h.hunks[i].EndRow() > row
	})
	if i < len(h.hunks) && h.hunks[i].StartRow <= row {
		return i
	}
	return -1
}

// NextHunk returns the index of the first hunk whose StartRow is strictly
// greater than row, or -1 if none.
func (h *HunkIndex) NextHunk(row int) int {
	i := sort.Search(len(h.hunks), func(i int) bool {
		return h.hunks[i].StartRow > row
	})
	if i < len(h.hunks) {
		return i
	}
	return -1
}

// PrevHunk returns the index of the last hunk whose StartRow is strictly
// less than row, or -1 if none.
func (h *HunkIndex) PrevHunk(row int) int {
	i := sort.Search(len(h.hunks), func(i int) bool {
		return h.hunks[i].StartRow >= row
	})
	i--
	if i >= 0 {
		return i
	}
	return -1
}
