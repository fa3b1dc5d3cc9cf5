package diffengine_test

import (
	"testing"

	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowKinds(rows []diffengine.RenderRow) []diffengine.RowKind {
	out := make([]diffengine.RowKind, len(rows))
	for i, r := range rows {
		out[i] = r.Kind
	}
	return out
}

func TestComputeIdenticalBuffersAreAllEqual(t *testing.T) {
	t.Parallel()

	old := buffer.New([]byte("one\ntwo\nthree\n"))
	new := buffer.New([]byte("one\ntwo\nthree\n"))

	result := diffengine.Compute(old, new, 3)

	require.Len(t, result.Rows, 3)
	for _, r := range result.Rows {
		assert.Equal(t, diffengine.Equal, r.Kind)
	}
	assert.Empty(t, result.Hunks)
	assert.Empty(t, result.Inline)
}

func TestComputePureInsertion(t *testing.T) {
	t.Parallel()

	old := buffer.New([]byte("a\nb\n"))
	new := buffer.New([]byte("a\nx\nb\n"))

	result := diffengine.Compute(old, new, 3)

	kinds := rowKinds(result.Rows)
	assert.Equal(t, []diffengine.RowKind{diffengine.Equal, diffengine.Insert, diffengine.Equal}, kinds)
	require.Len(t, result.Hunks, 1)
}

func TestComputeSameLineCountChangeIsReplace(t *testing.T) {
	t.Parallel()

	old := buffer.New([]byte("hello world\n"))
	new := buffer.New([]byte("hello universe\n"))

	result := diffengine.Compute(old, new, 3)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, diffengine.Replace, result.Rows[0].Kind)
	assert.Equal(t, 1, result.Rows[0].OldLine)
	assert.Equal(t, 1, result.Rows[0].NewLine)

	require.Len(t, result.Inline, 2)
}

func TestComputeUnequalRunLengthLeavesLeftovers(t *testing.T) {
	t.Parallel()

	// Two deleted lines, one inserted line: one Replace pair, one leftover
	// Delete.
	old := buffer.New([]byte("a\nb\nc\n"))
	new := buffer.New([]byte("x\nc\n"))

	result := diffengine.Compute(old, new, 3)

	kinds := rowKinds(result.Rows)
	assert.Equal(t, []diffengine.RowKind{diffengine.Replace, diffengine.Delete, diffengine.Equal}, kinds)
}

func TestComputeHunksMergeWhenGapSmallerThanTwiceContext(t *testing.T) {
	t.Parallel()

	// Two single-line changes separated by exactly 2 equal lines, with
	// context=3: each change expands 3 lines into the gap so the expanded
	// spans overlap and must merge into one hunk.
	oldLines := "a\nb\nchange1\nc\nd\nchange2\ne\nf\n"
	newLines := "a\nb\nCHANGE1\nc\nd\nCHANGE2\ne\nf\n"
	old := buffer.New([]byte(oldLines))
	new := buffer.New([]byte(newLines))

	result := diffengine.Compute(old, new, 3)

	require.Len(t, result.Hunks, 1)
}

func TestComputeHunksStaySeparateWhenGapLarge(t *testing.T) {
	t.Parallel()

	oldLines := "change1\n" + repeatLine("eq", 20) + "change2\n"
	newLines := "CHANGE1\n" + repeatLine("eq", 20) + "CHANGE2\n"
	old := buffer.New([]byte(oldLines))
	new := buffer.New([]byte(newLines))

	result := diffengine.Compute(old, new, 3)

	require.Len(t, result.Hunks, 2)
}

func repeatLine(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s + "\n"
	}
	return out
}

func TestComputeHunkLineRanges(t *testing.T) {
	t.Parallel()

	old := buffer.New([]byte("a\nb\nc\nd\ne\n"))
	new := buffer.New([]byte("a\nb\nX\nd\ne\n"))

	result := diffengine.Compute(old, new, 1)

	require.Len(t, result.Hunks, 1)
	h := result.Hunks[0]
	assert.Equal(t, diffengine.LineRange{Start: 2, End: 2}, h.OldLineRange)
	assert.Equal(t, diffengine.LineRange{Start: 2, End: 2}, h.NewLineRange)
}

func TestComputeEmptyBuffers(t *testing.T) {
	t.Parallel()

	old := buffer.New(nil)
	new := buffer.New(nil)

	result := diffengine.Compute(old, new, 3)

	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Hunks)
}
