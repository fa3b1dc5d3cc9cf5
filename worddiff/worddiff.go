// Package worddiff computes the byte ranges that changed between two line
// strings, for rendering inline (word-level) highlighting within a
// replaced line.
package worddiff

import "github.com/sergi/go-diff/diffmatchpatch"

// Span is a half-open byte range, relative to the start of the string it
// was computed against.
type Span struct {
	Start, End int
}

// maxSandwichedEqualLen is the longest run of unchanged bytes that gets
// swallowed into the surrounding changed spans rather than splitting them
// in two. A one- or two-character shared word between two otherwise
// different clauses reads as noise, not signal.
const maxSandwichedEqualLen = 8

var dmp = diffmatchpatch.New()

// ByteSpans runs a character-level diff between old and new and returns,
// for each side, the byte ranges that differ. Short runs of unchanged
// bytes between two changed runs are merged into a single span, so two
// changes a few unchanged bytes apart highlight as one span rather than
// two. A shared prefix or suffix is never part of a span: "foo(bar)" vs
// "foo(baz)" highlights only "r" / "z".
func ByteSpans(old, new string) (oldSpans, newSpans []Span) {
	if old == "" && new == "" {
		return nil, nil
	}
	if old == "" {
		return nil, []Span{{0, len(new)}}
	}
	if new == "" {
		return []Span{{0, len(old)}}, nil
	}

	diffs := dmp.DiffMain(old, new, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	oldSpans = changedSpans(diffs, diffmatchpatch.DiffDelete)
	newSpans = changedSpans(diffs, diffmatchpatch.DiffInsert)
	return oldSpans, newSpans
}

type segment struct {
	start, end int
	changed    bool
}

// changedSpans projects diffs onto one side (keepOp selects which
// operation represents "this text exists and changed" for that side:
// DiffDelete for the old string, DiffInsert for the new one), then merges
// short sandwiched equal runs into the spans on either side of them.
func changedSpans(diffs []diffmatchpatch.Diff, keepOp diffmatchpatch.Operation) []Span {
	segs := buildSegments(diffs, keepOp)
	segs = mergeSandwiched(segs)
	segs = coalesceAdjacentChanged(segs)

	var spans []Span
	for _, s := range segs {
		if s.changed {
			spans = append(spans, Span{Start: s.start, End: s.end})
		}
	}
	return spans
}

func buildSegments(diffs []diffmatchpatch.Diff, keepOp diffmatchpatch.Operation) []segment {
	var segs []segment
	pos := 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segs = append(segs, segment{start: pos, end: pos + len(d.Text)})
			pos += len(d.Text)
		case keepOp:
			segs = append(segs, segment{start: pos, end: pos + len(d.Text), changed: true})
			pos += len(d.Text)
		default:
			// The other operation doesn't exist on this side; it
			// contributes no bytes and no segment.
		}
	}
	return segs
}

func mergeSandwiched(segs []segment) []segment {
	for {
		out := make([]segment, 0, len(segs))
		merged := false
		i := 0
		for i < len(segs) {
			if i+2 < len(segs) &&
				segs[i].changed && !segs[i+1].changed && segs[i+2].changed &&
				segs[i+1].end-segs[i+1].start <= maxSandwichedEqualLen {
				out = append(out, segment{start: segs[i].start, end: segs[i+2].end, changed: true})
				i += 3
				merged = true
				continue
			}
			out = append(out, segs[i])
			i++
		}
		segs = out
		if !merged {
			return segs
		}
	}
}

func coalesceAdjacentChanged(segs []segment) []segment {
	out := make([]segment, 0, len(segs))
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].changed && s.changed && out[n-1].end == s.start {
			out[n-1].end = s.end
			continue
		}
		out = append(out, s)
	}
	return out
}
