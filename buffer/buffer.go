// Package buffer implements TextBuffer, the immutable in-memory
// representation of one side of a diff: raw bytes plus the line-start
// offsets the rest of the core walks to avoid re-scanning content on every
// frame.
package buffer

import "bytes"

// sniffWindow is the number of leading bytes inspected for a NUL byte when
// classifying content as binary, matching git's own heuristic window.
const sniffWindow = 8192

// TextBuffer holds normalized file content and the byte offset where each
// line begins. Line numbers taken by the package's methods are 0-indexed;
// lineStarts is always non-empty and lineStarts[0] == 0.
type TextBuffer struct {
	content    []byte
	lineStarts []int
	isBinary   bool
}

// New builds a TextBuffer from raw file bytes. CRLF sequences are
// normalized to LF before line starts are computed, so all downstream
// components see a single line-ending convention. A NUL byte anywhere in
// the first 8KiB marks the buffer binary; binary buffers keep their raw
// content but callers should not attempt to diff or render them as text.
func New(raw []byte) *TextBuffer {
	window := raw
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}
	isBinary := bytes.IndexByte(window, 0) >= 0

	content := raw
	if !isBinary {
		content = normalizeCRLF(raw)
	}

	return &TextBuffer{
		content:    content,
		lineStarts: computeLineStarts(content),
		isBinary:   isBinary,
	}
}

func normalizeCRLF(b []byte) []byte {
	if bytes.IndexByte(b, '\r') < 0 {
		return b
	}
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

func computeLineStarts(content []byte) []int {
	starts := []int{0}
	for i, b := range content {
		if b == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Content returns the buffer's normalized bytes. Callers must not mutate
// the returned slice.
func (b *TextBuffer) Content() []byte { return b.content }

// IsBinary reports whether a NUL byte was found in the first 8KiB of the
// original content.
func (b *TextBuffer) IsBinary() bool { return b.isBinary }

// LineCount returns the number of lines in the buffer. An empty buffer has
// exactly one (empty) line, matching how a trailing newline is not treated
// as introducing a further blank line.
func (b *TextBuffer) LineCount() int { return len(b.lineStarts) }

// LineByteRange returns the half-open [start, end) byte range of the given
// 0-indexed line, excluding its trailing newline.
func (b *TextBuffer) LineByteRange(line int) (start, end int) {
	start = b.lineStarts[line]
	if line+1 < len(b.lineStarts) {
		end = b.lineStarts[line+1] - 1 // exclude the newline
	} else {
		end = len(b.content)
	}
	if end < start {
		end = start
	}
	return start, end
}

// Line returns the 0-indexed line's content, excluding its trailing
// newline.
func (b *TextBuffer) Line(line int) []byte {
	start, end := b.LineByteRange(line)
	return b.content[start:end]
}

// LineString returns Line(line) converted to a string.
func (b *TextBuffer) LineString(line int) string {
	return string(b.Line(line))
}

// Lines returns every line as a string slice. Intended for feeding a
// line-oriented diff algorithm, not for hot-path rendering.
func (b *TextBuffer) Lines() []string {
	out := make([]string, b.LineCount())
	for i := range out {
		out[i] = b.LineString(i)
	}
	return out
}
