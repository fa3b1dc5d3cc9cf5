package bubbletea

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/fwojciec/quickdiff/highlight"
	"github.com/fwojciec/quickdiff/viewermodel"
)

// minGutterWidth is the minimum width of the line-number column.
const minGutterWidth = 4

// Renderer draws a viewermodel.Model's currently open file, one visible
// row at a time (bubbles/viewport.SetContent would build the whole file's
// string every frame; this only reads and styles the line text of rows on
// screen). The gutter width and the inline-span lookup still scan the whole
// DiffResult's rows and spans on every frame.
type Renderer struct {
	Styles   quickdiff.Styles
	Renderer *lipgloss.Renderer

	gutterWidth int
	scopeCache  map[*diffengine.DiffResult][]diffengine.LineRange
}

// NewRenderer returns a Renderer using styles and, if r is non-nil, a
// custom lipgloss renderer (primarily for forcing color output in tests).
func NewRenderer(styles quickdiff.Styles, r *lipgloss.Renderer) *Renderer {
	return &Renderer{Styles: styles, Renderer: r}
}

// Frame renders the body of m's currently open file for a viewport of the
// given width/height, split into old/new panes per m.PaneMode.
func (rd *Renderer) Frame(m *viewermodel.Model, width, height int) string {
	if m.Result == nil || m.Projection() == nil {
		return ""
	}
	rd.gutterWidth = gutterWidthFor(m.Result)

	rows := m.Projection().Rows()
	top := m.ScrollY
	if top >= len(rows) {
		top = len(rows) - 1
	}
	if top < 0 {
		top = 0
	}

	oldW, newW := paneWidths(width, m.PaneMode)

	var lines []string
	for i := 0; i < height; i++ {
		idx := top + i
		if idx >= len(rows) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, rd.renderLine(m, rows[idx], oldW, newW))
	}

	body := strings.Join(lines, "\n")
	if header := rd.stickyScopeHeader(m, top, oldW, newW); header != "" {
		return header + "\n" + body
	}
	return body
}

func paneWidths(width int, mode viewermodel.PaneMode) (old, new int) {
	switch mode {
	case viewermodel.OldOnly:
		return width, 0
	case viewermodel.NewOnly:
		return 0, width
	default:
		half := width / 2
		return half, width - half
	}
}

func (rd *Renderer) renderLine(m *viewermodel.Model, pr diffengine.ProjectionRow, oldW, newW int) string {
	if pr.Separator {
		return rd.separatorLine(oldW + newW)
	}
	row := m.Result.Rows[pr.SourceRow]

	var old, new string
	if oldW > 0 {
		old = rd.renderSide(m, pr.SourceRow, row, diffengine.OldSide, m.OldCache, m.OldBuf, oldW, m.ScrollX)
	}
	if newW > 0 {
		new = rd.renderSide(m, pr.SourceRow, row, diffengine.NewSide, m.NewCache, m.NewBuf, newW, m.ScrollX)
	}
	return old + new
}

func (rd *Renderer) separatorLine(width int) string {
	return strings.Repeat("┄", width)
}

// renderSide builds one pane's display of row: gutter, diff background,
// syntax foreground, inline emphasis, then control-character
// sanitization, in that layering order.
func (rd *Renderer) renderSide(m *viewermodel.Model, rowIdx int, row diffengine.RenderRow, side diffengine.Side, cache *highlight.Cache, buf *buffer.TextBuffer, width, scrollX int) string {
	lineNum, present := sideLine(row, side)
	gutter := formatGutter(lineNum, rd.gutterWidth, rd.styleFromBackground(rd.backgroundStyle(row, side)))

	if !present {
		return padLine(gutter, width)
	}

	text := ExpandTabs(buf.LineString(lineNum-1), 0)
	text = sanitizeControlChars(text)
	text = scrollClip(text, scrollX, width-lipgloss.Width(gutter))

	bg := rd.backgroundStyle(row, side)
	styled := rd.styleWithSpans(text, lineNumSpans(cache, lineNum), spansForInline(m.Result, rowIdx, side), bg)

	return padLine(gutter+styled, width)
}

func sideLine(row diffengine.RenderRow, side diffengine.Side) (int, bool) {
	if side == diffengine.OldSide {
		return row.OldLine, row.OldLine != 0
	}
	return row.NewLine, row.NewLine != 0
}

func (rd *Renderer) backgroundStyle(row diffengine.RenderRow, side diffengine.Side) quickdiff.ColorPair {
	switch row.Kind {
	case diffengine.Delete:
		return rd.Styles.Deleted
	case diffengine.Insert:
		return rd.Styles.Added
	case diffengine.Replace:
		if side == diffengine.OldSide {
			return rd.Styles.ReplaceOld
		}
		return rd.Styles.ReplaceNew
	default:
		return rd.Styles.Context
	}
}

func (rd *Renderer) styleFromBackground(cp quickdiff.ColorPair) lipgloss.Style {
	return styleFromColorPair(quickdiff.ColorPair{Background: cp.Background, Foreground: rd.Styles.LineNumber.Foreground}, rd.Renderer)
}

func lineNumSpans(cache *highlight.Cache, lineNum int) []highlight.HighlightSpan {
	if cache == nil || lineNum-1 >= len(cache.SpansByLine) || lineNum-1 < 0 {
		return nil
	}
	return cache.SpansByLine[lineNum-1]
}

func spansForInline(result *diffengine.DiffResult, rowIdx int, side diffengine.Side) []diffengine.InlineSpan {
	var out []diffengine.InlineSpan
	for _, sp := range result.Inline {
		if sp.Row == rowIdx && sp.Side == side {
			out = append(out, sp)
		}
	}
	return out
}

// styleWithSpans renders text with per-byte-range syntax spans layered
// under inline-change emphasis spans, on top of bg.
func (rd *Renderer) styleWithSpans(text string, syntax []highlight.HighlightSpan, inline []diffengine.InlineSpan, bg quickdiff.ColorPair) string {
	base := styleFromColorPair(bg, rd.Renderer)
	if len(syntax) == 0 && len(inline) == 0 {
		return base.Render(text)
	}

	var sb strings.Builder
	n := len(text)
	for pos := 0; pos < n; {
		end := n
		for _, sp := range syntax {
			if sp.Start > pos && sp.Start < end {
				end = sp.Start
			}
			if sp.Start <= pos && sp.End > pos && sp.End < end {
				end = sp.End
			}
		}
		for _, sp := range inline {
			if sp.Start > pos && sp.Start < end {
				end = sp.Start
			}
			if sp.Start <= pos && sp.End > pos && sp.End < end {
				end = sp.End
			}
		}
		if end <= pos {
			end = pos + 1
		}
		seg := text[pos:end]
		style := base
		for _, sp := range syntax {
			if sp.Start <= pos && pos < sp.End {
				style = style.Foreground(lipgloss.Color(sp.Style.Foreground))
			}
		}
		for _, sp := range inline {
			if sp.Start <= pos && pos < sp.End {
				if bg.Background == rd.Styles.ReplaceOld.Background || bg.Background == rd.Styles.Deleted.Background {
					style = styleFromColorPair(rd.Styles.DeletedHighlight, rd.Renderer)
				} else {
					style = styleFromColorPair(rd.Styles.AddedHighlight, rd.Renderer)
				}
			}
		}
		sb.WriteString(style.Render(seg))
		pos = end
	}
	return sb.String()
}

// stickyScopeHeader finds the ScopeRange (old side takes precedence,
// matching the rest of the gutter-left layout) whose start is above the
// current viewport top but still encloses it, and renders it as a pinned
// header line.
func (rd *Renderer) stickyScopeHeader(m *viewermodel.Model, topProjected, oldW, newW int) string {
	if m.OldCache == nil && m.NewCache == nil {
		return ""
	}
	rows := m.Projection().Rows()
	if topProjected >= len(rows) || rows[topProjected].Separator {
		return ""
	}
	sourceRow := rows[topProjected].SourceRow
	row := m.Result.Rows[sourceRow]

	scope, text := findEnclosingScope(m.OldCache, row.OldLine)
	if scope == nil {
		scope, text = findEnclosingScope(m.NewCache, row.NewLine)
	}
	if scope == nil {
		return ""
	}

	style := styleFromColorPair(rd.Styles.ScopeHeader, rd.Renderer)
	return style.Render(padLine(" "+text, oldW+newW))
}

func findEnclosingScope(cache *highlight.Cache, lineNum int) (*highlight.ScopeRange, string) {
	if cache == nil || lineNum <= 0 {
		return nil, ""
	}
	line0 := lineNum - 1
	for i := range cache.Scopes {
		s := cache.Scopes[i]
		if s.Start < line0 && line0 < s.End {
			return &cache.Scopes[i], s.Header
		}
	}
	return nil, ""
}

func gutterWidthFor(result *diffengine.DiffResult) int {
	width := minGutterWidth
	for _, r := range result.Rows {
		width = maxInt(width, digitWidth(r.OldLine))
		width = maxInt(width, digitWidth(r.NewLine))
	}
	return width
}

func formatGutter(lineNum, width int, style lipgloss.Style) string {
	return style.Render(formatLineNum(lineNum, width) + " ")
}

// formatLineNum formats a line number for the gutter, right-aligned, with
// an empty field for a missing (zero) line number.
func formatLineNum(num, width int) string {
	if num == 0 {
		return fmt.Sprintf("%*s", width, "")
	}
	return fmt.Sprintf("%*d", width, num)
}

// styleFromColorPair builds a lipgloss style from a ColorPair. A nil
// renderer uses lipgloss's default (used in production); tests pass a
// renderer forced to always emit color so assertions are stable.
func styleFromColorPair(cp quickdiff.ColorPair, renderer *lipgloss.Renderer) lipgloss.Style {
	var style lipgloss.Style
	if renderer != nil {
		style = renderer.NewStyle()
	} else {
		style = lipgloss.NewStyle()
	}
	if cp.Foreground != "" {
		style = style.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		style = style.Background(lipgloss.Color(cp.Background))
	}
	return style
}

// padLine pads line with spaces to width display columns (lipgloss.Width
// is Unicode-scalar aware, not byte-based).
func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth >= width {
		return line
	}
	return line + strings.Repeat(" ", width-lineWidth)
}

func digitWidth(n int) int {
	if n <= 0 {
		return 1
	}
	width := 0
	for n > 0 {
		width++
		n /= 10
	}
	return width
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// sanitizeControlChars replaces bytes in [0x00,0x1F] ∪ {0x7F} with
// U+FFFD so raw file content can never inject terminal control sequences.
func sanitizeControlChars(s string) string {
	needsWork := false
	for i := 0; i < len(s); i++ {
		if isControlByte(s[i]) {
			needsWork = true
			break
		}
	}
	if !needsWork {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isControlByte(s[i]) {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isControlByte(b byte) bool {
	return b <= 0x1F || b == 0x7F
}

// scrollClip drops the first scrollX display columns from text and
// truncates to width columns, operating on Unicode scalars so a
// multi-byte rune is never split.
func scrollClip(text string, scrollX, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	col := 0
	start := 0
	for start < len(runes) && col < scrollX {
		col++
		start++
	}
	var sb strings.Builder
	cols := 0
	for i := start; i < len(runes) && cols < width; i++ {
		sb.WriteRune(runes[i])
		cols++
	}
	return sb.String()
}
