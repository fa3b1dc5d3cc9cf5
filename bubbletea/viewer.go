// Package bubbletea provides a terminal UI viewer for diffs using the Bubble Tea framework.
package bubbletea

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/comments"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/fwojciec/quickdiff/diffworker"
	"github.com/fwojciec/quickdiff/highlight"
	"github.com/fwojciec/quickdiff/reviewstate"
	"github.com/fwojciec/quickdiff/viewermodel"
)

// mode is the AppLoop's own modal state, layered above viewermodel.Model's
// navigation state. File selection lives here (not in viewermodel) because
// it is a concern of this package's UI, not of the core viewer state
// machine: the abstract key bindings name only "open fuzzy filter (/)" as
// a way to move between files, so filtering is the one path between them.
type mode int

const (
	modeNormal mode = iota
	modeFuzzyFilter
	modeCommentInput
	modeCommentsOverlay
)

// Viewer wires a viewermodel.Model, a Renderer, a diffworker.Worker, the
// comment/review stores, and the collaborator interfaces (Watcher,
// Clipboard, EditorLauncher) into a runnable Bubble Tea program. It
// implements quickdiff.Viewer.
type Viewer struct {
	Theme        quickdiff.Theme
	Highlighter  *highlight.Builder
	ContextLines int
	RepoRoot     string
	Comments     *comments.Store
	ReviewState  *reviewstate.Store
	Watcher      quickdiff.Watcher
	Clipboard    quickdiff.Clipboard
	Editor       quickdiff.EditorLauncher

	programOpts []tea.ProgramOption
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithProgramOptions adds additional tea.ProgramOption to the viewer.
// This is primarily useful for testing.
func WithProgramOptions(opts ...tea.ProgramOption) ViewerOption {
	return func(v *Viewer) {
		v.programOpts = append(v.programOpts, opts...)
	}
}

// NewViewer creates a Viewer. theme, highlighter, repoRoot, commentStore,
// and reviewStore are required; watcher, clipboard, and editor may be nil
// (the corresponding features are then disabled).
func NewViewer(theme quickdiff.Theme, highlighter *highlight.Builder, contextLines int, repoRoot string, commentStore *comments.Store, reviewStore *reviewstate.Store, watcher quickdiff.Watcher, clipboard quickdiff.Clipboard, editor quickdiff.EditorLauncher, opts ...ViewerOption) *Viewer {
	v := &Viewer{
		Theme:        theme,
		Highlighter:  highlighter,
		ContextLines: contextLines,
		RepoRoot:     repoRoot,
		Comments:     commentStore,
		ReviewState:  reviewStore,
		Watcher:      watcher,
		Clipboard:    clipboard,
		Editor:       editor,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View displays files and blocks until the user quits.
func (v *Viewer) View(ctx context.Context, files []quickdiff.ChangedFile, blobs quickdiff.BlobSource) error {
	worker := diffworker.New(blobs, v.Highlighter, v.ContextLines)
	defer worker.Close()
	if v.Watcher != nil {
		defer v.Watcher.Close()
	}

	m := newAppModel(v, files, worker)

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	opts = append(opts, v.programOpts...)
	p := tea.NewProgram(m, opts...)
	_, err := p.Run()
	return err
}

// fileEntry tracks one changed file plus its viewed status, refreshed
// from ReviewState at startup.
type fileEntry struct {
	quickdiff.ChangedFile
	viewed bool
}

// appModel is the root tea.Model. It owns file selection and modal state;
// navigation and viewport state within the open file belong to
// viewermodel.Model, and frame drawing to Renderer.
type appModel struct {
	v        *Viewer
	files    []fileEntry
	selected int

	worker    *diffworker.Worker
	lastReqID string
	model     *viewermodel.Model
	renderer  *Renderer
	keys      KeyMap
	width     int
	height    int
	statusMsg string
	loadErr   error

	mode mode

	filterInput textinput.Model
	filtered    []int // indices into files matching the current filter

	commentInput textinput.Model
}

func newAppModel(v *Viewer, files []quickdiff.ChangedFile, worker *diffworker.Worker) *appModel {
	entries := make([]fileEntry, len(files))
	for i, f := range files {
		entries[i] = fileEntry{ChangedFile: f}
	}
	repo, err := reviewstate.CanonicalRepoRoot(v.RepoRoot)
	if err == nil && v.ReviewState != nil {
		for i := range entries {
			entries[i].viewed = v.ReviewState.IsViewed(repo, entries[i].Path)
		}
	}

	fi := textinput.New()
	fi.Placeholder = "filter files"
	ci := textinput.New()
	ci.Placeholder = "comment"

	styles := v.Theme.Styles()
	m := &appModel{
		v:            v,
		files:        entries,
		worker:       worker,
		model:        viewermodel.New(),
		renderer:     NewRenderer(styles, nil),
		keys:         DefaultKeyMap(),
		filterInput:  fi,
		commentInput: ci,
	}
	return m
}

func (m *appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.openSelected(), waitForResponse(m.worker)}
	if m.v.Watcher != nil {
		cmds = append(cmds, waitForWatch(m.v.Watcher))
	}
	return tea.Batch(cmds...)
}

// responseMsg wraps a diffworker.Response for the Bubble Tea event loop.
type responseMsg diffworker.Response

// watchMsg signals a filesystem change was observed.
type watchMsg struct{}

func waitForResponse(w *diffworker.Worker) tea.Cmd {
	return func() tea.Msg {
		resp, ok := <-w.Responses()
		if !ok {
			return nil
		}
		return responseMsg(resp)
	}
}

func waitForWatch(w quickdiff.Watcher) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-w.Events()
		if !ok {
			return nil
		}
		return watchMsg{}
	}
}

// openSelected asks the worker to load and diff the currently selected
// file, discarding any in-flight request for a different file.
func (m *appModel) openSelected() tea.Cmd {
	if m.selected < 0 || m.selected >= len(m.files) {
		return nil
	}
	req := diffworker.Request{ID: diffworker.NewRequestID(), Path: m.files[m.selected].Path}
	m.lastReqID = req.ID
	m.worker.Submit(req)
	return nil
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case responseMsg:
		cmd := m.handleResponse(diffworker.Response(msg))
		return m, tea.Batch(cmd, waitForResponse(m.worker))

	case watchMsg:
		m.statusMsg = "files changed on disk; reload with the file filter"
		return m, waitForWatch(m.v.Watcher)

	case editorFinishedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("editor: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *appModel) handleResponse(resp diffworker.Response) tea.Cmd {
	if resp.ID != m.lastReqID {
		return nil // superseded by a newer request
	}
	if resp.Err != nil {
		m.loadErr = resp.Err
		return nil
	}
	m.loadErr = nil
	m.model.OpenFile(resp.DiffResult, resp.OldCache, resp.NewCache, resp.OldBuffer, resp.NewBuffer)
	return nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeFuzzyFilter:
		return m.handleFilterKey(msg)
	case modeCommentInput:
		return m.handleCommentKey(msg)
	case modeCommentsOverlay:
		if key.Matches(msg, m.keys.ShowComments) || key.Matches(msg, m.keys.Quit) {
			m.mode = modeNormal
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.model.Scroll(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.model.Scroll(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.model.Scroll(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.model.Scroll(0, 1)
	case key.Matches(msg, m.keys.NextHunk):
		m.model.JumpNextHunk()
	case key.Matches(msg, m.keys.PrevHunk):
		m.model.JumpPrevHunk()
	case key.Matches(msg, m.keys.ToggleHunksOnly):
		m.model.ToggleViewMode()
	case key.Matches(msg, m.keys.FullscreenOld):
		m.model.TogglePane(viewermodel.OldSide)
	case key.Matches(msg, m.keys.FullscreenNew):
		m.model.TogglePane(viewermodel.NewSide)
	case key.Matches(msg, m.keys.ToggleFocus):
		m.model.ToggleFocus()
	case key.Matches(msg, m.keys.FocusOld):
		m.model.Focus = viewermodel.OldSide
		m.model.MarkDirty()
	case key.Matches(msg, m.keys.FocusNew):
		m.model.Focus = viewermodel.NewSide
		m.model.MarkDirty()
	case key.Matches(msg, m.keys.GotoTop):
		m.model.Scroll(-(1 << 30), 0)
	case key.Matches(msg, m.keys.GotoBottom):
		m.model.Scroll(1<<30, 0)
	case key.Matches(msg, m.keys.FuzzyFilter):
		m.enterFilter()
	case key.Matches(msg, m.keys.ToggleViewed):
		m.toggleViewed()
	case key.Matches(msg, m.keys.AddComment):
		m.enterCommentInput()
	case key.Matches(msg, m.keys.ShowComments):
		m.mode = modeCommentsOverlay
	case key.Matches(msg, m.keys.OpenEditor):
		return m, m.openInEditor()
	case key.Matches(msg, m.keys.Yank):
		m.yankHunk()
	}
	return m, nil
}

// commandEditor is the richer capability bubbletea needs from an
// EditorLauncher to suspend/restore the terminal around the editor
// process via tea.ExecProcess, which requires the raw *exec.Cmd rather
// than the blocking quickdiff.EditorLauncher.Open call.
type commandEditor interface {
	Command(path string, line int) *exec.Cmd
}

// editorFinishedMsg reports the outcome of a suspended editor session.
type editorFinishedMsg struct{ err error }

func (m *appModel) openInEditor() tea.Cmd {
	if m.v.Editor == nil || m.selected < 0 || m.selected >= len(m.files) {
		return nil
	}
	ce, ok := m.v.Editor.(commandEditor)
	if !ok {
		return nil
	}
	path := filepath.Join(m.v.RepoRoot, m.files[m.selected].Path)
	cmd := ce.Command(path, m.model.CurrentNewLine())
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

func (m *appModel) yankHunk() {
	if m.v.Clipboard == nil || m.model.Result == nil {
		return
	}
	hunkIdx := m.model.CurrentHunkIndex()
	if hunkIdx < 0 || hunkIdx >= len(m.model.Result.Hunks) {
		return
	}
	text := hunkText(m.model.Result, hunkIdx, m.model.OldBuf, m.model.NewBuf)
	if err := m.v.Clipboard.Copy(text); err != nil {
		m.statusMsg = fmt.Sprintf("yank failed: %v", err)
		return
	}
	m.statusMsg = "yanked hunk"
}

// hunkText renders one hunk's changed rows as unified-diff-style lines
// (+/-/space prefix), the form a reviewer would paste into a commit
// message or chat.
func hunkText(result *diffengine.DiffResult, hunkIdx int, old, new *buffer.TextBuffer) string {
	hunk := result.Hunks[hunkIdx]
	var b strings.Builder
	for _, row := range result.Rows[hunk.StartRow:hunk.EndRow()] {
		switch row.Kind {
		case diffengine.Equal:
			b.WriteString("  ")
			b.WriteString(old.LineString(row.OldLine - 1))
		case diffengine.Delete:
			b.WriteString("- ")
			b.WriteString(old.LineString(row.OldLine - 1))
		case diffengine.Insert:
			b.WriteString("+ ")
			b.WriteString(new.LineString(row.NewLine - 1))
		case diffengine.Replace:
			b.WriteString("- ")
			b.WriteString(old.LineString(row.OldLine - 1))
			b.WriteString("\n+ ")
			b.WriteString(new.LineString(row.NewLine - 1))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m *appModel) toggleViewed() {
	if m.selected < 0 || m.selected >= len(m.files) {
		return
	}
	repo, err := reviewstate.CanonicalRepoRoot(m.v.RepoRoot)
	if err != nil || m.v.ReviewState == nil {
		return
	}
	path := m.files[m.selected].Path
	entry := &m.files[m.selected]
	if entry.viewed {
		entry.viewed = false
		m.v.ReviewState.Unmark(repo, path)
	} else {
		entry.viewed = true
		m.v.ReviewState.MarkViewed(repo, path)
	}
	m.v.ReviewState.SetLastSelected(repo, path)
	_ = m.v.ReviewState.Save()

	if next := m.nextUnviewed(); next >= 0 {
		m.selected = next
		m.openSelected()
	}
}

func (m *appModel) nextUnviewed() int {
	for i := m.selected + 1; i < len(m.files); i++ {
		if !m.files[i].viewed {
			return i
		}
	}
	for i := 0; i < m.selected; i++ {
		if !m.files[i].viewed {
			return i
		}
	}
	return -1
}

func (m *appModel) enterFilter() {
	m.mode = modeFuzzyFilter
	m.filterInput.SetValue("")
	m.filterInput.Focus()
	m.refilter()
}

func (m *appModel) refilter() {
	q := strings.ToLower(m.filterInput.Value())
	m.filtered = m.filtered[:0]
	for i, f := range m.files {
		if q == "" || strings.Contains(strings.ToLower(f.Path), q) {
			m.filtered = append(m.filtered, i)
		}
	}
}

func (m *appModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		return m, nil
	case tea.KeyEnter:
		if len(m.filtered) > 0 {
			m.selected = m.filtered[0]
			m.mode = modeNormal
			return m, m.openSelected()
		}
		m.mode = modeNormal
		return m, nil
	case tea.KeyUp:
		if len(m.filtered) > 1 {
			m.filtered = append(m.filtered[1:], m.filtered[0])
		}
		return m, nil
	case tea.KeyDown:
		if len(m.filtered) > 1 {
			m.filtered = append(m.filtered[len(m.filtered)-1:], m.filtered[:len(m.filtered)-1]...)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *appModel) enterCommentInput() {
	if m.model.Projection() == nil {
		return
	}
	m.mode = modeCommentInput
	m.commentInput.SetValue("")
	m.commentInput.Focus()
}

func (m *appModel) handleCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		return m, nil
	case tea.KeyEnter:
		m.submitComment()
		m.mode = modeNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

func (m *appModel) submitComment() {
	text := strings.TrimSpace(m.commentInput.Value())
	if text == "" || m.v.Comments == nil || m.model.Result == nil {
		return
	}
	hunkIdx := m.model.CurrentHunkIndex()
	if hunkIdx < 0 {
		return
	}
	path := m.files[m.selected].Path
	m.v.Comments.Add(path, text, m.model.Result, hunkIdx, m.model.OldBuf, m.model.NewBuf, time.Now().UnixMilli())
	_ = m.v.Comments.Save()
}

func (m *appModel) View() string {
	switch m.mode {
	case modeFuzzyFilter:
		return m.renderFilterOverlay()
	case modeCommentInput:
		return m.renderBody() + "\n" + m.commentInput.View()
	case modeCommentsOverlay:
		return m.renderCommentsOverlay()
	}
	return m.renderBody()
}

func (m *appModel) renderBody() string {
	if m.width == 0 {
		return ""
	}
	bodyHeight := m.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	var frame string
	if m.loadErr != nil {
		frame = fmt.Sprintf("error loading diff: %v", m.loadErr)
	} else {
		frame = m.renderer.Frame(m.model, m.width, bodyHeight)
	}
	return frame + "\n" + m.statusBar()
}

func (m *appModel) statusBar() string {
	styles := m.v.Theme.Styles()
	style := styleFromColorPair(styles.StatusBar, nil)
	var path string
	if m.selected >= 0 && m.selected < len(m.files) {
		path = m.files[m.selected].Path
		if m.files[m.selected].viewed {
			path += " [viewed]"
		}
	}
	left := fmt.Sprintf(" %s (%d/%d)", path, m.selected+1, len(m.files))
	right := m.statusMsg
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return style.Render(left + strings.Repeat(" ", gap) + right + " ")
}

func (m *appModel) renderFilterOverlay() string {
	var b strings.Builder
	b.WriteString(m.filterInput.View())
	b.WriteString("\n")
	for i, idx := range m.filtered {
		if i >= m.height-2 {
			break
		}
		b.WriteString(m.files[idx].Path)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *appModel) renderCommentsOverlay() string {
	if m.v.Comments == nil || m.selected < 0 {
		return m.renderBody()
	}
	path := m.files[m.selected].Path
	var b strings.Builder
	b.WriteString(fmt.Sprintf("comments for %s\n", path))
	for _, c := range m.v.Comments.ForPath(path) {
		b.WriteString(fmt.Sprintf("#%d [%s] %s\n", c.ID, c.Status, c.Message))
	}
	b.WriteString("\n(press C or q to close)")
	return b.String()
}
