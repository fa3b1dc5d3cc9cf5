package bubbletea

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the diff viewer, matching the
// abstract bindings exhaustively: move selection or scroll (j/k);
// horizontal scroll (h/l); jump next/prev hunk ({ / }); toggle hunks-only
// (z); toggle old/new fullscreen pane ([ / ]); toggle focus (Tab / 1 / 2);
// jump start/end (g/G); open fuzzy filter (/); toggle viewed + advance
// (Space); add comment (c); view comments overlay (C); quit (q or
// Ctrl+C). OpenEditor and Yank are ambient additions (§6's "keyed
// actions invoke these with the current file path") layered on top of
// the core's exhaustive keymap, not part of it.
type KeyMap struct {
	Up              key.Binding
	Down            key.Binding
	Left            key.Binding
	Right           key.Binding
	NextHunk        key.Binding
	PrevHunk        key.Binding
	ToggleHunksOnly key.Binding
	FullscreenOld   key.Binding
	FullscreenNew   key.Binding
	ToggleFocus     key.Binding
	FocusOld        key.Binding
	FocusNew        key.Binding
	GotoTop         key.Binding
	GotoBottom      key.Binding
	FuzzyFilter     key.Binding
	ToggleViewed    key.Binding
	AddComment      key.Binding
	ShowComments    key.Binding
	OpenEditor      key.Binding
	Yank            key.Binding
	Quit            key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "scroll left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "scroll right"),
		),
		NextHunk: key.NewBinding(
			key.WithKeys("}"),
			key.WithHelp("}", "next hunk"),
		),
		PrevHunk: key.NewBinding(
			key.WithKeys("{"),
			key.WithHelp("{", "previous hunk"),
		),
		ToggleHunksOnly: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "toggle hunks-only view"),
		),
		FullscreenOld: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "fullscreen old pane"),
		),
		FullscreenNew: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "fullscreen new pane"),
		),
		ToggleFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle pane focus"),
		),
		FocusOld: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "focus old pane"),
		),
		FocusNew: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "focus new pane"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		FuzzyFilter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "fuzzy filter files"),
		),
		ToggleViewed: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle viewed, advance"),
		),
		AddComment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "add comment"),
		),
		ShowComments: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "show comments overlay"),
		),
		OpenEditor: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "open file in editor"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yank current hunk"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
