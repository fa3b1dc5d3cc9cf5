package mock

import (
	"context"
	"os/exec"

	"github.com/fwojciec/quickdiff"
)

// Compile-time interface verification.
var (
	_ quickdiff.Watcher        = (*Watcher)(nil)
	_ quickdiff.Clipboard      = (*Clipboard)(nil)
	_ quickdiff.EditorLauncher = (*EditorLauncher)(nil)
)

// Watcher is a mock implementation of quickdiff.Watcher.
type Watcher struct {
	EventsCh chan struct{}
	CloseFn  func() error
}

func (w *Watcher) Events() <-chan struct{} { return w.EventsCh }

func (w *Watcher) Close() error { return w.CloseFn() }

// Clipboard is a mock implementation of quickdiff.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error { return c.CopyFn(content) }

// EditorLauncher is a mock implementation of quickdiff.EditorLauncher.
// CommandFn is optional; when set, EditorLauncher also satisfies the
// bubbletea package's commandEditor capability interface.
type EditorLauncher struct {
	OpenFn    func(ctx context.Context, path string, line int) error
	CommandFn func(path string, line int) *exec.Cmd
}

func (e *EditorLauncher) Open(ctx context.Context, path string, line int) error {
	return e.OpenFn(ctx, path, line)
}

func (e *EditorLauncher) Command(path string, line int) *exec.Cmd {
	return e.CommandFn(path, line)
}
