// Package clipboard implements quickdiff's Clipboard collaborator on top
// of the system clipboard, used by the "y" yank-hunk binding.
package clipboard

import (
	"github.com/atotto/clipboard"
	"github.com/fwojciec/quickdiff"
)

var _ quickdiff.Clipboard = (*System)(nil)

// System copies text to the OS clipboard, picking the right backend
// (pbcopy, xclip/xsel, clip.exe) for the current platform.
type System struct{}

// New returns a clipboard backed by the host OS.
func New() *System {
	return &System{}
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	return clipboard.WriteAll(content)
}
