// Package editor implements quickdiff's EditorLauncher collaborator:
// resolving the user's preferred editor and launching it against a
// file, suspending the terminal UI for the duration of the call.
package editor

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fwojciec/quickdiff"
)

var _ quickdiff.EditorLauncher = (*Launcher)(nil)

// Launcher resolves an editor from the $VISUAL/$EDITOR/vi preference
// chain spec.md §6 describes. Override is consulted first when set,
// letting config.Config's editor override take precedence over the
// environment.
type Launcher struct {
	Override string
}

// New returns a Launcher that resolves $VISUAL, then $EDITOR, then vi.
func New() *Launcher {
	return &Launcher{}
}

// Resolve returns the editor command name to invoke.
func (l *Launcher) Resolve() string {
	for _, name := range []string{l.Override, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if name != "" {
			return name
		}
	}
	return "vi"
}

// Command builds the *exec.Cmd that opens path, at line if the
// resolved editor is one of those (vi, vim, nvim, nano, emacs) that
// understand a leading "+N" line argument. The caller (bubbletea.appModel) wires
// this into tea.ExecProcess to suspend/restore the terminal.
func (l *Launcher) Command(path string, line int) *exec.Cmd {
	name := l.Resolve()
	args := []string{path}
	if line > 0 && supportsLineArg(name) {
		args = append([]string{"+" + strconv.Itoa(line)}, args...)
	}
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// Open resolves the editor and runs it synchronously, blocking until
// the editor exits. It satisfies quickdiff.EditorLauncher for callers
// without their own terminal-suspend mechanism (bubbletea.appModel
// uses Command directly with tea.ExecProcess instead).
func (l *Launcher) Open(ctx context.Context, path string, line int) error {
	name := l.Resolve()
	args := []string{path}
	if line > 0 && supportsLineArg(name) {
		args = append([]string{"+" + strconv.Itoa(line)}, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func supportsLineArg(name string) bool {
	base := name
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		base = name[idx+1:]
	}
	switch base {
	case "vi", "vim", "nvim", "nano", "emacs":
		return true
	default:
		return false
	}
}
