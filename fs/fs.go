package fs

import (
	"os"
	"path/filepath"
)

// DefaultStateDir returns the directory quickdiff stores cross-repo state
// in (review state keyed by canonical repo root). Uses XDG_STATE_HOME if
// set, otherwise falls back to ~/.local/state/quickdiff, or the system
// temp directory if home is unavailable.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "quickdiff")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "quickdiff")
	}
	return filepath.Join(home, ".local", "state", "quickdiff")
}
