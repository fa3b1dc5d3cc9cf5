// Package quickdiff provides the shared domain types and collaborator
// interfaces that every other package in this module builds on: the file
// change model, the external-source interfaces the core diff engine is fed
// through, and the closed error-kind enum.
package quickdiff

import (
	"context"
	"io"
)

// ChangeKind describes what happened to a file between two revisions.
type ChangeKind int

// The closed set of file change kinds.
const (
	Added ChangeKind = iota
	Modified
	Deleted
	Untracked
	Renamed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Untracked:
		return "untracked"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangedFile identifies one file that differs between two revisions.
type ChangedFile struct {
	Path    string
	Kind    ChangeKind
	OldPath string // set only when Kind == Renamed
}

// DiffSourceKind is the closed set of ways a list of changed files, and the
// blobs behind them, can be obtained. quickdiff dispatches on this value by
// explicit branching at CLI-parse time rather than by runtime type
// assertion on the collaborator implementations.
type DiffSourceKind int

// The closed set of diff sources.
const (
	SourceWorkingTree DiffSourceKind = iota
	SourceCommit
	SourceRange
	SourceBase
	SourcePullRequest
	SourceStdin
)

// ChangedFileSource lists the files that changed for a given source. It is
// the collaborator spec.md §6 calls the "ChangedFile source".
type ChangedFileSource interface {
	ChangedFiles(ctx context.Context) ([]ChangedFile, error)
}

// BlobSource fetches the old and new byte content of a single file.
// Implementations MUST enforce an upper size bound and return an error
// of kind KindFileTooLarge rather than reading unbounded content into
// memory; the core never trusts a blob source to do this on its own.
type BlobSource interface {
	OldBlob(ctx context.Context, path string) ([]byte, error)
	NewBlob(ctx context.Context, path string) ([]byte, error)
}

// PatchSource supplies a unified diff covering one or more files without
// repository access of its own, e.g. `--stdin` or a pull request's combined
// patch. gitdiff.Source turns the result into ChangedFiles plus, where a
// BlobSource is unavailable, synthetic buffers reconstructed from the hunks.
type PatchSource interface {
	Patch(ctx context.Context) (io.Reader, error)
}

// Watcher emits a value on Events each time files under a repository root
// change, debounced so that a burst of writes produces one signal. Close
// stops the underlying watch and closes the channel.
type Watcher interface {
	Events() <-chan struct{}
	Close() error
}

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	Copy(content string) error
}

// EditorLauncher opens a file, optionally at a specific line, in an
// external editor, suspending the terminal UI for the duration of the call.
type EditorLauncher interface {
	Open(ctx context.Context, path string, line int) error
}

// Viewer drives the interactive terminal session for a set of changed
// files. Concrete implementations (bubbletea.Viewer) are configured at
// construction time with a theme, comment store, and review store; View
// itself only needs the file list and the blobs behind it.
type Viewer interface {
	View(ctx context.Context, files []ChangedFile, blobs BlobSource) error
}
