package quickdiff

import "fmt"

// ErrorKind is the closed set of error kinds quickdiff distinguishes, per
// spec.md §7. Grounded on zjrosen-perles's diffviewer.ErrorCategory: the
// teacher itself carries no error-kind type, and that pack sibling is the
// closest fit for a terminal diff viewer's error taxonomy.
type ErrorKind int

// The closed set of error kinds. Kinds below KindHighlightBudgetExceeded
// are fatal before the UI starts; KindHighlightBudgetExceeded and
// KindWorkerInternal are transient and surface as a status-bar message
// without unwinding the event loop.
const (
	KindNotARepo ErrorKind = iota
	KindRevisionUnresolved
	KindFileTooLarge
	KindBlobFetchFailed
	KindPatchParseFailed
	KindPersistenceCorrupt
	KindPersistenceIoFailed
	KindHighlightBudgetExceeded
	KindWorkerInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotARepo:
		return "not_a_repo"
	case KindRevisionUnresolved:
		return "revision_unresolved"
	case KindFileTooLarge:
		return "file_too_large"
	case KindBlobFetchFailed:
		return "blob_fetch_failed"
	case KindPatchParseFailed:
		return "patch_parse_failed"
	case KindPersistenceCorrupt:
		return "persistence_corrupt"
	case KindPersistenceIoFailed:
		return "persistence_io_failed"
	case KindHighlightBudgetExceeded:
		return "highlight_budget_exceeded"
	case KindWorkerInternal:
		return "worker_internal"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind should abort before the
// interactive UI starts, per spec.md §7's propagation policy.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindHighlightBudgetExceeded, KindWorkerInternal:
		return false
	default:
		return true
	}
}

// Error wraps an underlying error with a closed ErrorKind, letting callers
// branch on Kind without parsing messages.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind wrapping err.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
