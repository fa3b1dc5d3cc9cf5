package comments

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
)

const storeVersion = 1

// Store holds a repo-scoped comment set backed by a JSON file at
// <repoRoot>/.quickdiff/comments.json.
type Store struct {
	path     string
	nextID   uint64
	comments []Comment
}

func storePath(repoRoot string) string {
	return filepath.Join(repoRoot, ".quickdiff", "comments.json")
}

// Load reads the comment store for repoRoot. A missing file is not an
// error: it returns an empty Store whose next id is 1. Invalid JSON or an
// unsupported version produce a KindPersistenceCorrupt error; the caller
// must not overwrite the file in that case.
func Load(repoRoot string) (*Store, error) {
	path := storePath(repoRoot)

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{path: path, nextID: 1}, nil
	}
	if err != nil {
		return nil, quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, quickdiff.NewError(quickdiff.KindPersistenceCorrupt, err)
	}
	if doc.Version != storeVersion {
		return nil, quickdiff.NewError(quickdiff.KindPersistenceCorrupt,
			fmt.Errorf("unsupported comments store version %d", doc.Version))
	}

	comments := make([]Comment, len(doc.Comments))
	for i, wc := range doc.Comments {
		comments[i] = fromWire(wc)
	}
	nextID := doc.NextID
	if nextID == 0 {
		nextID = 1
	}
	return &Store{path: path, nextID: nextID, comments: comments}, nil
}

// Save atomically persists the store: serialize to a sibling temp file,
// fsync, rename into place.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}

	doc := document{Version: storeVersion, NextID: s.nextID, Comments: make([]wireComment, len(s.comments))}
	for i, c := range s.comments {
		doc.Comments[i] = toWire(c)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".comments-*.json.tmp")
	if err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}
	return nil
}

// Add appends a new open comment anchored at result's hunkIdx, assigning
// it the next monotonic id. old and new are the buffers result was
// computed from.
func (s *Store) Add(path, message string, result *diffengine.DiffResult, hunkIdx int, old, new *buffer.TextBuffer, nowMs int64) Comment {
	c := Comment{
		ID:          s.nextID,
		Path:        path,
		Message:     message,
		Status:      StatusOpen,
		Anchor:      Anchor{Selectors: []AnchorSelector{SelectorFromHunk(result, hunkIdx, old, new)}},
		CreatedAtMs: nowMs,
	}
	s.nextID++
	s.comments = append(s.comments, c)
	return c
}

// Resolve marks the comment with the given id resolved at nowMs. Reports
// whether a matching comment was found.
func (s *Store) Resolve(id uint64, nowMs int64) bool {
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments[i].Status = StatusResolved
			resolved := nowMs
			s.comments[i].ResolvedAtMs = &resolved
			return true
		}
	}
	return false
}

// All returns every comment in the store, in insertion order.
func (s *Store) All() []Comment { return s.comments }

// ForPath returns every comment anchored to path, in insertion order.
func (s *Store) ForPath(path string) []Comment {
	var out []Comment
	for _, c := range s.comments {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type document struct {
	Version  int           `json:"version"`
	NextID   uint64        `json:"next_id"`
	Comments []wireComment `json:"comments"`
}

type wireSelector struct {
	Kind      string `json:"kind"`
	OldRange  [2]int `json:"old_range"`
	NewRange  [2]int `json:"new_range"`
	DigestHex string `json:"digest_hex"`
}

type wireAnchor struct {
	Selectors []wireSelector `json:"selectors"`
}

type wireComment struct {
	ID           uint64     `json:"id"`
	Path         string     `json:"path"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	Anchor       wireAnchor `json:"anchor"`
	CreatedAtMs  int64      `json:"created_at_ms"`
	ResolvedAtMs *int64     `json:"resolved_at_ms,omitempty"`
}

func fromWire(wc wireComment) Comment {
	selectors := make([]AnchorSelector, len(wc.Anchor.Selectors))
	for i, ws := range wc.Anchor.Selectors {
		selectors[i] = AnchorSelector{
			Kind:         SelectorKind(ws.Kind),
			OldLineRange: diffengine.LineRange{Start: ws.OldRange[0], End: ws.OldRange[1]},
			NewLineRange: diffengine.LineRange{Start: ws.NewRange[0], End: ws.NewRange[1]},
			DigestHex:    ws.DigestHex,
		}
	}
	return Comment{
		ID:           wc.ID,
		Path:         wc.Path,
		Message:      wc.Message,
		Status:       Status(wc.Status),
		Anchor:       Anchor{Selectors: selectors},
		CreatedAtMs:  wc.CreatedAtMs,
		ResolvedAtMs: wc.ResolvedAtMs,
	}
}

func toWire(c Comment) wireComment {
	selectors := make([]wireSelector, len(c.Anchor.Selectors))
	for i, sel := range c.Anchor.Selectors {
		selectors[i] = wireSelector{
			Kind:      string(sel.Kind),
			OldRange:  [2]int{sel.OldLineRange.Start, sel.OldLineRange.End},
			NewRange:  [2]int{sel.NewLineRange.Start, sel.NewLineRange.End},
			DigestHex: sel.DigestHex,
		}
	}
	return wireComment{
		ID:           c.ID,
		Path:         c.Path,
		Message:      c.Message,
		Status:       string(c.Status),
		Anchor:       wireAnchor{Selectors: selectors},
		CreatedAtMs:  c.CreatedAtMs,
		ResolvedAtMs: c.ResolvedAtMs,
	}
}
