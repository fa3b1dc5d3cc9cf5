// Package reviewstate persists per-repo viewed flags and last-selected
// file across sessions, keyed by canonicalized repo root so one state file
// can serve every repo the user opens quickdiff in.
package reviewstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fwojciec/quickdiff"
)

const storeVersion = 1

// RepoState holds the viewed set and last-selected file for one repo root.
type RepoState struct {
	Viewed       map[string]bool
	LastSelected string
}

// Store is the full cross-repo review state, keyed by canonicalized repo
// root path.
type Store struct {
	path  string
	repos map[string]*RepoState
}

// Load reads the review state from path. A missing file is not an error:
// it returns an empty Store. Invalid JSON or an unsupported version
// produce a KindPersistenceCorrupt error; the caller must not overwrite
// the file in that case, but MAY choose to treat it as empty.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{path: path, repos: map[string]*RepoState{}}, nil
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
			fmt.Errorf("unsupported review state version %d", doc.Version))
	}

	repos := make(map[string]*RepoState, len(doc.Repos))
	for root, wr := range doc.Repos {
		viewed := make(map[string]bool, len(wr.Viewed))
		for _, p := range wr.Viewed {
			viewed[p] = true
		}
		repos[root] = &RepoState{Viewed: viewed, LastSelected: wr.LastSelected}
	}
	return &Store{path: path, repos: repos}, nil
}

// Save atomically persists the store: serialize to a sibling temp file,
// fsync, rename into place. A repo with no viewed files and no
// last-selected file is not written.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}

	doc := document{Version: storeVersion, Repos: make(map[string]wireRepoState, len(s.repos))}
	for root, rs := range s.repos {
		if len(rs.Viewed) == 0 && rs.LastSelected == "" {
			continue
		}
		wr := wireRepoState{LastSelected: rs.LastSelected, Viewed: make([]string, 0, len(rs.Viewed))}
		for p := range rs.Viewed {
			wr.Viewed = append(wr.Viewed, p)
		}
		sort.Strings(wr.Viewed)
		doc.Repos[root] = wr
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return quickdiff.NewError(quickdiff.KindPersistenceIoFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".reviewstate-*.json.tmp")
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

// IsViewed reports whether path has been marked viewed under repo.
func (s *Store) IsViewed(repo, path string) bool {
	rs, ok := s.repos[repo]
	if !ok {
		return false
	}
	return rs.Viewed[path]
}

// MarkViewed marks path viewed under repo.
func (s *Store) MarkViewed(repo, path string) {
	s.repoState(repo).Viewed[path] = true
}

// Unmark clears path's viewed flag under repo.
func (s *Store) Unmark(repo, path string) {
	delete(s.repoState(repo).Viewed, path)
}

// SetLastSelected records path as the last-selected file under repo.
func (s *Store) SetLastSelected(repo, path string) {
	s.repoState(repo).LastSelected = path
}

// LastSelected returns the last-selected file under repo, or "" if none
// has been recorded.
func (s *Store) LastSelected(repo string) string {
	rs, ok := s.repos[repo]
	if !ok {
		return ""
	}
	return rs.LastSelected
}

func (s *Store) repoState(repo string) *RepoState {
	rs, ok := s.repos[repo]
	if !ok {
		rs = &RepoState{Viewed: map[string]bool{}}
		s.repos[repo] = rs
	}
	return rs
}

// CanonicalRepoRoot resolves root to an absolute, symlink-free path so the
// same repo always maps to the same top-level key regardless of how the
// caller reached it (relative path, symlinked checkout, etc).
func CanonicalRepoRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}

type document struct {
	Version int                      `json:"version"`
	Repos   map[string]wireRepoState `json:"repos"`
}

type wireRepoState struct {
	Viewed       []string `json:"viewed"`
	LastSelected string   `json:"last_selected,omitempty"`
}
