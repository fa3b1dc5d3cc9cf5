// Package watch implements quickdiff's Watcher collaborator over
// fsnotify, recursively watching a repository root and debouncing
// bursts of writes into a single refresh signal.
package watch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fwojciec/quickdiff"
)

// DefaultDebounce is the quiet period required after the last file
// event before a refresh signal fires.
const DefaultDebounce = 200 * time.Millisecond

var _ quickdiff.Watcher = (*Watcher)(nil)

// Watcher recursively watches a repository root for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	events    chan struct{}
	done      chan struct{}
}

// New watches root and every directory beneath it (skipping .git),
// debouncing writes by DefaultDebounce before signaling a refresh.
func New(root string) (*Watcher, error) {
	return NewWithDebounce(root, DefaultDebounce)
}

// NewWithDebounce is New with an explicit debounce window.
func NewWithDebounce(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	if err := addRecursive(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		events:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// Events signals once, with coalescing, after a debounced burst of
// filesystem changes under the watched root.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watch and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsWatcher.Close()
	return err
}

func (w *Watcher) loop() {
	defer close(w.events)

	var timer *time.Timer
	var pending bool

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C
		}

		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !isRelevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-timerC:
			if pending {
				select {
				case w.events <- struct{}{}:
				default:
				}
				pending = false
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func isRelevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
