// Package diagnostics implements quickdiff's opt-in timing diagnostics:
// Record and Time write one timing line per call while metrics are
// enabled. No other quickdiff package calls them, so no diff-compute or
// render-frame timings are written. It stays off the hot path entirely
// when QUICKDIFF_METRICS is unset, per spec.md §9's lifecycle-bounded
// global state convention.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	enabledOnce sync.Once
	enabled     bool

	mu     sync.Mutex
	stream io.Writer = os.Stderr
)

// Enabled reports whether QUICKDIFF_METRICS=1 was set at process start.
// Read once and cached for the process lifetime; later changes to the
// environment variable have no effect.
func Enabled() bool {
	enabledOnce.Do(func() {
		enabled = os.Getenv("QUICKDIFF_METRICS") == "1"
	})
	return enabled
}

// SetStream redirects diagnostic output, e.g. to a log file. Safe to
// call concurrently with Record.
func SetStream(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stream = w
}

// Record writes one timing line if metrics are enabled, and is a no-op
// otherwise. label identifies the measured operation ("diff_compute",
// "render_frame").
func Record(label string, d time.Duration) {
	if !Enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(stream, "quickdiff: %s took %s\n", label, d)
}

// Time runs fn and records its duration under label, returning fn's
// result unchanged. When metrics are disabled fn is called directly and
// no timer is started.
func Time[T any](label string, fn func() T) T {
	if !Enabled() {
		return fn()
	}
	start := time.Now()
	result := fn()
	Record(label, time.Since(start))
	return result
}
