// Package diffworker runs blob loading, diffing, and syntax highlighting
// on a dedicated goroutine so the UI thread stays responsive. Requests are
// coalesced: a newer request discards a still-queued older one, and a
// response whose id no longer matches the caller's last-sent request is
// meant to be discarded by the caller, not by the worker.
package diffworker

import (
	"context"
	"fmt"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/buffer"
	"github.com/fwojciec/quickdiff/diffengine"
	"github.com/fwojciec/quickdiff/highlight"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Request asks the worker to load and diff one file.
type Request struct {
	ID   string
	Path string
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string { return uuid.NewString() }

// Response carries the result of a Request, identified by the same ID. On
// failure Err is non-nil and the other fields are zero.
type Response struct {
	ID         string
	OldBuffer  *buffer.TextBuffer
	NewBuffer  *buffer.TextBuffer
	DiffResult *diffengine.DiffResult
	OldCache   *highlight.Cache
	NewCache   *highlight.Cache
	Err        error
}

// Worker owns the request/response channel pair and the goroutine that
// services them.
type Worker struct {
	blobs       quickdiff.BlobSource
	highlighter *highlight.Builder
	context     int

	requests  chan Request
	responses chan Response
	done      chan struct{}
}

// New starts a Worker backed by blobs for content and highlighter for
// syntax spans, diffing with the given context line count.
func New(blobs quickdiff.BlobSource, highlighter *highlight.Builder, contextLines int) *Worker {
	w := &Worker{
		blobs:       blobs,
		highlighter: highlighter,
		context:     contextLines,
		requests:    make(chan Request, 1),
		responses:   make(chan Response),
		done:        make(chan struct{}),
	}
	go w.loop()
	return w
}

// Submit enqueues a request, replacing any still-queued one. It never
// blocks: if the channel's single slot is occupied, the old request is
// drained and discarded before the new one is sent.
func (w *Worker) Submit(req Request) {
	select {
	case w.requests <- req:
	default:
		select {
		case <-w.requests:
		default:
		}
		w.requests <- req
	}
}

// Responses returns the channel Response values arrive on.
func (w *Worker) Responses() <-chan Response { return w.responses }

// Close stops the worker loop and waits for it to exit. No further
// responses arrive after Close returns.
func (w *Worker) Close() {
	close(w.requests)
	<-w.done
}

func (w *Worker) loop() {
	defer close(w.done)
	defer close(w.responses)

	for req := range w.requests {
		w.responses <- w.process(req)
	}
}

func (w *Worker) process(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{ID: req.ID, Err: quickdiff.NewError(quickdiff.KindWorkerInternal, panicError{r})}
		}
	}()

	ctx := context.Background()

	var oldRaw, newRaw []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		oldRaw, err = w.blobs.OldBlob(gctx, req.Path)
		return err
	})
	g.Go(func() error {
		var err error
		newRaw, err = w.blobs.NewBlob(gctx, req.Path)
		return err
	})
	if err := g.Wait(); err != nil {
		return Response{ID: req.ID, Err: quickdiff.NewError(quickdiff.KindBlobFetchFailed, err)}
	}

	oldBuf := buffer.New(oldRaw)
	newBuf := buffer.New(newRaw)

	result := diffengine.Compute(oldBuf, newBuf, w.context)

	var oldCache, newCache *highlight.Cache
	hg := new(errgroup.Group)
	hg.Go(func() error {
		oldCache = w.highlighter.Build(req.Path, string(oldBuf.Content()))
		return nil
	})
	hg.Go(func() error {
		newCache = w.highlighter.Build(req.Path, string(newBuf.Content()))
		return nil
	})
	_ = hg.Wait()

	return Response{
		ID:         req.ID,
		OldBuffer:  oldBuf,
		NewBuffer:  newBuf,
		DiffResult: result,
		OldCache:   oldCache,
		NewCache:   newCache,
	}
}

// panicError wraps a recovered panic value as an error.
type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("panic in diffworker: %v", p.v)
}
