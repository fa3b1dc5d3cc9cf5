// Package highlight builds per-line syntax highlight spans and enclosing
// scope ranges for a file's full text, bounded by a size and time budget
// so a pathological file degrades to plain rendering instead of stalling
// the frame loop.
package highlight

import (
	"strings"
	"time"

	"github.com/fwojciec/quickdiff"
)

// HighlightSpan marks a byte range within one line that should be drawn in
// a non-default style.
type HighlightSpan struct {
	Start, End int // half-open byte range within the line
	Style      quickdiff.Style
}

// Cache is the per-file result of a Build call: one HighlightSpan slice
// per line, plus the ScopeRanges detected across the whole file.
type Cache struct {
	SpansByLine [][]HighlightSpan
	Scopes      []ScopeRange
}

const (
	// defaultMaxBytes is the size above which Build skips tokenizing
	// entirely and returns an empty Cache; chroma's lexers are not
	// bounded by input size on their own.
	defaultMaxBytes = 2 << 20 // 2MiB

	// defaultMaxDuration is the time budget for a single Build call.
	defaultMaxDuration = 150 * time.Millisecond
)

// Option configures a Builder.
type Option func(*Builder)

// WithMaxBytes overrides the size budget above which Build returns an
// empty Cache without tokenizing.
func WithMaxBytes(n int) Option {
	return func(b *Builder) { b.maxBytes = n }
}

// WithMaxDuration overrides the time budget a single Build call is
// allowed before it gives up and returns an empty Cache.
func WithMaxDuration(d time.Duration) Option {
	return func(b *Builder) { b.maxDuration = d }
}

// Builder produces Caches using an injected Tokenizer and LanguageDetector,
// so the chroma-backed implementation and any test double share the same
// budget-enforcement logic.
type Builder struct {
	tokenizer   quickdiff.Tokenizer
	detector    quickdiff.LanguageDetector
	maxBytes    int
	maxDuration time.Duration
}

// NewBuilder constructs a Builder. tokenizer and detector are typically
// chroma.Tokenizer/chroma.Detector, but any implementation works.
func NewBuilder(tokenizer quickdiff.Tokenizer, detector quickdiff.LanguageDetector, opts ...Option) *Builder {
	b := &Builder{
		tokenizer:   tokenizer,
		detector:    detector,
		maxBytes:    defaultMaxBytes,
		maxDuration: defaultMaxDuration,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build tokenizes text (whose language is inferred from path) into a
// Cache. An unrecognized language, a text exceeding the size budget, or a
// tokenize call exceeding the time budget all produce a Cache with empty
// spans — a degraded but still usable result, never an error. Scopes come
// from a lexical scan and are kept for an unrecognized language or a
// timeout; a text over the size budget gets no scopes.
func (b *Builder) Build(path, text string) *Cache {
	lines := strings.Split(text, "\n")

	if len(text) > b.maxBytes {
		return emptyCache(len(lines))
	}

	// Scope detection is a plain lexical scan, independent of whether the
	// language was recognized for tokenizing.
	scopes := detectScopes(lines)

	lang := b.detector.DetectFromPath(path)
	if lang == "" {
		cache := emptyCache(len(lines))
		cache.Scopes = scopes
		return cache
	}

	type result struct {
		tokenLines [][]quickdiff.Token
	}
	done := make(chan result, 1)
	go func() {
		done <- result{tokenLines: b.tokenizer.TokenizeLines(lang, text)}
	}()

	select {
	case r := <-done:
		return &Cache{
			SpansByLine: buildSpansByLine(lines, r.tokenLines),
			Scopes:      scopes,
		}
	case <-time.After(b.maxDuration):
		// The tokenize goroutine is abandoned; chroma's lexers have no
		// cancellation hook, so the budget is a best-effort bound on how
		// long Build itself blocks, not a guarantee the goroutine stops.
		cache := emptyCache(len(lines))
		cache.Scopes = scopes
		return cache
	}
}

func emptyCache(lineCount int) *Cache {
	return &Cache{SpansByLine: make([][]HighlightSpan, lineCount)}
}

// buildSpansByLine converts chroma's per-line token slices into byte-range
// spans, clamping any span whose bounds fall outside the line and dropping
// any span whose start does not precede its end.
func buildSpansByLine(lines []string, tokenLines [][]quickdiff.Token) [][]HighlightSpan {
	out := make([][]HighlightSpan, len(lines))
	for i := range lines {
		var toks []quickdiff.Token
		if i < len(tokenLines) {
			toks = tokenLines[i]
		}
		out[i] = lineSpans(toks, len(lines[i]))
	}
	return out
}

func lineSpans(toks []quickdiff.Token, lineLen int) []HighlightSpan {
	var spans []HighlightSpan
	pos := 0
	for _, tok := range toks {
		start, end := pos, pos+len(tok.Text)
		pos = end

		if tok.Style == (quickdiff.Style{}) {
			continue // default style carries no span
		}

		cs, ce := clamp(start, 0, lineLen), clamp(end, 0, lineLen)
		if cs >= ce {
			continue
		}
		spans = append(spans, HighlightSpan{Start: cs, End: ce, Style: tok.Style})
	}
	return spans
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
