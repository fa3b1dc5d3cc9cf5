package highlight_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/highlight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	lang string
}

func (f fakeDetector) DetectFromPath(path string) string { return f.lang }

type fakeTokenizer struct {
	tokenizeLinesFn func(lang, source string) [][]quickdiff.Token
	delay           time.Duration
}

func (f fakeTokenizer) Tokenize(lang, source string) []quickdiff.Token { return nil }

func (f fakeTokenizer) TokenizeLines(lang, source string) [][]quickdiff.Token {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.tokenizeLinesFn(lang, source)
}

func TestBuildUnknownLanguageReturnsEmptyCache(t *testing.T) {
	t.Parallel()

	b := highlight.NewBuilder(fakeTokenizer{}, fakeDetector{lang: ""})
	cache := b.Build("README", "hello\nworld\n")

	require.Len(t, cache.SpansByLine, 3)
	for _, spans := range cache.SpansByLine {
		assert.Empty(t, spans)
	}
	assert.Empty(t, cache.Scopes)
}

func TestBuildOversizedTextReturnsEmptyCacheWithoutTokenizing(t *testing.T) {
	t.Parallel()

	called := false
	tok := fakeTokenizer{tokenizeLinesFn: func(lang, source string) [][]quickdiff.Token {
		called = true
		return nil
	}}
	b := highlight.NewBuilder(tok, fakeDetector{lang: "go"}, highlight.WithMaxBytes(10))

	cache := b.Build("main.go", "this text is definitely longer than ten bytes")

	assert.False(t, called)
	for _, spans := range cache.SpansByLine {
		assert.Empty(t, spans)
	}
}

func TestBuildTimeoutReturnsEmptyCache(t *testing.T) {
	t.Parallel()

	tok := fakeTokenizer{
		delay: 50 * time.Millisecond,
		tokenizeLinesFn: func(lang, source string) [][]quickdiff.Token {
			return [][]quickdiff.Token{{{Text: source, Style: quickdiff.Style{Foreground: "#fff"}}}}
		},
	}
	b := highlight.NewBuilder(tok, fakeDetector{lang: "go"}, highlight.WithMaxDuration(5*time.Millisecond))

	cache := b.Build("main.go", "x")

	require.Len(t, cache.SpansByLine, 1)
	assert.Empty(t, cache.SpansByLine[0])
}

func TestBuildConvertsTokensToByteSpans(t *testing.T) {
	t.Parallel()

	tok := fakeTokenizer{tokenizeLinesFn: func(lang, source string) [][]quickdiff.Token {
		return [][]quickdiff.Token{
			{
				{Text: "func", Style: quickdiff.Style{Foreground: "#ff0000", Bold: true}},
				{Text: " "},
				{Text: "main", Style: quickdiff.Style{Foreground: "#00ff00"}},
			},
		}
	}}
	b := highlight.NewBuilder(tok, fakeDetector{lang: "go"})

	cache := b.Build("main.go", "func main")

	require.Len(t, cache.SpansByLine, 1)
	spans := cache.SpansByLine[0]
	require.Len(t, spans, 2)
	assert.Equal(t, highlight.HighlightSpan{Start: 0, End: 4, Style: quickdiff.Style{Foreground: "#ff0000", Bold: true}}, spans[0])
	assert.Equal(t, highlight.HighlightSpan{Start: 5, End: 9, Style: quickdiff.Style{Foreground: "#00ff00"}}, spans[1])
}

func TestBuildClampsOutOfBoundsSpans(t *testing.T) {
	t.Parallel()

	// The fake tokenizer reports a token running past the actual line
	// length; Build must clamp rather than panic or overrun.
	tok := fakeTokenizer{tokenizeLinesFn: func(lang, source string) [][]quickdiff.Token {
		return [][]quickdiff.Token{
			{{Text: strings.Repeat("x", 100), Style: quickdiff.Style{Foreground: "#fff"}}},
		}
	}}
	b := highlight.NewBuilder(tok, fakeDetector{lang: "go"})

	cache := b.Build("main.go", "short")

	require.Len(t, cache.SpansByLine[0], 1)
	assert.Equal(t, 0, cache.SpansByLine[0][0].Start)
	assert.Equal(t, len("short"), cache.SpansByLine[0][0].End)
}

func TestBuildDropsDegenerateSpans(t *testing.T) {
	t.Parallel()

	tok := fakeTokenizer{tokenizeLinesFn: func(lang, source string) [][]quickdiff.Token {
		return [][]quickdiff.Token{
			{{Text: "", Style: quickdiff.Style{Foreground: "#fff"}}},
		}
	}}
	b := highlight.NewBuilder(tok, fakeDetector{lang: "go"})

	cache := b.Build("main.go", "x")

	assert.Empty(t, cache.SpansByLine[0])
}
