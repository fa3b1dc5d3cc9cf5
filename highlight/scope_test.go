package highlight_test

import (
	"testing"

	"github.com/fwojciec/quickdiff"
	"github.com/fwojciec/quickdiff/highlight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDetectsGoFunctionScope(t *testing.T) {
	t.Parallel()

	text := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	b := highlight.NewBuilder(fakeTokenizer{tokenizeLinesFn: func(lang, source string) [][]quickdiff.Token {
		return nil
	}}, fakeDetector{lang: ""})

	cache := b.Build("main.go", text)

	require.Len(t, cache.Scopes, 1)
	s := cache.Scopes[0]
	assert.Equal(t, highlight.ScopeFunction, s.Kind)
	assert.Equal(t, 2, s.Start)
	assert.Equal(t, 5, s.End)
	assert.Equal(t, "func main() {", s.Header)
}

func TestBuildDetectsStructScope(t *testing.T) {
	t.Parallel()

	text := "package main\n\ntype Widget struct {\n\tName string\n}\n"
	b := highlight.NewBuilder(fakeTokenizer{}, fakeDetector{lang: ""})

	cache := b.Build("main.go", text)

	require.Len(t, cache.Scopes, 1)
	assert.Equal(t, highlight.ScopeClass, cache.Scopes[0].Kind)
}

func TestBuildDetectsNestedScopesIndependently(t *testing.T) {
	t.Parallel()

	text := "func outer() {\n\tfunc() {\n\t\tdoWork()\n\t}()\n}\n"
	b := highlight.NewBuilder(fakeTokenizer{}, fakeDetector{lang: ""})

	cache := b.Build("main.go", text)

	require.Len(t, cache.Scopes, 2)
	assert.Equal(t, 0, cache.Scopes[0].Start)
	assert.Equal(t, 5, cache.Scopes[0].End)
	assert.Equal(t, 1, cache.Scopes[1].Start)
	assert.Equal(t, 4, cache.Scopes[1].End)
}

func TestBuildScopeFallsBackToIndentationWithoutBraces(t *testing.T) {
	t.Parallel()

	text := "def outer():\n    def inner():\n        pass\n    return inner\nprint('done')\n"
	b := highlight.NewBuilder(fakeTokenizer{}, fakeDetector{lang: ""})

	cache := b.Build("main.py", text)

	require.Len(t, cache.Scopes, 2)
	assert.Equal(t, highlight.ScopeFunction, cache.Scopes[0].Kind)
	assert.Equal(t, 0, cache.Scopes[0].Start)
	assert.Equal(t, 4, cache.Scopes[0].End)
	assert.Equal(t, 1, cache.Scopes[1].Start)
	assert.Equal(t, 3, cache.Scopes[1].End)
}

func TestBuildNoScopesForPlainText(t *testing.T) {
	t.Parallel()

	b := highlight.NewBuilder(fakeTokenizer{}, fakeDetector{lang: ""})
	cache := b.Build("README.md", "just some\nplain prose\n")

	assert.Empty(t, cache.Scopes)
}
