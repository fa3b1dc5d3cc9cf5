// Package chroma wires the chroma lexer library into quickdiff's syntax
// highlighting, tokenizing both source files and (via the "diff" lexer
// registered with chroma) raw unified-diff patch text.
package chroma

import (
	"errors"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/quickdiff"
)

// Compile-time interface verification.
var _ quickdiff.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps a chroma token type to a quickdiff style. StyleFromPalette
// builds one from a quickdiff.Palette.
type StyleFunc func(chromalib.TokenType) quickdiff.Style

// Tokenizer extracts syntax tokens using chroma lexers.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer returns a Tokenizer that styles tokens with styleFunc.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// Tokenize splits source into a flat token stream for language. Returns nil
// when the language has no registered lexer, an empty slice for empty
// source.
func (t *Tokenizer) Tokenize(language, source string) []quickdiff.Token {
	if source == "" {
		return []quickdiff.Token{}
	}
	return t.lex(language, source)
}

// TokenizeLines tokenizes source with full-file context (so multi-line
// constructs like block comments lex correctly) and splits the result by
// line, matching the one-slice-per-line shape highlight.Builder consumes.
func (t *Tokenizer) TokenizeLines(language, source string) [][]quickdiff.Token {
	if source == "" {
		return [][]quickdiff.Token{}
	}
	tokens := t.lex(language, source)
	if tokens == nil {
		return nil
	}
	return splitTokensByLine(tokens)
}

func (t *Tokenizer) lex(language, source string) []quickdiff.Token {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}

	var tokens []quickdiff.Token
	for tok := iterator(); tok != chromalib.EOF; tok = iterator() {
		tokens = append(tokens, quickdiff.Token{
			Text:  tok.Value,
			Style: t.styleFunc(tok.Type),
		})
	}
	return tokens
}

// splitTokensByLine breaks a flat token stream into per-line slices,
// splitting any token that spans a newline at the boundary so a span
// never straddles two lines.
func splitTokensByLine(tokens []quickdiff.Token) [][]quickdiff.Token {
	if len(tokens) == 0 {
		return [][]quickdiff.Token{}
	}

	var result [][]quickdiff.Token
	var line []quickdiff.Token

	for _, tok := range tokens {
		if !strings.Contains(tok.Text, "\n") {
			line = append(line, tok)
			continue
		}
		parts := strings.Split(tok.Text, "\n")
		for i, part := range parts {
			if part != "" {
				line = append(line, quickdiff.Token{Text: part, Style: tok.Style})
			}
			if i < len(parts)-1 {
				result = append(result, line)
				line = nil
			}
		}
	}
	if len(line) > 0 {
		result = append(result, line)
	}
	return result
}
