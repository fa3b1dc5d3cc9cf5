package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/quickdiff"
)

// Compile-time interface verification.
var _ quickdiff.LanguageDetector = (*Detector)(nil)

// diffPathPrefixes are the a/ and b/ prefixes git diff headers put in
// front of every path; stripping them lets lexers.Match see the real
// filename instead of a path rooted at a fake "a" or "b" directory.
var diffPathPrefixes = [...]string{"a/", "b/"}

// Detector resolves a changed file's path to a chroma lexer name, one per
// quickdiff.BlobSource file. A path ending in .diff or .patch resolves to
// chroma's own diff lexer, which is what lets StyleFromPalette's
// GenericInserted/GenericDeleted cases ever fire.
type Detector struct{}

// NewDetector returns a chroma-backed Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the language name chroma would use to highlight
// path's content, or "" if no lexer matches.
func (d *Detector) DetectFromPath(path string) string {
	for _, prefix := range diffPathPrefixes {
		path = strings.TrimPrefix(path, prefix)
	}

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
