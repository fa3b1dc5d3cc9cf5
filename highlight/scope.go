package highlight

import (
	"regexp"
	"strings"
)

// ScopeKind is the closed set of enclosing-construct kinds ScopeRange
// detection recognizes.
type ScopeKind int

// The closed set of scope kinds.
const (
	ScopeFunction ScopeKind = iota
	ScopeClass
	ScopeImpl
	ScopeModule
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	case ScopeImpl:
		return "impl"
	case ScopeModule:
		return "module"
	default:
		return "unknown"
	}
}

// ScopeRange is an enclosing construct spanning [Start, End) lines
// (0-indexed, End exclusive), with Header holding the text of its opening
// line for display as a sticky pinned header.
type ScopeRange struct {
	Kind   ScopeKind
	Header string
	Start  int
	End    int
}

var scopeHeaders = []struct {
	kind    ScopeKind
	pattern *regexp.Regexp
}{
	{ScopeClass, regexp.MustCompile(`^\s*(?:export\s+)?class\b`)},
	{ScopeImpl, regexp.MustCompile(`^\s*impl\b`)},
	{ScopeClass, regexp.MustCompile(`^\s*type\s+\w+\s+(?:struct|interface)\b`)},
	{ScopeFunction, regexp.MustCompile(`^\s*(?:func|function|def|fn)\b`)},
}

// detectScopes scans lines for headers matching a known scope construct
// and, for each, finds where that construct ends: by brace-depth tracking
// when the header (or a following line) opens a brace, or by the first
// subsequent non-blank line whose indentation is no deeper than the
// header's when no brace ever appears (indentation-based languages).
//
// This is a lexical heuristic, not a parser: it has no knowledge of
// strings or comments containing brace characters, and will misjudge
// scope boundaries in those cases.
func detectScopes(lines []string) []ScopeRange {
	var scopes []ScopeRange
	for i, line := range lines {
		kind, ok := matchScopeHeader(line)
		if !ok {
			continue
		}
		scopes = append(scopes, ScopeRange{
			Kind:   kind,
			Header: strings.TrimSpace(line),
			Start:  i,
			End:    findScopeEnd(lines, i),
		})
	}
	return scopes
}

func matchScopeHeader(line string) (ScopeKind, bool) {
	for _, sh := range scopeHeaders {
		if sh.pattern.MatchString(line) {
			return sh.kind, true
		}
	}
	return 0, false
}

func findScopeEnd(lines []string, start int) int {
	depth := 0
	seenBrace := false
	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				seenBrace = true
			case '}':
				depth--
			}
		}
		if seenBrace && depth <= 0 {
			return i + 1
		}
	}
	if seenBrace {
		return len(lines)
	}

	startIndent := indentOf(lines[start])
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if indentOf(lines[i]) <= startIndent {
			return i
		}
	}
	return len(lines)
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 8
		default:
			return n
		}
	}
	return n
}
