package fold

import (
	"strings"

	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Mark is the set of fold margin symbols drawn next to a line.
type Mark uint8

// Margin symbols.
const (
	// MarkOpen is an expanded top-level header.
	MarkOpen Mark = 1 << iota
	// MarkOpenMid is an expanded nested header.
	MarkOpenMid
	// MarkFolder is a folded top-level header.
	MarkFolder
	// MarkEnd is a folded nested header.
	MarkEnd
	// MarkSub is a line inside a region.
	MarkSub
	// MarkMidTail is the last line of a nested region.
	MarkMidTail
	// MarkTail is the last line of a top-level region.
	MarkTail
)

var markNames = []string{"open", "openmid", "folder", "end", "sub", "midtail", "tail"}

// String returns the names of the symbols in m joined by '|'.
func (m Mark) String() string {
	var names []string
	for i, name := range markNames {
		if m&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// MarkAt computes the margin symbols of a line. firstRow is false for
// the continuation rows of a wrapped line.
func MarkAt(t Tree, line int, firstRow bool) Mark {
	level := t.FoldLevel(line)
	next := scan.FoldBase
	if line+1 < t.LineCount() {
		next = t.FoldLevel(line + 1)
	}
	base := scan.FoldBase.Depth()
	depth, nextDepth := level.Depth(), next.Depth()

	switch {
	case level.IsHeader():
		folded := t.Folded(line)
		switch {
		case !firstRow:
			if depth > base || !folded {
				return MarkSub
			}
		case !folded && depth == base:
			return MarkOpen
		case !folded:
			return MarkOpenMid
		case depth == base:
			return MarkFolder
		default:
			return MarkEnd
		}
	case level.IsWhite():
		if depth > base {
			if nextDepth < depth {
				return tail(nextDepth, base)
			}
			return MarkSub
		}
	case depth > base:
		if nextDepth < depth {
			return tail(nextDepth, base)
		}
		return MarkSub
	}
	return 0
}

func tail(nextDepth, base int) Mark {
	if nextDepth > base {
		return MarkMidTail
	}
	return MarkTail
}

// Glyph returns a one-character rendering of a mark for text output.
func (m Mark) Glyph() rune {
	switch {
	case m&MarkOpen != 0, m&MarkOpenMid != 0:
		return '-'
	case m&MarkFolder != 0, m&MarkEnd != 0:
		return '+'
	case m&MarkTail != 0, m&MarkMidTail != 0:
		return '\''
	case m&MarkSub != 0:
		return '|'
	}
	return ' '
}
