package lua

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Block keywords and their effect on the fold level. elseif continues
// the block an if opened.
var blockWords = map[string]int{
	"if":       1,
	"do":       1,
	"function": 1,
	"repeat":   1,
	"end":      -1,
	"until":    -1,
}

func fold(req *grammar.Request) int {
	foldCompact := req.Bool(OptFoldCompact)
	c := scan.Begin(req.Lines, req.First, req.Last, true)
	lines := req.Lines

	// The first line of the document starts at the base level whatever
	// it held before.
	levelPrev := scan.FoldBase.Depth()
	if line := c.Line(); line > 0 {
		if depth := lines.FoldLevel(line).Depth(); depth != 0 {
			levelPrev = depth
		}
	}
	levelCurrent := levelPrev
	visible := 0

	for ; c.More(); c.Forward() {
		switch c.Style() {
		case Word1:
			if !isWordChar(c.ChPrev()) {
				levelCurrent += blockWords[wordAt(c)]
			}
		case Operator:
			switch c.Ch() {
			case '{', '(':
				levelCurrent++
			case '}', ')':
				levelCurrent--
			}
		case LiteralString, Comment:
			switch c.Ch() {
			case '[':
				levelCurrent++
			case ']':
				levelCurrent--
			}
		}

		if c.AtLineEnd() {
			var flags scan.FoldLevel
			if visible == 0 && foldCompact {
				flags |= scan.FoldWhite
			}
			if levelCurrent > levelPrev && visible > 0 {
				flags |= scan.FoldHeader
			}
			lines.SetFoldLevel(c.Line(), scan.MakeFoldLevel(levelPrev, flags))
			levelPrev = levelCurrent
			visible = 0
		}
		if !scan.IsSpace(c.Ch()) {
			visible++
		}
	}

	last := c.LastLine()
	if next := last + 1; next < lines.LineCount() {
		flags := lines.FoldLevel(next).Flags()
		lines.SetFoldLevel(next, scan.MakeFoldLevel(levelPrev, flags))
	}
	return last
}

// wordAt returns the word starting at the cursor, up to 8 bytes.
func wordAt(c *scan.Cursor) string {
	n := 0
	for n < 8 && scan.IsWordStart(c.Rel(n)) {
		n++
	}
	text := c.Text()
	return string(text[c.Pos() : c.Pos()+n])
}
