package bash

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

func fold(req *grammar.Request) int {
	foldComment := req.Bool(OptFoldComment)
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
		atEOL := c.AtLineEnd()
		line := c.Line()
		if foldComment && atEOL && isCommentLine(lines, line) {
			prev, next := isCommentLine(lines, line-1), isCommentLine(lines, line+1)
			switch {
			case !prev && next:
				levelCurrent++
			case prev && !next:
				levelCurrent--
			}
		}
		if c.Style() == Operator {
			switch c.Ch() {
			case '{':
				levelCurrent++
			case '}':
				levelCurrent--
			}
		}
		if atEOL {
			var flags scan.FoldLevel
			if visible == 0 && foldCompact {
				flags |= scan.FoldWhite
			}
			if levelCurrent > levelPrev && visible > 0 {
				flags |= scan.FoldHeader
			}
			lines.SetFoldLevel(line, scan.MakeFoldLevel(levelPrev, flags))
			levelPrev = levelCurrent
			visible = 0
		}
		if !scan.IsSpace(c.Ch()) {
			visible++
		}
	}

	// The next line starts at the level this pass ended with; its flags
	// are computed when it is folded.
	last := c.LastLine()
	if next := last + 1; next < lines.LineCount() {
		flags := lines.FoldLevel(next).Flags()
		lines.SetFoldLevel(next, scan.MakeFoldLevel(levelPrev, flags))
	}
	return last
}

func isCommentLine(lines scan.Lines, line int) bool {
	if line < 0 || line >= lines.LineCount() {
		return false
	}
	text := lines.Text(line)
	i := scan.FirstNonSpace(text)
	return i < len(text) && text[i] == '#'
}
