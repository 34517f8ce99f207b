package tcl

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// foldCommentMaxLevel is the deepest level a comment block still folds at.
const foldCommentMaxLevel = 100

// The grammar half of a fold level holds the running level, offset by
// auxLevelBias and shifted left by one, and whether the line is inside
// a comment block. The running level goes negative after unmatched
// closing braces.
const (
	auxInsideComment = 1
	auxLevelBias     = 1 << 13
)

func fold(req *grammar.Request) int {
	first := req.First
	if first > 0 {
		first--
	}
	lines := req.Lines
	foldComment := req.Bool(OptFoldComment)
	c := scan.Begin(lines, first, req.Last, true)

	current := 0
	insideComment := false
	if first > 0 {
		if aux := lines.FoldLevel(first - 1).Aux(); aux != 0 {
			current = int(aux>>1) - auxLevelBias
			insideComment = aux&auxInsideComment != 0
		}
	}
	previous := current

	for ; c.More(); c.Forward() {
		line := c.Line()
		st := lines.State(line)
		visible := !st.Has(lsBlank)
		if !visible {
			c.JumpToEOL()
		}

		if c.AtLineEnd() {
			if foldComment {
				if st.Has(lsOnlyComment) {
					if !insideComment && current <= foldCommentMaxLevel &&
						line+1 < lines.LineCount() && lines.State(line+1).Has(lsOnlyComment) {
						current++
						insideComment = true
					}
				} else if insideComment {
					// A blank line ends a comment block too.
					current--
					previous--
					insideComment = false
				}
			}

			var flags scan.FoldLevel
			switch {
			case current > previous:
				flags = scan.FoldHeader
			case !visible:
				flags = scan.FoldWhite
			}
			level := scan.MakeFoldLevel(scan.FoldBase.Depth()+previous, flags)
			lines.SetFoldLevel(line, level.WithAux(foldAux(current, insideComment)))
			previous = current
			continue
		}

		if c.Style() == Operator {
			switch c.Ch() {
			case '{':
				current++
			case '}':
				current--
			}
		}
	}
	return c.LastLine()
}

func foldAux(current int, insideComment bool) uint16 {
	current = min(max(current+auxLevelBias, 1), 2*auxLevelBias-1)
	aux := uint16(current) << 1
	if insideComment {
		aux |= auxInsideComment
	}
	return aux
}
