package cfamily

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// fold counts braces, stream comments, //{ //} markers and directive
// blocks. The grammar half of each level holds the level of the next
// line so a pass can start anywhere.
func fold(req *grammar.Request) int {
	foldComment := req.Bool(OptFoldComment)
	foldPreprocessor := req.Bool(OptFoldPreprocessor)
	foldCompact := req.Bool(OptFoldCompact)
	foldAtElse := req.Bool(OptFoldAtElse)

	lines := req.Lines
	c := scan.Begin(lines, req.First, req.Last, true)

	current := scan.FoldBase.Depth()
	if line := c.Line(); line > 0 {
		if aux := lines.FoldLevel(line - 1).Aux(); aux != 0 {
			current = int(aux)
		}
	}
	minCurrent := current
	next := current
	visible := 0

	for ; c.More(); c.Forward() {
		style := c.Style()
		if foldComment && isStreamComment(style) {
			switch {
			case !isStreamComment(c.StylePrev()):
				next++
			case !isStreamComment(c.StyleNext()) && !c.AtLineEnd():
				// The character after a comment may still be unstyled.
				next--
			}
		}
		if foldComment && style == CommentLine && c.Match("//") {
			switch c.Rel(2) {
			case '{':
				next++
			case '}':
				next--
			}
		}
		if foldPreprocessor && style == Preprocessor && c.Ch() == '#' {
			j := c.Pos() + 1
			for j < c.LineLen() && scan.IsSpaceOrTab(c.At(j)) {
				j++
			}
			switch {
			case c.MatchAt(j, "region"), c.MatchAt(j, "if"):
				next++
			case c.MatchAt(j, "end"):
				next--
			}
		}
		if style == Operator {
			switch c.Ch() {
			case '{':
				// "} else {" folds at its own line
				if minCurrent > next {
					minCurrent = next
				}
				next++
			case '}':
				next--
			}
		}

		if c.AtLineEnd() {
			use := current
			if foldAtElse {
				use = minCurrent
			}
			var flags scan.FoldLevel
			if visible == 0 && foldCompact {
				flags |= scan.FoldWhite
			}
			if use < next {
				flags |= scan.FoldHeader
			}
			aux := next
			if aux < 0 {
				aux = 0
			}
			lines.SetFoldLevel(c.Line(), scan.MakeFoldLevel(use, flags).WithAux(uint16(aux)))
			current = next
			minCurrent = current
			visible = 0
		}
		if !scan.IsSpace(c.Ch()) {
			visible++
		}
	}
	return c.LastLine()
}
