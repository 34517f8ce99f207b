package makefile

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Bits of the fold level's grammar half.
const (
	auxInsideRule     = 1 << 0
	auxInsideVariable = 1 << 1
	auxInsideComment  = 1 << 2
	auxLevelShift     = 3
)

// folder carries the running state of a fold pass. Rules, multi-line
// assignments and comment blocks each open one level.
type folder struct {
	lines       scan.Lines
	foldComment bool

	insideComment  bool
	insideRule     bool
	insideVariable bool
	current        int
	previous       int
}

func fold(req *grammar.Request) int {
	// Restart after a line whose level was not moved out of a rule by
	// trimRule, so the grammar half of its level is the running state.
	first := req.First
	for first > 0 && req.Lines.State(first-1).Any(lineComment|lineBlank|lineTarget) {
		first--
	}
	c := scan.Begin(req.Lines, first, req.Last, true)
	f := &folder{lines: req.Lines, foldComment: req.Bool(OptFoldComment)}

	if first > 0 {
		aux := req.Lines.FoldLevel(first - 1).Aux()
		f.current = int(aux >> auxLevelShift)
		f.insideRule = aux&auxInsideRule != 0
		f.insideVariable = aux&auxInsideVariable != 0
		f.insideComment = aux&auxInsideComment != 0
	}
	f.previous = f.current

	for ; c.More(); c.Forward() {
		if c.AtLineStart() {
			// Only line states matter.
			c.JumpToEOL()
		}
		if c.AtLineEnd() {
			f.line(c.Line())
		}
	}
	return c.LastLine()
}

func (f *folder) state(line int) (scan.LineState, bool) {
	if line < 0 || line >= f.lines.LineCount() {
		return 0, false
	}
	return f.lines.State(line), true
}

func (f *folder) line(line int) {
	st := f.lines.State(line)

	if f.foldComment {
		if st.Has(lineComment) {
			if next, ok := f.state(line + 1); ok && !f.insideComment && next.Has(lineComment) {
				f.current++
				f.insideComment = true
			}
		} else if f.insideComment {
			f.current--
			f.previous--
			f.insideComment = false
		}
	}

	// An assignment and its continuation lines form one fold.
	if f.insideVariable {
		if prev, ok := f.state(line - 1); ok && !prev.Has(lineContinued) {
			f.current--
			f.previous--
			f.insideVariable = false
		}
	}
	if st.Has(lineVariable | lineContinued) {
		f.current++
		f.insideVariable = true
	}

	if f.insideRule && !st.Any(lineComment|lineTab|lineBlank) {
		f.current--
		f.previous--
		f.insideRule = false
		f.trimRule(line - 1)
	}
	if st.Has(lineTarget) {
		f.current++
		f.insideRule = true
	}

	var flags scan.FoldLevel
	if f.current > f.previous {
		flags |= scan.FoldHeader
	}
	if st.Has(lineBlank) {
		flags |= scan.FoldWhite
	}
	level := scan.MakeFoldLevel(scan.FoldBase.Depth()+f.previous, flags)
	f.lines.SetFoldLevel(line, level.WithAux(f.aux()))
	f.previous = f.current
}

func (f *folder) aux() uint16 {
	cur := f.current
	if cur < 0 {
		cur = 0
	}
	aux := uint16(cur) << auxLevelShift
	if f.insideRule {
		aux |= auxInsideRule
	}
	if f.insideVariable {
		aux |= auxInsideVariable
	}
	if f.insideComment {
		aux |= auxInsideComment
	}
	return aux
}

// trimRule walks back from the line before a rule's end, moving the
// trailing comment and blank lines out of the rule. A rule that is left
// with its target line alone is not foldable.
func (f *folder) trimRule(line int) {
	for ; line >= 0; line-- {
		st := f.lines.State(line)
		level := f.lines.FoldLevel(line)
		aux := level.Aux()
		cur := int(aux>>auxLevelShift) - 1
		if cur < 0 {
			cur = 0
		}
		aux = uint16(cur)<<auxLevelShift | aux&(auxInsideVariable|auxInsideComment)

		if st.Has(lineTarget) {
			level = level &^ scan.FoldHeader
			f.lines.SetFoldLevel(line, level.WithAux(aux))
			return
		}
		if !st.Any(lineComment | lineBlank) {
			return
		}
		f.lines.SetFoldLevel(line, level.WithDepth(level.Depth()-1).WithAux(aux))
	}
}
