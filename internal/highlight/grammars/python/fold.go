package python

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// folder computes indentation based fold levels. It works on whole
// lines and reads the styles only to find triple quoted strings.
type folder struct {
	lines       scan.Lines
	foldComment bool
	foldQuote   bool
}

func (f *folder) indent(line int) scan.FoldLevel {
	var prev []byte
	if line > 0 {
		prev = f.lines.Text(line - 1)
	}
	level, _ := scan.IndentAmount(f.lines.Text(line), prev, nil)
	return level
}

func (f *folder) isComment(line int) bool {
	text := f.lines.Text(line)
	i := scan.FirstNonSpace(text)
	return i < len(text) && text[i] == '#'
}

func (f *folder) isQuote(style int) bool {
	return style == Triple || style == TripleDouble
}

func fold(req *grammar.Request) int {
	f := &folder{
		lines:       req.Lines,
		foldComment: req.Bool(OptFoldComment),
		foldQuote:   req.Bool(OptFoldQuote),
	}
	lines := req.Lines
	docLast := lines.LineCount() - 1
	maxLine := req.Last
	if maxLine > docLast {
		maxLine = docLast
	}

	// Back up to a line that is not blank, a comment or inside a string,
	// so the levels of skipped lines are known. Always back up at least
	// one line to fix the level of the line before the change.
	line := req.First
	indentCurrent := f.indent(line)
	for line > 0 {
		line--
		indentCurrent = f.indent(line)
		if !indentCurrent.IsWhite() && !f.isComment(line) && !f.isQuote(scan.StyleAtSOL(lines, line)) {
			break
		}
	}
	currentLevel := indentCurrent & scan.FoldNumberMask

	prevQuote, prevComment := false, false
	if line >= 1 {
		prevQuote = f.foldQuote && f.isQuote(scan.StyleAtEOL(lines, line-1))
		prevComment = f.foldComment && f.isComment(line-1)
	}

	// A pass may stop only where the level carried into the next line
	// comes from that line's own indentation.
	lastSeen := maxLine
	changed := false
	carried := false
	for line <= docLast && (line <= maxLine || prevQuote || prevComment || changed || carried) {
		lev := indentCurrent
		next := line + 1
		indentNext := indentCurrent
		quote := false
		if next <= docLast {
			indentNext = f.indent(next)
			quote = f.foldQuote && f.isQuote(scan.StyleAtSOL(lines, next))
		}
		quoteStart := quote && !prevQuote
		quoteContinue := quote && prevQuote
		comment := f.foldComment && f.isComment(line)
		commentStart := comment && !prevComment && next <= docLast &&
			f.isComment(next) && lev > scan.FoldBase
		commentContinue := comment && prevComment

		carried = (quote && prevQuote) || comment
		if !carried {
			currentLevel = indentCurrent & scan.FoldNumberMask
		}
		if quote {
			indentNext = currentLevel
		}
		if indentNext.IsWhite() {
			indentNext = scan.FoldWhite | currentLevel
		}

		switch {
		case quoteStart:
			lev |= scan.FoldHeader
		case quoteContinue || prevQuote:
			lev++
		case commentStart:
			lev |= scan.FoldHeader
		case commentContinue:
			lev++
		}

		// Blank and comment lines take the level of the code around them.
		for !quote && next < docLast && (indentNext.IsWhite() || f.isComment(next)) {
			next++
			indentNext = f.indent(next)
		}

		after := indentNext & scan.FoldNumberMask
		before := currentLevel
		if after > before {
			before = after
		}

		changed = false
		skipLevel := after
		for skip := next - 1; skip > line; skip-- {
			si := f.indent(skip)
			if si&scan.FoldNumberMask > after {
				skipLevel = before
			}
			level := skipLevel | si&scan.FoldWhite
			if skip > req.Last && lines.FoldLevel(skip) != level {
				changed = true
			}
			lines.SetFoldLevel(skip, level)
		}

		if !quote && !comment && !indentCurrent.IsWhite() &&
			indentCurrent&scan.FoldNumberMask < indentNext&scan.FoldNumberMask {
			lev |= scan.FoldHeader
		}

		prevQuote = quote
		prevComment = commentStart || commentContinue

		if line > req.Last && lines.FoldLevel(line) != lev {
			changed = true
		}
		lines.SetFoldLevel(line, lev)

		lastSeen = next - 1
		indentCurrent = indentNext
		line = next
	}
	return lastSeen
}
