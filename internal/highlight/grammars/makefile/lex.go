package makefile

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

type lexer struct {
	c   *scan.Cursor
	req *grammar.Request

	// targetOrVar is set while a line may still turn out to be a rule
	// or an assignment.
	targetOrVar bool
	leadingWS   int
}

func newLexer(req *grammar.Request) *lexer {
	return &lexer{
		c:   scan.Begin(req.Lines, req.First, req.Last, false),
		req: req,
	}
}

func (l *lexer) run() int {
	return scan.Run(l.c, l.step)
}

func (l *lexer) step() scan.Step {
	c := l.c
	if c.AtLineStart() {
		if st := l.lineStart(); st == scan.Reprocess {
			return st
		}
	}

	l.terminate()

	if c.AtLineEnd() {
		l.endLine()
		return scan.Advance
	}

	if l.targetOrVar && (c.Style() == Default || c.Style() == Whitespace) {
		if l.assignment() || l.rule() {
			l.targetOrVar = false
			return scan.Advance
		}
	}

	if c.Style() == Default {
		l.begin()
	}
	return scan.Advance
}

// lineStart skips leading blanks and recognises whole-line constructs.
func (l *lexer) lineStart() scan.Step {
	c := l.c
	line := c.Line()
	continued := line > 0 && c.Lines().State(line-1).Has(lineContinued)

	switch c.Style() {
	case StringEOL, IdEOL:
		c.ChangeState(Default)
	}

	tab := c.Ch() == '\t'
	if scan.IsSpaceOrTab(c.Ch()) {
		if c.Style() == Default {
			c.SetStyle(Whitespace)
		}
		for !c.AtLineEnd() && scan.IsSpaceOrTab(c.Ch()) {
			c.Forward()
		}
		if c.Style() == Whitespace {
			c.SetStyle(Default)
		}
	}
	l.leadingWS = c.Pos()
	l.targetOrVar = c.AtLineStart()

	switch {
	case continued:
		l.targetOrVar = false
	case c.Ch() == '#':
		c.SetStyle(Comment)
		c.JumpToEOL()
	case c.Ch() == '!':
		c.SetStyle(Preprocessor)
		c.JumpToEOL()
	case !tab:
		if n := l.directive(); n > 0 {
			l.targetOrVar = false
			kw, _ := l.req.Keyword(l.word(n))
			c.SetStyle(Word1 + kw)
			c.ForwardN(n)
			c.SetStyle(Default)
			return scan.Reprocess
		}
	}
	return scan.Advance
}

// directive returns the length of a directive keyword at the cursor, or
// zero.
func (l *lexer) directive() int {
	c := l.c
	n := 0
	for ch := c.Rel(n); scan.IsAlnum(ch) || ch == '-' || ch == '_'; ch = c.Rel(n) {
		n++
	}
	if n == 0 {
		return 0
	}
	if after := c.Rel(n); !scan.IsSpace(after) && after != '(' {
		return 0
	}
	if _, ok := l.req.Keyword(l.word(n)); !ok {
		return 0
	}
	return n
}

func (l *lexer) word(n int) string {
	pos := l.c.Pos()
	return string(l.c.Text()[pos : pos+n])
}

func (l *lexer) terminate() {
	c := l.c
	switch c.Style() {
	case Whitespace:
		if !scan.IsSpaceOrTab(c.Ch()) {
			c.SetStyle(Default)
		}
	case Operator:
		c.SetStyle(Default)
	case Comment, Preprocessor:
		if c.AtLineEnd() && (c.ChPrev() != '\\' || c.IsEscaped(-1)) {
			c.SetStyle(Default)
		}
	case Substitution:
		switch {
		case c.AtLineEnd():
			// unterminated variable reference
			c.ChangeState(IdEOL)
		case c.Ch() == ')' || c.Ch() == '}':
			c.ForwardSetStyle(Default)
		}
	case Character:
		l.quoted('\'')
	case String:
		l.quoted('"')
	}
}

func (l *lexer) quoted(q byte) {
	c := l.c
	switch {
	case c.AtLineEnd():
		if c.ChPrev() != '\\' || c.IsEscaped(-1) {
			c.SetStyle(StringEOL)
		}
	case c.Ch() == q && !c.IsEscaped(0):
		c.ForwardSetStyle(Default)
	}
}

// endLine records what the line turned out to be.
func (l *lexer) endLine() {
	c := l.c
	c.Flush()
	var st scan.LineState
	if c.StylePrev() == Comment {
		st |= lineComment
	}
	if l.leadingWS == c.Pos() {
		st |= lineBlank
	}
	if c.At(0) == '\t' {
		st |= lineTab
	}
	switch c.StyleOfPos(0) {
	case Target:
		st |= lineTarget
	case Variable:
		st |= lineVariable
	}
	if c.ChPrev() == '\\' && !c.IsEscaped(-1) {
		st |= lineContinued
	}
	c.Lines().SetState(c.Line(), st)
}

// assignment styles NAME = VALUE and its :=, ?= and += forms.
func (l *lexer) assignment() bool {
	c := l.c
	ch, next := c.Ch(), c.ChNext()
	if ch != '=' && !((ch == ':' || ch == '?' || ch == '+') && next == '=') {
		return false
	}
	end := l.nameEnd()
	c.SetStyle(Operator)
	if ch != '=' {
		c.Forward()
	}
	c.ColourRange(0, end, Variable)
	return true
}

// rule styles TARGET: prerequisites.
func (l *lexer) rule() bool {
	c := l.c
	if c.Ch() != ':' {
		return false
	}
	end := l.nameEnd()
	c.SetStyle(Operator)
	c.ColourRange(0, end, Target)
	return true
}

// nameEnd returns the offset of the last byte of the name before the
// cursor, trailing blanks excluded.
func (l *lexer) nameEnd() int {
	text := l.c.Text()
	i := l.c.Pos() - 1
	for i > 0 && scan.IsSpaceOrTab(text[i]) {
		i--
	}
	return i
}

func (l *lexer) begin() {
	c := l.c
	switch c.Ch() {
	case ' ', '\t':
		c.SetStyle(Whitespace)
	case '$':
		if c.ChNext() == '(' || c.ChNext() == '{' {
			c.SetStyle(Substitution)
		}
	case '\'':
		c.SetStyle(Character)
	case '"':
		c.SetStyle(String)
	case '\\':
		if !c.IsEscaped(0) && c.ChNext() == '"' {
			c.StyleAhead(2, String)
			c.SetStyle(Default)
		}
	}
}
