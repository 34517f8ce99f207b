package lua

import (
	"strings"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// maxEquals bounds the '=' run of a long bracket.
const maxEquals = 254

type lexer struct {
	c   *scan.Cursor
	req *grammar.Request

	// nest is the depth of [[ inside a long string or comment, eq the
	// number of '=' in its opening bracket.
	nest int
	eq   int
}

func newLexer(req *grammar.Request) *lexer {
	return &lexer{
		c:   scan.Begin(req.Lines, req.First, req.Last, false),
		req: req,
	}
}

func (l *lexer) run() int {
	c := l.c
	switch c.Style() {
	case LiteralString, Comment:
		if line := c.Line(); line > 0 {
			st := c.Lines().State(line - 1)
			l.nest, l.eq = st.High(), st.Low()
		}
	case StringEOL, CommentLine, Preprocessor:
		// do not leak onto the next line
		c.ChangeState(Default)
	}
	if c.Line() == 0 && c.Ch() == '#' {
		// shebang
		c.SetStyle(CommentLine)
	}
	return scan.Run(c, l.step)
}

func (l *lexer) step() scan.Step {
	c := l.c
	if c.AtLineStart() && c.Style() == StringEOL {
		c.SetStyle(Default)
	}

	l.terminate()

	if c.AtLineEnd() {
		var st scan.LineState
		if s := c.Style(); s == LiteralString || s == Comment {
			st = scan.PackState(l.nest, l.eq)
		}
		c.Lines().SetState(c.Line(), st)
		return scan.Advance
	}

	if c.Style() == Default {
		l.begin()
	}
	return scan.Advance
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
	case Number:
		if !isNumberChar(c.Ch()) {
			c.SetStyle(Default)
		}
	case Identifier:
		if !isWordChar(c.Ch()) || c.Ch() == '.' {
			if kw, ok := l.req.Keyword(c.Current()); ok {
				c.ChangeState(Word1 + kw)
			}
			c.SetStyle(Default)
		}
	case CommentLine, Preprocessor:
		if c.AtLineEnd() {
			c.SetStyle(Default)
		}
	case String:
		l.quoted('"')
	case Character:
		l.quoted('\'')
	case LiteralString, Comment:
		l.long()
	}
}

func (l *lexer) quoted(q byte) {
	c := l.c
	switch {
	case c.Ch() == '\\':
		if next := c.ChNext(); next == '"' || next == '\'' || next == '\\' {
			c.Forward()
		}
	case c.Ch() == q:
		c.ForwardSetStyle(Default)
	case c.AtLineEnd():
		if c.ChPrev() != '\\' || c.IsEscaped(-1) {
			c.ChangeState(StringEOL)
		}
	}
}

// long handles the body of a long string or block comment.
func (l *lexer) long() {
	c := l.c
	switch c.Ch() {
	case '[':
		if l.longBracket() == 0 && l.eq == 0 {
			// only [[ nests
			l.nest++
			c.Forward()
		}
	case ']':
		eq := l.longBracket()
		switch {
		case eq == 0 && l.eq == 0:
			l.nest--
			c.Forward()
			if l.nest == 0 {
				c.ForwardSetStyle(Default)
			}
		case eq > 0 && eq == l.eq:
			c.ForwardN(eq + 1)
			c.ForwardSetStyle(Default)
		}
	}
}

// longBracket returns the number of '=' in a long bracket starting at
// the cursor, or -1 when the bracket is a plain one.
func (l *lexer) longBracket() int {
	c := l.c
	n := 1
	for c.Rel(n) == '=' && n <= maxEquals {
		n++
	}
	if c.Rel(n) == c.Ch() {
		return n - 1
	}
	return -1
}

func (l *lexer) begin() {
	c := l.c
	ch := c.Ch()
	switch {
	case scan.IsSpaceOrTab(ch):
		c.SetStyle(Whitespace)
	case scan.IsDigit(ch) || (ch == '.' && scan.IsDigit(c.ChNext())):
		c.SetStyle(Number)
		if ch == '0' && (c.ChNext() == 'x' || c.ChNext() == 'X') {
			c.Forward()
		}
	case isWordStart(ch):
		c.SetStyle(Identifier)
	case ch == '"':
		c.SetStyle(String)
	case ch == '\'':
		c.SetStyle(Character)
	case ch == '[':
		eq := l.longBracket()
		if eq < 0 {
			c.SetStyle(Operator)
			return
		}
		l.nest, l.eq = 1, eq
		c.SetStyle(LiteralString)
		c.ForwardN(eq + 1)
	case ch == '-' && c.ChNext() == '-':
		c.SetStyle(CommentLine)
		if !c.Match("--[") {
			c.Forward()
			return
		}
		c.ForwardN(2)
		if eq := l.longBracket(); eq >= 0 {
			l.nest, l.eq = 1, eq
			c.ChangeState(Comment)
			c.ForwardN(eq + 1)
		}
	case c.AtLineStart() && ch == '$':
		// Lua 4 preprocessor line
		c.SetStyle(Preprocessor)
	case isOperator(ch):
		c.SetStyle(Operator)
	}
}

func isWordChar(ch byte) bool {
	return ch >= 0x80 || scan.IsWordChar(ch)
}

func isWordStart(ch byte) bool {
	return ch >= 0x80 || scan.IsWordStart(ch)
}

func isNumberChar(ch byte) bool {
	return ch < 0x80 && (scan.IsHexDigit(ch) || ch == 'e' || ch == 'E' ||
		ch == '.' || ch == '-' || ch == '+')
}

func isOperator(ch byte) bool {
	return ch != 0 && ch < 0x80 && strings.IndexByte("*/-+()={}~[];<>,.^%:#", ch) >= 0
}
