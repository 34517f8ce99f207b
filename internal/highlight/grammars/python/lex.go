package python

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// expect records what the previous keyword makes of the next name.
type expect int

const (
	expectOther expect = iota
	expectClass
	expectDef
	expectImport
)

type lexer struct {
	c    *scan.Cursor
	req  *grammar.Request
	hex  bool
	last expect
}

func newLexer(req *grammar.Request) *lexer {
	// Start one line early so a change that closes or opens a string on
	// the first line is seen from the line before.
	first := req.First
	if first > 0 {
		first--
	}
	return &lexer{
		c:   scan.Begin(req.Lines, first, req.Last, false),
		req: req,
	}
}

func (l *lexer) run() int {
	if l.c.Style() == StringEOL {
		l.c.ChangeState(Default)
	}
	return scan.Run(l.c, l.step)
}

func (l *lexer) step() scan.Step {
	c := l.c
	if c.AtLineStart() && c.Style() == StringEOL {
		c.SetStyle(Default)
	}

	l.terminate()

	if c.AtLineEnd() {
		// A name on the next line never completes this line's keyword.
		l.last = expectOther
		if s := c.Style(); s == String || s == Character {
			c.ChangeState(StringEOL)
		}
		return scan.Advance
	}

	if c.Style() == Default {
		l.begin()
	}
	return scan.Advance
}

func (l *lexer) terminate() {
	c := l.c
	ch := c.Ch()
	switch c.Style() {
	case Whitespace:
		if !scan.IsSpaceOrTab(ch) {
			c.SetStyle(Default)
		}
	case Operator:
		l.last = expectOther
		c.SetStyle(Default)
	case Number:
		exponent := !l.hex && (ch == '+' || ch == '-') && (c.ChPrev() == 'e' || c.ChPrev() == 'E')
		if !isWordChar(ch) && !exponent {
			c.SetStyle(Default)
		}
	case Identifier:
		if ch == '.' || !isWordChar(ch) {
			l.identifier()
		}
	case CommentLine, CommentBlock:
		if scan.IsEOL(ch) {
			c.SetStyle(Default)
		}
	case Decorator:
		switch {
		case scan.IsEOL(ch):
			c.SetStyle(Default)
		case ch == '#':
			l.comment()
		}
	case String, Character:
		closing := byte('"')
		if c.Style() == Character {
			closing = '\''
		}
		switch ch {
		case '\\':
			if c.ChNext() == '\r' && c.Rel(2) == '\n' {
				c.Forward()
			}
			c.Forward()
		case closing:
			c.ForwardSetStyle(Default)
		}
	case Triple:
		l.triple("'''")
	case TripleDouble:
		l.triple(`"""`)
	}
}

func (l *lexer) triple(delim string) {
	c := l.c
	switch {
	case c.Ch() == '\\':
		c.Forward()
	case c.Match(delim):
		c.ForwardN(2)
		c.ForwardSetStyle(Default)
	}
}

// identifier classifies a finished name from the keyword lists and the
// keyword before it.
func (l *lexer) identifier() {
	c := l.c
	s := c.Current()
	style := Identifier
	if kw, ok := l.req.Keyword(s); l.last == expectImport && s == "as" {
		style = Word1
	} else if ok {
		style = Word1 + kw
	} else if l.last == expectClass {
		style = ClassName
	} else if l.last == expectDef {
		style = DefName
	}
	c.ChangeState(style)
	c.SetStyle(Default)

	l.last = expectOther
	if style == Word1 {
		switch s {
		case "class":
			l.last = expectClass
		case "def":
			l.last = expectDef
		case "import":
			l.last = expectImport
		}
	}
}

func (l *lexer) comment() {
	if l.c.ChNext() == '#' {
		l.c.SetStyle(CommentBlock)
	} else {
		l.c.SetStyle(CommentLine)
	}
}

func (l *lexer) begin() {
	c := l.c
	ch := c.Ch()
	switch {
	case scan.IsSpaceOrTab(ch):
		c.SetStyle(Whitespace)
	case scan.IsDigit(ch) || (ch == '.' && scan.IsDigit(c.ChNext())):
		l.hex = ch == '0' && (c.ChNext() == 'x' || c.ChNext() == 'X')
		c.SetStyle(Number)
	case scan.IsOperator(ch) || ch == '`':
		c.SetStyle(Operator)
	case ch == '#':
		l.comment()
	case ch == '@':
		c.SetStyle(Decorator)
	default:
		if style, n, ok := l.stringStart(); ok {
			c.SetStyle(style)
			c.ForwardN(n - 1)
			return
		}
		if isWordStart(ch) {
			c.SetStyle(Identifier)
		}
	}
}

// stringStart recognises a string literal with an optional prefix of up
// to two letters. It returns the string style and the length of the
// prefix and opening quotes.
func (l *lexer) stringStart() (int, int, bool) {
	c := l.c
	i := 0
	for i < 2 && isPrefix(c.Rel(i)) {
		i++
	}
	q := c.Rel(i)
	if q != '"' && q != '\'' {
		return 0, 0, false
	}
	if c.Rel(i+1) == q && c.Rel(i+2) == q {
		if q == '"' {
			return TripleDouble, i + 3, true
		}
		return Triple, i + 3, true
	}
	if q == '"' {
		return String, i + 1, true
	}
	return Character, i + 1, true
}

func isPrefix(ch byte) bool {
	switch ch {
	case 'r', 'R', 'u', 'U', 'b', 'B', 'f', 'F':
		return true
	}
	return false
}

func isWordChar(ch byte) bool {
	return ch < 0x80 && scan.IsWordChar(ch)
}

func isWordStart(ch byte) bool {
	return ch < 0x80 && scan.IsWordStart(ch)
}
