package cfamily

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

type lexer struct {
	c   *scan.Cursor
	req *grammar.Request
	tol bool

	withinPreprocessor bool

	// Reset at every line start, so passes over different line ranges
	// agree.
	chPrevNonWhite byte
	visible        int
	afterUUID      bool
}

func newLexer(req *grammar.Request, tol bool) *lexer {
	return &lexer{
		c:                  scan.Begin(req.Lines, req.First, req.Last, false),
		req:                req,
		tol:                tol,
		withinPreprocessor: req.Bool(OptStylingWithinPreprocessor),
	}
}

func (l *lexer) run() int {
	return scan.Run(l.c, l.step)
}

func (l *lexer) step() scan.Step {
	c := l.c
	if c.AtLineStart() {
		l.chPrevNonWhite = ' '
		l.visible = 0
		l.afterUUID = false
	}

	// A backslash newline joins lines whatever the style.
	if c.Ch() == '\\' {
		switch {
		case c.Match("\\\n"):
			c.Forward()
			return scan.Advance
		case c.Match("\\\r\n"):
			c.ForwardN(2)
			return scan.Advance
		}
	}

	l.terminate()

	if c.AtLineEnd() {
		return scan.Advance
	}

	if c.Style() == Default {
		l.begin()
	}

	if !scan.IsSpace(c.Ch()) {
		l.chPrevNonWhite = c.Ch()
		l.visible++
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
		c.SetStyle(Default)
	case Number:
		if !isWordChar(ch) {
			c.SetStyle(Default)
		}
	case Identifier:
		if !isWordChar(ch) || ch == '.' {
			l.identifier()
		}
	case Preprocessor:
		if l.withinPreprocessor {
			if scan.IsSpace(ch) {
				c.SetStyle(Default)
			}
		} else if c.AtLineEnd() {
			c.SetStyle(Default)
		}
	case Comment:
		if c.Match("*/") {
			c.Forward()
			c.ForwardSetStyle(Default)
		}
	case CommentDoc:
		switch {
		case c.Match("*/"):
			c.Forward()
			c.ForwardSetStyle(Default)
		case ch == '@' || ch == '\\':
			c.SetStyle(CommentDocKeyword)
		}
	case CommentLine, CommentLineDoc:
		if c.AtLineEnd() {
			c.SetStyle(Default)
		}
	case CommentDocKeyword:
		switch {
		case c.Match("*/"):
			c.ChangeState(CommentDocKeywordError)
			c.Forward()
			c.ForwardSetStyle(Default)
		case !isDoxygenChar(ch):
			tag := c.Current()
			if !scan.IsSpace(ch) || !l.req.Keywords.InList(docKeywordList, tag[1:]) {
				c.ChangeState(CommentDocKeywordError)
			}
			c.SetStyle(CommentDoc)
		}
	case String:
		l.quoted('"')
	case Character:
		l.quoted('\'')
	case Regex:
		switch {
		case scan.IsEOL(ch):
			c.SetStyle(Default)
		case ch == '/':
			c.ForwardSetStyle(Default)
		case ch == '\\' && (c.ChNext() == '\\' || c.ChNext() == '/'):
			c.Forward()
		}
	case Verbatim:
		if ch == '"' {
			if c.ChNext() == '"' {
				c.Forward()
			} else {
				c.ForwardSetStyle(Default)
			}
		}
	case UUID:
		if scan.IsEOL(ch) || ch == ')' {
			c.SetStyle(Default)
		}
	}
}

// quoted ends a string or character literal at an unescaped closing
// quote. Literals are not ended by the end of the line.
func (l *lexer) quoted(closing byte) {
	c := l.c
	switch c.Ch() {
	case '\\':
		switch c.ChNext() {
		case '"', '\'', '\\':
			c.Forward()
		}
	case closing:
		c.ForwardSetStyle(Default)
	}
}

func (l *lexer) identifier() {
	c := l.c
	s := c.Current()
	if kw, ok := l.req.Keyword(s); ok {
		c.ChangeState(Word1 + kw)
		if kw == 0 && l.tol {
			l.afterUUID = s == "uuid"
		}
	} else if l.tol && len(s) > 1 && s[0] == '@' {
		c.ChangeState(ClassID)
	}
	c.SetStyle(Default)
}

func (l *lexer) begin() {
	c := l.c
	ch := c.Ch()
	switch {
	case scan.IsSpaceOrTab(ch):
		c.SetStyle(Whitespace)
	case l.tol && c.Match(`@"`):
		c.SetStyle(Verbatim)
		c.Forward()
	case scan.IsDigit(ch) || (ch == '.' && scan.IsDigit(c.ChNext())):
		l.word(Number)
	case isWordStart(ch) || (l.tol && ch == '@'):
		l.word(Identifier)
	case c.Match("/*"):
		if c.Match("/**") || c.Match("/*!") {
			c.SetStyle(CommentDoc)
		} else {
			c.SetStyle(Comment)
		}
		// the '*' must not close the comment
		c.Forward()
	case c.Match("//"):
		if c.Match("///") || c.Match("//!") {
			c.SetStyle(CommentLineDoc)
		} else {
			c.SetStyle(CommentLine)
		}
	case ch == '/' && isOKBeforeRegex(l.chPrevNonWhite):
		c.SetStyle(Regex)
	case ch == '"':
		c.SetStyle(String)
	case ch == '\'':
		c.SetStyle(Character)
	case ch == '#' && l.visible == 0:
		// Directives are alone on their line.
		c.SetStyle(Preprocessor)
		c.Forward()
		for c.More() && scan.IsSpaceOrTab(c.Ch()) {
			c.Forward()
		}
		if c.AtLineEnd() {
			c.SetStyle(Default)
		}
	case scan.IsOperator(ch):
		c.SetStyle(Operator)
	}
}

// word starts a number or identifier, or the literal following uuid.
func (l *lexer) word(style int) {
	if l.afterUUID {
		l.afterUUID = false
		style = UUID
	}
	l.c.SetStyle(style)
}

func isOKBeforeRegex(ch byte) bool {
	return ch == '(' || ch == '=' || ch == ','
}

func isWordChar(ch byte) bool {
	return ch < 0x80 && scan.IsWordChar(ch)
}

func isWordStart(ch byte) bool {
	return ch < 0x80 && scan.IsWordStart(ch)
}

func isDoxygenChar(ch byte) bool {
	switch ch {
	case '$', '@', '\\', '&', '<', '>', '#', '{', '}', '[', ']':
		return true
	}
	return scan.IsLower(ch)
}
