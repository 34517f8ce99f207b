package tcl

import (
	"strings"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

type lexer struct {
	c   *scan.Cursor
	req *grammar.Request

	lineState    scan.LineState
	continuation bool
	cmdExpected  bool
	subParen     bool
	leadingWS    int

	// braceDepth matches braces inside a comment, one line at a time.
	braceDepth int
}

func newLexer(req *grammar.Request) *lexer {
	// Back up one line so a continuation or open string ending on the
	// line above the change is seen.
	first := req.First
	if first > 0 {
		first--
	}
	l := &lexer{
		c:   scan.Begin(req.Lines, first, req.Last, false),
		req: req,
	}
	if first > 0 {
		prev := req.Lines.State(first - 1)
		l.lineState = prev & lsMaskState
		l.continuation = prev.Has(lsContinuation)
	}
	return l
}

func (l *lexer) run() int {
	return scan.Run(l.c, l.step)
}

func (l *lexer) step() scan.Step {
	c := l.c
	if c.AtLineStart() {
		l.lineStart()
	}

	if !l.terminate() {
		return scan.Advance
	}

	if c.AtLineEnd() {
		l.endLine()
		return scan.Advance
	}

	if c.Style() == Default {
		l.begin()
	}
	return scan.Advance
}

// lineStart restores the construct left open by the previous line and
// skips the leading whitespace.
func (l *lexer) lineStart() {
	c := l.c
	l.cmdExpected = false
	switch {
	case l.lineState == lsOpenComment:
		c.SetStyle(CommentLine)
	case l.lineState == lsOpenDoubleQuote:
		c.SetStyle(InQuote)
	case l.lineState == lsVarnameInBraces:
		c.SetStyle(SubBrace)
	case l.lineState == lsCommentBox && (c.Ch() == '#' || c.Match(" #")):
		c.SetStyle(CommentBox)
	default:
		if scan.IsSpaceOrTab(c.Ch()) {
			c.SetStyle(Whitespace)
		} else {
			c.SetStyle(Default)
		}
		l.cmdExpected = !l.continuation && (isWordStart(c.Ch()) || scan.IsSpaceOrTab(c.Ch()))
	}

	for !c.AtLineEnd() && scan.IsSpaceOrTab(c.Ch()) {
		c.Forward()
	}
	l.leadingWS = c.Pos()
	l.braceDepth = 0
}

// terminate ends the current style where the character does not belong
// to it. It returns false when the character is fully handled.
func (l *lexer) terminate() bool {
	c := l.c
	ch := c.Ch()
	switch style := c.Style(); {
	case style == Whitespace:
		if !scan.IsSpaceOrTab(ch) {
			c.SetStyle(Default)
		}
	case style == SubBrace:
		// ${ holds everything up to the closing brace, backslashes too.
		if ch == '}' {
			c.StyleAhead(1, Operator)
			c.SetStyle(Default)
		}
		return c.AtLineEnd()
	case style == Number:
		if !isNumberChar(ch) {
			c.SetStyle(Default)
		}
	case style == InQuote:
		if c.IsEscaped(0) {
			break
		}
		switch ch {
		case '"':
			c.ForwardSetStyle(Default)
		case '[', ']', '$':
			l.cmdExpected = ch == '['
			c.StyleAhead(1, Operator)
			c.SetStyle(InQuote)
			return false
		}
	case style == Operator:
		c.SetStyle(Default)
	case style == Substitution:
		switch ch {
		case '(':
			l.subParen = true
			c.StyleAhead(1, Operator)
			c.SetStyle(Substitution)
			return false
		case ')':
			c.SetStyle(Operator)
			l.subParen = false
			return false
		case '$':
			return false
		case ',':
			if l.subParen {
				c.StyleAhead(1, Operator)
				c.SetStyle(Substitution)
			} else {
				c.SetStyle(Operator)
			}
			return false
		}
		if !isWordChar(ch) {
			c.SetStyle(Default)
			l.subParen = false
		}
	case isComment(style):
		if !c.IsEscaped(0) {
			switch ch {
			case '{':
				l.braceDepth++
			case '}':
				l.braceDepth--
			}
		}
		// A closing brace that was not opened in the comment ends the
		// enclosing body.
		if ch == '}' && l.braceDepth < 0 {
			c.SetStyle(Operator)
			c.ForwardSetStyle(Default)
		}
	case isWordChar(ch):
	case style == Modifier || (style == Identifier && l.cmdExpected):
		if l.cmdExpected {
			word := strings.TrimRight(c.Current(), "\r")
			word = strings.TrimLeft(word, ":")
			if kw, ok := l.req.Keyword(word); ok {
				c.ChangeState(Word1 + kw)
			}
		}
		l.cmdExpected = false
		c.SetStyle(Default)
	case style == Identifier:
		c.SetStyle(Default)
	}
	return true
}

func (l *lexer) endLine() {
	c := l.c
	var flags scan.LineState
	l.lineState = 0

	l.continuation = !c.AtLineStart() && c.ChPrev() == '\\' && !c.IsEscaped(-1)
	if l.continuation {
		flags |= lsContinuation
	}

	style := c.Style()
	switch {
	case style == InQuote:
		l.lineState = lsOpenDoubleQuote
	case style == SubBrace:
		l.lineState = lsVarnameInBraces
	case l.continuation:
		if isComment(style) {
			l.lineState = lsOpenComment
		}
	case style == CommentBox:
		l.lineState = lsCommentBox
	}

	// The folder needs to know about lines holding nothing but a
	// comment, and about blank lines.
	if style != Comment && isComment(style) {
		flags |= lsOnlyComment
	}
	if l.leadingWS == c.Pos() {
		flags |= lsBlank
	}
	c.Lines().SetState(c.Line(), flags|l.lineState)

	switch l.lineState {
	case lsCommentBox, lsOpenDoubleQuote, lsVarnameInBraces:
	default:
		c.SetStyle(Default)
	}
}

func (l *lexer) begin() {
	c := l.c
	ch := c.Ch()
	if isWordStart(ch) {
		c.SetStyle(Identifier)
		return
	}
	if scan.IsDigit(ch) && !isWordChar(c.ChPrev()) {
		c.SetStyle(Number)
		if c.Match("0x") && scan.IsHexDigit(c.Rel(2)) {
			c.Forward()
		}
		return
	}

	switch ch {
	case ' ', '\t':
		c.SetStyle(Whitespace)
	case '\\':
		c.SetStyle(Operator)
	case '"':
		c.SetStyle(InQuote)
	case '{':
		if c.IsEscaped(0) {
			c.SetStyle(Identifier)
			return
		}
		// {*} expands the word that follows it.
		if c.Match("{*}") {
			switch c.Rel(3) {
			case '{', '$', '[':
				c.StyleAhead(3, Expand)
				c.SetStyle(Default)
				return
			}
		}
		c.SetStyle(Operator)
		l.cmdExpected = true
	case '}':
		if c.IsEscaped(0) {
			c.SetStyle(Identifier)
			return
		}
		c.SetStyle(Operator)
	case '[':
		l.cmdExpected = true
		c.SetStyle(Operator)
	case ']', '(', ')':
		c.SetStyle(Operator)
	case ';':
		c.SetStyle(Operator)
		l.cmdExpected = true
	case '$':
		l.subParen = false
		if c.ChNext() == '{' {
			c.StyleAhead(2, Operator)
			c.SetStyle(SubBrace)
		} else {
			c.SetStyle(Substitution)
		}
	case '#':
		l.hash()
	case '-':
		switch {
		case isWordChar(c.ChPrev()):
			// text-20.59
			c.SetStyle(Identifier)
		case scan.IsDigit(c.ChNext()):
			c.SetStyle(Number)
		default:
			c.SetStyle(Modifier)
		}
	default:
		if scan.IsOperator(ch) {
			c.SetStyle(Operator)
		}
	}
}

func (l *lexer) hash() {
	c := l.c
	pos := c.Pos()
	switch {
	case l.leadingWS < pos && l.cmdExpected:
		// after ';' or an opening brace
		c.SetStyle(Comment)
	case l.leadingWS == pos:
		switch {
		case c.ChNext() == '~':
			c.SetStyle(BlockComment)
		case c.AtLineStart() && (c.ChNext() == '#' || c.ChNext() == '-'):
			c.SetStyle(CommentBox)
		default:
			c.SetStyle(CommentLine)
		}
	case (scan.IsSpaceOrTab(c.ChPrev()) || c.ChPrev() == '\\' || scan.IsOperator(c.ChPrev())) &&
		scan.IsHexDigit(c.ChNext()):
		c.SetStyle(Number)
	default:
		// foo#bar
		c.SetStyle(Identifier)
	}
}

func isWordChar(ch byte) bool {
	return ch >= 0x80 || scan.IsAlnum(ch) || ch == '_' || ch == ':' || ch == '.'
}

func isWordStart(ch byte) bool {
	return ch >= 0x80 || scan.IsAlpha(ch) || ch == '_'
}

// isNumberChar accepts more than a strict number, several dots included.
func isNumberChar(ch byte) bool {
	return ch < 0x80 && (scan.IsHexDigit(ch) || ch == 'e' || ch == 'E' ||
		ch == '.' || ch == '-' || ch == '+')
}
