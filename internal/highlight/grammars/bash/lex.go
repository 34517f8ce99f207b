package bash

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Number bases beyond the explicit 2..64 range.
const (
	baseError      = 65
	baseDecimal    = 66
	baseHex        = 67
	baseOctal      = 68
	baseOctalError = 69
)

// hereDelimMax bounds the length of a heredoc delimiter.
const hereDelimMax = 256

// Heredoc sub-states.
const (
	hereIdle    = 0 // also: just saw "<<" while the style is HereDelim
	hereCollect = 1
	hereBody    = 2
)

// A line that ends inside a here document records the delimiter in its
// state, so editing the delimiter changes the state of every body line.
const (
	stateHereBody   scan.LineState = 1 << 0
	stateHereIndent scan.LineState = 1 << 1
	stateHereShift                 = 2
)

// quote tracks the delimiters of a string-like construct.
type quote struct {
	rep   int
	count int
	up    byte
	down  byte
}

func newQuote(rep int) quote {
	return quote{rep: rep}
}

func (q *quote) open(ch byte) {
	q.count++
	q.up = ch
	q.down = opposite(ch)
}

func opposite(ch byte) byte {
	switch ch {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return ch
}

type hereDoc struct {
	state     int
	quote     byte
	quoted    bool
	indent    bool
	delimiter []byte
	sum       scan.LineState
}

// enterBody starts the body and computes the line state body lines
// carry.
func (h *hereDoc) enterBody() {
	h.state = hereBody
	sum := fnv.New32a()
	sum.Write(h.delimiter)
	h.sum = stateHereBody | scan.LineState(sum.Sum32())<<stateHereShift
	if h.indent {
		h.sum |= stateHereIndent
	}
}

func (h *hereDoc) lineState() scan.LineState {
	if h.state != hereBody {
		return 0
	}
	return h.sum
}

type lexer struct {
	c    *scan.Cursor
	req  *grammar.Request
	here hereDoc
	q    quote
	base int
}

func newLexer(req *grammar.Request) *lexer {
	return &lexer{
		c:   scan.Begin(req.Lines, req.First, req.Last, false),
		req: req,
		q:   newQuote(1),
	}
}

func (l *lexer) run() int {
	l.resync()
	return scan.Run(l.c, func() scan.Step {
		st := l.step()
		l.c.Lines().SetState(l.c.Line(), l.here.lineState())
		return st
	})
}

// resync walks back to the start of constructs that cannot be lexed
// from the middle.
func (l *lexer) resync() {
	c := l.c
	if c.Style() == HereQ {
		for !c.AtStartOfDoc() && c.Style() != HereDelim {
			c.Back()
		}
		c.ToLineStart()
	}
	switch c.Style() {
	case String, Backticks, Character, Param, Number, Identifier, CommentLine:
		for !c.AtStartOfDoc() && c.StylePrev() == c.Style() {
			c.Back()
		}
		c.ChangeState(Default)
	}
}

func (l *lexer) step() scan.Step {
	c := l.c

	if c.ChPrev() == '\r' && c.Ch() == '\n' {
		return scan.Advance
	}

	if c.AtLineEnd() && l.here.state == hereCollect {
		if len(l.here.delimiter) == 0 && !l.here.quoted {
			l.here.state = hereIdle
		} else {
			l.here.enterBody()
			if l.here.quoted && c.Style() == HereDelim {
				// The closing quote is missing; colour the body anyway.
				c.ChangeState(Error)
			}
			c.SetStyle(HereQ)
			return scan.Advance
		}
	}

	if st, done := l.terminate(); done {
		return st
	}

	if c.Style() == Default {
		return l.begin()
	}
	return scan.Advance
}

// terminate ends the current style when the current character cannot
// continue it. It reports done when the step is finished.
func (l *lexer) terminate() (scan.Step, bool) {
	c := l.c
	switch c.Style() {
	case Whitespace:
		if !scan.IsSpaceOrTab(c.Ch()) {
			c.SetStyle(Default)
		}
	case Operator:
		c.SetStyle(Default)
	case Number:
		l.number()
	case Identifier:
		ch := c.Ch()
		if !scan.IsWordChar(ch) && ch != '+' && ch != '-' {
			if kw, ok := l.req.Keyword(c.Current()); ok {
				c.ChangeState(Word1 + kw)
			}
			c.SetStyle(Default)
		}
	case CommentLine:
		switch {
		case c.Ch() == '\\' && scan.IsEOL(c.ChNext()):
			if c.ChNext() == '\r' && c.Rel(2) == '\n' {
				c.ForwardN(2)
			} else {
				c.Forward()
			}
		case scan.IsEOL(c.Ch()):
			c.SetStyle(Default)
		}
	case Scalar:
		if isEndVar(c.Ch()) {
			if c.Pos() == c.Start()+1 {
				c.ForwardSetStyle(Default)
			} else {
				c.SetStyle(Default)
			}
		}
	case String, Character, Backticks, Param:
		l.quoted()
	case HereDelim:
		return l.hereDelim()
	case HereQ:
		return l.hereBody()
	}
	return scan.Advance, false
}

// number continues or ends a numeric literal.
func (l *lexer) number() {
	c := l.c
	digit := translateDigit(c.Ch())
	switch l.base {
	case baseDecimal:
		if c.Ch() == '#' {
			l.base = explicitBase(c.Current())
			return
		}
		if !scan.IsDigit(c.Ch()) {
			l.endNumber()
		}
	case baseHex:
		if !(digit < 16 || (digit >= 36 && digit <= 41)) {
			l.endNumber()
		}
	case baseOctal, baseOctalError:
		if digit > 7 {
			if digit <= 9 {
				l.base = baseOctalError
			} else {
				l.endNumber()
			}
		}
	case baseError:
		if digit > 9 {
			l.endNumber()
		}
	default:
		if digit == baseError {
			l.endNumber()
			return
		}
		if l.base <= 36 && digit >= 36 {
			digit -= 26
		}
		if digit >= l.base {
			if digit <= 9 {
				l.base = baseError
			} else {
				l.endNumber()
			}
		}
	}
}

func (l *lexer) endNumber() {
	if l.base == baseError || l.base == baseOctalError {
		l.c.ChangeState(Error)
	}
	l.c.SetStyle(Default)
}

// quoted handles the body of strings, backticks and ${...} forms.
func (l *lexer) quoted() {
	c := l.c
	ch := c.Ch()
	switch {
	case l.q.down == 0 && !scan.IsSpace(ch):
		l.q.open(ch)
	case ch == '\\' && l.q.up != '\\':
		c.Forward()
	case ch == l.q.down:
		l.q.count--
		if l.q.count == 0 {
			l.q.rep--
			if l.q.rep <= 0 {
				c.ForwardSetStyle(Default)
			}
			if l.q.up == l.q.down {
				l.q.count++
			}
		}
	case ch == l.q.up:
		l.q.count++
	}
}

// hereDelim runs the "<<" classification and delimiter collection.
func (l *lexer) hereDelim() (scan.Step, bool) {
	c := l.c
	h := &l.here
	switch h.state {
	case hereIdle:
		next := c.ChNext()
		h.state = hereCollect
		h.quote = next
		h.quoted = false
		h.delimiter = h.delimiter[:0]
		switch {
		case next == '\'' || next == '"':
			c.Forward()
			h.quoted = true
		case !h.indent && next == '-':
			h.indent = true
			h.state = hereIdle
		case scan.IsAlpha(next) || next == '_' || next == '\\' || next == '-' || next == '+' || next == '!':
			// bare delimiter
		case next == '<':
			// here string: <<< is a plain operator
			h.state = hereIdle
			c.ChangeState(Operator)
			c.ForwardN(2)
			c.SetStyle(Default)
			return scan.Reprocess, true
		case scan.IsSpaceOrTab(next):
			h.state = hereIdle
		case scan.IsEOL(next) || scan.IsDigit(next) || next == '=' || next == '$':
			// shift operators, or nothing to delimit
			h.state = hereIdle
			c.ChangeState(Operator)
			c.Forward()
			c.SetStyle(Default)
			return scan.Reprocess, true
		}
	case hereCollect:
		ch := c.Ch()
		if h.quoted {
			if ch == h.quote {
				c.ForwardSetStyle(Default)
				return scan.Reprocess, true
			}
			if ch == '\\' && c.ChNext() == h.quote {
				c.Forward()
				ch = c.Ch()
			}
			h.delimiter = append(h.delimiter, ch)
		} else {
			switch {
			case scan.IsAlnum(ch) || ch == '_' || ch == '-' || ch == '+' || ch == '!':
				h.delimiter = append(h.delimiter, ch)
			case ch == '\\':
				// escape prefix
			default:
				c.SetStyle(Default)
				return scan.Reprocess, true
			}
		}
		if len(h.delimiter) >= hereDelimMax-1 {
			h.state = hereIdle
			c.ChangeState(Error)
			c.SetStyle(Default)
			return scan.Reprocess, true
		}
	}
	return scan.Advance, false
}

// hereBody ends the heredoc on a line holding only the delimiter.
func (l *lexer) hereBody() (scan.Step, bool) {
	c := l.c
	h := &l.here
	if h.state != hereBody || !c.AtLineStart() {
		return scan.Advance, true
	}
	text := c.Text()
	i := 0
	if h.indent {
		for i < len(text) && text[i] == '\t' {
			i++
		}
	}
	if !c.MatchAt(i, string(h.delimiter)) || !scan.IsEOL(c.At(i+len(h.delimiter))) {
		return scan.Advance, true
	}
	c.ForwardN(i + len(h.delimiter))
	c.SetStyle(Default)
	h.state = hereIdle
	return scan.Reprocess, true
}

// begin decides which style starts at the current character.
func (l *lexer) begin() scan.Step {
	c := l.c
	ch, next := c.Ch(), c.ChNext()
	switch {
	case scan.IsSpaceOrTab(ch):
		c.SetStyle(Whitespace)
	case ch == '\\':
		// escaped character
		c.SetStyle(Identifier)
		if !scan.IsEOL(next) {
			c.Forward()
		}
	case scan.IsDigit(ch):
		c.SetStyle(Number)
		l.base = baseDecimal
		if ch == '0' {
			if next == 'x' || next == 'X' {
				l.base = baseHex
				c.Forward()
			} else if scan.IsDigit(next) {
				l.base = baseOctal
			}
		}
	case scan.IsWordStart(ch):
		c.SetStyle(Identifier)
	case ch == '#':
		c.SetStyle(CommentLine)
	case ch == '"':
		l.startQuote(String, ch)
	case ch == '\'':
		l.startQuote(Character, ch)
	case ch == '`':
		l.startQuote(Backticks, ch)
	case ch == '$':
		l.dollar()
	case ch == '*':
		c.SetStyle(Operator)
		if next == '*' {
			c.Forward()
		}
	case ch == '<' && next == '<':
		c.SetStyle(HereDelim)
		l.here.state = hereIdle
		l.here.indent = false
	case ch == '-' && isSingleCharOp(next) && !scan.IsAlnum(c.Rel(2)):
		// file test operator
		c.SetStyle(Word1)
		c.ForwardN(2)
		c.SetStyle(Default)
		return scan.Reprocess
	case isOperator(ch):
		c.SetStyle(Operator)
	}
	return scan.Advance
}

func (l *lexer) startQuote(style int, ch byte) {
	l.c.SetStyle(style)
	l.q = newQuote(1)
	l.q.open(ch)
}

// dollar classifies the forms introduced by '$'. Inside double quotes
// none of this applies: a quoted string is opaque.
func (l *lexer) dollar() {
	c := l.c
	next := c.ChNext()
	switch {
	case next == '{':
		l.startQuote(Param, next)
	case next == '\'':
		l.startQuote(Character, next)
	case next == '"':
		l.startQuote(String, next)
	case next == '(' && c.Rel(2) == '(':
		c.SetStyle(Operator)
	case next == '(' || next == '`':
		l.startQuote(Backticks, next)
	default:
		c.SetStyle(Scalar)
	}
	c.Forward()
}

func translateDigit(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 36
	case ch == '@':
		return 62
	case ch == '_':
		return 63
	}
	return baseError
}

// explicitBase parses the base of a base#digits literal from the digits
// scanned so far.
func explicitBase(digits string) int {
	if len(digits) == 0 || len(digits) > 2 {
		return baseError
	}
	base, err := strconv.Atoi(digits)
	if err != nil || base > 64 {
		return baseError
	}
	return base
}

func isEndVar(ch byte) bool {
	return !scan.IsAlnum(ch) && ch != '$' && ch != '_'
}

func isSingleCharOp(ch byte) bool {
	return ch != 0 && strings.IndexByte("rwxoRWXOezsfdlpSbctugkTBMACahGLNn", ch) >= 0
}

func isOperator(ch byte) bool {
	return ch != 0 && strings.IndexByte("^&\\%()-+=|{}[]:;>,/<?!.~@", ch) >= 0
}
