package scan

import "fmt"

// Cursor is the scan context of one lex or fold pass.
//
// A cursor is created by Begin for every pass and is never shared;
// grammars keep their own locals next to it. All stepping methods keep
// the character, style and line-boundary views in sync.
type Cursor struct {
	lines Lines
	count int
	last  int

	line   int
	text   []byte
	styles []byte

	pos   int // current byte offset
	start int // flush boundary

	chPrev, ch, chNext          byte
	stylePrev, style, styleNext int

	atLineStart bool
	atLineEnd   bool
	folding     bool
	done        bool

	checking bool
	snapshot lineSnapshot
}

type lineSnapshot struct {
	style int
	state LineState
	level FoldLevel
}

// Begin starts a pass over lines first..last. The last line is clamped
// to the document. In folding mode the cursor replays the styles
// already stored on each line and never writes them.
//
// Begin panics when the document is empty or first is out of range.
func Begin(lines Lines, first, last int, folding bool) *Cursor {
	count := lines.LineCount()
	if count <= 0 {
		panic("scan: begin on empty line sequence")
	}
	if first < 0 || first >= count {
		panic(fmt.Sprintf("scan: first line %d out of range [0,%d)", first, count))
	}
	if last >= count {
		last = count - 1
	}
	if last < first {
		last = first
	}

	c := &Cursor{
		lines:   lines,
		count:   count,
		last:    last,
		folding: folding,
	}
	c.load(first)

	c.style = DefaultStyle
	if first > 0 {
		if s := StyleAtEOL(lines, first-1); s != NoStyle {
			c.style = s
		}
	}
	c.stylePrev = c.style
	c.styleNext = NoStyle
	if folding {
		c.style = c.styleAt(0)
		c.styleNext = c.styleAt(1)
	}

	if first > 0 {
		c.chPrev = '\n'
	} else {
		c.chPrev = ' '
	}
	c.ch = c.At(0)
	c.chNext = c.At(1)
	c.updateFlags()
	return c
}

func (c *Cursor) load(line int) {
	if line < 0 || line >= c.count {
		panic(fmt.Sprintf("scan: line %d out of range [0,%d)", line, c.count))
	}
	c.line = line
	c.text = c.lines.Text(line)
	c.styles = c.lines.Styles(line)
	if len(c.styles) != len(c.text) {
		panic(fmt.Sprintf("scan: line %d has %d styles for %d bytes", line, len(c.styles), len(c.text)))
	}
}

func (c *Cursor) styleAt(i int) int {
	if i >= 0 && i < len(c.styles) {
		return StyleOf(c.styles[i])
	}
	return NoStyle
}

func (c *Cursor) updateFlags() {
	c.atLineStart = c.pos == 0
	c.atLineEnd = (c.ch == '\r' && c.chNext != '\n') || c.ch == '\n' || c.pos >= len(c.text)
}

// More reports whether the pass has characters left.
func (c *Cursor) More() bool { return !c.done }

// Ch returns the current character.
func (c *Cursor) Ch() byte { return c.ch }

// ChNext returns the character after the current one, or ' ' at the
// end of the line.
func (c *Cursor) ChNext() byte { return c.chNext }

// ChPrev returns the character before the current one.
func (c *Cursor) ChPrev() byte { return c.chPrev }

// Style returns the style that the next flush paints with.
func (c *Cursor) Style() int { return c.style }

// StylePrev returns the style of the previous position.
func (c *Cursor) StylePrev() int { return c.stylePrev }

// StyleNext returns the style of the next character in folding mode.
func (c *Cursor) StyleNext() int { return c.styleNext }

// AtLineStart reports whether the cursor is on the first byte of a line.
func (c *Cursor) AtLineStart() bool { return c.atLineStart }

// AtLineEnd reports whether the cursor is on a line terminator.
func (c *Cursor) AtLineEnd() bool { return c.atLineEnd }

// Folding reports whether the cursor replays styles.
func (c *Cursor) Folding() bool { return c.folding }

// Line returns the current line index.
func (c *Cursor) Line() int { return c.line }

// LastLine returns the last line the pass processed. It is only final
// once More returns false.
func (c *Cursor) LastLine() int { return c.line }

// Pos returns the byte offset in the current line.
func (c *Cursor) Pos() int { return c.pos }

// Start returns the flush boundary.
func (c *Cursor) Start() int { return c.start }

// LineLen returns the length of the current line, newline included.
func (c *Cursor) LineLen() int { return len(c.text) }

// LineCount returns the number of lines in the document.
func (c *Cursor) LineCount() int { return c.count }

// Lines returns the line sequence being scanned.
func (c *Cursor) Lines() Lines { return c.lines }

// Text returns the current line. The slice must not be modified.
func (c *Cursor) Text() []byte { return c.text }

// StyleOfPos returns the stored style of a byte in the current line.
func (c *Cursor) StyleOfPos(i int) int { return c.styleAt(i) }

// At returns the byte at offset i of the current line, or ' ' outside
// the line.
func (c *Cursor) At(i int) byte {
	if i >= 0 && i < len(c.text) {
		return c.text[i]
	}
	return ' '
}

// Rel returns the byte n positions from the cursor.
func (c *Cursor) Rel(n int) byte { return c.At(c.pos + n) }

// AtStartOfDoc reports whether the cursor is on the first byte of the
// document.
func (c *Cursor) AtStartOfDoc() bool {
	return c.line == 0 && c.atLineStart
}

// Forward advances one character. At a line end it moves to the next
// line, writing the finished line's styles and applying the fixed-point
// check when past the requested range.
func (c *Cursor) Forward() {
	if c.done {
		return
	}
	if !c.atLineEnd {
		c.forwardChar()
		c.updateFlags()
		return
	}

	if !c.folding {
		c.pos++
		c.Flush()
	}
	if c.line+1 >= c.count {
		c.done = true
		return
	}

	if c.checking {
		if c.snapshot.style == c.style &&
			c.snapshot.state == c.lines.State(c.line) &&
			c.snapshot.level == c.lines.FoldLevel(c.line) {
			c.done = true
			return
		}
	} else if c.line == c.last {
		c.checking = true
	}

	c.forwardLine()
	if c.checking {
		c.snapshot = lineSnapshot{
			style: StyleAtEOL(c.lines, c.line),
			state: c.lines.State(c.line),
			level: c.lines.FoldLevel(c.line),
		}
	}
	c.updateFlags()
}

func (c *Cursor) forwardChar() {
	c.chPrev = c.ch
	c.ch = c.chNext
	c.pos++
	c.chNext = c.At(c.pos + 1)
	c.stylePrev = c.style
	if c.folding {
		c.style = c.styleNext
		c.styleNext = c.styleAt(c.pos + 1)
	}
}

func (c *Cursor) forwardLine() {
	c.load(c.line + 1)
	c.stylePrev = c.style
	if c.folding {
		c.style = c.styleAt(0)
		c.styleNext = c.styleAt(1)
	}
	c.start = 0
	c.pos = 0
	c.chPrev = '\n'
	c.ch = c.At(0)
	c.chNext = c.At(1)
}

// ForwardN advances n characters.
func (c *Cursor) ForwardN(n int) {
	for ; n > 0 && !c.done; n-- {
		c.Forward()
	}
}

// ForwardSetStyle advances one character and then sets the style.
func (c *Cursor) ForwardSetStyle(style int) {
	c.Forward()
	c.SetStyle(style)
}

// Back retreats one character, crossing to the end of the previous line
// at a line start. It is meant for resynchronising at the start of a
// pass; at the start of the document the pass ends.
func (c *Cursor) Back() {
	if c.done {
		return
	}
	switch {
	case !c.atLineStart:
		c.chNext = c.ch
		c.ch = c.chPrev
		c.pos--
		c.chPrev = c.prevChar(c.pos)
		c.styleNext = c.style
		c.style = c.stylePrev
		c.stylePrev = c.prevStyle(c.pos)
	case c.line > 0:
		c.load(c.line - 1)
		c.chNext = c.ch
		c.ch = c.chPrev
		c.pos = len(c.text) - 1
		c.chPrev = c.prevChar(c.pos)
		c.styleNext = c.style
		c.style = c.stylePrev
		c.stylePrev = c.prevStyle(c.pos)
	default:
		c.done = true
		return
	}
	c.start = c.pos
	c.updateFlags()
}

func (c *Cursor) prevChar(pos int) byte {
	if pos > 0 {
		return c.text[pos-1]
	}
	if c.line > 0 {
		return '\n'
	}
	return ' '
}

func (c *Cursor) prevStyle(pos int) int {
	if pos > 0 {
		return c.styleAt(pos - 1)
	}
	if c.line > 0 {
		return StyleAtEOL(c.lines, c.line-1)
	}
	return NoStyle
}

// ToLineStart backs up to the first byte of the current line and takes
// the style the previous line ended with, or the default style on the
// first line.
func (c *Cursor) ToLineStart() {
	for !c.done && c.pos > 0 {
		c.Back()
	}
	c.style = c.stylePrev
	if c.style == NoStyle {
		c.style = DefaultStyle
	}
}

// JumpToEOL moves to the line terminator, flushing the pending run
// first.
func (c *Cursor) JumpToEOL() {
	if c.done || c.atLineEnd {
		return
	}
	c.pos = len(c.text) - 1
	c.chPrev = c.prevChar(c.pos)
	c.ch = '\n'
	c.chNext = ' '
	if !c.folding {
		c.Flush()
	}
	c.stylePrev = c.prevStyle(c.pos)
	if c.folding {
		c.style = c.styleAt(c.pos)
		c.styleNext = NoStyle
	}
	c.updateFlags()
}

// Flush paints every byte from the flush boundary up to the cursor with
// the current style and moves the boundary to the cursor. A boundary
// already past the cursor, left by StyleAhead, is kept.
func (c *Cursor) Flush() {
	if c.start >= c.pos {
		return
	}
	if !c.folding {
		b := StyleByte(c.style)
		for i := c.start; i < c.pos && i < len(c.styles); i++ {
			c.styles[i] = b
		}
	}
	c.start = c.pos
}

// SetStyle flushes the pending run and switches style.
func (c *Cursor) SetStyle(style int) {
	c.Flush()
	c.style = style
}

// ChangeState switches style without flushing, reclassifying the
// pending run.
func (c *Cursor) ChangeState(style int) {
	c.style = style
}

// Complete flushes whatever is pending at the end of a pass.
func (c *Cursor) Complete() {
	c.Flush()
}

// StyleAhead paints the current byte and the n-1 following bytes with
// style, leaving the cursor on the last of them. The bytes must lie on
// the current line.
func (c *Cursor) StyleAhead(n int, style int) {
	c.Flush()
	if n <= 0 {
		return
	}
	end := c.pos + n
	if end > len(c.text) {
		end = len(c.text)
	}
	if !c.folding {
		b := StyleByte(style)
		for i := c.pos; i < end; i++ {
			c.styles[i] = b
		}
	}
	c.ForwardN(end - c.pos - 1)
	c.start = end
}

// ColourRange paints bytes from..to of the current line.
func (c *Cursor) ColourRange(from, to int, style int) {
	if c.folding {
		return
	}
	b := StyleByte(style)
	for i := from; i <= to; i++ {
		if i >= 0 && i < len(c.styles) {
			c.styles[i] = b
		}
	}
}

// Current returns the bytes of the pending run, capped at 99 bytes.
func (c *Cursor) Current() string {
	end := c.pos
	if end > len(c.text) {
		end = len(c.text)
	}
	if c.start >= end {
		return ""
	}
	if end-c.start > maxTokenLen {
		end = c.start + maxTokenLen
	}
	return string(c.text[c.start:end])
}

const maxTokenLen = 99

// Match reports whether s starts at the cursor.
func (c *Cursor) Match(s string) bool {
	return c.MatchAt(c.pos, s)
}

// MatchAt reports whether s starts at offset i of the current line.
func (c *Cursor) MatchAt(i int, s string) bool {
	if i < 0 || i+len(s) > len(c.text) {
		return false
	}
	return string(c.text[i:i+len(s)]) == s
}

// IsEscaped reports whether the byte at offset from the cursor is
// preceded by an odd run of backslashes.
func (c *Cursor) IsEscaped(offset int) bool {
	n := 0
	for i := c.pos + offset - 1; i >= 0 && i < len(c.text) && c.text[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}
