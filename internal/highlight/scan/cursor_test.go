package scan

import (
	"bytes"
	"testing"
)

type testLines struct {
	text   [][]byte
	styles [][]byte
	states []LineState
	levels []FoldLevel
}

// newTestLines builds unstyled lines; each string gets a newline.
func newTestLines(lines ...string) *testLines {
	t := &testLines{}
	for _, l := range lines {
		text := []byte(l + "\n")
		t.text = append(t.text, text)
		t.styles = append(t.styles, bytes.Repeat([]byte{Unstyled}, len(text)))
		t.states = append(t.states, 0)
		t.levels = append(t.levels, FoldBase)
	}
	return t
}

func (t *testLines) LineCount() int                         { return len(t.text) }
func (t *testLines) Text(line int) []byte                   { return t.text[line] }
func (t *testLines) Styles(line int) []byte                 { return t.styles[line] }
func (t *testLines) State(line int) LineState               { return t.states[line] }
func (t *testLines) SetState(line int, state LineState)     { t.states[line] = state }
func (t *testLines) FoldLevel(line int) FoldLevel           { return t.levels[line] }
func (t *testLines) SetFoldLevel(line int, level FoldLevel) { t.levels[line] = level }

func (t *testLines) fill(line int, style byte) {
	for i := range t.styles[line] {
		t.styles[line][i] = style
	}
}

func TestCursorWalk(t *testing.T) {
	lines := newTestLines("ab", "c")
	c := Begin(lines, 0, 1, false)

	var got []byte
	var starts, ends int
	for c.More() {
		got = append(got, c.Ch())
		if c.AtLineStart() {
			starts++
		}
		if c.AtLineEnd() {
			ends++
		}
		c.Forward()
	}
	if string(got) != "ab\nc\n" {
		t.Errorf("walked %q, want %q", got, "ab\nc\n")
	}
	if starts != 2 || ends != 2 {
		t.Errorf("line starts/ends = %d/%d, want 2/2", starts, ends)
	}
	if c.LastLine() != 1 {
		t.Errorf("LastLine = %d, want 1", c.LastLine())
	}
}

func TestCursorNeighbours(t *testing.T) {
	lines := newTestLines("xy", "z")
	c := Begin(lines, 1, 1, false)
	if c.ChPrev() != '\n' {
		t.Errorf("ChPrev at a later line = %q, want newline", c.ChPrev())
	}
	c = Begin(lines, 0, 0, false)
	if c.ChPrev() != ' ' || c.Ch() != 'x' || c.ChNext() != 'y' {
		t.Errorf("got %q %q %q", c.ChPrev(), c.Ch(), c.ChNext())
	}
	if !c.AtStartOfDoc() {
		t.Error("expected start of document")
	}
	if c.At(-1) != ' ' || c.At(99) != ' ' {
		t.Error("At outside the line should be a space")
	}
	if c.Rel(1) != 'y' {
		t.Errorf("Rel(1) = %q", c.Rel(1))
	}
}

func TestCursorStyling(t *testing.T) {
	lines := newTestLines("ab", "c")
	c := Begin(lines, 0, 1, false)
	last := Run(c, func() Step {
		if c.Ch() == 'b' {
			c.SetStyle(2)
		}
		return Advance
	})

	if last != 1 {
		t.Errorf("Run returned %d, want 1", last)
	}
	if want := []byte{0, 2, 2}; !bytes.Equal(lines.styles[0], want) {
		t.Errorf("line 0 styles = %v, want %v", lines.styles[0], want)
	}
	if want := []byte{2, 2}; !bytes.Equal(lines.styles[1], want) {
		t.Errorf("line 1 styles = %v, want %v", lines.styles[1], want)
	}
}

func TestCursorContinuesStyleFromPreviousLine(t *testing.T) {
	lines := newTestLines("a", "b")
	lines.fill(0, 5)
	c := Begin(lines, 1, 1, false)
	if c.Style() != 5 {
		t.Errorf("Style = %d, want 5", c.Style())
	}
}

func TestCursorFixedPoint(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(*testLines)
		wantLast int
	}{
		{
			name: "stored line agrees",
			prepare: func(l *testLines) {
				l.fill(1, 0)
			},
			wantLast: 1,
		},
		{
			name:     "stored line unstyled",
			prepare:  func(*testLines) {},
			wantLast: 3,
		},
		{
			name: "stored state differs",
			prepare: func(l *testLines) {
				l.fill(1, 0)
				l.fill(2, 0)
				l.states[1] = 7
			},
			wantLast: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := newTestLines("a", "b", "c", "d")
			tt.prepare(lines)
			c := Begin(lines, 0, 0, false)
			last := Run(c, func() Step {
				if c.AtLineEnd() {
					lines.SetState(c.Line(), 0)
				}
				return Advance
			})
			if last != tt.wantLast {
				t.Errorf("last line = %d, want %d", last, tt.wantLast)
			}
		})
	}
}

func TestCursorFolding(t *testing.T) {
	lines := newTestLines("ab")
	lines.styles[0] = []byte{3, 4, 4}
	c := Begin(lines, 0, 0, true)

	if !c.Folding() {
		t.Fatal("expected folding mode")
	}
	if c.Style() != 3 || c.StyleNext() != 4 {
		t.Errorf("styles = %d/%d, want 3/4", c.Style(), c.StyleNext())
	}
	c.Forward()
	if c.Style() != 4 || c.StylePrev() != 3 {
		t.Errorf("after Forward styles = %d/%d, want 4 prev 3", c.Style(), c.StylePrev())
	}
	c.SetStyle(9)
	Run(c, func() Step { return Advance })
	if want := []byte{3, 4, 4}; !bytes.Equal(lines.styles[0], want) {
		t.Errorf("folding pass wrote styles: %v", lines.styles[0])
	}
}

func TestCursorBackAndLineStart(t *testing.T) {
	lines := newTestLines("abc")
	c := Begin(lines, 0, 0, false)
	c.ForwardN(2)
	if c.Ch() != 'c' || c.Pos() != 2 {
		t.Fatalf("at %q pos %d", c.Ch(), c.Pos())
	}
	c.Back()
	if c.Ch() != 'b' || c.ChNext() != 'c' || c.ChPrev() != 'a' {
		t.Errorf("after Back: %q %q %q", c.ChPrev(), c.Ch(), c.ChNext())
	}
	c.ToLineStart()
	if c.Pos() != 0 || c.Style() != DefaultStyle {
		t.Errorf("ToLineStart: pos %d style %d", c.Pos(), c.Style())
	}
	c.Back()
	if c.More() {
		t.Error("Back at the start of the document should end the pass")
	}
}

func TestCursorJumpToEOL(t *testing.T) {
	lines := newTestLines("abc", "d")
	c := Begin(lines, 0, 1, false)
	c.SetStyle(1)
	c.JumpToEOL()
	if !c.AtLineEnd() || c.Ch() != '\n' {
		t.Errorf("not at line end: %q", c.Ch())
	}
	if want := []byte{1, 1, 1}; !bytes.Equal(lines.styles[0][:3], want) {
		t.Errorf("styles = %v, want %v", lines.styles[0][:3], want)
	}
}

func TestCursorStyleAhead(t *testing.T) {
	lines := newTestLines("abcd")
	c := Begin(lines, 0, 0, false)
	c.Forward()
	c.StyleAhead(2, 6)
	if c.Ch() != 'c' {
		t.Errorf("cursor on %q, want c", c.Ch())
	}
	c.Forward()
	c.SetStyle(0)
	Run(c, func() Step { return Advance })
	if want := []byte{0, 6, 6, 0, 0}; !bytes.Equal(lines.styles[0], want) {
		t.Errorf("styles = %v, want %v", lines.styles[0], want)
	}
}

func TestCursorText(t *testing.T) {
	lines := newTestLines(`say "a\"b" \\`)
	c := Begin(lines, 0, 0, false)

	if !c.Match("say") || c.Match("sax") || c.MatchAt(10, "xyz") {
		t.Error("Match mismatch")
	}
	c.ForwardN(3)
	if got := c.Current(); got != "say" {
		t.Errorf("Current = %q", got)
	}
	c.ForwardN(4) // on the quote after the backslash
	if c.Ch() != '"' || !c.IsEscaped(0) {
		t.Errorf("quote at %d should be escaped", c.Pos())
	}
	c.ForwardN(5) // the second backslash of the pair
	if c.IsEscaped(1) {
		t.Error("byte after an even backslash run is not escaped")
	}
}

func TestBeginPanics(t *testing.T) {
	tests := []struct {
		name  string
		lines *testLines
		first int
	}{
		{"empty", &testLines{}, 0},
		{"negative", newTestLines("a"), -1},
		{"past end", newTestLines("a"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			Begin(tt.lines, tt.first, tt.first, false)
		})
	}
}
