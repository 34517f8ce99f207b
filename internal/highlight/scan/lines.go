package scan

// Style tags shared by every grammar.
const (
	// NoStyle marks a character that has not been styled yet.
	NoStyle = -1

	// DefaultStyle is style 0 of every grammar.
	DefaultStyle = 0
)

// Unstyled is the byte stored in a style array for NoStyle.
const Unstyled byte = 0xFF

// Lines is the line sequence a cursor scans.
//
// Text returns the raw bytes of a line including its terminating
// newline. Styles returns the line's mutable style array, which must be
// exactly as long as the text. Implementations are index based; line
// indices run from 0 to LineCount()-1.
type Lines interface {
	LineCount() int
	Text(line int) []byte
	Styles(line int) []byte
	State(line int) LineState
	SetState(line int, state LineState)
	FoldLevel(line int) FoldLevel
	SetFoldLevel(line int, level FoldLevel)
}

// StyleOf converts a stored style byte to a style tag.
func StyleOf(b byte) int {
	if b == Unstyled {
		return NoStyle
	}
	return int(b)
}

// StyleByte converts a style tag to its stored byte.
func StyleByte(style int) byte {
	if style < 0 || style >= int(Unstyled) {
		return Unstyled
	}
	return byte(style)
}

// StyleAtEOL returns the style of the last character of a line.
func StyleAtEOL(lines Lines, line int) int {
	styles := lines.Styles(line)
	if len(styles) == 0 {
		return NoStyle
	}
	return StyleOf(styles[len(styles)-1])
}

// StyleAtSOL returns the style of the first character of a line.
func StyleAtSOL(lines Lines, line int) int {
	styles := lines.Styles(line)
	if len(styles) == 0 {
		return NoStyle
	}
	return StyleOf(styles[0])
}
