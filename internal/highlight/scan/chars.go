package scan

import "strings"

const operatorChars = "%^&*()-+=|{}[]:;<>,/?!.~"

// IsOperator reports whether ch is a generic operator character.
func IsOperator(ch byte) bool {
	return ch != 0 && strings.IndexByte(operatorChars, ch) >= 0
}

// IsSpace reports whether ch is a space or a control whitespace byte.
func IsSpace(ch byte) bool {
	return ch == ' ' || (ch >= 0x09 && ch <= 0x0d)
}

// IsSpaceOrTab reports whether ch is a space or a tab.
func IsSpaceOrTab(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

// IsDigit reports whether ch is a decimal digit.
func IsDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// IsHexDigit reports whether ch is a hexadecimal digit.
func IsHexDigit(ch byte) bool {
	return IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// IsAlpha reports whether ch is an ASCII letter.
func IsAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// IsAlnum reports whether ch is an ASCII letter or digit.
func IsAlnum(ch byte) bool {
	return IsAlpha(ch) || IsDigit(ch)
}

// IsWordChar reports whether ch can continue a dotted word.
func IsWordChar(ch byte) bool {
	return IsAlnum(ch) || ch == '.' || ch == '_'
}

// IsWordStart reports whether ch can start a word.
func IsWordStart(ch byte) bool {
	return IsAlnum(ch) || ch == '_'
}

// IsEOL reports whether ch terminates a line.
func IsEOL(ch byte) bool {
	return ch == '\n' || ch == '\r'
}

// IsLower reports whether ch is a lower case ASCII letter.
func IsLower(ch byte) bool {
	return ch >= 'a' && ch <= 'z'
}

// FirstNonSpace returns the offset of the first byte that is not a
// space or tab, or len(text).
func FirstNonSpace(text []byte) int {
	i := 0
	for i < len(text) && IsSpaceOrTab(text[i]) {
		i++
	}
	return i
}

// Indentation flags reported by IndentAmount.
const (
	IndentSpace        = 1
	IndentTab          = 2
	IndentSpaceTab     = 4
	IndentInconsistent = 8
)

// IndentAmount measures the leading whitespace of a line. Tabs advance
// to the next multiple of 8. The result is a fold level at FoldBase plus
// the indentation; it carries FoldWhite when the line is blank or
// isComment accepts the first non-blank byte. The returned flags
// describe the mix of spaces and tabs; IndentInconsistent is set when
// the whitespace differs from the previous line's over their common
// prefix. prev may be nil.
func IndentAmount(text, prev []byte, isComment func(text []byte, pos int) bool) (FoldLevel, int) {
	flags := 0
	indent := 0
	pos := 0
	var ch byte
	if len(text) > 0 {
		ch = text[0]
	}
	inPrev := prev != nil
	posPrev := 0
	for (ch == ' ' || ch == '\t') && pos < len(text) {
		if inPrev {
			var chPrev byte
			if posPrev < len(prev) {
				chPrev = prev[posPrev]
				posPrev++
			}
			if chPrev == ' ' || chPrev == '\t' {
				if chPrev != ch {
					flags |= IndentInconsistent
				}
			} else {
				inPrev = false
			}
		}
		if ch == ' ' {
			flags |= IndentSpace
			indent++
		} else {
			flags |= IndentTab
			if flags&IndentSpace != 0 {
				flags |= IndentSpaceTab
			}
			indent = (indent/8 + 1) * 8
		}
		if pos+1 == len(text) {
			break
		}
		pos++
		ch = text[pos]
	}

	level := MakeFoldLevel(int(FoldBase)+indent, 0)
	if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' ||
		(isComment != nil && isComment(text, pos)) {
		level |= FoldWhite
	}
	return level, flags
}
