package driver

import (
	"fmt"

	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Position addresses a byte of the document.
type Position struct {
	Line int
	Col  int
}

func (d *Driver) checkPosition(line, col int) error {
	if line < 0 || line >= d.doc.LineCount() {
		return fmt.Errorf("%w: line %d", ErrPosition, line)
	}
	if col < 0 || col >= len(d.doc.Text(line)) {
		return fmt.Errorf("%w: line %d column %d", ErrPosition, line, col)
	}
	return nil
}

// StyleAt returns the style tag of a character, NoStyle when it has not
// been styled.
func (d *Driver) StyleAt(line, col int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return scan.NoStyle, ErrNoGrammar
	}
	if err := d.checkPosition(line, col); err != nil {
		return scan.NoStyle, err
	}
	return scan.StyleOf(d.doc.Styles(line)[col]), nil
}

// StyleNameAt returns the style name of a character, "" when it has not
// been styled.
func (d *Driver) StyleNameAt(line, col int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return "", ErrNoGrammar
	}
	if err := d.checkPosition(line, col); err != nil {
		return "", err
	}
	return d.grammar.Metadata().StyleName(scan.StyleOf(d.doc.Styles(line)[col])), nil
}

// FoldLevel returns the fold level of a line.
func (d *Driver) FoldLevel(line int) scan.FoldLevel {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.doc.FoldLevel(line)
}

// IsHeader reports whether a line opens a fold region.
func (d *Driver) IsHeader(line int) bool {
	return d.FoldLevel(line).IsHeader()
}

// IsWhite reports whether a line is blank for folding.
func (d *Driver) IsWhite(line int) bool {
	return d.FoldLevel(line).IsWhite()
}

// BraceOpposite returns the partner of a bracket character and the
// direction to search for it, or 0 when ch is not a bracket.
func BraceOpposite(ch byte) (byte, int) {
	switch ch {
	case '(':
		return ')', 1
	case ')':
		return '(', -1
	case '[':
		return ']', 1
	case ']':
		return '[', -1
	case '{':
		return '}', 1
	case '}':
		return '{', -1
	case '<':
		return '>', 1
	case '>':
		return '<', -1
	}
	return 0, 0
}

// BraceMatch finds the bracket matching the one at line, col. Only
// characters with the bracket's style count; when the bracestyle option
// is set the bracket itself must have that style. The boolean is false
// when there is no bracket or no match.
func (d *Driver) BraceMatch(line, col int) (Position, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return Position{}, false, ErrNoGrammar
	}
	if err := d.checkPosition(line, col); err != nil {
		return Position{}, false, err
	}

	text, styles := d.doc.Text(line), d.doc.Styles(line)
	brace := text[col]
	seek, dir := BraceOpposite(brace)
	if seek == 0 {
		return Position{}, false, nil
	}
	style := styles[col]
	if d.braceStyle != scan.NoStyle && scan.StyleOf(style) != d.braceStyle {
		return Position{}, false, nil
	}

	n := d.doc.LineCount()
	depth := 1
	for {
		col += dir
		if col >= len(text) {
			if line++; line >= n {
				break
			}
			col = 0
			text, styles = d.doc.Text(line), d.doc.Styles(line)
		} else if col < 0 {
			if line--; line < 0 {
				break
			}
			text, styles = d.doc.Text(line), d.doc.Styles(line)
			col = len(text) - 1
		}
		if col < 0 || col >= len(text) || styles[col] != style {
			continue
		}
		switch text[col] {
		case brace:
			depth++
		case seek:
			depth--
		}
		if depth == 0 {
			return Position{Line: line, Col: col}, true, nil
		}
	}
	return Position{}, false, nil
}
