// Package document provides the line arena the highlighting engine
// styles.
//
// A Document stores every line as its own record holding the text with
// its terminating newline, a parallel style array, the grammar state and
// the fold level, plus the fold view flags. Lines are addressed by index
// so scanners never hold pointers into the arena across edits.
//
// Basic usage:
//
//	doc := document.New("echo hi\n")
//	doc.InsertLines(1, "ls -l")
//	doc.ReplaceLine(0, "echo bye")
//
// A Document is not safe for concurrent use. The driver that owns a
// document serializes edits and passes.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Errors returned by document operations.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrInvalidCount   = errors.New("invalid line count")
)

// line is one record of the arena.
type line struct {
	text   []byte
	styles []byte
	state  scan.LineState
	level  scan.FoldLevel
	folded bool
	hidden bool
}

func newLine(text []byte) *line {
	l := &line{
		text:   text,
		styles: make([]byte, len(text)),
		level:  scan.FoldBase,
	}
	for i := range l.styles {
		l.styles[i] = scan.Unstyled
	}
	return l
}

// Document is an ordered sequence of lines.
type Document struct {
	id       uuid.UUID
	lines    []*line
	revision uint64

	// trailingNewline records whether the loaded text ended in a
	// newline, so Content reproduces it.
	trailingNewline bool
}

// New creates a document from text. Every line, including the last,
// is stored with a terminating newline; an empty text yields one empty
// line.
func New(text string) *Document {
	d := &Document{id: uuid.New()}
	d.lines, d.trailingNewline = splitLines(text)
	return d
}

// NewFromReader creates a document from the contents of r.
func NewFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return New(string(data)), nil
}

func splitLines(text string) ([]*line, bool) {
	trailing := strings.HasSuffix(text, "\n")
	if trailing {
		text = text[:len(text)-1]
	}
	parts := strings.Split(text, "\n")
	lines := make([]*line, len(parts))
	for i, p := range parts {
		lines[i] = newLine(withNewline(p))
	}
	return lines, trailing
}

func withNewline(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	b[len(s)] = '\n'
	return b
}

// ID returns the document's unique identifier.
func (d *Document) ID() uuid.UUID { return d.id }

// Revision returns a counter incremented by every edit.
func (d *Document) Revision() uint64 { return d.revision }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

func (d *Document) at(i int) *line {
	if i < 0 || i >= len(d.lines) {
		panic(fmt.Sprintf("document: line %d out of range [0,%d)", i, len(d.lines)))
	}
	return d.lines[i]
}

// Text returns line i including its newline. The slice must not be
// modified.
func (d *Document) Text(i int) []byte { return d.at(i).text }

// Styles returns the mutable style array of line i.
func (d *Document) Styles(i int) []byte { return d.at(i).styles }

// State returns the grammar state of line i.
func (d *Document) State(i int) scan.LineState { return d.at(i).state }

// SetState sets the grammar state of line i.
func (d *Document) SetState(i int, s scan.LineState) { d.at(i).state = s }

// FoldLevel returns the fold level of line i.
func (d *Document) FoldLevel(i int) scan.FoldLevel { return d.at(i).level }

// SetFoldLevel sets the fold level of line i.
func (d *Document) SetFoldLevel(i int, l scan.FoldLevel) { d.at(i).level = l }

// Folded reports whether line i is a collapsed fold header.
func (d *Document) Folded(i int) bool { return d.at(i).folded }

// SetFolded marks line i collapsed or expanded.
func (d *Document) SetFolded(i int, folded bool) { d.at(i).folded = folded }

// Visible reports whether line i is shown.
func (d *Document) Visible(i int) bool { return !d.at(i).hidden }

// SetVisible shows or hides line i.
func (d *Document) SetVisible(i int, visible bool) { d.at(i).hidden = !visible }

// Line returns line i without its newline.
func (d *Document) Line(i int) string {
	t := d.at(i).text
	return string(bytes.TrimSuffix(t, []byte{'\n'}))
}

// Content returns the whole text.
func (d *Document) Content() string {
	var b strings.Builder
	for _, l := range d.lines {
		b.Write(l.text)
	}
	s := b.String()
	if !d.trailingNewline {
		s = strings.TrimSuffix(s, "\n")
	}
	return s
}

// TrailingNewline reports whether Content ends in a newline.
func (d *Document) TrailingNewline() bool { return d.trailingNewline }

// SetTrailingNewline sets whether Content ends in a newline. Lines are
// not affected.
func (d *Document) SetTrailingNewline(trailing bool) { d.trailingNewline = trailing }

// InsertLines inserts the lines of text before line at. An at equal to
// LineCount appends. A single trailing newline in text does not add an
// empty line. It returns the number of lines inserted.
func (d *Document) InsertLines(at int, text string) (int, error) {
	if at < 0 || at > len(d.lines) {
		return 0, fmt.Errorf("%w: insert at %d of %d", ErrLineOutOfRange, at, len(d.lines))
	}
	parts := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	d.insert(at, parts)
	return len(parts), nil
}

func (d *Document) insert(at int, texts []string) {
	lines := make([]*line, 0, len(d.lines)+len(texts))
	lines = append(lines, d.lines[:at]...)
	for _, t := range texts {
		lines = append(lines, newLine(withNewline(t)))
	}
	lines = append(lines, d.lines[at:]...)
	d.lines = lines
	d.revision++
}

// DeleteLines removes n lines starting at line at. Removing every line
// leaves one empty line.
func (d *Document) DeleteLines(at, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if at < 0 || at+n > len(d.lines) {
		return fmt.Errorf("%w: delete %d lines at %d of %d", ErrLineOutOfRange, n, at, len(d.lines))
	}
	d.lines = append(d.lines[:at], d.lines[at+n:]...)
	if len(d.lines) == 0 {
		d.lines = []*line{newLine([]byte{'\n'})}
	}
	d.revision++
	return nil
}

// ReplaceLine replaces the text of line i. The line loses its styles,
// state and fold level; its view flags are kept.
func (d *Document) ReplaceLine(i int, text string) error {
	if i < 0 || i >= len(d.lines) {
		return fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, i, len(d.lines))
	}
	text = strings.TrimSuffix(text, "\n")
	if strings.Contains(text, "\n") {
		return fmt.Errorf("replace line %d: text spans several lines", i)
	}
	old := d.lines[i]
	l := newLine(withNewline(text))
	l.folded, l.hidden = old.folded, old.hidden
	d.lines[i] = l
	d.revision++
	return nil
}

// ResetStyles marks every character unstyled and returns every line's
// state and fold level to their initial values.
func (d *Document) ResetStyles() {
	for _, l := range d.lines {
		for i := range l.styles {
			l.styles[i] = scan.Unstyled
		}
		l.state = 0
		l.level = scan.FoldBase
	}
}
