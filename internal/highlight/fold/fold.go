// Package fold answers structural questions about the fold levels a
// grammar's folder wrote, and maintains the per-line folded and visible
// flags of a view.
//
// A header line opens a region holding every following line with a
// greater depth. Folding a header hides its region; a hidden line is
// shown again when no folded header above it still covers it.
package fold

import "github.com/dshills/lexfold/internal/highlight/scan"

// Levels is read access to per-line fold levels.
type Levels interface {
	LineCount() int
	FoldLevel(line int) scan.FoldLevel
}

// Tree is a document's fold levels together with its view flags.
type Tree interface {
	Levels
	Folded(line int) bool
	SetFolded(line int, folded bool)
	Visible(line int) bool
	SetVisible(line int, visible bool)
}

// Depth returns the nesting depth of a line, FoldBase included.
func Depth(t Levels, line int) int {
	return t.FoldLevel(line).Depth()
}

// Foldable reports whether a line opens a region.
func Foldable(t Levels, line int) bool {
	return t.FoldLevel(line).IsHeader()
}

// LastChild returns the last line of the region opened by line: the
// last of the following lines deeper than level. A negative level means
// the depth of line itself. A line without children is its own last
// child.
func LastChild(t Levels, line, level int) int {
	if level < 0 {
		level = Depth(t, line)
	}
	last := line
	for i := line + 1; i < t.LineCount(); i++ {
		if Depth(t, i) <= level {
			break
		}
		last = i
	}
	return last
}

// Parent returns the nearest foldable line above line with a smaller
// depth, or -1.
func Parent(t Levels, line int) int {
	level := Depth(t, line)
	for i := line - 1; i >= 0; i-- {
		if Foldable(t, i) && Depth(t, i) < level {
			return i
		}
	}
	return -1
}

// Expand walks the region below line. With doExpand it shows the
// region's lines, descending into every nested header that is not
// itself folded. It returns the first line after the region.
func Expand(t Tree, line int, doExpand bool) int {
	last := LastChild(t, line, -1)
	if last == line {
		return line + 1
	}
	for i := line + 1; i <= last; {
		if doExpand {
			t.SetVisible(i, true)
		}
		if Foldable(t, i) {
			i = Expand(t, i, doExpand && !t.Folded(i))
		} else {
			i++
		}
	}
	return last + 1
}

// EnsureVisible unfolds every folded ancestor of a hidden line.
func EnsureVisible(t Tree, line int) {
	if t.Visible(line) {
		return
	}
	parent := Parent(t, line)
	if parent < 0 {
		return
	}
	EnsureVisible(t, parent)
	if t.Folded(parent) {
		t.SetFolded(parent, false)
		Expand(t, parent, true)
	}
}

// Toggle folds or unfolds the region holding line: line itself when it
// is a header, its parent otherwise. It returns the header toggled, or
// -1 when line is not inside any region.
func Toggle(t Tree, line int) int {
	if !Foldable(t, line) {
		line = Parent(t, line)
		if line < 0 {
			return -1
		}
	}
	if !t.Folded(line) {
		t.SetFolded(line, true)
		for i := LastChild(t, line, -1); i > line; i-- {
			t.SetVisible(i, false)
		}
		return line
	}
	EnsureVisible(t, line)
	t.SetFolded(line, false)
	Expand(t, line, true)
	return line
}

// Repair fixes the view flags of lines first..last after their levels
// changed. A folded line that is no longer a header is unfolded, and a
// hidden line whose parent is gone or not folded is shown. Every line
// shown extends the window by one. Repair returns the last line
// examined.
func Repair(t Tree, first, last int) int {
	n := t.LineCount()
	extra := 0
	i := first
	for ; i < n; i++ {
		if t.Folded(i) && !Foldable(t, i) {
			t.SetFolded(i, false)
		}
		if !t.Visible(i) {
			if p := Parent(t, i); p < 0 || !t.Folded(p) {
				t.SetVisible(i, true)
				extra++
			}
		}
		if i >= last+extra {
			break
		}
	}
	if i >= n {
		i = n - 1
	}
	return i
}
