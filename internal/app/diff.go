package app

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/lexfold/internal/engine/document"
)

// SplitText splits text into lines the way document.New does: a single
// trailing newline does not start another line.
func SplitText(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// LineEdits returns the edits that turn the lines from into the lines
// to. Each edit's line number refers to the document after the earlier
// edits, so the result can be passed to Document.ApplyEdits.
func LineEdits(from, to []string) []document.Edit {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(joinLines(from), joinLines(to))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)

	var (
		edits []document.Edit
		cur   *document.Edit
		line  int
	)
	flush := func() {
		if cur == nil {
			return
		}
		edits = append(edits, *cur)
		line += len(cur.Insert)
		cur = nil
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			line += strings.Count(d.Text, "\n")
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &document.Edit{Line: line}
			}
			cur.Delete += strings.Count(d.Text, "\n")
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &document.Edit{Line: line}
			}
			cur.Insert = append(cur.Insert, SplitText(d.Text)...)
		}
	}
	flush()
	return edits
}

// joinLines terminates every line with a newline so the last line
// compares like the others.
func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
