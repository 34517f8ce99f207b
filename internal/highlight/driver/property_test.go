package driver_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dshills/lexfold/internal/engine/document"
	"github.com/dshills/lexfold/internal/highlight/grammars"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// fragments are the pieces random documents are built from. They favour
// the constructs that carry state from one line to the next.
var fragments = map[string][]string{
	"bash": {
		"echo", " ", "x", "$HOME", "\"", "'", "`", "<<EOF", "EOF", "<<-END", "END",
		"#", "\\", "16#ff", "08", "{", "}", "(", ")", "$((", "))", "${x}",
	},
	"lua": {
		"local", " ", "x", "=", "'s'", "\"t\"", "'", "[[", "]]", "[=[", "]=]",
		"--", "--[[", "1.5", "function", "end", "(", ")", "\\", "#",
	},
	"makefile": {
		"all", ":", " ", "=", ":=", "$(", ")", "${", "}", "#", "\\", "\t",
		"ifeq", "endif", "!include", "\"", "'",
	},
	"python": {
		"def", "class", " ", "f", "(", ")", ":", "'''", "\"\"\"", "'", "\"",
		"#", "@d", "    ", "1e-5", "0x1f", "import", "as", "\\",
	},
	"tcl": {
		"set", " ", "x", "{", "}", "[", "]", "\"", "$x", "${x}", "#", "\\",
		";", "-opt", "::a", "{*}", "0x1f", "##", "#-",
	},
	"cpp": {
		"int", " ", "x", "/*", "*/", "//", "///", "\"s\"", "'c'", "\"", "#if",
		"#endif", "{", "}", "\\", "1.5", "/re/", "=", "(", ")", ";",
	},
	"tol": {
		"Real", " ", "x", "/*", "/**", "*/", "//", "\"s\"", "@\"v\"", "\"",
		"@Name", "uuid", "{", "}", "\\", "1.5", "=", "(", ")", ";", "#",
	},
}

func lineOf(frags []string) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.SampledFrom(frags), 0, 8).Draw(t, "parts")
		return strings.Join(parts, "")
	})
}

func textOf(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

type snapshot struct {
	styles [][]byte
	states []scan.LineState
	levels []scan.FoldLevel
}

func snap(doc *document.Document) snapshot {
	var s snapshot
	for i := 0; i < doc.LineCount(); i++ {
		s.styles = append(s.styles, bytes.Clone(doc.Styles(i)))
		s.states = append(s.states, doc.State(i))
		s.levels = append(s.levels, doc.FoldLevel(i))
	}
	return s
}

func TestPropertyLexingIsDeterministic(t *testing.T) {
	for name, frags := range fragments {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				lines := rapid.SliceOfN(lineOf(frags), 1, 12).Draw(rt, "lines")

				a, _ := open(rt, name, textOf(lines))
				b, _ := open(rt, name, textOf(lines))

				require.Equal(rt, snap(a), snap(b))
			})
		})
	}
}

func TestPropertyEveryCharacterStyled(t *testing.T) {
	for name, frags := range fragments {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				lines := rapid.SliceOfN(lineOf(frags), 1, 12).Draw(rt, "lines")
				doc, _ := open(rt, name, textOf(lines))

				for i := 0; i < doc.LineCount(); i++ {
					require.Equal(rt, len(doc.Text(i)), len(doc.Styles(i)))
					require.NotContains(rt, doc.Styles(i), scan.Unstyled, "line %d", i)
				}
			})
		})
	}
}

func TestPropertyRelexIsIdempotent(t *testing.T) {
	for name, frags := range fragments {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				lines := rapid.SliceOfN(lineOf(frags), 1, 12).Draw(rt, "lines")
				doc, d := open(rt, name, textOf(lines))
				before := snap(doc)

				res, err := d.LexAndFold(context.Background(), 0, doc.LineCount())
				require.NoError(rt, err)

				require.Equal(rt, before, snap(doc))
				require.True(rt, res.WholeDocument)
				require.Equal(rt, doc.LineCount()-1, res.LastStyled)
			})
		})
	}
}

func TestPropertyPassTerminatesInsideDocument(t *testing.T) {
	for name, frags := range fragments {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				lines := rapid.SliceOfN(lineOf(frags), 1, 12).Draw(rt, "lines")
				doc, d := open(rt, name, textOf(lines))

				first := rapid.IntRange(0, doc.LineCount()-1).Draw(rt, "first")
				count := rapid.IntRange(1, 4).Draw(rt, "count")
				res, err := d.LexAndFold(context.Background(), first, count)
				require.NoError(rt, err)

				require.Equal(rt, first, res.First)
				require.GreaterOrEqual(rt, res.LastStyled, min(first+count-1, doc.LineCount()-1))
				require.Less(rt, res.LastStyled, doc.LineCount())
				require.GreaterOrEqual(rt, res.Last, res.LastStyled)
				require.Less(rt, res.Last, doc.LineCount())
			})
		})
	}
}

// A line hands the next one only its state, the style at its end and
// its fold level, so an incremental pass after an edit must reproduce a
// full pass exactly.
func TestPropertyIncrementalMatchesFullLex(t *testing.T) {
	for name, frags := range fragments {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				lines := rapid.SliceOfN(lineOf(frags), 1, 12).Draw(rt, "lines")
				at := rapid.IntRange(0, len(lines)-1).Draw(rt, "at")
				replacement := lineOf(frags).Draw(rt, "replacement")

				doc, d := open(rt, name, textOf(lines))
				require.NoError(rt, doc.ReplaceLine(at, replacement))
				d.Insertion(at, 0)
				_, ran, err := d.LexNeeded(context.Background())
				require.NoError(rt, err)
				require.True(rt, ran)

				lines[at] = replacement
				want, _ := open(rt, name, textOf(lines))
				require.Equal(rt, snap(want), snap(doc))
			})
		})
	}
}

func editOf(frags []string, count int) *rapid.Generator[document.Edit] {
	return rapid.Custom(func(t *rapid.T) document.Edit {
		line := rapid.IntRange(0, count).Draw(t, "line")
		del := 0
		if line < count {
			del = rapid.IntRange(0, min(count-line, 3)).Draw(t, "delete")
		}
		insert := rapid.SliceOfN(lineOf(frags), 0, 3).Draw(t, "insert")
		return document.Edit{Line: line, Delete: del, Insert: insert}
	})
}

func linesOf(doc *document.Document) []string {
	lines := make([]string, doc.LineCount())
	for i := range lines {
		lines[i] = doc.Line(i)
	}
	return lines
}

func TestPropertyInsertAndDeleteMatchFullLex(t *testing.T) {
	for name, frags := range fragments {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				lines := rapid.SliceOfN(lineOf(frags), 1, 12).Draw(rt, "lines")
				doc, d := open(rt, name, textOf(lines))

				steps := rapid.IntRange(1, 4).Draw(rt, "steps")
				for range steps {
					e := editOf(frags, doc.LineCount()).Draw(rt, "edit")
					r, err := doc.Apply(e)
					require.NoError(rt, err)
					if r.Deleted > 0 {
						d.Deletion(r.Line)
					}
					if r.Inserted > 0 {
						d.Insertion(r.Line, r.Inserted)
					}
					_, _, err = d.LexNeeded(context.Background())
					require.NoError(rt, err)

					want, _ := open(rt, name, textOf(linesOf(doc)))
					require.Equal(rt, snap(want), snap(doc), "after %+v", e)
				}
			})
		})
	}
}

func TestPropertyRegistryCoversFragments(t *testing.T) {
	for _, name := range grammars.Default().Names() {
		_, ok := fragments[name]
		require.True(t, ok, "no fragments for grammar %s", name)
	}
}
