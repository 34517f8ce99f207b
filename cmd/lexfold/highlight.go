package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/lexfold/internal/engine/document"
	"github.com/dshills/lexfold/internal/highlight/driver"
	"github.com/dshills/lexfold/internal/highlight/fold"
	"github.com/dshills/lexfold/internal/highlight/render"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

type highlightFlags struct {
	grammar   string
	formatter string
	style     string
}

func newHighlightCmd(c *cli) *cobra.Command {
	f := highlightFlags{}
	defaults := render.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "highlight <file>",
		Short: "Print a file with syntax highlighting",
		Long: `Print a file with syntax highlighting.

Examples:
  lexfold highlight build.mk
  lexfold highlight -g lua init.script
  lexfold highlight -f html -s github main.cpp > main.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], f.grammar)
			if err != nil {
				return err
			}
			opts := render.Options{Formatter: f.formatter, Style: f.style}
			return s.View(func(doc *document.Document, drv *driver.Driver) error {
				return renderDocument(cmd.OutOrStdout(), doc, drv, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&f.grammar, "grammar", "g", "", "grammar to use instead of the one matching the file name")
	cmd.Flags().StringVarP(&f.formatter, "formatter", "f", defaults.Formatter, "output format (see lexfold styles)")
	cmd.Flags().StringVarP(&f.style, "style", "s", defaults.Style, "colour style (see lexfold styles)")
	return cmd
}

func renderDocument(w io.Writer, doc *document.Document, drv *driver.Driver, opts render.Options) error {
	md, err := drv.Metadata()
	if err != nil {
		return err
	}
	opts.TrimNewline = !doc.TrailingNewline()
	return render.Render(w, doc, md, opts)
}

type foldFlags struct {
	grammar  string
	collapse []int
	all      bool
	hidden   bool
}

func newFoldCmd(c *cli) *cobra.Command {
	f := foldFlags{}

	cmd := &cobra.Command{
		Use:   "fold <file>",
		Short: "Print a file's fold structure",
		Long: `Print a file's fold structure: line number, margin symbol, depth,
header (H) and white (W) flags, then the text.

Collapsed regions are left out of the listing.

Examples:
  lexfold fold setup.py
  lexfold fold --collapse 12 --collapse 40 main.cpp
  lexfold fold --all Makefile`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], f.grammar)
			if err != nil {
				return err
			}
			return s.View(func(doc *document.Document, _ *driver.Driver) error {
				if err := collapse(doc, f.collapse, f.all); err != nil {
					return err
				}
				printFolds(cmd.OutOrStdout(), doc, f.hidden)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&f.grammar, "grammar", "g", "", "grammar to use instead of the one matching the file name")
	cmd.Flags().IntSliceVar(&f.collapse, "collapse", nil, "fold the region holding this line (1-based, repeatable)")
	cmd.Flags().BoolVar(&f.all, "all", false, "fold every region")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "list the lines of folded regions too")
	return cmd
}

// collapse folds the regions holding the given 1-based lines, or every
// region.
func collapse(doc *document.Document, lines []int, all bool) error {
	if all {
		// Inner regions first, so folding an outer one hides them.
		for i := doc.LineCount() - 1; i >= 0; i-- {
			if fold.Foldable(doc, i) && !doc.Folded(i) {
				fold.Toggle(doc, i)
			}
		}
		return nil
	}
	for _, n := range lines {
		if n < 1 || n > doc.LineCount() {
			return fmt.Errorf("line %d out of range 1-%d", n, doc.LineCount())
		}
		header := n - 1
		if !fold.Foldable(doc, header) {
			header = fold.Parent(doc, header)
		}
		if header < 0 {
			return fmt.Errorf("line %d is not inside a foldable region", n)
		}
		if !doc.Folded(header) {
			fold.Toggle(doc, header)
		}
	}
	return nil
}

func printFolds(w io.Writer, doc *document.Document, hidden bool) {
	width := len(fmt.Sprint(doc.LineCount()))
	for i := 0; i < doc.LineCount(); i++ {
		if !hidden && !doc.Visible(i) {
			continue
		}
		level := doc.FoldLevel(i)
		fmt.Fprintf(w, "%*d %c %2d %s %s\n",
			width, i+1,
			fold.MarkAt(doc, i, true).Glyph(),
			level.Depth()-scan.FoldBase.Depth(),
			levelFlags(level),
			strings.TrimRight(doc.Line(i), "\r"),
		)
	}
}

func levelFlags(level scan.FoldLevel) string {
	flags := []byte("..")
	if level.IsHeader() {
		flags[0] = 'H'
	}
	if level.IsWhite() {
		flags[1] = 'W'
	}
	return string(flags)
}
