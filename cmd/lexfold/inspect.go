package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/lexfold/internal/engine/document"
	"github.com/dshills/lexfold/internal/highlight/driver"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

func newInspectCmd(c *cli) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "inspect <file> <line> <column>",
		Short: "Show the style, fold level and matching bracket at a position",
		Long: `Show the style, fold level and matching bracket at a position.

Line and column are 1-based; the column counts bytes.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := positionArg("line", args[1])
			if err != nil {
				return err
			}
			col, err := positionArg("column", args[2])
			if err != nil {
				return err
			}

			s, err := c.open(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return s.View(func(doc *document.Document, drv *driver.Driver) error {
				style, err := drv.StyleAt(line, col)
				if err != nil {
					return err
				}
				styleName, err := drv.StyleNameAt(line, col)
				if err != nil {
					return err
				}
				level := drv.FoldLevel(line)

				fmt.Fprintf(out, "grammar: %s\n", s.Grammar())
				fmt.Fprintf(out, "char:    %q\n", doc.Text(line)[col])
				fmt.Fprintf(out, "style:   %d %s\n", style, styleName)
				fmt.Fprintf(out, "fold:    depth %d header %t white %t\n",
					level.Depth()-scan.FoldBase.Depth(), drv.IsHeader(line), drv.IsWhite(line))

				if partner, _ := driver.BraceOpposite(doc.Text(line)[col]); partner != 0 {
					pos, ok, err := drv.BraceMatch(line, col)
					if err != nil {
						return err
					}
					if ok {
						fmt.Fprintf(out, "match:   %d:%d\n", pos.Line+1, pos.Col+1)
					} else {
						fmt.Fprintf(out, "match:   none\n")
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "grammar", "g", "", "grammar to use instead of the one matching the file name")
	return cmd
}

// positionArg parses a 1-based position argument to a 0-based index.
func positionArg(what, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return n - 1, nil
}
