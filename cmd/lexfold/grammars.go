package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/render"
)

func newGrammarsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "grammars",
		Short: "List the available grammars and the files they apply to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := c.manager.Registry()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GRAMMAR\tSTYLES\tOPTIONS\tPATTERNS")
			for _, name := range reg.Names() {
				g, err := reg.Get(name)
				if err != nil {
					return err
				}
				md := g.Metadata()
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, len(md.Styles), len(md.Options), strings.Join(md.Patterns, " "))
			}
			return tw.Flush()
		},
	}
}

func newStylesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "styles [grammar]",
		Short: "Describe a grammar's styles, options and keyword lists",
		Long: `Describe a grammar's styles, options and default keyword lists.

Without a grammar, list the colour styles and output formats highlight
accepts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintf(out, "formatters: %s\n", strings.Join(render.Formatters(), " "))
				fmt.Fprintf(out, "styles: %s\n", strings.Join(render.Styles(), " "))
				return nil
			}

			g, err := c.manager.Registry().Get(args[0])
			if err != nil {
				return err
			}
			md := g.Metadata()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

			fmt.Fprintln(tw, "STYLE\tNAME")
			for i, name := range md.Styles {
				fmt.Fprintf(tw, "%d\t%s\n", i, name)
			}

			fmt.Fprintln(tw, "\nOPTION\tKIND\tDEFAULT\tDESCRIPTION")
			for _, o := range md.Options {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Name, o.Kind, optionDefault(o), o.Doc)
			}

			fmt.Fprintln(tw, "\nKEYWORDS\tWORDS\tSTYLE")
			for i, words := range md.Keywords {
				if len(words) == 0 {
					continue
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\n", i+1, len(words), md.StyleName(grammar.Keyword1+i))
			}
			return tw.Flush()
		},
	}
}

func optionDefault(o grammar.OptionSpec) string {
	if o.Kind == grammar.BoolOption {
		if o.Default != 0 {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(o.Default)
}
