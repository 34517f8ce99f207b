package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/lexfold/internal/app"
	"github.com/dshills/lexfold/internal/config/watcher"
	"github.com/dshills/lexfold/internal/engine/document"
	"github.com/dshills/lexfold/internal/highlight/dirty"
	"github.com/dshills/lexfold/internal/highlight/driver"
	"github.com/dshills/lexfold/internal/highlight/render"
)

type watchFlags struct {
	debounce  time.Duration
	highlight bool
	formatter string
	style     string
}

func newWatchCmd(c *cli) *cobra.Command {
	f := watchFlags{}
	defaults := render.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Re-lex files as they change",
		Long: `Open files and re-lex them each time they are saved, reporting the
lines every pass restyled. Changes to the settings file or to a keyword
script reconfigure every file.

Runs until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, path := range args {
				if _, err := c.open(ctx, path, ""); err != nil {
					return err
				}
			}

			w, err := watcher.New(
				watcher.WithDebounce(f.debounce),
				watcher.WithLogger(c.logger),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			opts := render.Options{Formatter: f.formatter, Style: f.style}
			err = c.manager.Watch(ctx, w, func(u app.Update) {
				mu.Lock()
				defer mu.Unlock()
				report(out, c.manager, u, f.highlight, opts)
			})

			snap := c.manager.Metrics().Snapshot()
			c.logger.WithFields(map[string]any{
				"passes":  snap.PassCount,
				"lines":   snap.LinesStyled,
				"reloads": snap.ReloadCount,
				"edits":   snap.EditCount,
				"config":  snap.ConfigReloads,
			}).Info("watch stopped after %s", snap.Uptime.Round(time.Second))
			return err
		},
	}

	cmd.Flags().DurationVar(&f.debounce, "debounce", 100*time.Millisecond, "wait this long for changes to settle")
	cmd.Flags().BoolVar(&f.highlight, "highlight", false, "print each file after it is re-lexed")
	cmd.Flags().StringVarP(&f.formatter, "formatter", "f", defaults.Formatter, "output format with --highlight")
	cmd.Flags().StringVarP(&f.style, "style", "s", defaults.Style, "colour style with --highlight")
	return cmd
}

func report(w io.Writer, m *app.Manager, u app.Update, highlight bool, opts render.Options) {
	if u.Err != nil {
		fmt.Fprintf(w, "%s: %v\n", u.Path, u.Err)
		return
	}

	sessions := []*app.Session{u.Session}
	if u.Config {
		fmt.Fprintf(w, "%s: settings reloaded\n", u.Path)
		sessions = m.All()
	}

	for _, s := range sessions {
		err := s.View(func(doc *document.Document, drv *driver.Driver) error {
			ranges := drv.Invalidated()
			if !u.Config {
				fmt.Fprintf(w, "%s: %d edits, restyled %s\n", s.Path(), len(u.Reload.Edits), formatRanges(ranges))
			}
			if highlight && (len(ranges) > 0 || u.Config) {
				return renderDocument(w, doc, drv, opts)
			}
			return nil
		})
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", s.Path(), err)
		}
	}
}

func formatRanges(ranges []dirty.Range) string {
	if len(ranges) == 0 {
		return "nothing"
	}
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		if r.First == r.Last {
			parts[i] = fmt.Sprintf("line %d", r.First+1)
		} else {
			parts[i] = fmt.Sprintf("lines %d-%d", r.First+1, r.Last+1)
		}
	}
	return strings.Join(parts, ", ")
}
