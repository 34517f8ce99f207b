package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/lexfold/internal/app"
	"github.com/dshills/lexfold/internal/config"
	"github.com/dshills/lexfold/internal/logging"
	"github.com/dshills/lexfold/internal/tracing"
)

// cli holds the global flags and what setup built from them.
type cli struct {
	configPath string
	logLevel   string
	trace      bool
	traceFile  string

	cfg     *config.Config
	logger  *logging.Logger
	tracing *tracing.Provider
	manager *app.Manager
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lexfold",
		Short: "Incremental syntax highlighting and code folding",
		Long: `lexfold styles source files with its built-in grammars (bash, cpp,
lua, makefile, python, tcl and tol), computes their fold structure and
keeps both up to date as files change.

Settings are read from a TOML or YAML file (default:
~/.config/lexfold/config.toml) and LEXFOLD_ environment variables.`,
		Version:            fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(cmd *cobra.Command, _ []string) error { return c.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error { return c.shutdown(cmd.Context()) },
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "settings file (default: ~/.config/lexfold/config.toml)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&c.trace, "trace", false, "trace lexing passes to stderr")
	flags.StringVar(&c.traceFile, "trace-file", "", "write traces to this file")

	root.AddCommand(
		newGrammarsCmd(c),
		newStylesCmd(c),
		newHighlightCmd(c),
		newFoldCmd(c),
		newInspectCmd(c),
		newWatchCmd(c),
	)
	return root
}

// setup loads the settings and builds the logger, the tracer and the
// session manager.
func (c *cli) setup(cmd *cobra.Command) error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("settings file: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.LogLevel()
	if cmd.Flags().Changed("log-level") {
		switch c.logLevel {
		case "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.logLevel)
		}
		level = logging.ParseLevel(c.logLevel)
	}
	c.logger = logging.New(logging.Config{Level: level, Output: cmd.ErrOrStderr(), Prefix: "lexfold"})

	tc := cfg.Tracing()
	if c.trace {
		tc.Enabled = true
	}
	if c.traceFile != "" {
		tc.Enabled = true
		tc.Exporter = "file"
		tc.FilePath = c.traceFile
	}
	c.tracing, err = tracing.NewWriterProvider(tc, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c.manager, err = app.NewManager(
		app.WithConfig(cfg),
		app.WithLogger(c.logger),
		app.WithTracer(c.tracing.Tracer()),
	)
	return err
}

func (c *cli) shutdown(ctx context.Context) error {
	if c.tracing == nil {
		return nil
	}
	// The command context is cancelled when watch is interrupted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return c.tracing.Shutdown(ctx)
}

// open opens path, with the named grammar when name is not empty.
func (c *cli) open(ctx context.Context, path, name string) (*app.Session, error) {
	var opts []app.Option
	if name != "" {
		opts = append(opts, app.WithGrammar(name))
	}
	return c.manager.Open(ctx, path, opts...)
}
