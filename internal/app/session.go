// Package app ties the highlighting engine to files on disk.
//
// A Session holds one document, the driver that styles and folds it and
// the settings it was configured from. Reloading a session diffs the new
// text against the document line by line so only the changed lines are
// reported to the driver. A Manager keeps the sessions of several files
// and can follow them and the settings file as they change.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dshills/lexfold/internal/config"
	"github.com/dshills/lexfold/internal/engine/document"
	"github.com/dshills/lexfold/internal/highlight/driver"
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/grammars"
	"github.com/dshills/lexfold/internal/logging"
	"github.com/dshills/lexfold/internal/plugin/lua"
)

// Option configures a Session or a Manager.
type Option func(*settings)

type settings struct {
	registry *grammar.Registry
	cfg      *config.Config
	cfgOpts  []config.Option
	scripts  *lua.Cache
	logger   *logging.Logger
	tracer   trace.Tracer
	metrics  *Metrics
	grammar  string
}

// WithRegistry selects grammars from r instead of the built-in set.
func WithRegistry(r *grammar.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithConfig configures sessions from c.
func WithConfig(c *config.Config) Option {
	return func(s *settings) { s.cfg = c }
}

// WithConfigOptions passes opts to every reload of the settings file.
func WithConfigOptions(opts ...config.Option) Option {
	return func(s *settings) { s.cfgOpts = opts }
}

// WithScripts runs keyword scripts through c.
func WithScripts(c *lua.Cache) Option {
	return func(s *settings) { s.scripts = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithTracer wraps reloads and passes in spans from t.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// WithMetrics records passes and reloads in m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithGrammar selects the grammar by name instead of by file name.
func WithGrammar(name string) Option {
	return func(s *settings) { s.grammar = name }
}

func newSettings(opts []Option) (settings, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.cfg == nil {
		s.cfg = config.Default()
	}
	if s.registry == nil {
		s.registry = grammars.Default()
		if err := ApplyPatterns(s.registry, s.cfg); err != nil {
			return s, err
		}
	}
	if s.logger == nil {
		s.logger = logging.Null()
	}
	if s.scripts == nil {
		s.scripts = lua.NewCache(lua.DefaultExpiration)
		s.scripts.SetLogger(s.logger)
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s, nil
}

// ApplyPatterns adds the file patterns of every grammar section of cfg
// to r.
func ApplyPatterns(r *grammar.Registry, cfg *config.Config) error {
	for _, name := range cfg.Grammars() {
		gc, err := cfg.Grammar(name)
		if err != nil {
			return err
		}
		for _, p := range gc.Patterns {
			if err := r.AddPattern(name, p); err != nil {
				return &SessionError{Op: "configure", Grammar: name, Err: err}
			}
		}
	}
	return nil
}

// Session is one document and the driver that styles it.
type Session struct {
	mu sync.Mutex

	path string
	doc  *document.Document
	drv  *driver.Driver
	settings
}

// ReloadResult describes what a reload changed.
type ReloadResult struct {
	// Edits are the line edits applied to the document.
	Edits []document.EditResult

	// Pass is the lexing pass that followed, valid when Lexed is set.
	Pass  driver.Result
	Lexed bool
}

// NewSession creates a session over text. The grammar comes from
// WithGrammar or, failing that, from the file name of path.
func NewSession(ctx context.Context, path, text string, opts ...Option) (*Session, error) {
	st, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return newSession(ctx, path, text, st)
}

// Open reads the file at path and creates a session over it.
func Open(ctx context.Context, path string, opts ...Option) (*Session, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &SessionError{Op: "open", Path: path, Err: err}
	}
	st, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return openSession(ctx, abs, st)
}

func newSession(ctx context.Context, path, text string, st settings) (*Session, error) {
	name := st.grammar
	if name == "" && path != "" {
		if g, ok := st.registry.ByFile(path); ok {
			name = g.Name()
		}
	}
	if name == "" {
		return nil, &SessionError{Op: "open", Path: path, Err: ErrNoGrammarForFile}
	}

	s := &Session{
		path:     path,
		doc:      document.New(text),
		settings: st,
	}
	s.logger = st.logger.WithField("file", filepath.Base(path))
	s.drv = driver.New(s.doc, st.registry, driver.WithLogger(s.logger), driver.WithTracer(st.tracer))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selectGrammar(ctx, name); err != nil {
		return nil, err
	}
	if _, _, err := s.lex(ctx); err != nil {
		return nil, s.fail("open", err)
	}
	return s, nil
}

// Path returns the file the session was opened from, or "".
func (s *Session) Path() string { return s.path }

// Grammar returns the name of the session's grammar.
func (s *Session) Grammar() string { return s.drv.Grammar() }

// View calls fn with the document and its driver while no reload or
// configuration change can run.
func (s *Session) View(fn func(doc *document.Document, drv *driver.Driver) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc, s.drv)
}

// Content returns the document text.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Content()
}

// SetGrammar switches the session to the named grammar, configures it
// from the settings and lexes the document.
func (s *Session) SetGrammar(ctx context.Context, name string) (driver.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.selectGrammar(ctx, name); err != nil {
		return driver.Result{}, err
	}
	res, _, err := s.lex(ctx)
	return res, err
}

// ApplyConfig reconfigures the session from cfg and lexes the document
// again. The grammar is kept. When cfg is rejected the document is
// lexed with whatever part of it was applied.
func (s *Session) ApplyConfig(ctx context.Context, cfg *config.Config) (driver.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	name := s.drv.Grammar()
	if name == "" {
		return driver.Result{}, nil
	}
	cfgErr := s.selectGrammar(ctx, name)
	res, _, err := s.lex(ctx)
	if cfgErr != nil {
		return res, cfgErr
	}
	return res, err
}

// selectGrammar resets the driver to the grammar's defaults, then
// applies the keyword script, the keyword lists and the options of the
// grammar's settings section, in that order.
func (s *Session) selectGrammar(ctx context.Context, name string) error {
	if err := s.drv.SetGrammar(name); err != nil {
		return &SessionError{Op: "set grammar", Path: s.path, Grammar: name, Err: err}
	}
	gc, err := s.cfg.Grammar(name)
	if err != nil {
		return s.fail("configure", err)
	}

	if gc.KeywordScript != "" {
		md, err := s.drv.Metadata()
		if err != nil {
			return err
		}
		script := gc.KeywordScript
		env := lua.Env{
			Grammar:  name,
			Defaults: md.Keywords,
			Print: func(line string) {
				s.logger.Info("%s: %s", filepath.Base(script), line)
			},
		}
		kw, err := s.scripts.Load(ctx, script, env)
		if err != nil {
			return s.fail("configure", fmt.Errorf("keyword script %s: %w", filepath.Base(script), err))
		}
		for _, n := range kw.Categories() {
			if err := s.drv.SetKeywords(n, kw[n]); err != nil {
				return s.fail("configure", fmt.Errorf("keyword script %s: %w", filepath.Base(script), err))
			}
		}
	}

	for _, n := range gc.Categories() {
		if err := s.drv.SetKeywords(n, gc.Keywords[n]); err != nil {
			return s.fail("configure", err)
		}
	}
	if values := gc.Settings(); len(values) > 0 {
		if err := s.drv.Configure(values); err != nil {
			return s.fail("configure", err)
		}
	}
	return nil
}

// Lex lexes whatever edits and configuration changes left pending.
func (s *Session) Lex(ctx context.Context) (driver.Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lex(ctx)
}

func (s *Session) lex(ctx context.Context) (driver.Result, bool, error) {
	timer := StartTimer()
	res, ok, err := s.drv.LexNeeded(ctx)
	if err != nil {
		s.metrics.RecordFailure()
		return res, false, err
	}
	if ok {
		s.metrics.RecordPass(timer.Elapsed(), res)
	}
	return res, ok, nil
}

// Reload replaces the document text with text. Only the lines that
// differ are edited, and the pass that follows starts at the first of
// them.
func (s *Session) Reload(ctx context.Context, text string) (ReloadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "session.Reload", trace.WithAttributes(
		attribute.String("file", s.path),
		attribute.Int("lines", s.doc.LineCount()),
	))
	defer span.End()

	old := make([]string, s.doc.LineCount())
	for i := range old {
		old[i] = s.doc.Line(i)
	}
	edits := LineEdits(old, SplitText(text))
	span.SetAttributes(attribute.Int("edits", len(edits)))

	results, err := s.doc.ApplyEdits(edits)
	for _, r := range results {
		if r.Deleted > 0 {
			s.drv.Deletion(r.Line)
		}
		if r.Inserted > 0 {
			s.drv.Insertion(r.Line, r.Inserted)
		}
	}
	s.doc.SetTrailingNewline(strings.HasSuffix(text, "\n"))
	out := ReloadResult{Edits: results}
	if err != nil {
		s.metrics.RecordFailure()
		return out, s.fail("reload", err)
	}
	s.metrics.RecordReload(len(results))

	out.Pass, out.Lexed, err = s.lex(ctx)
	if err != nil {
		return out, s.fail("reload", err)
	}
	s.logger.Debug("reloaded with %d edits", len(results))
	return out, nil
}

// ReloadFile reads the session's file again and reloads it.
func (s *Session) ReloadFile(ctx context.Context) (ReloadResult, error) {
	if s.path == "" {
		return ReloadResult{}, ErrNoPath
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ReloadResult{}, s.fail("reload", err)
	}
	return s.Reload(ctx, string(data))
}

// String returns the file and grammar of the session.
func (s *Session) String() string {
	return fmt.Sprintf("%s (%s)", s.path, s.drv.Grammar())
}
