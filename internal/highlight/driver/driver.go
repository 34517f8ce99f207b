// Package driver runs grammars incrementally over a document.
//
// A Driver owns the grammar instance of one document: its keyword lists,
// options and the pending range of lines that edits disturbed. Lexing a
// range styles the lines, extends the pass while the state carried into
// later lines keeps changing, folds the styled lines, repairs the fold
// view and publishes the touched lines as invalidated.
//
// Basic usage:
//
//	doc := document.New(text)
//	d := driver.New(doc, grammars.Default())
//	if err := d.SetGrammar("python"); err != nil { ... }
//	res, _, err := d.LexNeeded(ctx)
//
// All methods are safe for concurrent use; passes over one document are
// serialized.
package driver

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dshills/lexfold/internal/highlight/dirty"
	"github.com/dshills/lexfold/internal/highlight/fold"
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
	"github.com/dshills/lexfold/internal/highlight/wordlist"
	"github.com/dshills/lexfold/internal/logging"
)

// Document is the line arena a driver styles, together with its fold
// view flags.
type Document interface {
	scan.Lines
	fold.Tree
	ResetStyles()
}

// Result describes the lines a pass touched.
type Result struct {
	// First is the first line styled.
	First int

	// Last is the last line whose styles, fold level or view flags
	// may have changed.
	Last int

	// LastStyled is the last line the lexer processed, including the
	// lines it continued into.
	LastStyled int

	// WholeDocument is set when the pass covered every line.
	WholeDocument bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger passes are reported to.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithTracer sets the tracer that wraps every pass in a span.
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) { d.tracer = t }
}

// Driver runs one grammar over one document.
type Driver struct {
	mu sync.Mutex

	doc      Document
	registry *grammar.Registry

	grammar  grammar.Grammar
	keywords *wordlist.Set
	options  *grammar.Options

	enabled        bool
	braceStyle     int
	braceStyleName string

	// pending holds lines edits disturbed that have not been lexed.
	pending *dirty.Tracker

	// invalidated holds lines passes changed that have not been
	// collected by Invalidated.
	invalidated *dirty.Tracker

	logger *logging.Logger
	tracer trace.Tracer
}

// New creates a driver with no grammar.
func New(doc Document, registry *grammar.Registry, opts ...Option) *Driver {
	d := &Driver{
		doc:         doc,
		registry:    registry,
		enabled:     true,
		braceStyle:  scan.NoStyle,
		pending:     dirty.NewTracker(),
		invalidated: dirty.NewTracker(),
		logger:      logging.Null(),
		tracer:      noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithComponent("driver")
	return d
}

// active reports whether edits are lexed.
func (d *Driver) active() bool {
	return d.grammar != nil && d.enabled
}

// Insertion records that n lines were inserted at start.
func (d *Driver) Insertion(start, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active() {
		return
	}
	d.pending.MarkChange(dirty.Change{Type: dirty.ChangeInsert, Range: dirty.NewRange(start, start+n)})
}

// Deletion records that lines were deleted at start. The document must
// already be shortened. Deleting the last lines dirties the new last
// line.
func (d *Driver) Deletion(start int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active() {
		return
	}
	if n := d.doc.LineCount(); start >= n {
		start = n - 1
	}
	d.pending.MarkChange(dirty.Change{Type: dirty.ChangeDelete, Range: dirty.NewRange(start, start)})
}

// Pending returns the span of lines waiting to be lexed.
func (d *Driver) Pending() (dirty.Range, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending.Span(d.doc.LineCount())
}

// LexNeeded lexes the pending range, if any, and clears it. The boolean
// reports whether a pass ran.
func (d *Driver) LexNeeded(ctx context.Context) (Result, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active() {
		return Result{}, false, nil
	}
	r, ok := d.pending.Take(d.doc.LineCount())
	if !ok {
		return Result{}, false, nil
	}
	res, err := d.lexAndFold(ctx, r.First, r.LineCount())
	if err != nil {
		d.pending.MarkLines(r.First, r.Last)
		return Result{}, false, err
	}
	return res, true, nil
}

// LexAndFold styles and folds count lines from start, continuing as far
// as the change propagates.
func (d *Driver) LexAndFold(ctx context.Context, start, count int) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return Result{}, ErrNoGrammar
	}
	return d.lexAndFold(ctx, start, count)
}

func (d *Driver) lexAndFold(ctx context.Context, start, count int) (Result, error) {
	n := d.doc.LineCount()
	if start < 0 {
		start = 0
	}
	if start >= n {
		start = n - 1
	}
	if count < 1 {
		count = 1
	}
	last := start + count - 1
	if last >= n {
		last = n - 1
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ctx, span := d.tracer.Start(ctx, "driver.LexAndFold", trace.WithAttributes(
		attribute.String("grammar", d.grammar.Name()),
		attribute.Int("first", start),
		attribute.Int("last", last),
		attribute.Int("lines", n),
	))
	defer span.End()

	req := &grammar.Request{
		Lines:    d.doc,
		First:    start,
		Last:     last,
		Keywords: d.keywords,
		Options:  d.options,
	}
	lastStyled := d.grammar.Lex(req)
	lastLine := lastStyled
	span.AddEvent("lexed", trace.WithAttributes(attribute.Int("last_styled", lastStyled)))

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("after lexing lines %d-%d: %w", start, lastStyled, err)
	}

	// The fold pass starts a line early: the stored level of the first
	// line may belong to text that was deleted or not be computed yet,
	// and a changed line can change whether the line above opens a fold.
	// It also folds one line past the lexed ones, since a folder may look
	// at the next line.
	changedFrom := start
	if f, ok := d.grammar.(grammar.Folder); ok {
		foldFirst := max(start-1, 0)
		before := d.doc.FoldLevel(foldFirst)
		freq := *req
		freq.First = foldFirst
		freq.Last = min(lastLine+1, n-1)
		lastLine = max(f.Fold(&freq), lastLine)
		if d.doc.FoldLevel(foldFirst) != before {
			changedFrom = foldFirst
		}
		span.AddEvent("folded", trace.WithAttributes(attribute.Int("last_folded", lastLine)))
	}

	if repaired := fold.Repair(d.doc, changedFrom, lastLine); repaired > lastLine {
		lastLine = repaired
	}

	res := Result{
		First:         start,
		Last:          lastLine,
		LastStyled:    lastStyled,
		WholeDocument: start == 0 && lastStyled+1 >= n,
	}
	if res.WholeDocument {
		d.invalidated.MarkWholeDocument()
	} else {
		d.invalidated.MarkChange(dirty.Change{Type: dirty.ChangeStyle, Range: dirty.NewRange(changedFrom, lastLine)})
	}

	d.logger.WithFields(map[string]any{
		"first":       start,
		"last":        res.Last,
		"last_styled": lastStyled,
	}).Debug("%s pass", d.grammar.Name())
	return res, nil
}

// Invalidated returns the line ranges passes changed since the last
// call and forgets them.
func (d *Driver) Invalidated() []dirty.Range {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.invalidated.TakeRanges(d.doc.LineCount())
}

// RemoveStyle returns every character to the unstyled state and every
// line to its initial state and fold level.
func (d *Driver) RemoveStyle() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.removeStyle()
}

func (d *Driver) removeStyle() {
	d.doc.ResetStyles()
	d.pending.Clear()
	d.invalidated.MarkWholeDocument()
}

// lexAll schedules the whole document for lexing.
func (d *Driver) lexAll() {
	d.pending.MarkChange(dirty.Change{Type: dirty.ChangeGrammar})
}
