package driver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
	"github.com/dshills/lexfold/internal/highlight/wordlist"
)

// Driver level options handled next to the grammar's own.
const (
	OptEnable     = "enable"
	OptBraceStyle = "bracestyle"
)

// SetGrammar selects the grammar by name and schedules the whole
// document for lexing. An empty name removes the grammar and every
// style. The grammar starts with its default keywords and options.
func (d *Driver) SetGrammar(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name == "" {
		d.grammar = nil
		d.keywords = nil
		d.options = nil
		d.braceStyle, d.braceStyleName = scan.NoStyle, ""
		d.removeStyle()
		return nil
	}

	g, err := d.registry.Get(name)
	if err != nil {
		return err
	}
	md := g.Metadata()
	d.grammar = g
	d.keywords = md.DefaultKeywords()
	d.options = grammar.NewOptions(md.Options)
	d.braceStyle, d.braceStyleName = scan.NoStyle, ""

	d.removeStyle()
	if d.enabled {
		d.lexAll()
	}
	d.logger.Info("grammar set to %s", name)
	return nil
}

// Grammar returns the name of the current grammar, or "".
func (d *Driver) Grammar() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return ""
	}
	return d.grammar.Name()
}

// Metadata returns the current grammar's metadata.
func (d *Driver) Metadata() (*grammar.Metadata, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return nil, ErrNoGrammar
	}
	return d.grammar.Metadata(), nil
}

// Names returns the names of every registered grammar.
func (d *Driver) Names() []string {
	return d.registry.Names()
}

// StyleNames returns the style names of the current grammar; the index
// of a name is its style tag.
func (d *Driver) StyleNames() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return nil, ErrNoGrammar
	}
	styles := d.grammar.Metadata().Styles
	out := make([]string, len(styles))
	copy(out, styles)
	return out, nil
}

func category(n int) (int, error) {
	if n < 1 || n > wordlist.Categories {
		return 0, fmt.Errorf("%w: %d", ErrKeywordCategory, n)
	}
	return n - 1, nil
}

// Keywords returns keyword list n, numbered from 1.
func (d *Driver) Keywords(n int) ([]string, error) {
	i, err := category(n)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return nil, ErrNoGrammar
	}
	return d.keywords[i].Words(), nil
}

// SetKeywords replaces keyword list n, numbered from 1, and schedules
// the whole document for lexing.
func (d *Driver) SetKeywords(n int, words []string) error {
	i, err := category(n)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return ErrNoGrammar
	}
	// Passes read the set without locking it, so replace the whole set.
	keywords := d.keywords.Clone()
	keywords[i].Replace(words)
	d.keywords = keywords
	if d.enabled {
		d.lexAll()
	}
	return nil
}

// Option returns the textual value of a driver or grammar option.
func (d *Driver) Option(name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return "", ErrNoGrammar
	}
	switch name {
	case OptEnable:
		return strconv.FormatBool(d.enabled), nil
	case OptBraceStyle:
		return d.braceStyleName, nil
	}
	return d.options.Get(name)
}

// Options returns every option name: the driver's, then the grammar's.
func (d *Driver) Options() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return nil, ErrNoGrammar
	}
	return append([]string{OptEnable, OptBraceStyle}, d.options.Names()...), nil
}

// Configure changes options. Every value is validated before any option
// changes, so a rejected call has no effect. A successful call
// schedules the whole document for lexing; disabling the driver
// removes every style instead.
func (d *Driver) Configure(values map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return ErrNoGrammar
	}

	enabled := d.enabled
	braceStyle, braceStyleName := d.braceStyle, d.braceStyleName
	rest := make(map[string]string, len(values))
	for name, value := range values {
		switch name {
		case OptEnable:
			spec := grammar.Bool(OptEnable, true, "")
			v, err := spec.Parse(value)
			if err != nil {
				return err
			}
			enabled = v == 1
		case OptBraceStyle:
			if value == "" {
				braceStyle, braceStyleName = scan.NoStyle, ""
				continue
			}
			idx, ok := d.grammar.Metadata().StyleIndex(value)
			if !ok {
				return fmt.Errorf("%w %q", ErrUnknownStyle, value)
			}
			braceStyle, braceStyleName = idx, value
		default:
			rest[name] = value
		}
	}

	options := d.options.Clone()
	if err := options.Apply(rest); err != nil {
		return err
	}

	d.options = options
	d.braceStyle, d.braceStyleName = braceStyle, braceStyleName
	wasEnabled := d.enabled
	d.enabled = enabled
	switch {
	case !enabled && wasEnabled:
		d.removeStyle()
	case enabled:
		d.lexAll()
	}
	return nil
}

// Invoke lexes lines start..end.
func (d *Driver) Invoke(ctx context.Context, start, end int) (Result, error) {
	if start > end {
		return Result{}, ErrInvalidRange
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.grammar == nil {
		return Result{}, ErrNoGrammar
	}
	return d.lexAndFold(ctx, start, end-start+1)
}
