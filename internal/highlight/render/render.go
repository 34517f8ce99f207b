package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// Errors returned by Render.
var (
	ErrUnknownFormatter = errors.New("unknown formatter")
	ErrUnknownStyle     = errors.New("unknown colour style")
)

// Options select how a document is printed.
type Options struct {
	// Formatter is a chroma formatter name such as "terminal256",
	// "html" or "noop".
	Formatter string

	// Style is a chroma colour style name such as "monokai".
	Style string

	// TrimNewline drops the newline the last line is stored with.
	TrimNewline bool
}

// DefaultOptions prints with 256 colour escapes in the monokai style.
func DefaultOptions() Options {
	return Options{Formatter: "terminal256", Style: "monokai"}
}

// Render writes the styled lines to w.
func Render(w io.Writer, lines scan.Lines, md *grammar.Metadata, opts Options) error {
	formatter, ok := formatters.Registry[opts.Formatter]
	if !ok {
		return fmt.Errorf("%w %q: must be one of %s", ErrUnknownFormatter, opts.Formatter, strings.Join(formatters.Names(), ", "))
	}
	style, ok := styles.Registry[opts.Style]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownStyle, opts.Style)
	}

	tokens := Tokens(lines, md)
	if opts.TrimNewline && len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		last.Value = strings.TrimSuffix(last.Value, "\n")
		if last.Value == "" {
			tokens = tokens[:len(tokens)-1]
		}
	}
	if err := formatter.Format(w, style, chroma.Literator(tokens...)); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	return nil
}

// Formatters returns the available formatter names.
func Formatters() []string {
	return formatters.Names()
}

// Styles returns the available colour style names.
func Styles() []string {
	return styles.Names()
}
