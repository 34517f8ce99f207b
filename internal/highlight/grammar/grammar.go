// Package grammar defines the capability interface every lexical
// grammar implements, its static metadata, and the registry grammars
// are looked up in.
package grammar

import (
	"github.com/dshills/lexfold/internal/highlight/scan"
	"github.com/dshills/lexfold/internal/highlight/wordlist"
)

// Grammar styles a range of lines.
//
// Lex styles lines Request.First to Request.Last and returns the last
// line it actually processed, which may lie beyond Last when the styling
// of later lines changed.
type Grammar interface {
	Name() string
	Metadata() *Metadata
	Lex(req *Request) int
}

// Folder is implemented by grammars that compute fold levels. Fold
// replays the styles Lex wrote and returns the last line processed.
type Folder interface {
	Fold(req *Request) int
}

// Request is the input of one lex or fold pass.
type Request struct {
	Lines    scan.Lines
	First    int
	Last     int
	Keywords *wordlist.Set
	Options  *Options
}

// Keyword returns the category of token, if any.
func (r *Request) Keyword(token string) (int, bool) {
	return r.Keywords.Match(token)
}

// Bool returns a boolean option, false when unset.
func (r *Request) Bool(name string) bool {
	if r.Options == nil {
		return false
	}
	return r.Options.Bool(name)
}

// Int returns an integer option, 0 when unset.
func (r *Request) Int(name string) int {
	if r.Options == nil {
		return 0
	}
	return r.Options.Int(name)
}

// Metadata is the static description of a grammar.
type Metadata struct {
	// Styles names every style tag; the index is the tag.
	Styles []string

	// Options lists the grammar's configuration options.
	Options []OptionSpec

	// Keywords holds the default keyword lists by category.
	Keywords [wordlist.Categories][]string

	// Patterns are file name globs matched against base names.
	Patterns []string
}

// StyleIndex returns the tag of a named style.
func (m *Metadata) StyleIndex(name string) (int, bool) {
	for i, s := range m.Styles {
		if s == name {
			return i, true
		}
	}
	return 0, false
}

// StyleName returns the name of a style tag, or "" when out of range.
func (m *Metadata) StyleName(style int) string {
	if style < 0 || style >= len(m.Styles) {
		return ""
	}
	return m.Styles[style]
}

// DefaultKeywords builds a keyword set from the default lists.
func (m *Metadata) DefaultKeywords() *wordlist.Set {
	set := wordlist.NewSet()
	for i, words := range m.Keywords {
		set[i].Replace(words)
	}
	return set
}

// NewRequest builds a request with the grammar's default keywords and
// options.
func NewRequest(g Grammar, lines scan.Lines, first, last int) *Request {
	md := g.Metadata()
	return &Request{
		Lines:    lines,
		First:    first,
		Last:     last,
		Keywords: md.DefaultKeywords(),
		Options:  NewOptions(md.Options),
	}
}

// CommonStyles are the first styles of every grammar: default,
// whitespace and the nine keyword classes.
var CommonStyles = []string{
	"default", "whitespace",
	"keyword1", "keyword2", "keyword3", "keyword4", "keyword5",
	"keyword6", "keyword7", "keyword8", "keyword9",
}

// Keyword1 is the tag of the first keyword style in every grammar.
const Keyword1 = 2

// Styles appends grammar specific style names to CommonStyles.
func Styles(extra ...string) []string {
	out := make([]string, 0, len(CommonStyles)+len(extra))
	out = append(out, CommonStyles...)
	return append(out, extra...)
}
