// Package python implements the Python grammar.
package python

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
)

// Style tags.
const (
	Default = iota
	Whitespace
	Word1
	Word2
	Word3
	Word4
	Word5
	Word6
	Word7
	Word8
	Word9
	CommentLine
	Number
	String
	Character
	Triple
	TripleDouble
	ClassName
	DefName
	Operator
	Identifier
	CommentBlock
	StringEOL
	Decorator
)

// Option names.
const (
	OptFoldComment = "foldcomment"
	OptFoldQuote   = "foldquote"
)

var metadata = &grammar.Metadata{
	Styles: grammar.Styles(
		"commentline", "number", "string", "character", "triple",
		"tripledouble", "classname", "defname", "operator", "identifier",
		"commentblock", "stringeol", "decorator",
	),
	Options: []grammar.OptionSpec{
		grammar.Bool(OptFoldComment, true, "fold indented blocks of comment lines"),
		grammar.Bool(OptFoldQuote, true, "fold triple quoted strings"),
	},
	Keywords: [9][]string{
		{
			"False", "None", "True", "and", "as", "assert", "async", "await",
			"break", "class", "continue", "def", "del", "elif", "else", "except",
			"finally", "for", "from", "global", "if", "import", "in", "is",
			"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
			"while", "with", "yield",
		},
		{
			"abs", "all", "any", "bool", "bytes", "dict", "enumerate", "filter",
			"float", "getattr", "hasattr", "int", "isinstance", "iter", "len",
			"list", "map", "max", "min", "next", "object", "open", "print",
			"range", "repr", "set", "setattr", "sorted", "str", "sum", "super",
			"tuple", "type", "zip",
		},
	},
	Patterns: []string{"*.py", "*.pyw", "*.pyi", "SConstruct", "SConscript"},
}

// Grammar is the Python grammar.
type Grammar struct{}

// New returns the Python grammar.
func New() *Grammar { return &Grammar{} }

// Name implements grammar.Grammar.
func (*Grammar) Name() string { return "python" }

// Metadata implements grammar.Grammar.
func (*Grammar) Metadata() *grammar.Metadata { return metadata }

// Lex implements grammar.Grammar.
func (*Grammar) Lex(req *grammar.Request) int {
	return newLexer(req).run()
}

// Fold implements grammar.Folder.
func (*Grammar) Fold(req *grammar.Request) int {
	return fold(req)
}
