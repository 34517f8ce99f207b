// Package lua implements the Lua grammar.
package lua

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
	Comment
	CommentLine
	CommentDoc
	Number
	String
	Character
	LiteralString
	Preprocessor
	Operator
	Identifier
	StringEOL
	Function
)

// OptFoldCompact marks blank lines white.
const OptFoldCompact = "foldcompact"

var metadata = &grammar.Metadata{
	Styles: grammar.Styles(
		"comment", "commentline", "commentdoc", "number", "string",
		"character", "literalstring", "preprocessor", "operator",
		"identifier", "stringeol", "function",
	),
	Options: []grammar.OptionSpec{
		grammar.Bool(OptFoldCompact, true, "mark blank lines white so they join the preceding fold"),
	},
	Keywords: [9][]string{
		{
			"and", "break", "do", "else", "elseif", "end", "false", "for",
			"function", "goto", "if", "in", "local", "nil", "not", "or",
			"repeat", "return", "then", "true", "until", "while",
		},
		{
			"_G", "_VERSION", "assert", "collectgarbage", "dofile", "error",
			"getmetatable", "ipairs", "load", "loadfile", "next", "pairs",
			"pcall", "print", "rawequal", "rawget", "rawlen", "rawset",
			"require", "select", "setmetatable", "tonumber", "tostring",
			"type", "xpcall",
		},
		{
			"coroutine", "debug", "io", "math", "os", "package", "string",
			"table", "utf8",
		},
	},
	Patterns: []string{"*.lua", "*.wlua", "*.rockspec"},
}

// Grammar is the Lua grammar.
type Grammar struct{}

// New returns the Lua grammar.
func New() *Grammar { return &Grammar{} }

// Name implements grammar.Grammar.
func (*Grammar) Name() string { return "lua" }

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
