// Package makefile implements the make grammar.
package makefile

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
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
	Preprocessor
	Variable
	Operator
	Target
	IdEOL
	Substitution
	Character
	String
	StringEOL
)

// OptFoldComment folds blocks of comment lines.
const OptFoldComment = "foldcomment"

// Line state bits.
const (
	lineContinued scan.LineState = 1 << iota
	lineBlank
	lineComment
	lineTab
	lineTarget
	lineVariable
)

var metadata = &grammar.Metadata{
	Styles: grammar.Styles(
		"comment", "preprocessor", "variable", "operator", "target",
		"ideol", "substitution", "character", "string", "stringeol",
	),
	Options: []grammar.OptionSpec{
		grammar.Bool(OptFoldComment, true, "fold blocks of comment lines"),
	},
	Keywords: [9][]string{
		{
			"-include", "define", "else", "endef", "endif", "export", "ifdef",
			"ifeq", "ifndef", "ifneq", "include", "override", "private",
			"sinclude", "undefine", "unexport", "vpath",
		},
	},
	Patterns: []string{"Makefile", "makefile", "GNUmakefile", "*.mk", "*.mak"},
}

// Grammar is the make grammar.
type Grammar struct{}

// New returns the make grammar.
func New() *Grammar { return &Grammar{} }

// Name implements grammar.Grammar.
func (*Grammar) Name() string { return "makefile" }

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
