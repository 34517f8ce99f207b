// Package bash implements the shell script grammar.
package bash

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
	Error
	CommentLine
	Number
	String
	Character
	Operator
	Identifier
	Scalar
	Param
	Backticks
	HereDelim
	HereQ
)

// Option names.
const (
	OptFoldComment = "foldcomment"
	OptFoldCompact = "foldcompact"
)

var metadata = &grammar.Metadata{
	Styles: grammar.Styles(
		"error", "commentline", "number", "string", "character",
		"operator", "identifier", "scalar", "param", "backticks",
		"here_delim", "here_q",
	),
	Options: []grammar.OptionSpec{
		grammar.Bool(OptFoldComment, true, "fold blocks of comment lines"),
		grammar.Bool(OptFoldCompact, true, "mark blank lines white so they join the preceding fold"),
	},
	Keywords: [9][]string{
		{
			"alias", "bg", "bind", "break", "builtin", "case", "cd", "command",
			"compgen", "complete", "continue", "declare", "dirs", "disown", "do",
			"done", "echo", "elif", "else", "enable", "esac", "eval", "exec",
			"exit", "export", "false", "fc", "fg", "fi", "for", "function",
			"getopts", "hash", "help", "history", "if", "in", "jobs", "kill",
			"let", "local", "logout", "popd", "printf", "pushd", "pwd", "read",
			"readonly", "return", "select", "set", "shift", "shopt", "source",
			"suspend", "test", "then", "time", "times", "trap", "true", "type",
			"typeset", "ulimit", "umask", "unalias", "unset", "until", "wait",
			"while",
		},
	},
	Patterns: []string{"*.sh", "*.bash", "*.ksh", "*.zsh", ".bashrc", ".bash_profile", ".profile"},
}

// Grammar is the shell grammar.
type Grammar struct{}

// New returns the shell grammar.
func New() *Grammar { return &Grammar{} }

// Name implements grammar.Grammar.
func (*Grammar) Name() string { return "bash" }

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
