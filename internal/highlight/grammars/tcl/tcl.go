// Package tcl implements the Tcl grammar.
//
// Keywords are only recognised where a command is expected: at the start
// of a line, after ';', and after an opening '[' or '{'.
package tcl

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
	CommentLine
	Number
	WordInQuote
	InQuote
	Operator
	Identifier
	Substitution
	SubBrace
	Modifier
	Expand
	CommentBox
	BlockComment
)

// OptFoldComment folds blocks of comment lines.
const OptFoldComment = "foldcomment"

// Line state. The low bits carry an open construct into the next line.
const (
	lsOpenComment     scan.LineState = 0x1
	lsOpenDoubleQuote scan.LineState = 0x2
	lsCommentBox      scan.LineState = 0x4
	lsVarnameInBraces scan.LineState = 0x8
	lsMaskState       scan.LineState = 0xf
	lsOnlyComment     scan.LineState = 0x20
	lsBlank           scan.LineState = 0x40
	lsContinuation    scan.LineState = 0x80
)

var metadata = &grammar.Metadata{
	Styles: grammar.Styles(
		"comment", "commentline", "number", "word_in_quote", "string",
		"operator", "identifier", "substitution", "sub_brace", "modifier",
		"expand", "comment_box", "comment_block",
	),
	Options: []grammar.OptionSpec{
		grammar.Bool(OptFoldComment, true, "fold blocks of comment lines"),
	},
	Keywords: [9][]string{
		{
			"after", "append", "apply", "array", "binary", "break", "catch",
			"cd", "chan", "clock", "close", "concat", "continue", "dict",
			"else", "elseif", "encoding", "eof", "error", "eval", "exec", "exit",
			"expr", "fblocked", "fconfigure", "fcopy", "file", "fileevent",
			"flush", "for", "foreach", "format", "gets", "glob", "global", "if",
			"incr", "info", "interp", "join", "lappend", "lassign", "lindex",
			"linsert", "list", "llength", "lmap", "load", "lrange", "lrepeat",
			"lreplace", "lreverse", "lsearch", "lset", "lsort", "namespace",
			"open", "package", "pid", "proc", "puts", "pwd", "read", "regexp",
			"regsub", "rename", "return", "scan", "seek", "set", "socket",
			"source", "split", "string", "subst", "switch", "tell", "then",
			"throw", "time", "trace", "try", "unset", "update", "uplevel",
			"upvar", "variable", "vwait", "while",
		},
		{
			"bell", "bind", "bindtags", "button", "canvas", "checkbutton",
			"clipboard", "destroy", "entry", "event", "focus", "font", "frame",
			"grab", "grid", "image", "label", "labelframe", "listbox", "lower",
			"menu", "menubutton", "message", "pack", "panedwindow", "place",
			"radiobutton", "raise", "scale", "scrollbar", "selection", "spinbox",
			"text", "tk", "tkwait", "toplevel", "winfo", "wm",
		},
		{
			"oo::class", "oo::define", "oo::object", "method", "constructor",
			"destructor", "my", "next", "self",
		},
	},
	Patterns: []string{"*.tcl", "*.tk", "*.itcl", "*.tm", "pkgIndex.tcl"},
}

// Grammar is the Tcl grammar.
type Grammar struct{}

// New returns the Tcl grammar.
func New() *Grammar { return &Grammar{} }

// Name implements grammar.Grammar.
func (*Grammar) Name() string { return "tcl" }

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

func isComment(style int) bool {
	switch style {
	case Comment, CommentLine, CommentBox, BlockComment:
		return true
	}
	return false
}
