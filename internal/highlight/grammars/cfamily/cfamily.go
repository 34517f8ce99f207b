// Package cfamily implements the C-family grammars: TOL and C/C++.
//
// Both dialects share one lexer and one folder. TOL adds '@' names,
// @"..." verbatim strings and the uuid(...) literal.
package cfamily

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
	UUID
	Preprocessor
	Operator
	Identifier
	Verbatim
	Regex
	CommentLineDoc
	CommentDocKeyword
	CommentDocKeywordError
	Function
	ClassID
)

// Option names.
const (
	OptFoldComment               = "foldcomment"
	OptFoldCompact               = "foldcompact"
	OptFoldPreprocessor          = "foldpreprocessor"
	OptFoldAtElse                = "foldatelse"
	OptStylingWithinPreprocessor = "stylingwithinpreprocessor"
)

// docKeywordList is the keyword category holding doc comment tags.
const docKeywordList = 2

var commonStyles = []string{
	"comment", "commentline", "commentdoc", "number", "string", "character",
	"uuid", "preprocessor", "operator", "identifier", "verbatim", "regex",
	"commentlinedoc", "commentdockeyword", "commentdockeyworderror",
	"function",
}

var options = []grammar.OptionSpec{
	grammar.Bool(OptFoldAtElse, true, `fold "} else {" as the end of one block and the start of another`),
	grammar.Bool(OptFoldComment, true, "fold multi-line comments and //{ //} markers"),
	grammar.Bool(OptFoldCompact, true, "mark blank lines white so they join the preceding fold"),
	grammar.Bool(OptFoldPreprocessor, true, "fold #if and #region blocks"),
	grammar.Bool(OptStylingWithinPreprocessor, true, "style the rest of a directive line as code"),
}

var docKeywords = []string{
	"a", "author", "brief", "bug", "c", "code", "date", "deprecated",
	"em", "endcode", "example", "exception", "file", "li", "note", "p",
	"param", "pre", "retval", "return", "returns", "sa", "see", "since",
	"throws", "todo", "version", "warning",
}

var tolMetadata = &grammar.Metadata{
	Styles:  grammar.Styles(append(append([]string{}, commonStyles...), "class_id")...),
	Options: options,
	Keywords: [9][]string{
		{
			"uuid", "If", "Else", "While", "For", "EvalSet", "Case", "Do",
			"Include", "Of", "Class", "Struct", "Static", "Const", "NameBlock",
			"Real", "Text", "Date", "Serie", "TimeSet", "Polyn", "Ratio",
			"Matrix", "VMatrix", "Set", "Code", "Complex", "Anything",
			"Stop", "Write", "WriteLn", "True", "False",
		},
		{
			"Eval", "Find", "Group", "Copy", "Card", "Select", "Sort",
			"Sum", "Max", "Min", "Abs", "Sqrt", "Log", "Exp", "Round",
			"Floor", "Ceil", "Today", "Now", "ObjectExist", "Grammar",
		},
		docKeywords,
	},
	Patterns: []string{"*.tol", "*.idl", "*.odl"},
}

var cppMetadata = &grammar.Metadata{
	Styles:  grammar.Styles(commonStyles...),
	Options: options,
	Keywords: [9][]string{
		{
			"alignas", "alignof", "asm", "auto", "bool", "break", "case",
			"catch", "char", "class", "const", "constexpr", "const_cast",
			"continue", "decltype", "default", "delete", "do", "double",
			"dynamic_cast", "else", "enum", "explicit", "export", "extern",
			"false", "float", "for", "friend", "goto", "if", "inline", "int",
			"long", "mutable", "namespace", "new", "noexcept", "nullptr",
			"operator", "private", "protected", "public", "register",
			"reinterpret_cast", "return", "short", "signed", "sizeof",
			"static", "static_assert", "static_cast", "struct", "switch",
			"template", "this", "throw", "true", "try", "typedef", "typeid",
			"typename", "union", "unsigned", "using", "virtual", "void",
			"volatile", "wchar_t", "while",
		},
		{
			"size_t", "ptrdiff_t", "int8_t", "int16_t", "int32_t", "int64_t",
			"uint8_t", "uint16_t", "uint32_t", "uint64_t", "std", "string",
			"vector", "map",
		},
		docKeywords,
	},
	Patterns: []string{"*.c", "*.h", "*.cc", "*.cpp", "*.cxx", "*.hh", "*.hpp", "*.hxx"},
}

// Grammar is a C-family grammar.
type Grammar struct {
	name string
	tol  bool
}

// NewTOL returns the TOL grammar.
func NewTOL() *Grammar { return &Grammar{name: "tol", tol: true} }

// NewCPP returns the C and C++ grammar.
func NewCPP() *Grammar { return &Grammar{name: "cpp"} }

// Name implements grammar.Grammar.
func (g *Grammar) Name() string { return g.name }

// Metadata implements grammar.Grammar.
func (g *Grammar) Metadata() *grammar.Metadata {
	if g.tol {
		return tolMetadata
	}
	return cppMetadata
}

// Lex implements grammar.Grammar.
func (g *Grammar) Lex(req *grammar.Request) int {
	return newLexer(req, g.tol).run()
}

// Fold implements grammar.Folder.
func (g *Grammar) Fold(req *grammar.Request) int {
	return fold(req)
}

func isStreamComment(style int) bool {
	switch style {
	case Comment, CommentDoc, CommentDocKeyword, CommentDocKeywordError:
		return true
	}
	return false
}
