// Package render turns styled lines into chroma tokens so documents can
// be printed with any chroma formatter and colour style.
package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"

	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/scan"
)

// tokenTypes maps grammar style names to chroma token types.
var tokenTypes = map[string]chroma.TokenType{
	"default":    chroma.Text,
	"whitespace": chroma.TextWhitespace,
	"keyword1":   chroma.Keyword,
	"keyword2":   chroma.KeywordType,
	"keyword3":   chroma.NameBuiltin,
	"keyword4":   chroma.KeywordReserved,
	"keyword5":   chroma.KeywordPseudo,
	"keyword6":   chroma.KeywordNamespace,
	"keyword7":   chroma.KeywordDeclaration,
	"keyword8":   chroma.KeywordConstant,
	"keyword9":   chroma.NameBuiltinPseudo,

	"error":    chroma.Error,
	"ideol":    chroma.Error,
	"operator": chroma.Operator,

	"identifier": chroma.Name,
	"function":   chroma.NameFunction,
	"defname":    chroma.NameFunction,
	"classname":  chroma.NameClass,
	"class_id":   chroma.NameClass,
	"decorator":  chroma.NameDecorator,
	"target":     chroma.NameLabel,
	"modifier":   chroma.NameAttribute,
	"expand":     chroma.KeywordPseudo,

	"variable":     chroma.NameVariable,
	"scalar":       chroma.NameVariable,
	"param":        chroma.NameVariable,
	"substitution": chroma.NameVariable,
	"sub_brace":    chroma.NameVariable,

	"comment":                chroma.CommentMultiline,
	"comment_block":          chroma.CommentMultiline,
	"comment_box":            chroma.CommentSpecial,
	"commentline":            chroma.CommentSingle,
	"commentblock":           chroma.CommentSingle,
	"commentdoc":             chroma.CommentSpecial,
	"commentlinedoc":         chroma.CommentSpecial,
	"commentdockeyword":      chroma.CommentSpecial,
	"commentdockeyworderror": chroma.Error,
	"preprocessor":           chroma.CommentPreproc,

	"number":        chroma.LiteralNumber,
	"uuid":          chroma.LiteralOther,
	"string":        chroma.LiteralString,
	"word_in_quote": chroma.LiteralString,
	"character":     chroma.LiteralStringChar,
	"literalstring": chroma.LiteralStringOther,
	"verbatim":      chroma.LiteralStringOther,
	"regex":         chroma.LiteralStringRegex,
	"triple":        chroma.LiteralStringDoc,
	"tripledouble":  chroma.LiteralStringDoc,
	"backticks":     chroma.LiteralStringBacktick,
	"here_delim":    chroma.LiteralStringDelimiter,
	"here_q":        chroma.LiteralStringHeredoc,
	"stringeol":     chroma.Error,
}

// TokenType returns the chroma token type of a style name. Unknown
// names are plain text.
func TokenType(style string) chroma.TokenType {
	if t, ok := tokenTypes[style]; ok {
		return t
	}
	return chroma.Text
}

// Tokens converts every line into tokens, one per run of equal style.
// Unstyled characters become plain text.
func Tokens(lines scan.Lines, md *grammar.Metadata) []chroma.Token {
	var (
		tokens []chroma.Token
		run    strings.Builder
		cur    = chroma.Text
	)
	flush := func() {
		if run.Len() > 0 {
			tokens = append(tokens, chroma.Token{Type: cur, Value: run.String()})
			run.Reset()
		}
	}
	for i := 0; i < lines.LineCount(); i++ {
		text, styles := lines.Text(i), lines.Styles(i)
		for j, ch := range text {
			t := chroma.Text
			if j < len(styles) {
				if s := scan.StyleOf(styles[j]); s != scan.NoStyle {
					t = TokenType(md.StyleName(s))
				}
			}
			if t != cur {
				flush()
				cur = t
			}
			run.WriteByte(ch)
		}
	}
	flush()
	return tokens
}
