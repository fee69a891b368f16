package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer defines the token types of the fnsql query language.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "MultiLineComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},

	// Literals
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "RawString", Pattern: "`[^`]*`"},

	// Arrow (must come before punctuation)
	{Name: "Arrow", Pattern: `->`},

	// Punctuation
	{Name: "Hash", Pattern: `#`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "LAngle", Pattern: `<`},
	{Name: "RAngle", Pattern: `>`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Equal", Pattern: `=`},

	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},

	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
