package bench

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// benchLexer defines the lexical structure of .bench netlist files.
// The format is line-oriented but every statement is self-delimiting,
// so newlines carry no meaning and are elided with the rest of the
// whitespace.
var benchLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from # to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},

	// Whitespace
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},

	// Declaration keywords (case-insensitive)
	{Name: "KwInput", Pattern: `(?i)\bINPUT\b`},
	{Name: "KwOutput", Pattern: `(?i)\bOUTPUT\b`},

	// Punctuation
	{Name: "Assign", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	// Signal and gate names. ISCAS-85 benchmarks use bare numbers as
	// signal names, so a leading digit is allowed.
	{Name: "Ident", Pattern: `[A-Za-z0-9_]+`},
})
