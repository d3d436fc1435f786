package filter

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Filter expression grammar. Keywords and the and/or/not/in/true/false/null
// literals match case-insensitively.
//
//	Genere == "RPG" AND PrezzoListino < 30
//	Titolo.Contains("war") || !IsRecensioneVerificata
//	Piattaforma in ("PC", "PS5") and DataRilascio >= "2024-01-01"
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Operator", Pattern: `==|!=|<>|>=|<=|&&|\|\||[=<>!]`},
	{Name: "Punct", Pattern: `[().,\[\]]`},
})

var exprParser = participle.MustBuild[orExpr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

type orExpr struct {
	Left  *andExpr   `parser:"@@"`
	Right []*andExpr `parser:"( ( 'or' | '||' ) @@ )*"`
}

type andExpr struct {
	Left  *unaryExpr   `parser:"@@"`
	Right []*unaryExpr `parser:"( ( 'and' | '&&' ) @@ )*"`
}

type unaryExpr struct {
	Not   *unaryExpr `parser:"  ( 'not' | '!' ) @@"`
	Group *orExpr    `parser:"| '(' @@ ')'"`
	Term  *termExpr  `parser:"| @@"`
}

type termExpr struct {
	Field  string      `parser:"@Ident"`
	Method *methodExpr `parser:"( @@"`
	In     []*literal  `parser:"| 'in' ( '(' | '[' ) @@ ( ',' @@ )* ( ')' | ']' )"`
	Op     string      `parser:"| @( '==' | '=' | '!=' | '<>' | '>=' | '<=' | '>' | '<' )"`
	Value  *literal    `parser:"  @@ )?"`
}

type methodExpr struct {
	Name string   `parser:"'.' @Ident"`
	Arg  *literal `parser:"'(' @@ ')'"`
}

type literal struct {
	Str  *string `parser:"  @String"`
	Num  *string `parser:"| @Number"`
	Bool *string `parser:"| @( 'true' | 'false' )"`
	Null bool    `parser:"| @'null'"`
}
