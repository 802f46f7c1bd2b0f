package token

import "github.com/funvibe/traitmap/internal/source"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // uint64 for INT, string otherwise
	Span    source.Span
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	IDENT  = "IDENT"
	INT    = "INT"
	STRING = "STRING"

	// Punctuation the declaration grammar cares about
	LBRACE       = "{"
	RBRACE       = "}"
	LPAREN       = "("
	RPAREN       = ")"
	LBRACKET     = "["
	RBRACKET     = "]"
	LT           = "<"
	GT           = ">"
	COMMA        = ","
	SEMICOLON    = ";"
	COLON        = ":"
	DOUBLE_COLON = "::"
	ARROW        = "->"
	AMPERSAND    = "&"
	PLUS         = "+"
	ASSIGN       = "="
	ASTERISK     = "*"

	// OTHER is any operator that only appears inside skipped bodies.
	OTHER = "OTHER"

	// Keywords
	TRAIT  = "TRAIT"
	STRUCT = "STRUCT"
	ENUM   = "ENUM"
	IMPL   = "IMPL"
	FOR    = "FOR"
	WHERE  = "WHERE"
	FN     = "FN"
	PUB    = "PUB"
	USE    = "USE"
	TYPE   = "TYPE"
	CONST  = "CONST"
	MUT    = "MUT"
)

var keywords = map[string]TokenType{
	"trait":  TRAIT,
	"struct": STRUCT,
	"enum":   ENUM,
	"impl":   IMPL,
	"for":    FOR,
	"where":  WHERE,
	"fn":     FN,
	"pub":    PUB,
	"use":    USE,
	"type":   TYPE,
	"const":  CONST,
	"mut":    MUT,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
