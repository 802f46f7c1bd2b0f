package lexer

import (
	"testing"

	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `use std::ops::*;
// line comment
impl<T: Add> Dbl<u64> for &mut P<T> where T: Eq {
	/* block */ fn dbl(self, v: u64) -> u64 { "}" }
}
`
	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.USE, "use"},
		{token.IDENT, "std"},
		{token.DOUBLE_COLON, "::"},
		{token.IDENT, "ops"},
		{token.DOUBLE_COLON, "::"},
		{token.ASTERISK, "*"},
		{token.SEMICOLON, ";"},
		{token.IMPL, "impl"},
		{token.LT, "<"},
		{token.IDENT, "T"},
		{token.COLON, ":"},
		{token.IDENT, "Add"},
		{token.GT, ">"},
		{token.IDENT, "Dbl"},
		{token.LT, "<"},
		{token.IDENT, "u64"},
		{token.GT, ">"},
		{token.FOR, "for"},
		{token.AMPERSAND, "&"},
		{token.MUT, "mut"},
		{token.IDENT, "P"},
		{token.LT, "<"},
		{token.IDENT, "T"},
		{token.GT, ">"},
		{token.WHERE, "where"},
		{token.IDENT, "T"},
		{token.COLON, ":"},
		{token.IDENT, "Eq"},
		{token.LBRACE, "{"},
		{token.FN, "fn"},
		{token.IDENT, "dbl"},
		{token.LPAREN, "("},
		{token.IDENT, "self"},
		{token.COMMA, ","},
		{token.IDENT, "v"},
		{token.COLON, ":"},
		{token.IDENT, "u64"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.IDENT, "u64"},
		{token.LBRACE, "{"},
		{token.STRING, `"}"`},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(source.NewFile("test.tm", input))
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestNumbersAndSpans(t *testing.T) {
	f := source.NewFile("n.tm", "[u8; 1_000]\n  x")
	toks := New(f).Tokenize()
	if toks[3].Type != token.INT || toks[3].Literal != uint64(1000) {
		t.Fatalf("expected INT 1000, got %s %v", toks[3].Type, toks[3].Literal)
	}
	x := toks[5]
	if _, line, col := x.Span.LocStart(); line != 2 || col != 3 {
		t.Errorf("x at %d:%d, want 2:3", line, col)
	}
	if toks[len(toks)-1].Type != token.EOF {
		t.Error("missing EOF")
	}
}

func TestUnterminatedString(t *testing.T) {
	toks := New(source.NewFile("s.tm", `fn f() { "abc`)).Tokenize()
	var sawIllegal bool
	for _, tok := range toks {
		if tok.Type == token.ILLEGAL {
			sawIllegal = true
		}
	}
	if !sawIllegal {
		t.Error("expected an ILLEGAL token for the unterminated string")
	}
}

func TestOperatorsInBodies(t *testing.T) {
	toks := New(source.NewFile("o.tm", "a - b / c == d")).Tokenize()
	want := []token.TokenType{token.IDENT, token.OTHER, token.IDENT, token.OTHER, token.IDENT, token.ASSIGN, token.ASSIGN, token.IDENT, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}
