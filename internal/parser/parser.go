package parser

import (
	"fmt"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

// Parser is a recursive-descent parser for the declaration grammar.
// Every parse* method starts with curToken on the first token of its
// construct and leaves curToken on the last one.
type Parser struct {
	tokens []token.Token
	pos    int
	file   *source.File
	h      *diagnostics.Handler

	curToken  token.Token
	peekToken token.Token
}

func New(file *source.File, tokens []token.Token, h *diagnostics.Handler) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		end := len(file.Input)
		tokens = append(tokens, token.Token{Type: token.EOF, Span: source.NewSpan(file, end, end)})
	}
	p := &Parser{tokens: tokens, file: file, h: h, pos: -2}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) at(i int) token.Token {
	if i < 0 {
		return token.Token{}
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.at(p.pos)
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// peekNTokenIs looks n tokens past the current one (n=1 is peekToken).
func (p *Parser) peekNTokenIs(n int, t token.TokenType) bool {
	return p.at(p.pos+n).Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(diagnostics.ErrP001, p.peekToken.Span, "expected %s, got %s", describe(t), describeToken(p.peekToken))
}

func (p *Parser) errorf(code diagnostics.ErrorCode, span source.Span, format string, args ...interface{}) {
	p.h.Errorf(code, span, format, args...)
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.INT:
		return "integer"
	case token.EOF:
		return "end of file"
	}
	if len(t) <= 2 {
		return fmt.Sprintf("'%s'", string(t))
	}
	return fmt.Sprintf("'%s'", lower(string(t)))
}

func describeToken(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of file"
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (p *Parser) spanFrom(start token.Token) source.Span {
	return start.Span.Join(p.curToken.Span)
}

// ParseModule parses a whole file. Items that fail to parse are reported
// and skipped.
func (p *Parser) ParseModule(name string) *ast.Module {
	mod := &ast.Module{Name: name, File: p.file}
	for !p.curTokenIs(token.EOF) {
		item := p.parseItem()
		if item == nil {
			p.synchronize()
			continue
		}
		mod.Items = append(mod.Items, item)
		p.nextToken()
	}
	return mod
}

func isItemStart(t token.TokenType) bool {
	switch t {
	case token.USE, token.TRAIT, token.STRUCT, token.ENUM, token.IMPL, token.FN, token.PUB, token.TYPE:
		return true
	}
	return false
}

// synchronize skips to the next top-level item keyword outside braces.
func (p *Parser) synchronize() {
	depth := 0
	p.nextToken()
	for !p.curTokenIs(token.EOF) {
		switch {
		case p.curTokenIs(token.LBRACE):
			depth++
		case p.curTokenIs(token.RBRACE):
			if depth > 0 {
				depth--
			}
		case depth == 0 && isItemStart(p.curToken.Type):
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseItem() ast.Item {
	public := false
	if p.curTokenIs(token.PUB) {
		public = true
		p.nextToken()
	}
	switch p.curToken.Type {
	case token.USE:
		if u := p.parseUse(); u != nil {
			return u
		}
	case token.TRAIT:
		if t := p.parseTrait(public); t != nil {
			return t
		}
	case token.STRUCT:
		if s := p.parseStruct(public); s != nil {
			return s
		}
	case token.ENUM:
		if e := p.parseEnum(public); e != nil {
			return e
		}
	case token.TYPE:
		if a := p.parseAlias(public); a != nil {
			return a
		}
	case token.IMPL:
		if i := p.parseImpl(); i != nil {
			return i
		}
	case token.FN:
		if f := p.parseFn(public); f != nil {
			if !f.HasBody() {
				p.errorf(diagnostics.ErrP001, f.Name.Span(), "function '%s' has no body", f.Name.Value)
			}
			return f
		}
	default:
		p.errorf(diagnostics.ErrP001, p.curToken.Span, "expected item, got %s", describeToken(p.curToken))
	}
	return nil
}

func (p *Parser) parseIdent() *ast.Ident {
	return &ast.Ident{Token: p.curToken, Value: p.curToken.Lexeme}
}

// parsePath reads `a::b::C` starting at an identifier. It stops before
// `::*` so that glob imports can be handled by the caller.
func (p *Parser) parsePath() ast.CallPath {
	start := p.curToken
	parts := []string{p.curToken.Lexeme}
	for p.peekTokenIs(token.DOUBLE_COLON) && p.peekNTokenIs(2, token.IDENT) {
		p.nextToken()
		p.nextToken()
		parts = append(parts, p.curToken.Lexeme)
	}
	cp := ast.NewCallPath(parts...)
	cp.Span = p.spanFrom(start)
	return cp
}

func (p *Parser) parseUse() *ast.UseDecl {
	u := &ast.UseDecl{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	u.Path = p.parsePath()
	if p.peekTokenIs(token.DOUBLE_COLON) && p.peekNTokenIs(2, token.ASTERISK) {
		p.nextToken()
		p.nextToken()
		u.Glob = true
		span := u.Path.Span.Join(p.curToken.Span)
		u.Path = ast.CallPath{Prefixes: append(u.Path.Prefixes, u.Path.Suffix), Suffix: "*", Span: span}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return u
}

// skipBlock consumes a balanced `{ ... }` starting at '{' and returns its
// span.
func (p *Parser) skipBlock() (source.Span, bool) {
	start := p.curToken
	depth := 1
	for depth > 0 {
		p.nextToken()
		switch p.curToken.Type {
		case token.EOF:
			p.errorf(diagnostics.ErrP002, start.Span, "unterminated block")
			return source.Span{}, false
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
	}
	return p.spanFrom(start), true
}

// skipExpr consumes tokens up to (not including) the next ';' outside
// brackets and returns their span. curToken is left on the last
// consumed token.
func (p *Parser) skipExpr() (source.Span, bool) {
	first := p.peekToken
	depth := 0
	var span source.Span
	for {
		switch p.peekToken.Type {
		case token.EOF:
			p.errorf(diagnostics.ErrP002, first.Span, "expected ';' after expression")
			return source.Span{}, false
		case token.LBRACE, token.LPAREN, token.LBRACKET:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACKET:
			depth--
		case token.SEMICOLON:
			if depth <= 0 {
				if span.IsZero() {
					p.errorf(diagnostics.ErrP001, p.peekToken.Span, "expected expression")
					return source.Span{}, false
				}
				return span, true
			}
		}
		p.nextToken()
		span = span.Join(p.curToken.Span)
	}
}
