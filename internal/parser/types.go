package parser

import (
	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/token"
)

func (p *Parser) parseType() ast.Type {
	switch p.curToken.Type {
	case token.AMPERSAND:
		rt := &ast.RefType{Token: p.curToken}
		if p.peekTokenIs(token.MUT) {
			p.nextToken()
			rt.Mutable = true
		}
		p.nextToken()
		rt.Elem = p.parseType()
		if rt.Elem == nil {
			return nil
		}
		return rt
	case token.LPAREN:
		return p.parseTupleType()
	case token.LBRACKET:
		at := &ast.ArrayType{Token: p.curToken}
		p.nextToken()
		at.Elem = p.parseType()
		if at.Elem == nil || !p.expectPeek(token.SEMICOLON) || !p.expectPeek(token.INT) {
			return nil
		}
		at.Len, _ = p.curToken.Literal.(uint64)
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return at
	case token.IDENT:
		if p.curToken.Lexeme == config.StrTypeName && p.peekTokenIs(token.LBRACKET) {
			st := &ast.StrArrayType{Token: p.curToken}
			p.nextToken()
			if !p.expectPeek(token.INT) {
				return nil
			}
			st.Len, _ = p.curToken.Literal.(uint64)
			if !p.expectPeek(token.RBRACKET) {
				return nil
			}
			return st
		}
		nt := &ast.NamedType{Token: p.curToken}
		nt.Path = p.parsePath()
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			args, ok := p.parseTypeArgs()
			if !ok {
				return nil
			}
			nt.Args = args
		}
		return nt
	}
	p.errorf(diagnostics.ErrP001, p.curToken.Span, "expected type, got %s", describeToken(p.curToken))
	return nil
}

func (p *Parser) parseTupleType() ast.Type {
	tt := &ast.TupleType{Token: p.curToken}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return tt
	}
	sawComma := false
	for {
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		tt.Elems = append(tt.Elems, elem)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		sawComma = true
		if p.peekTokenIs(token.RPAREN) {
			break
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if len(tt.Elems) == 1 && !sawComma {
		return tt.Elems[0]
	}
	return tt
}

// parseTypeArgs parses `<A, B>` starting at '<'.
func (p *Parser) parseTypeArgs() ([]ast.Type, bool) {
	var args []ast.Type
	if p.peekTokenIs(token.GT) {
		p.nextToken()
		return args, true
	}
	for {
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil, false
		}
		args = append(args, t)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.GT) {
			return nil, false
		}
		return args, true
	}
}

// parseBounds parses `A + B<u8> + m::C` starting at the first identifier.
func (p *Parser) parseBounds() ([]ast.TraitBound, bool) {
	var bounds []ast.TraitBound
	for {
		b := ast.TraitBound{Path: p.parsePath()}
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			args, ok := p.parseTypeArgs()
			if !ok {
				return nil, false
			}
			b.Args = args
		}
		bounds = append(bounds, b)
		if !p.peekTokenIs(token.PLUS) {
			return bounds, true
		}
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
	}
}

// parseGenerics parses `<T, U: A + B>` starting at '<'.
func (p *Parser) parseGenerics() ([]ast.GenericParam, bool) {
	var params []ast.GenericParam
	if p.peekTokenIs(token.GT) {
		p.nextToken()
		return params, true
	}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		gp := ast.GenericParam{Name: p.parseIdent()}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil, false
			}
			bounds, ok := p.parseBounds()
			if !ok {
				return nil, false
			}
			gp.Bounds = bounds
		}
		params = append(params, gp)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.GT) {
			return nil, false
		}
		return params, true
	}
}

// parseWhere parses `where T: A, U: B + C` starting at 'where'.
func (p *Parser) parseWhere() ([]ast.WherePredicate, bool) {
	var preds []ast.WherePredicate
	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		pred := ast.WherePredicate{Name: p.parseIdent()}
		if !p.expectPeek(token.COLON) || !p.expectPeek(token.IDENT) {
			return nil, false
		}
		bounds, ok := p.parseBounds()
		if !ok {
			return nil, false
		}
		pred.Bounds = bounds
		preds = append(preds, pred)
		if p.peekTokenIs(token.COMMA) && p.peekNTokenIs(2, token.IDENT) {
			p.nextToken()
			continue
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		return preds, true
	}
}
