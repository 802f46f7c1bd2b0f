package parser

import (
	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/token"
)

// parseFn parses a function signature followed by either a body or ';'.
func (p *Parser) parseFn(public bool) *ast.FnDecl {
	fn := &ast.FnDecl{Token: p.curToken, Public: public}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = p.parseIdent()
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		generics, ok := p.parseGenerics()
		if !ok {
			return nil
		}
		fn.Generics = generics
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	fn.Params = params
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		where, ok := p.parseWhere()
		if !ok {
			return nil
		}
		fn.Where = where
	}
	switch {
	case p.peekTokenIs(token.LBRACE):
		p.nextToken()
		body, ok := p.skipBlock()
		if !ok {
			return nil
		}
		fn.Body = body
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
	default:
		p.errorf(diagnostics.ErrP001, p.peekToken.Span, "expected function body or ';', got %s", describeToken(p.peekToken))
		return nil
	}
	return fn
}

// parseParams parses the parameter list starting at '('.
func (p *Parser) parseParams() ([]ast.Param, bool) {
	var params []ast.Param
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}
	for {
		p.nextToken()
		var param ast.Param
		if p.curTokenIs(token.AMPERSAND) {
			param.Ref = true
			p.nextToken()
		}
		if p.curTokenIs(token.MUT) {
			param.Mut = true
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf(diagnostics.ErrP001, p.curToken.Span, "expected parameter name, got %s", describeToken(p.curToken))
			return nil, false
		}
		param.Name = p.parseIdent()
		if param.Name.Value == config.SelfParamName {
			param.IsSelf = true
		} else {
			if !p.expectPeek(token.COLON) {
				return nil, false
			}
			p.nextToken()
			param.Type = p.parseType()
			if param.Type == nil {
				return nil, false
			}
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RPAREN) {
				p.nextToken()
				return params, true
			}
			continue
		}
		if !p.expectPeek(token.RPAREN) {
			return nil, false
		}
		return params, true
	}
}

// parseConst parses `const N: T;` or `const N: T = <expr>;`.
func (p *Parser) parseConst() *ast.ConstDecl {
	cd := &ast.ConstDecl{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	cd.Name = p.parseIdent()
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	cd.Type = p.parseType()
	if cd.Type == nil {
		return nil
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		value, ok := p.skipExpr()
		if !ok {
			return nil
		}
		cd.Value = value
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return cd
}

// parseAssocType parses `type N;` or `type N = T;` inside a trait or impl.
func (p *Parser) parseAssocType() *ast.AssocTypeDecl {
	ad := &ast.AssocTypeDecl{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	ad.Name = p.parseIdent()
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		ad.Type = p.parseType()
		if ad.Type == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ad
}

// itemList collects the members of a trait or impl body.
type itemList struct {
	fns    []*ast.FnDecl
	consts []*ast.ConstDecl
	types  []*ast.AssocTypeDecl
}

// parseItemBody parses `{ fn.. const.. type.. }` starting at '{'. Members
// that fail to parse are skipped.
func (p *Parser) parseItemBody(owner string) (itemList, bool) {
	var items itemList
	open := p.curToken
	for {
		p.nextToken()
		if p.curTokenIs(token.PUB) {
			p.nextToken()
		}
		switch p.curToken.Type {
		case token.RBRACE:
			return items, true
		case token.EOF:
			p.errorf(diagnostics.ErrP002, open.Span, "unterminated %s body", owner)
			return items, false
		case token.FN:
			if fn := p.parseFn(false); fn != nil {
				items.fns = append(items.fns, fn)
				continue
			}
		case token.CONST:
			if cd := p.parseConst(); cd != nil {
				items.consts = append(items.consts, cd)
				continue
			}
		case token.TYPE:
			if ad := p.parseAssocType(); ad != nil {
				items.types = append(items.types, ad)
				continue
			}
		default:
			p.errorf(diagnostics.ErrP001, p.curToken.Span, "expected %s item, got %s", owner, describeToken(p.curToken))
		}
		p.skipMember()
		if p.curTokenIs(token.EOF) {
			return items, false
		}
	}
}

// skipMember advances past a broken member: through the next ';' or
// balanced block at this level, stopping before the body's closing '}'.
func (p *Parser) skipMember() {
	for {
		switch p.peekToken.Type {
		case token.EOF:
			p.nextToken()
			return
		case token.RBRACE:
			return
		case token.SEMICOLON:
			p.nextToken()
			return
		case token.LBRACE:
			p.nextToken()
			p.skipBlock()
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseTrait(public bool) *ast.TraitDecl {
	td := &ast.TraitDecl{Token: p.curToken, Public: public}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	td.Name = p.parseIdent()
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		generics, ok := p.parseGenerics()
		if !ok {
			return nil
		}
		td.Generics = generics
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		supers, ok := p.parseBounds()
		if !ok {
			return nil
		}
		td.Supertraits = supers
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	items, ok := p.parseItemBody("trait")
	if !ok {
		return nil
	}
	td.Fns, td.Consts, td.Types = items.fns, items.consts, items.types
	td.Span = p.spanFrom(td.Token)
	return td
}

func (p *Parser) parseStruct(public bool) *ast.StructDecl {
	sd := &ast.StructDecl{Token: p.curToken, Public: public}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	sd.Name = p.parseIdent()
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		generics, ok := p.parseGenerics()
		if !ok {
			return nil
		}
		sd.Generics = generics
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fields, ok := p.parseFields(true)
	if !ok {
		return nil
	}
	sd.Fields = fields
	sd.Span = p.spanFrom(sd.Token)
	return sd
}

func (p *Parser) parseEnum(public bool) *ast.EnumDecl {
	ed := &ast.EnumDecl{Token: p.curToken, Public: public}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	ed.Name = p.parseIdent()
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		generics, ok := p.parseGenerics()
		if !ok {
			return nil
		}
		ed.Generics = generics
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	variants, ok := p.parseFields(false)
	if !ok {
		return nil
	}
	ed.Variants = variants
	ed.Span = p.spanFrom(ed.Token)
	return ed
}

// parseFields parses struct fields or enum variants starting at '{'.
// Enum variants may omit their type.
func (p *Parser) parseFields(typeRequired bool) ([]ast.Field, bool) {
	var fields []ast.Field
	for {
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return fields, true
		}
		if p.peekTokenIs(token.PUB) {
			p.nextToken()
		}
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		f := ast.Field{Name: p.parseIdent()}
		if typeRequired || p.peekTokenIs(token.COLON) {
			if !p.expectPeek(token.COLON) {
				return nil, false
			}
			p.nextToken()
			f.Type = p.parseType()
			if f.Type == nil {
				return nil, false
			}
		}
		fields = append(fields, f)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.RBRACE) {
			return nil, false
		}
		return fields, true
	}
}

func (p *Parser) parseAlias(public bool) *ast.AliasDecl {
	ad := &ast.AliasDecl{Token: p.curToken, Public: public}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	ad.Name = p.parseIdent()
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	ad.Target = p.parseType()
	if ad.Target == nil || !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ad
}

func (p *Parser) parseImpl() *ast.ImplDecl {
	id := &ast.ImplDecl{Token: p.curToken}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		generics, ok := p.parseGenerics()
		if !ok {
			return nil
		}
		id.Generics = generics
	}
	p.nextToken()
	first := p.parseType()
	if first == nil {
		return nil
	}
	if p.peekTokenIs(token.FOR) {
		nt, ok := first.(*ast.NamedType)
		if !ok {
			p.errorf(diagnostics.ErrP001, ast.TypeSpan(first), "expected trait name before 'for'")
			return nil
		}
		path := nt.Path
		id.Trait = &path
		id.TraitArgs = nt.Args
		p.nextToken()
		p.nextToken()
		id.SelfType = p.parseType()
		if id.SelfType == nil {
			return nil
		}
	} else {
		id.SelfType = first
	}
	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		where, ok := p.parseWhere()
		if !ok {
			return nil
		}
		id.Where = where
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	items, ok := p.parseItemBody("impl")
	if !ok {
		return nil
	}
	id.Fns, id.Consts, id.Types = items.fns, items.consts, items.types
	id.Span = p.spanFrom(id.Token)
	return id
}
