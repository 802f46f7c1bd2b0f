package ast

import (
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

// TraitBound is one bound of a generic parameter or supertrait list:
// `Add`, `Into<u64>`.
type TraitBound struct {
	Path CallPath
	Args []Type
}

// GenericParam is `T` or `T: A + B<u8>` inside `<...>`.
type GenericParam struct {
	Name   *Ident
	Bounds []TraitBound
}

// WherePredicate is `T: A + B` inside a where clause.
type WherePredicate struct {
	Name   *Ident
	Bounds []TraitBound
}

// Param is one function parameter. `self` parameters have Type == nil and
// IsSelf set.
type Param struct {
	Name   *Ident
	Type   Type
	IsSelf bool
	Ref    bool
	Mut    bool
}

// FnDecl is a function signature with an optional body.
type FnDecl struct {
	Token      token.Token // the 'fn' token
	Public     bool
	Name       *Ident
	Generics   []GenericParam
	Params     []Param
	ReturnType Type
	Where      []WherePredicate
	Body       source.Span // zero when the function has no body
}

func (fd *FnDecl) itemNode()             {}
func (fd *FnDecl) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FnDecl) GetToken() token.Token { return fd.Token }
func (fd *FnDecl) HasBody() bool         { return !fd.Body.IsZero() }

// ConstDecl is an associated or trait constant. Value is the raw
// initialiser span, zero in trait interfaces without a default.
type ConstDecl struct {
	Token token.Token
	Name  *Ident
	Type  Type
	Value source.Span
}

func (cd *ConstDecl) itemNode()             {}
func (cd *ConstDecl) TokenLiteral() string  { return cd.Token.Lexeme }
func (cd *ConstDecl) GetToken() token.Token { return cd.Token }

// AssocTypeDecl is `type Name;` in a trait or `type Name = T;` in an impl.
type AssocTypeDecl struct {
	Token token.Token
	Name  *Ident
	Type  Type // nil in trait interfaces
}

func (ad *AssocTypeDecl) itemNode()             {}
func (ad *AssocTypeDecl) TokenLiteral() string  { return ad.Token.Lexeme }
func (ad *AssocTypeDecl) GetToken() token.Token { return ad.Token }

// UseDecl is `use a::b::C;` or `use a::b::*;`.
type UseDecl struct {
	Token token.Token
	Path  CallPath
	Glob  bool
}

func (ud *UseDecl) itemNode()             {}
func (ud *UseDecl) TokenLiteral() string  { return ud.Token.Lexeme }
func (ud *UseDecl) GetToken() token.Token { return ud.Token }

// Module returns the module name the declaration imports from. For a glob
// import `use m::*;` the path is {[m], "*"}.
func (ud *UseDecl) Module() string {
	if len(ud.Path.Prefixes) > 0 {
		return ud.Path.Prefixes[0]
	}
	return ud.Path.Suffix
}

// TraitDecl is a trait declaration with its interface.
type TraitDecl struct {
	Token       token.Token
	Public      bool
	Name        *Ident
	Generics    []GenericParam
	Supertraits []TraitBound
	Fns         []*FnDecl
	Consts      []*ConstDecl
	Types       []*AssocTypeDecl
	Span        source.Span
}

func (td *TraitDecl) itemNode()             {}
func (td *TraitDecl) TokenLiteral() string  { return td.Token.Lexeme }
func (td *TraitDecl) GetToken() token.Token { return td.Token }

// Field is a struct field or an enum variant (Type nil for unit variants).
type Field struct {
	Name *Ident
	Type Type
}

type StructDecl struct {
	Token    token.Token
	Public   bool
	Name     *Ident
	Generics []GenericParam
	Fields   []Field
	Span     source.Span
}

func (sd *StructDecl) itemNode()             {}
func (sd *StructDecl) TokenLiteral() string  { return sd.Token.Lexeme }
func (sd *StructDecl) GetToken() token.Token { return sd.Token }

type EnumDecl struct {
	Token    token.Token
	Public   bool
	Name     *Ident
	Generics []GenericParam
	Variants []Field
	Span     source.Span
}

func (ed *EnumDecl) itemNode()             {}
func (ed *EnumDecl) TokenLiteral() string  { return ed.Token.Lexeme }
func (ed *EnumDecl) GetToken() token.Token { return ed.Token }

// AliasDecl is `type Name = T;` at module level.
type AliasDecl struct {
	Token  token.Token
	Public bool
	Name   *Ident
	Target Type
}

func (ad *AliasDecl) itemNode()             {}
func (ad *AliasDecl) TokenLiteral() string  { return ad.Token.Lexeme }
func (ad *AliasDecl) GetToken() token.Token { return ad.Token }

// ImplDecl is `impl<G> Trait<Args> for Type where ... { items }` or the
// inherent form `impl<G> Type { items }` (Trait == nil).
type ImplDecl struct {
	Token     token.Token
	Generics  []GenericParam
	Trait     *CallPath
	TraitArgs []Type
	SelfType  Type
	Where     []WherePredicate
	Fns       []*FnDecl
	Consts    []*ConstDecl
	Types     []*AssocTypeDecl
	Span      source.Span
}

func (id *ImplDecl) itemNode()             {}
func (id *ImplDecl) TokenLiteral() string  { return id.Token.Lexeme }
func (id *ImplDecl) GetToken() token.Token { return id.Token }

// IsInherent reports whether the impl has no trait (`impl Type { }`).
func (id *ImplDecl) IsInherent() bool { return id.Trait == nil }
