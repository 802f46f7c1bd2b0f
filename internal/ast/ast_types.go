package ast

import (
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

// Type is a type expression as written in source.
type Type interface {
	Node
	typeNode()
}

// NamedType is a path with optional type arguments: `u64`, `P<T>`, `m::S`.
type NamedType struct {
	Token token.Token
	Path  CallPath
	Args  []Type
}

func (nt *NamedType) typeNode()             {}
func (nt *NamedType) TokenLiteral() string  { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token { return nt.Token }

// TupleType is `()` or `(A, B, ...)`.
type TupleType struct {
	Token token.Token
	Elems []Type
}

func (tt *TupleType) typeNode()             {}
func (tt *TupleType) TokenLiteral() string  { return tt.Token.Lexeme }
func (tt *TupleType) GetToken() token.Token { return tt.Token }

// ArrayType is `[Elem; Len]`.
type ArrayType struct {
	Token token.Token
	Elem  Type
	Len   uint64
}

func (at *ArrayType) typeNode()             {}
func (at *ArrayType) TokenLiteral() string  { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token { return at.Token }

// StrArrayType is `str[N]`.
type StrArrayType struct {
	Token token.Token
	Len   uint64
}

func (st *StrArrayType) typeNode()             {}
func (st *StrArrayType) TokenLiteral() string  { return st.Token.Lexeme }
func (st *StrArrayType) GetToken() token.Token { return st.Token }

// RefType is `&T` or `&mut T`.
type RefType struct {
	Token   token.Token
	Mutable bool
	Elem    Type
}

func (rt *RefType) typeNode()             {}
func (rt *RefType) TokenLiteral() string  { return rt.Token.Lexeme }
func (rt *RefType) GetToken() token.Token { return rt.Token }

// TypeSpan returns the source span covered by a type expression.
func TypeSpan(t Type) source.Span {
	switch t := t.(type) {
	case *NamedType:
		sp := t.Token.Span
		if t.Path.Span.File != nil {
			sp = t.Path.Span
		}
		for _, a := range t.Args {
			sp = sp.Join(TypeSpan(a))
		}
		return sp
	case *RefType:
		return t.Token.Span.Join(TypeSpan(t.Elem))
	case *ArrayType:
		return t.Token.Span.Join(TypeSpan(t.Elem))
	case *TupleType:
		sp := t.Token.Span
		for _, e := range t.Elems {
			sp = sp.Join(TypeSpan(e))
		}
		return sp
	case nil:
		return source.Span{}
	default:
		return t.GetToken().Span
	}
}
