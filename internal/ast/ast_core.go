package ast

import (
	"strings"

	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Item is a top-level declaration of a module.
type Item interface {
	Node
	itemNode()
}

// Ident is a name together with the token it was read from.
type Ident struct {
	Token token.Token
	Value string
}

func (i *Ident) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Ident) GetToken() token.Token { return i.Token }
func (i *Ident) Span() source.Span     { return i.Token.Span }

// CallPath is a qualified name: namespace prefixes followed by the last
// identifier, e.g. `std::ops::Add`.
type CallPath struct {
	Prefixes []string
	Suffix   string
	Span     source.Span
}

func NewCallPath(parts ...string) CallPath {
	if len(parts) == 0 {
		return CallPath{}
	}
	return CallPath{Prefixes: append([]string(nil), parts[:len(parts)-1]...), Suffix: parts[len(parts)-1]}
}

func (c CallPath) String() string {
	if len(c.Prefixes) == 0 {
		return c.Suffix
	}
	return strings.Join(c.Prefixes, config.PathSeparator) + config.PathSeparator + c.Suffix
}

// Equal compares prefixes and suffix; spans are ignored.
func (c CallPath) Equal(o CallPath) bool {
	if c.Suffix != o.Suffix || len(c.Prefixes) != len(o.Prefixes) {
		return false
	}
	for i := range c.Prefixes {
		if c.Prefixes[i] != o.Prefixes[i] {
			return false
		}
	}
	return true
}

// Compare orders call paths by their string form.
func (c CallPath) Compare(o CallPath) int {
	return strings.Compare(c.String(), o.String())
}

// Module is the root node produced for one source file.
type Module struct {
	Name  string
	File  *source.File
	Items []Item
}

func (m *Module) TokenLiteral() string {
	if len(m.Items) > 0 {
		return m.Items[0].TokenLiteral()
	}
	return ""
}

// Uses returns every use declaration of the module in source order.
func (m *Module) Uses() []*UseDecl {
	var uses []*UseDecl
	for _, it := range m.Items {
		if u, ok := it.(*UseDecl); ok {
			uses = append(uses, u)
		}
	}
	return uses
}
