package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter renders declarations back to source form. Function bodies
// and constant initialisers are not parsed and are copied verbatim.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
	column int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders a whole module.
func Print(m *ast.Module) string {
	p := NewCodePrinter()
	p.VisitModule(m)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = len(s) - idx - 1
	} else {
		p.column += len(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

func (p *CodePrinter) pub(public bool) {
	if public {
		p.write("pub ")
	}
}

func (p *CodePrinter) VisitModule(m *ast.Module) {
	for i, item := range m.Items {
		// blank line between items, except between consecutive uses
		if i > 0 {
			_, prevUse := m.Items[i-1].(*ast.UseDecl)
			_, curUse := item.(*ast.UseDecl)
			if !prevUse || !curUse {
				p.writeln()
			}
		}
		p.VisitItem(item)
		p.writeln()
	}
}

func (p *CodePrinter) VisitItem(item ast.Item) {
	switch n := item.(type) {
	case *ast.UseDecl:
		p.VisitUseDecl(n)
	case *ast.TraitDecl:
		p.VisitTraitDecl(n)
	case *ast.StructDecl:
		p.VisitStructDecl(n)
	case *ast.EnumDecl:
		p.VisitEnumDecl(n)
	case *ast.AliasDecl:
		p.VisitAliasDecl(n)
	case *ast.FnDecl:
		p.VisitFnDecl(n)
	case *ast.ImplDecl:
		p.VisitImplDecl(n)
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) VisitUseDecl(n *ast.UseDecl) {
	p.write("use ")
	p.write(n.Path.String())
	p.write(";")
}

func (p *CodePrinter) VisitTraitDecl(n *ast.TraitDecl) {
	p.pub(n.Public)
	p.write("trait ")
	p.write(n.Name.Value)
	p.generics(n.Generics)
	if len(n.Supertraits) > 0 {
		p.write(": ")
		p.bounds(n.Supertraits)
	}
	p.body(n.Fns, n.Consts, n.Types)
}

func (p *CodePrinter) VisitStructDecl(n *ast.StructDecl) {
	p.pub(n.Public)
	p.write("struct ")
	p.write(n.Name.Value)
	p.generics(n.Generics)
	p.fields(n.Fields, ": ")
}

func (p *CodePrinter) VisitEnumDecl(n *ast.EnumDecl) {
	p.pub(n.Public)
	p.write("enum ")
	p.write(n.Name.Value)
	p.generics(n.Generics)
	p.fields(n.Variants, ": ")
}

func (p *CodePrinter) VisitAliasDecl(n *ast.AliasDecl) {
	p.pub(n.Public)
	p.write("type ")
	p.write(n.Name.Value)
	p.write(" = ")
	p.VisitType(n.Target)
	p.write(";")
}

func (p *CodePrinter) VisitImplDecl(n *ast.ImplDecl) {
	p.write("impl")
	p.generics(n.Generics)
	p.write(" ")
	if !n.IsInherent() {
		p.write(n.Trait.String())
		p.typeArgs(n.TraitArgs)
		p.write(" for ")
	}
	p.VisitType(n.SelfType)
	p.where(n.Where)
	p.body(n.Fns, n.Consts, n.Types)
}

func (p *CodePrinter) VisitFnDecl(n *ast.FnDecl) {
	p.pub(n.Public)
	p.write("fn ")
	p.write(n.Name.Value)
	p.generics(n.Generics)
	p.write("(")
	for i, param := range n.Params {
		if i > 0 {
			p.write(", ")
		}
		if param.Ref {
			p.write("&")
		}
		if param.Mut {
			p.write("mut ")
		}
		p.write(param.Name.Value)
		if !param.IsSelf {
			p.write(": ")
			p.VisitType(param.Type)
		}
	}
	p.write(")")
	if n.ReturnType != nil {
		p.write(" -> ")
		p.VisitType(n.ReturnType)
	}
	p.where(n.Where)
	if n.HasBody() {
		p.write(" ")
		p.write(n.Body.Text())
	} else {
		p.write(";")
	}
}

func (p *CodePrinter) VisitConstDecl(n *ast.ConstDecl) {
	p.write("const ")
	p.write(n.Name.Value)
	p.write(": ")
	p.VisitType(n.Type)
	if !n.Value.IsZero() {
		p.write(" = ")
		p.write(n.Value.Text())
	}
	p.write(";")
}

func (p *CodePrinter) VisitAssocTypeDecl(n *ast.AssocTypeDecl) {
	p.write("type ")
	p.write(n.Name.Value)
	if n.Type != nil {
		p.write(" = ")
		p.VisitType(n.Type)
	}
	p.write(";")
}

func (p *CodePrinter) VisitType(t ast.Type) {
	switch t := t.(type) {
	case *ast.NamedType:
		p.write(t.Path.String())
		p.typeArgs(t.Args)
	case *ast.TupleType:
		p.write("(")
		for i, e := range t.Elems {
			if i > 0 {
				p.write(", ")
			}
			p.VisitType(e)
		}
		if len(t.Elems) == 1 {
			p.write(",")
		}
		p.write(")")
	case *ast.ArrayType:
		p.write("[")
		p.VisitType(t.Elem)
		p.write("; " + strconv.FormatUint(t.Len, 10) + "]")
	case *ast.StrArrayType:
		p.write("str[" + strconv.FormatUint(t.Len, 10) + "]")
	case *ast.RefType:
		p.write("&")
		if t.Mutable {
			p.write("mut ")
		}
		p.VisitType(t.Elem)
	case nil:
		p.write("()")
	default:
		p.write("<???>")
	}
}

func (p *CodePrinter) typeArgs(args []ast.Type) {
	if len(args) == 0 {
		return
	}
	p.write("<")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.VisitType(a)
	}
	p.write(">")
}

func (p *CodePrinter) bounds(bounds []ast.TraitBound) {
	for i, b := range bounds {
		if i > 0 {
			p.write(" + ")
		}
		p.write(b.Path.String())
		p.typeArgs(b.Args)
	}
}

func (p *CodePrinter) generics(gs []ast.GenericParam) {
	if len(gs) == 0 {
		return
	}
	p.write("<")
	for i, g := range gs {
		if i > 0 {
			p.write(", ")
		}
		p.write(g.Name.Value)
		if len(g.Bounds) > 0 {
			p.write(": ")
			p.bounds(g.Bounds)
		}
	}
	p.write(">")
}

func (p *CodePrinter) where(preds []ast.WherePredicate) {
	if len(preds) == 0 {
		return
	}
	p.write(" where ")
	for i, wp := range preds {
		if i > 0 {
			p.write(", ")
		}
		p.write(wp.Name.Value)
		p.write(": ")
		p.bounds(wp.Bounds)
	}
}

func (p *CodePrinter) fields(fields []ast.Field, sep string) {
	if len(fields) == 0 {
		p.write(" { }")
		return
	}
	p.write(" {")
	p.writeln()
	p.indent++
	for _, f := range fields {
		p.writeIndent()
		p.write(f.Name.Value)
		if f.Type != nil {
			p.write(sep)
			p.VisitType(f.Type)
		}
		p.write(",")
		p.writeln()
	}
	p.indent--
	p.write("}")
}

// body prints the member block of a trait or impl: constants, then
// associated types, then functions.
func (p *CodePrinter) body(fns []*ast.FnDecl, consts []*ast.ConstDecl, types []*ast.AssocTypeDecl) {
	if len(fns)+len(consts)+len(types) == 0 {
		p.write(" { }")
		return
	}
	p.write(" {")
	p.writeln()
	p.indent++
	for _, c := range consts {
		p.writeIndent()
		p.VisitConstDecl(c)
		p.writeln()
	}
	for _, t := range types {
		p.writeIndent()
		p.VisitAssocTypeDecl(t)
		p.writeln()
	}
	for _, fn := range fns {
		p.writeIndent()
		p.VisitFnDecl(fn)
		p.writeln()
	}
	p.indent--
	p.write("}")
}
