package decls

import (
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// DeclID is a handle into an Engine. The zero value is not a valid
// declaration.
type DeclID = typesystem.DeclRef

// Decl is a typed declaration stored in the engine.
type Decl interface {
	DeclName() string
	DeclSpan() source.Span
	// substitute returns a copy with s applied to every type handle.
	substitute(te *typesystem.Engine, s typesystem.Subst) Decl
}

// FnParam is one parameter of a function declaration.
type FnParam struct {
	Name   string
	Type   typesystem.TypeID
	IsSelf bool
}

type FunctionDecl struct {
	Name       string
	TypeParams []typesystem.TypeParameter
	Params     []FnParam
	ReturnType typesystem.TypeID
	// ImplementingFor is the type of the impl the function belongs to.
	ImplementingFor *typesystem.TypeID
	// IsTraitMethodDummy marks interface methods inserted for a generic
	// parameter so that calls through its bounds resolve.
	IsTraitMethodDummy bool
	HasBody            bool
	Span               source.Span
}

type ConstantDecl struct {
	Name     string
	Type     typesystem.TypeID
	HasValue bool
	Span     source.Span
}

// TraitTypeDecl is an associated type. Type is zero in trait interfaces.
type TraitTypeDecl struct {
	Name string
	Type typesystem.TypeID
	Span source.Span
}

type StructField struct {
	Name string
	Type typesystem.TypeID
}

type StructDecl struct {
	Name       string
	Module     string
	TypeParams []typesystem.TypeParameter
	Fields     []StructField
	// Type is the declared type with its own parameters as arguments.
	Type typesystem.TypeID
	Span source.Span
}

type EnumDecl struct {
	Name       string
	Module     string
	TypeParams []typesystem.TypeParameter
	Variants   []StructField
	Type       typesystem.TypeID
	Span       source.Span
}

// TraitDecl is a trait with its interface. Fns without a body are
// required; the others carry default implementations.
type TraitDecl struct {
	Name        string
	Module      string
	TypeParams  []typesystem.TypeParameter
	Supertraits []typesystem.TraitConstraint
	Fns         []DeclID
	Consts      []DeclID
	Types       []DeclID
	Span        source.Span
}

func (d *FunctionDecl) DeclName() string  { return d.Name }
func (d *ConstantDecl) DeclName() string  { return d.Name }
func (d *TraitTypeDecl) DeclName() string { return d.Name }
func (d *StructDecl) DeclName() string    { return d.Name }
func (d *EnumDecl) DeclName() string      { return d.Name }
func (d *TraitDecl) DeclName() string     { return d.Name }

func (d *FunctionDecl) DeclSpan() source.Span  { return d.Span }
func (d *ConstantDecl) DeclSpan() source.Span  { return d.Span }
func (d *TraitTypeDecl) DeclSpan() source.Span { return d.Span }
func (d *StructDecl) DeclSpan() source.Span    { return d.Span }
func (d *EnumDecl) DeclSpan() source.Span      { return d.Span }
func (d *TraitDecl) DeclSpan() source.Span     { return d.Span }

func (d *FunctionDecl) substitute(te *typesystem.Engine, s typesystem.Subst) Decl {
	c := *d
	c.TypeParams, _ = te.ApplyParams(d.TypeParams, s)
	c.Params = make([]FnParam, len(d.Params))
	for i, p := range d.Params {
		p.Type = te.Apply(p.Type, s)
		c.Params[i] = p
	}
	c.ReturnType = te.Apply(d.ReturnType, s)
	if d.ImplementingFor != nil {
		t := te.Apply(*d.ImplementingFor, s)
		c.ImplementingFor = &t
	}
	return &c
}

func (d *ConstantDecl) substitute(te *typesystem.Engine, s typesystem.Subst) Decl {
	c := *d
	c.Type = te.Apply(d.Type, s)
	return &c
}

func (d *TraitTypeDecl) substitute(te *typesystem.Engine, s typesystem.Subst) Decl {
	c := *d
	c.Type = te.Apply(d.Type, s)
	return &c
}

func (d *StructDecl) substitute(te *typesystem.Engine, s typesystem.Subst) Decl {
	c := *d
	c.TypeParams, _ = te.ApplyParams(d.TypeParams, s)
	c.Fields = make([]StructField, len(d.Fields))
	for i, f := range d.Fields {
		f.Type = te.Apply(f.Type, s)
		c.Fields[i] = f
	}
	c.Type = te.Apply(d.Type, s)
	return &c
}

func (d *EnumDecl) substitute(te *typesystem.Engine, s typesystem.Subst) Decl {
	c := *d
	c.TypeParams, _ = te.ApplyParams(d.TypeParams, s)
	c.Variants = make([]StructField, len(d.Variants))
	for i, v := range d.Variants {
		v.Type = te.Apply(v.Type, s)
		c.Variants[i] = v
	}
	c.Type = te.Apply(d.Type, s)
	return &c
}

func (d *TraitDecl) substitute(te *typesystem.Engine, s typesystem.Subst) Decl {
	c := *d
	c.TypeParams, _ = te.ApplyParams(d.TypeParams, s)
	c.Supertraits, _ = te.ApplyConstraints(d.Supertraits, s)
	return &c
}
