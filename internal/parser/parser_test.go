package parser

import (
	"testing"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/lexer"
	"github.com/funvibe/traitmap/internal/source"
)

func parse(t *testing.T, input string) (*ast.Module, *diagnostics.Handler) {
	t.Helper()
	f := source.NewFile("test.tm", input)
	h := diagnostics.NewHandler()
	mod := New(f, lexer.New(f).Tokenize(), h).ParseModule("test")
	return mod, h
}

func parseOK(t *testing.T, input string) *ast.Module {
	t.Helper()
	mod, h := parse(t, input)
	for _, err := range h.Errors() {
		t.Errorf("unexpected error: %s", err)
	}
	return mod
}

func TestParseDblProgram(t *testing.T) {
	mod := parseOK(t, `
trait Dbl<T> { fn dbl(self, v: T) -> T; }
struct P<T> { x: T, y: T }
impl Dbl<u64> for P<u64> { fn dbl(self, v: u64) -> u64 { self.x + self.y + v } }
`)
	if len(mod.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(mod.Items))
	}
	tr, ok := mod.Items[0].(*ast.TraitDecl)
	if !ok {
		t.Fatalf("item 0 is %T", mod.Items[0])
	}
	if tr.Name.Value != "Dbl" || len(tr.Generics) != 1 || len(tr.Fns) != 1 || tr.Fns[0].HasBody() {
		t.Errorf("bad trait: %+v", tr)
	}
	st := mod.Items[1].(*ast.StructDecl)
	if len(st.Fields) != 2 || st.Fields[1].Name.Value != "y" {
		t.Errorf("bad struct fields: %+v", st.Fields)
	}
	impl := mod.Items[2].(*ast.ImplDecl)
	if impl.IsInherent() || impl.Trait.String() != "Dbl" || len(impl.TraitArgs) != 1 {
		t.Fatalf("bad impl header: %+v", impl)
	}
	self, ok := impl.SelfType.(*ast.NamedType)
	if !ok || self.Path.Suffix != "P" || len(self.Args) != 1 {
		t.Errorf("bad self type: %#v", impl.SelfType)
	}
	if len(impl.Fns) != 1 || !impl.Fns[0].HasBody() {
		t.Errorf("expected one fn with a body")
	}
	if body := impl.Fns[0].Body.Text(); body != "{ self.x + self.y + v }" {
		t.Errorf("body span = %q", body)
	}
}

func TestParseGenericsAndWhere(t *testing.T) {
	mod := parseOK(t, `
impl<T: Eq + ops::Add<T>, U> Conv<U> for Wrapper<T, U> where U: Into<T>, T: Ord, {
	const ZERO: u64 = (1 + 2) * 3;
	type Out = [T; 4];
	pub fn conv(&mut self, u: &U) -> (T, U) { }
}
impl Wrapper<u8, u8> { fn new() -> Self { } }
`)
	impl := mod.Items[0].(*ast.ImplDecl)
	if len(impl.Generics) != 2 {
		t.Fatalf("generics: %+v", impl.Generics)
	}
	if b := impl.Generics[0].Bounds; len(b) != 2 || b[1].Path.String() != "ops::Add" || len(b[1].Args) != 1 {
		t.Errorf("bounds: %+v", b)
	}
	if len(impl.Where) != 2 || impl.Where[1].Name.Value != "T" {
		t.Errorf("where: %+v", impl.Where)
	}
	if len(impl.Consts) != 1 || impl.Consts[0].Value.Text() != "(1 + 2) * 3" {
		t.Errorf("const: %+v", impl.Consts)
	}
	if len(impl.Types) != 1 {
		t.Fatalf("types: %+v", impl.Types)
	}
	if _, ok := impl.Types[0].Type.(*ast.ArrayType); !ok {
		t.Errorf("assoc type is %T", impl.Types[0].Type)
	}
	fn := impl.Fns[0]
	if !fn.Params[0].IsSelf || !fn.Params[0].Ref || !fn.Params[0].Mut {
		t.Errorf("self param: %+v", fn.Params[0])
	}
	if _, ok := fn.ReturnType.(*ast.TupleType); !ok {
		t.Errorf("return type is %T", fn.ReturnType)
	}
	inherent := mod.Items[1].(*ast.ImplDecl)
	if !inherent.IsInherent() {
		t.Error("expected inherent impl")
	}
}

func TestParseTypes(t *testing.T) {
	mod := parseOK(t, `
type A = &mut &u8;
type B = str[5];
type C = ();
type D = (u8);
type E = m::S<(u8, bool), [u64; 2]>;
`)
	want := []string{"*ast.RefType", "*ast.StrArrayType", "*ast.TupleType", "*ast.NamedType", "*ast.NamedType"}
	for i, it := range mod.Items {
		a := it.(*ast.AliasDecl)
		got := typeName(a.Target)
		if got != want[i] {
			t.Errorf("alias %s: got %s, want %s", a.Name.Value, got, want[i])
		}
	}
	inner := mod.Items[0].(*ast.AliasDecl).Target.(*ast.RefType)
	if !inner.Mutable {
		t.Error("outer ref should be mutable")
	}
	if r, ok := inner.Elem.(*ast.RefType); !ok || r.Mutable {
		t.Errorf("inner should be shared ref, got %#v", inner.Elem)
	}
}

func typeName(t ast.Type) string {
	switch t.(type) {
	case *ast.RefType:
		return "*ast.RefType"
	case *ast.StrArrayType:
		return "*ast.StrArrayType"
	case *ast.TupleType:
		return "*ast.TupleType"
	case *ast.NamedType:
		return "*ast.NamedType"
	case *ast.ArrayType:
		return "*ast.ArrayType"
	}
	return "?"
}

func TestParseUseAndEnum(t *testing.T) {
	mod := parseOK(t, `
use ops::Add;
use shapes::*;
pub enum Opt<T> { None, Some: T, }
pub trait Ord: Eq + PartialOrd { fn cmp(self, o: Self) -> bool; fn max(self) -> Self { self } const MIN: Self; type Item; }
pub fn free<T>(x: T) -> T where T: Ord { x }
`)
	u := mod.Uses()
	if len(u) != 2 {
		t.Fatalf("uses: %d", len(u))
	}
	if u[0].Glob || u[0].Module() != "ops" || u[0].Path.Suffix != "Add" {
		t.Errorf("use 0: %+v", u[0])
	}
	if !u[1].Glob || u[1].Module() != "shapes" {
		t.Errorf("use 1: %+v", u[1])
	}
	en := mod.Items[2].(*ast.EnumDecl)
	if len(en.Variants) != 2 || en.Variants[0].Type != nil || en.Variants[1].Type == nil {
		t.Errorf("variants: %+v", en.Variants)
	}
	tr := mod.Items[3].(*ast.TraitDecl)
	if len(tr.Supertraits) != 2 || len(tr.Fns) != 2 || !tr.Fns[1].HasBody() || len(tr.Consts) != 1 || len(tr.Types) != 1 {
		t.Errorf("trait: %+v", tr)
	}
	fn := mod.Items[4].(*ast.FnDecl)
	if !fn.Public || len(fn.Where) != 1 {
		t.Errorf("fn: %+v", fn)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
		items int
	}{
		{"stray token", "struct S { x: u8 } 42 struct T { }", diagnostics.ErrP001, 2},
		{"unterminated body", "trait T { fn f(self) { ", diagnostics.ErrP002, 0},
		{"bad member recovers", "impl T for S { let x = 1; fn f(self) { } }", diagnostics.ErrP001, 1},
		{"missing type", "struct S { x: }", diagnostics.ErrP001, 0},
		{"free fn without body", "fn f();", diagnostics.ErrP001, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, h := parse(t, tt.input)
			if h.Count(tt.code) == 0 {
				t.Errorf("expected %s, got %v", tt.code, h.Errors())
			}
			if len(mod.Items) != tt.items {
				t.Errorf("expected %d items, got %d", tt.items, len(mod.Items))
			}
		})
	}
}
