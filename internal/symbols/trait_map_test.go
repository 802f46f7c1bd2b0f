package symbols

import (
	"sort"
	"strings"
	"testing"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

type fixture struct {
	t     *testing.T
	eng   *Engines
	te    *typesystem.Engine
	de    *decls.Engine
	root  *SymbolTable
	h     *diagnostics.Handler
	file  *source.File
	next  int
	pDecl decls.DeclID

	u8, u64, b typesystem.TypeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eng := NewEngines()
	f := &fixture{
		t:    t,
		eng:  eng,
		te:   eng.Types,
		de:   eng.Decls,
		root: NewSymbolTable("main"),
		h:    diagnostics.NewHandler(),
		file: source.NewFile("main.tm", strings.Repeat("x", 4096)),
	}
	f.u8 = f.te.Insert(typesystem.UnsignedInteger{Bits: 8})
	f.u64 = f.te.Insert(typesystem.UnsignedInteger{Bits: 64})
	f.b = f.te.Insert(typesystem.Boolean{})

	tp := f.generic("T")
	f.pDecl = f.de.Insert(&decls.StructDecl{
		Name:       "P",
		Module:     "main",
		TypeParams: []typesystem.TypeParameter{{Name: "T", TypeID: tp}},
		Fields:     []decls.StructField{{Name: "x", Type: tp}, {Name: "y", Type: tp}},
		Span:       f.span(),
	})
	sd := f.de.Get(f.pDecl).(*decls.StructDecl)
	sd.Type = f.p(tp)
	return f
}

// span hands out distinct spans in the fixture file.
func (f *fixture) span() source.Span {
	f.next += 8
	return source.NewSpan(f.file, f.next, f.next+4)
}

func (f *fixture) generic(name string, bounds ...string) typesystem.TypeID {
	var cs []typesystem.TraitConstraint
	for _, b := range bounds {
		cs = append(cs, typesystem.TraitConstraint{TraitName: ast.NewCallPath(b)})
	}
	return f.te.Insert(typesystem.UnknownGeneric{Name: name, TraitConstraints: cs, IsFromTypeParameter: true})
}

func (f *fixture) p(arg typesystem.TypeID) typesystem.TypeID {
	return f.te.Insert(typesystem.Struct{Decl: f.pDecl, Name: "P",
		Params: []typesystem.TypeParameter{{Name: "T", TypeID: arg}}})
}

func (f *fixture) ref(mut bool, to typesystem.TypeID) typesystem.TypeID {
	return f.te.Insert(typesystem.Ref{ToMutable: mut, Referenced: to})
}

func (f *fixture) fn(name string, implFor typesystem.TypeID) TypedItem {
	return TypedItem{Kind: ItemFunction, Decl: f.de.Insert(&decls.FunctionDecl{
		Name:            name,
		Params:          []decls.FnParam{{Name: "self", Type: implFor, IsSelf: true}},
		ReturnType:      implFor,
		ImplementingFor: &implFor,
		HasBody:         true,
		Span:            f.span(),
	})}
}

func (f *fixture) constant(name string, typ typesystem.TypeID) TypedItem {
	return TypedItem{Kind: ItemConstant, Decl: f.de.Insert(&decls.ConstantDecl{Name: name, Type: typ, HasValue: true, Span: f.span()})}
}

func (f *fixture) impl(scope *SymbolTable, trait string, typeID typesystem.TypeID, items ...ResolvedItem) source.Span {
	f.t.Helper()
	return f.implArgs(scope, trait, nil, typeID, items...)
}

func (f *fixture) implArgs(scope *SymbolTable, trait string, args []typesystem.TypeID, typeID typesystem.TypeID, items ...ResolvedItem) source.Span {
	f.t.Helper()
	sp := f.span()
	_ = scope.InsertTraitImplementation(f.h, f.eng, ImplInsert{
		TraitName:  ast.NewCallPath(trait),
		TraitArgs:  args,
		TypeID:     typeID,
		Items:      items,
		ImplSpan:   sp,
		IsImplSelf: trait == "Self",
	})
	return sp
}

func (f *fixture) expectCount(code diagnostics.ErrorCode, want int) {
	f.t.Helper()
	if got := f.h.Count(code); got != want {
		f.t.Errorf("expected %d %s diagnostics, got %d: %v", want, code, got, f.h.Errors())
	}
}

func declsOf(items []ResolvedItem) []decls.DeclID {
	out := make([]decls.DeclID, len(items))
	for i, it := range items {
		out[i] = it.(TypedItem).Decl
	}
	return out
}

func TestConflictingImpls(t *testing.T) {
	f := newFixture(t)
	first := f.fn("dbl", f.p(f.u64))
	second := f.fn("dbl", f.p(f.u64))
	f.impl(f.root, "Dbl", f.p(f.u64), first)
	f.impl(f.root, "Dbl", f.p(f.u64), second)

	f.expectCount(diagnostics.ErrT001, 1)
	f.expectCount(diagnostics.ErrT002, 0)

	got := declsOf(f.root.ItemsForType(f.eng, f.p(f.u64)))
	if len(got) != 2 {
		t.Fatalf("expected both impls to stay retrievable, got %v", got)
	}
	if f.root.TraitMap().Len() != 2 {
		t.Errorf("expected 2 entries, got %d", f.root.TraitMap().Len())
	}
}

func TestConflictRelatedSpan(t *testing.T) {
	f := newFixture(t)
	firstSpan := f.impl(f.root, "Show", f.u64, f.fn("show", f.u64))
	secondSpan := f.impl(f.root, "Show", f.u64, f.fn("show", f.u64))
	errs := f.h.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %v", errs)
	}
	if !errs[0].Span.Equal(secondSpan) {
		t.Errorf("conflict reported at %v, want %v", errs[0].Span, secondSpan)
	}
	if len(errs[0].Related) != 1 || !errs[0].Related[0].Equal(firstSpan) {
		t.Errorf("expected the first impl as related span, got %v", errs[0].Related)
	}
	if !strings.Contains(errs[0].Message, `"Show"`) || !strings.Contains(errs[0].Message, `"u64"`) {
		t.Errorf("unexpected message %q", errs[0].Message)
	}
}

func TestSpecializationMostSpecificWins(t *testing.T) {
	for _, concreteFirst := range []bool{false, true} {
		f := newFixture(t)
		tp := f.generic("T")
		generic := f.fn("dbl", f.p(tp))
		concrete := f.fn("dbl", f.p(f.u64))
		if concreteFirst {
			f.impl(f.root, "Dbl", f.p(f.u64), concrete)
			f.impl(f.root, "Dbl", f.p(tp), generic)
		} else {
			f.impl(f.root, "Dbl", f.p(tp), generic)
			f.impl(f.root, "Dbl", f.p(f.u64), concrete)
		}
		f.expectCount(diagnostics.ErrT001, 0)
		f.expectCount(diagnostics.ErrT002, 0)

		got := declsOf(f.root.ItemsForType(f.eng, f.p(f.u64)))
		if len(got) != 1 || got[0] != concrete.Decl {
			t.Errorf("concreteFirst=%v: expected only the concrete impl, got %v", concreteFirst, got)
		}
		got = declsOf(f.root.ItemsForType(f.eng, f.p(f.u8)))
		if len(got) != 1 || got[0] != generic.Decl {
			t.Errorf("concreteFirst=%v: expected the generic impl for P<u8>, got %v", concreteFirst, got)
		}
	}
}

func TestBoundedGenericShadowsOnlyWhenBoundHolds(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Foo", f.u64, f.fn("foo", f.u64))
	bounded := f.fn("show", f.p(f.generic("T", "Foo")))
	open := f.fn("show", f.p(f.generic("T")))
	f.impl(f.root, "Show", f.p(f.generic("T", "Foo")), bounded)
	f.impl(f.root, "Show", f.p(f.generic("T")), open)
	f.expectCount(diagnostics.ErrT001, 0)

	tests := []struct {
		name string
		arg  typesystem.TypeID
		want []decls.DeclID
	}{
		{"bound holds", f.u64, []decls.DeclID{bounded.Decl}},
		{"bound fails", f.b, []decls.DeclID{bounded.Decl, open.Decl}},
		{"generic with the bound", f.generic("U", "Foo"), []decls.DeclID{bounded.Decl}},
		{"generic without the bound", f.generic("U"), []decls.DeclID{open.Decl}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := declsOf(f.root.ItemsForType(f.eng, f.p(tt.arg)))
			sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestInherentImplNeverConflicts(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Dbl", f.p(f.u64), f.fn("dbl", f.p(f.u64)))
	f.impl(f.root, "Self", f.p(f.u64), f.fn("other", f.p(f.u64)))
	f.expectCount(diagnostics.ErrT001, 0)
	f.expectCount(diagnostics.ErrT002, 0)

	f.impl(f.root, "Self", f.p(f.u64), f.fn("dbl", f.p(f.u64)))
	f.expectCount(diagnostics.ErrT001, 0)
	f.expectCount(diagnostics.ErrT002, 1)
	if len(f.root.ItemsForType(f.eng, f.p(f.u64))) != 3 {
		t.Errorf("expected all three items to be retrievable")
	}
}

func TestDuplicateDeclKinds(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Self", f.u64, f.fn("get", f.u64), f.constant("MAX", f.u64))
	f.impl(f.root, "Self", f.u64, f.fn("get", f.u64), f.constant("MAX", f.u64))
	f.expectCount(diagnostics.ErrT002, 2)

	var kinds []string
	for _, e := range f.h.Errors() {
		kinds = append(kinds, strings.Fields(e.Message)[1])
	}
	sort.Strings(kinds)
	if strings.Join(kinds, ",") != "constant,method" {
		t.Errorf("unexpected kinds %v", kinds)
	}
}

func TestMultipleDefinitionsInOneImpl(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Self", f.u64, f.fn("get", f.u64), f.fn("get", f.u64))
	f.expectCount(diagnostics.ErrT003, 1)
	if n := len(f.root.ItemsForType(f.eng, f.u64)); n != 1 {
		t.Errorf("expected the later definition to replace the earlier one, got %d items", n)
	}
}

func TestReferenceMutability(t *testing.T) {
	f := newFixture(t)
	tp := f.generic("T")
	shared := f.fn("show", f.ref(false, tp))
	unique := f.fn("show", f.ref(true, tp))
	f.impl(f.root, "Show", f.ref(false, tp), shared)
	f.impl(f.root, "Show", f.ref(true, tp), unique)
	f.expectCount(diagnostics.ErrT001, 0)
	f.expectCount(diagnostics.ErrT002, 0)

	got := declsOf(f.root.ItemsForType(f.eng, f.ref(false, f.u64)))
	if len(got) != 1 || got[0] != shared.Decl {
		t.Errorf("&u64 resolved to %v, want only %v", got, shared.Decl)
	}
	got = declsOf(f.root.ItemsForType(f.eng, f.ref(true, f.u64)))
	if len(got) != 1 || got[0] != unique.Decl {
		t.Errorf("&mut u64 resolved to %v, want only %v", got, unique.Decl)
	}
}

func TestTraitItemForType(t *testing.T) {
	f := newFixture(t)
	s := f.te.Insert(typesystem.Custom{Name: ast.NewCallPath("S")})
	foo := f.fn("foo", s)
	f.impl(f.root, "Foo", s, foo)

	item, err := f.root.TraitItemForType(f.h, f.eng, "foo", s, nil, f.span())
	if err != nil || item.(TypedItem).Decl != foo.Decl {
		t.Fatalf("expected Foo::foo, got %v, %v", item, err)
	}

	bar := f.fn("foo", s)
	f.impl(f.root, "Bar", s, bar)
	f.expectCount(diagnostics.ErrT001, 0)

	_, err = f.root.TraitItemForType(f.h, f.eng, "foo", s, nil, f.span())
	if err == nil {
		t.Fatal("expected an ambiguity error")
	}
	f.expectCount(diagnostics.ErrT005, 1)
	amb := f.h.Errors()[len(f.h.Errors())-1]
	if len(amb.Related) != 2 {
		t.Errorf("expected both candidates as related spans, got %v", amb.Related)
	}
	notes := strings.Join(amb.Notes, "\n")
	if !strings.Contains(notes, `"Bar"`) || !strings.Contains(notes, `"Foo"`) {
		t.Errorf("candidates missing from notes: %s", notes)
	}

	asBar := ast.NewCallPath("Bar")
	item, err = f.root.TraitItemForType(f.h, f.eng, "foo", s, &asBar, f.span())
	if err != nil || item.(TypedItem).Decl != bar.Decl {
		t.Errorf("expected Bar::foo, got %v, %v", item, err)
	}

	_, err = f.root.TraitItemForType(f.h, f.eng, "missing", s, nil, f.span())
	if err == nil {
		t.Error("expected a lookup failure")
	}
	f.expectCount(diagnostics.ErrT006, 1)
}

func TestItemsForTypeAndTraitInstantiates(t *testing.T) {
	f := newFixture(t)
	tp := f.generic("T")
	pt := f.p(tp)
	dbl := TypedItem{Kind: ItemFunction, Decl: f.de.Insert(&decls.FunctionDecl{
		Name:            "dbl",
		Params:          []decls.FnParam{{Name: "self", Type: pt, IsSelf: true}, {Name: "v", Type: tp}},
		ReturnType:      tp,
		ImplementingFor: &pt,
		HasBody:         true,
		Span:            f.span(),
	})}
	f.implArgs(f.root, "Dbl", []typesystem.TypeID{tp}, pt, dbl)

	query := f.p(f.u64)
	items := f.root.ItemsForTypeAndTrait(f.eng, query, ast.NewCallPath("Dbl"), []typesystem.TypeID{f.u64})
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	got := items[0].(TypedItem)
	if got.Decl == dbl.Decl {
		t.Fatal("expected an instantiated copy, got the stored declaration")
	}
	if p, ok := f.de.Parent(got.Decl); !ok || p != dbl.Decl {
		t.Errorf("parent = %v, %v; want %v", p, ok, dbl.Decl)
	}
	fn := f.de.GetFunction(got.Decl)
	if !f.te.Check(typesystem.Equality, fn.ReturnType, f.u64) {
		t.Errorf("return type = %s, want u64", f.te.Display(fn.ReturnType))
	}
	if !f.te.Check(typesystem.Equality, fn.Params[1].Type, f.u64) {
		t.Errorf("param v = %s, want u64", f.te.Display(fn.Params[1].Type))
	}
	if fn.ImplementingFor == nil || *fn.ImplementingFor != query {
		t.Errorf("implementing type not replaced by the query type")
	}

	if items := f.root.ItemsForTypeAndTrait(f.eng, query, ast.NewCallPath("Dbl"), nil); len(items) != 0 {
		t.Errorf("argument count mismatch should not match, got %d items", len(items))
	}
	if items := f.root.ItemsForTypeAndTrait(f.eng, query, ast.NewCallPath("Other"), []typesystem.TypeID{f.u64}); len(items) != 0 {
		t.Errorf("other trait should not match, got %d items", len(items))
	}
}

func TestDummyMethodsFiltered(t *testing.T) {
	f := newFixture(t)
	tp := f.generic("T", "Show")
	dummy := TypedItem{Kind: ItemFunction, Decl: f.de.Insert(&decls.FunctionDecl{
		Name: "show", ImplementingFor: &tp, IsTraitMethodDummy: true, Span: f.span(),
	})}
	f.impl(f.root, "Show", tp, dummy)

	if items := f.root.ItemsForType(f.eng, f.u64); len(items) != 0 {
		t.Errorf("dummy method leaked into concrete lookup: %v", items)
	}
	other := f.generic("U", "Show")
	if items := f.root.ItemsForType(f.eng, other); len(items) != 1 {
		t.Errorf("expected the dummy method for a generic query, got %v", items)
	}
}

func TestErrorRecoveryQueriesAreEmpty(t *testing.T) {
	f := newFixture(t)
	er := f.te.Insert(typesystem.ErrorRecovery{})
	f.impl(f.root, "Show", f.u64, f.fn("show", f.u64))
	if items := f.root.ItemsForType(f.eng, er); len(items) != 0 {
		t.Errorf("expected no items, got %v", items)
	}
	if spans := f.root.ImplSpansForType(f.eng, er); len(spans) != 0 {
		t.Errorf("expected no spans, got %v", spans)
	}
}

func TestScopeChainLookup(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Show", f.u64, f.fn("show", f.u64))
	inner := NewEnclosedSymbolTable(f.root, ScopeBlock)
	f.impl(inner, "Eq", f.u64, f.fn("eq", f.u64))

	if n := len(inner.ItemsForType(f.eng, f.u64)); n != 2 {
		t.Errorf("inner scope sees %d items, want 2", n)
	}
	if n := len(f.root.ItemsForType(f.eng, f.u64)); n != 1 {
		t.Errorf("outer scope sees %d items, want 1", n)
	}
}

func TestProjections(t *testing.T) {
	f := newFixture(t)
	tp := f.generic("T")
	showSpan := f.impl(f.root, "Show", f.p(tp), f.fn("show", f.p(tp)))
	dblSpan := f.implArgs(f.root, "Dbl", []typesystem.TypeID{f.u64}, f.p(f.u64), f.fn("dbl", f.p(f.u64)))
	f.impl(f.root, "Self", f.p(f.u64), f.fn("new", f.p(f.u64)))
	f.impl(f.root, "Show", f.u8, f.fn("show", f.u8))

	var names []string
	for _, n := range f.root.TraitNamesForType(f.eng, f.p(f.u64)) {
		names = append(names, n.Display(f.te))
	}
	sort.Strings(names)
	if strings.Join(names, " ") != "Dbl<u64> Show" {
		t.Errorf("trait names = %v", names)
	}

	if spans := f.root.ImplSpansForType(f.eng, f.p(f.u64)); len(spans) != 3 {
		t.Errorf("expected 3 impl spans, got %v", spans)
	}
	if spans := f.root.ImplSpansForType(f.eng, f.p(f.u8)); len(spans) != 1 || !spans[0].Equal(showSpan) {
		t.Errorf("expected only the generic impl for P<u8>, got %v", spans)
	}
	if spans := f.root.ImplSpansForTraitName(ast.NewCallPath("Show")); len(spans) != 2 {
		t.Errorf("expected 2 Show impls, got %v", spans)
	}
	if spans := f.root.ImplSpansForTraitName(ast.NewCallPath("Dbl")); len(spans) != 1 || !spans[0].Equal(dblSpan) {
		t.Errorf("unexpected Dbl spans %v", spans)
	}
	if spans := f.root.ImplSpansForDecl(f.eng, f.pDecl); len(spans) != 3 {
		t.Errorf("expected 3 impls of struct P, got %v", spans)
	}
}

func TestFilterByTraitDeclSpan(t *testing.T) {
	f := newFixture(t)
	showDecl, eqDecl := f.span(), f.span()
	for _, in := range []struct {
		trait string
		decl  source.Span
		typ   typesystem.TypeID
	}{
		{"Show", showDecl, f.u64},
		{"Show", showDecl, f.u8},
		{"Eq", eqDecl, f.u64},
	} {
		decl := in.decl
		_ = f.root.InsertTraitImplementation(f.h, f.eng, ImplInsert{
			TraitName:     ast.NewCallPath(in.trait),
			TypeID:        in.typ,
			Items:         []ResolvedItem{f.fn(strings.ToLower(in.trait), in.typ)},
			ImplSpan:      f.span(),
			TraitDeclSpan: &decl,
		})
	}
	got := f.root.TraitMap().FilterByTraitDeclSpan(f.te, showDecl)
	if got.Len() != 2 {
		t.Fatalf("expected 2 Show impls, got %d", got.Len())
	}
	for _, e := range got.Entries() {
		if e.Key.Name.Path.Suffix != "Show" {
			t.Errorf("unexpected entry for %s", e.Key.Name.Path)
		}
	}
	if f.root.TraitMap().FilterByTraitDeclSpan(f.te, f.span()).Len() != 0 {
		t.Error("expected an empty map for an unknown declaration")
	}
}

func TestFilterByTypeItemImport(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Dbl", f.p(f.u64), f.fn("dbl", f.p(f.u64)))
	f.impl(f.root, "Show", f.u64, f.fn("show", f.u64))
	f.impl(f.root, "Show", f.b, f.fn("show", f.b))
	f.impl(f.root, "Dbl", f.p(f.u8), f.fn("dbl", f.p(f.u8)))

	got := f.root.TraitMap().FilterByTypeItemImport(f.eng, f.p(f.u64))
	var traits []string
	for _, e := range got.Entries() {
		traits = append(traits, e.Key.Name.Path.Suffix+" for "+f.te.Display(e.Key.TypeID))
	}
	sort.Strings(traits)
	if strings.Join(traits, "; ") != "Dbl for P<u64>; Show for u64" {
		t.Errorf("imported %v", traits)
	}
}

func TestFilterByTypeItemImportKeepsGenericImpl(t *testing.T) {
	f := newFixture(t)
	tp := f.generic("T")
	pt := f.p(tp)
	dummy := TypedItem{Kind: ItemFunction, Decl: f.de.Insert(&decls.FunctionDecl{
		Name: "helper", ImplementingFor: &pt, IsTraitMethodDummy: true, Span: f.span(),
	})}
	f.impl(f.root, "Dbl", pt, f.fn("dbl", pt), dummy)

	got := f.root.TraitMap().FilterByTypeItemImport(f.eng, f.p(f.u64))
	entries := got.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected the generic impl, got %d entries", len(entries))
	}
	if entries[0].Key.TypeID != pt {
		t.Errorf("entry re-keyed to %s, want the original P<T>", f.te.Display(entries[0].Key.TypeID))
	}
	if len(entries[0].Value.Items) != 2 {
		t.Errorf("dummy filtering only applies to generic parameter impls, got %d items", len(entries[0].Value.Items))
	}
}

func snapshot(te *typesystem.Engine, de *decls.Engine, tm *TraitMap) string {
	var lines []string
	for _, e := range tm.Entries() {
		var items []string
		for _, name := range e.Value.Items.sortedNames() {
			items = append(items, name+"="+de.Get(e.Value.Items[name].(TypedItem).Decl).DeclSpan().String())
		}
		lines = append(lines, e.Key.Name.Display(te)+" for "+te.Key(e.Key.TypeID)+": "+strings.Join(items, ","))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func TestExtendAssociative(t *testing.T) {
	f := newFixture(t)
	type implSpec struct {
		trait string
		typ   typesystem.TypeID
		item  string
	}
	build := func(impls ...implSpec) *TraitMap {
		tm := NewTraitMap()
		for _, s := range impls {
			tm.insertInner(f.te, TraitKey{Name: &TraitName{Path: ast.NewCallPath(s.trait)}, TypeID: s.typ},
				TraitValue{Items: TraitItems{s.item: f.fn(s.item, s.typ)}, ImplSpan: f.span()})
		}
		return tm
	}
	a := build(implSpec{"Show", f.u64, "show"}, implSpec{"Eq", f.u8, "eq"})
	b := build(implSpec{"Show", f.u64, "fmt"}, implSpec{"Ord", f.b, "cmp"})
	c := build(implSpec{"Show", f.u64, "show"}, implSpec{"Eq", f.u64, "eq"}, implSpec{"Ord", f.b, "lt"})

	left := a.Clone()
	left.Extend(f.te, b)
	left.Extend(f.te, c)

	bc := b.Clone()
	bc.Extend(f.te, c)
	right := a.Clone()
	right.Extend(f.te, bc)

	if l, r := snapshot(f.te, f.de, left), snapshot(f.te, f.de, right); l != r {
		t.Errorf("extend is not associative:\n%s\n---\n%s", l, r)
	}
	if left.Len() != 4 {
		t.Errorf("expected 4 merged entries, got %d", left.Len())
	}
	for _, e := range left.Entries() {
		if e.Key.Name.Path.Suffix == "Show" && len(e.Value.Items) != 2 {
			t.Errorf("expected show and fmt merged, got %v", e.Value.Items)
		}
		if e.Key.Name.Path.Suffix == "Ord" && len(e.Value.Items) != 2 {
			t.Errorf("expected cmp and lt merged, got %v", e.Value.Items)
		}
	}
	if a.Len() != 2 {
		t.Errorf("extending a clone changed the original: %d entries", a.Len())
	}
}

func TestBucketsStaySorted(t *testing.T) {
	f := newFixture(t)
	for _, trait := range []string{"Zed", "Alpha", "Mid", "Beta"} {
		f.impl(f.root, trait, f.u64, f.fn(strings.ToLower(trait), f.u64))
	}
	entries := f.root.TraitMap().buckets[f.te.RootFilter(f.u64)]
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key.compare(f.te, entries[i].Key) >= 0 {
			t.Errorf("bucket out of order at %d: %s before %s", i,
				entries[i-1].Key.Name.Path, entries[i].Key.Name.Path)
		}
	}
	if !f.root.TraitMap().SeenInsert(f.u64) {
		t.Error("expected u64 to be recorded as inserted")
	}
}

func TestKeyOrderIsNameTypeParams(t *testing.T) {
	f := newFixture(t)
	show := &TraitName{Path: ast.NewCallPath("main", "Show")}
	self := &TraitName{Path: ast.NewCallPath("Self")}
	tests := []struct {
		name string
		a, b TraitKey
		want int
	}{
		{"flag alone does not order", TraitKey{Name: self, TypeID: f.u64}, TraitKey{Name: self, TypeID: f.u64, IsImplSelf: true}, 0},
		{"name first", TraitKey{Name: self, TypeID: f.u8, IsImplSelf: true}, TraitKey{Name: show, TypeID: f.u64}, -1},
		{"then type", TraitKey{Name: show, TypeID: f.u8}, TraitKey{Name: show, TypeID: f.u64}, -1},
		{"then params", TraitKey{Name: show, TypeID: f.u64}, TraitKey{Name: show, TypeID: f.u64,
			TypeParams: []typesystem.TypeParameter{{Name: "T", TypeID: f.u8}}}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.compare(f.te, tt.b); got != tt.want {
				t.Errorf("compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Show", f.u64, f.fn("show", f.u64))
	c := f.root.Clone()
	f.impl(c, "Eq", f.u64, f.fn("eq", f.u64))
	if f.root.TraitMap().Len() != 1 || c.TraitMap().Len() != 2 {
		t.Errorf("clone shares state: %d / %d", f.root.TraitMap().Len(), c.TraitMap().Len())
	}
}

func TestUntypedItemPanics(t *testing.T) {
	f := newFixture(t)
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an untyped item")
		}
	}()
	_ = f.root.InsertTraitImplementation(f.h, f.eng, ImplInsert{
		TraitName: ast.NewCallPath("Show"),
		TypeID:    f.u64,
		Items:     []ResolvedItem{ParsedItem{Kind: ItemFunction, Name: "show"}},
	})
}
