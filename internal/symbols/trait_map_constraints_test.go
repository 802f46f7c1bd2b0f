package symbols

import (
	"testing"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/typesystem"
)

func bound(name string, args ...typesystem.TypeID) typesystem.TraitConstraint {
	return typesystem.TraitConstraint{TraitName: ast.NewCallPath(name), TypeArguments: args}
}

func TestConstraintCacheSoundness(t *testing.T) {
	f := newFixture(t)
	tm := f.root.TraitMap()
	eq := []typesystem.TraitConstraint{bound("Eq")}

	if err := f.root.CheckTraitConstraints(f.h, f.eng, f.u64, eq, f.span()); err == nil {
		t.Fatal("expected u64: Eq to fail before any impl exists")
	}
	if err := f.root.CheckTraitConstraints(f.h, f.eng, f.u64, eq, f.span()); err == nil {
		t.Fatal("expected the repeated check to fail again")
	}
	f.expectCount(diagnostics.ErrT004, 2)
	if got := tm.ConstraintScans(); got != 2 {
		t.Errorf("failed checks must not be cached: %d scans, want 2", got)
	}

	f.impl(f.root, "Eq", f.u64, f.fn("eq", f.u64))
	if err := f.root.CheckTraitConstraints(f.h, f.eng, f.u64, eq, f.span()); err != nil {
		t.Fatalf("expected success after inserting the impl: %v", err)
	}
	if got := tm.ConstraintScans(); got != 3 {
		t.Errorf("expected a fresh scan, got %d", got)
	}
	if err := f.root.CheckTraitConstraints(f.h, f.eng, f.u64, eq, f.span()); err != nil {
		t.Fatalf("second check: %v", err)
	}
	if got := tm.ConstraintScans(); got != 3 {
		t.Errorf("cached check scanned again: %d scans", got)
	}
	f.expectCount(diagnostics.ErrT004, 2)
}

func TestConstraintReportsEveryMissingBound(t *testing.T) {
	f := newFixture(t)
	f.impl(f.root, "Eq", f.u64, f.fn("eq", f.u64))
	err := f.root.CheckTraitConstraints(f.h, f.eng, f.u64,
		[]typesystem.TraitConstraint{bound("Ord"), bound("Eq"), bound("Hash"), bound("Ord")}, f.span())
	if err == nil {
		t.Fatal("expected a failure")
	}
	if em, ok := err.(*diagnostics.ErrorEmitted); !ok || em.Count != 2 {
		t.Errorf("expected 2 emitted errors, got %v", err)
	}
	f.expectCount(diagnostics.ErrT004, 2)
}

func TestConstraintWithArguments(t *testing.T) {
	f := newFixture(t)
	f.implArgs(f.root, "Into", []typesystem.TypeID{f.u64}, f.u8, f.fn("into", f.u8))

	tests := []struct {
		name string
		typ  typesystem.TypeID
		c    typesystem.TraitConstraint
		ok   bool
	}{
		{"matching argument", f.u8, bound("Into", f.u64), true},
		{"other argument", f.u8, bound("Into", f.b), false},
		{"other type", f.b, bound("Into", f.u64), false},
		{"missing argument", f.u8, bound("Into"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := diagnostics.NewHandler()
			err := f.root.CheckTraitConstraints(h, f.eng, tt.typ, []typesystem.TraitConstraint{tt.c}, f.span())
			if (err == nil) != tt.ok {
				t.Errorf("got %v, want ok=%v", err, tt.ok)
			}
			if !tt.ok && h.Count(diagnostics.ErrT004) != 1 {
				t.Errorf("expected one T004, got %v", h.Errors())
			}
		})
	}
}

func TestConstraintGenericImplApplies(t *testing.T) {
	f := newFixture(t)
	tp := f.generic("T")
	f.impl(f.root, "Show", f.p(tp), f.fn("show", f.p(tp)))
	if err := f.root.CheckTraitConstraints(f.h, f.eng, f.p(f.u8), []typesystem.TraitConstraint{bound("Show")}, f.span()); err != nil {
		t.Errorf("P<u8> should satisfy Show through the generic impl: %v", f.h.Errors())
	}
}

func TestConstraintOnUnknownTypeNeedsAnnotation(t *testing.T) {
	f := newFixture(t)
	unknown := f.te.Insert(typesystem.Unknown{})
	err := f.root.CheckTraitConstraints(f.h, f.eng, unknown, nil, f.span())
	if err == nil {
		t.Fatal("expected a failure for an unknown type")
	}
	f.expectCount(diagnostics.ErrT007, 1)
}

func TestConstraintDecaysNumeric(t *testing.T) {
	f := newFixture(t)
	num := f.te.Insert(typesystem.Numeric{})
	f.impl(f.root, "Eq", f.u64, f.fn("eq", f.u64))
	if err := f.root.CheckTraitConstraints(f.h, f.eng, num, []typesystem.TraitConstraint{bound("Eq")}, f.span()); err != nil {
		t.Fatalf("numeric should decay to u64: %v", f.h.Errors())
	}
	if _, ok := f.te.Get(num).(typesystem.UnsignedInteger); !ok {
		t.Errorf("numeric was not decayed: %s", f.te.Display(num))
	}
}

func TestConflictSkippedWhenConstraintsDiffer(t *testing.T) {
	f := newFixture(t)
	// Debug for P<u8> must not be reported against impl<T: Eq> Debug for
	// P<T> while u8 has no Eq impl.
	tEq := f.generic("T", "Eq")
	pt := f.p(tEq)
	_ = f.root.InsertTraitImplementation(f.h, f.eng, ImplInsert{
		TraitName:      ast.NewCallPath("Show"),
		ImplTypeParams: f.te.TypeParameters(pt),
		TypeID:         pt,
		Items:          []ResolvedItem{f.fn("show", pt)},
		ImplSpan:       f.span(),
	})
	entry := f.root.TraitMap().Entries()[0]
	if len(entry.Key.TypeParams) != 1 || len(entry.Key.TypeParams[0].TraitConstraints) != 0 {
		t.Fatalf("unexpected params %+v", entry.Key.TypeParams)
	}

	withBounds := []typesystem.TypeParameter{{Name: "T", TypeID: tEq, TraitConstraints: []typesystem.TraitConstraint{bound("Eq")}}}
	_ = f.root.InsertTraitImplementation(f.h, f.eng, ImplInsert{
		TraitName:      ast.NewCallPath("Debug"),
		ImplTypeParams: withBounds,
		TypeID:         pt,
		Items:          []ResolvedItem{f.fn("debug", pt)},
		ImplSpan:       f.span(),
	})
	var debug TraitEntry
	for _, e := range f.root.TraitMap().Entries() {
		if e.Key.Name.Path.Suffix == "Debug" {
			debug = e
		}
	}
	if len(debug.Key.TypeParams) != 1 || len(debug.Key.TypeParams[0].TraitConstraints) != 1 {
		t.Fatalf("impl bounds were not copied onto the type parameters: %+v", debug.Key.TypeParams)
	}

	f.impl(f.root, "Debug", f.p(f.u8), f.fn("debug", f.p(f.u8)))
	f.expectCount(diagnostics.ErrT001, 0)
	f.expectCount(diagnostics.ErrT004, 0)
}

func TestSatisfiedTypesForConstraints(t *testing.T) {
	f := newFixture(t)
	f.implArgs(f.root, "Into", []typesystem.TypeID{f.u64}, f.u8, f.fn("into", f.u8))
	f.impl(f.root, "Eq", f.u8, f.fn("eq", f.u8))
	f.impl(f.root, "Eq", f.b, f.fn("eq", f.b))

	got := f.root.SatisfiedTypesForConstraints(f.eng, f.u8, []typesystem.TraitConstraint{bound("Into", f.u64), bound("Eq")})
	if len(got) != 2 {
		t.Fatalf("expected Into<u64> and Eq for u8, got %+v", got)
	}
	traits := map[string]bool{}
	for _, tt := range got {
		traits[tt.Trait] = true
		if tt.TypeID != f.u8 {
			t.Errorf("unexpected implementing type %s", f.te.Display(tt.TypeID))
		}
	}
	if !traits["Into<u64>"] || !traits["Eq"] {
		t.Errorf("unexpected traits %v", traits)
	}
}
