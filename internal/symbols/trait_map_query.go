package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// ItemsForType returns the items of every impl visible from s that
// applies to typeID. When several impls of the same trait apply, only
// the ones for the most specific types are kept.
func (s *SymbolTable) ItemsForType(engines *Engines, typeID typesystem.TypeID) []ResolvedItem {
	var out []ResolvedItem
	for _, e := range s.entriesForType(engines, typeID) {
		for _, name := range e.Value.Items.sortedNames() {
			out = append(out, e.Value.Items[name])
		}
	}
	return out
}

// entriesForType collects the applicable entries across the scope chain
// with dummy methods already filtered out of their items.
func (s *SymbolTable) entriesForType(engines *Engines, typeID typesystem.TypeID) []TraitEntry {
	te := engines.Types
	typeID = te.Dealias(typeID)
	if te.IsErrorRecovery(typeID) {
		return nil
	}
	var matched []TraitEntry
	s.WalkScopeChain(func(scope *SymbolTable) bool {
		for _, e := range scope.implementedTraits.getImpls(te, typeID, true) {
			if !te.Check(typesystem.ConstraintSubset, typeID, e.Key.TypeID) {
				continue
			}
			matched = append(matched, TraitEntry{
				Key:   e.Key,
				Value: TraitValue{Items: filterDummyMethods(engines.Decls, te, e.Value.Items, typeID, e.Key.TypeID), ImplSpan: e.Value.ImplSpan},
			})
		}
		return true
	})
	return s.mostSpecific(engines, typeID, matched)
}

// mostSpecific drops trait entries shadowed by an entry of the same
// trait whose implementing type is strictly more specific. An entry only
// shadows others when the bounds on its generic slots hold for typeID.
func (s *SymbolTable) mostSpecific(engines *Engines, typeID typesystem.TypeID, entries []TraitEntry) []TraitEntry {
	if len(entries) < 2 {
		return entries
	}
	te := engines.Types
	holds := make(map[int]bool)
	out := entries[:0:0]
	for i, e := range entries {
		shadowed := false
		for j, o := range entries {
			if i == j || e.Key.IsImplSelf || o.Key.IsImplSelf {
				continue
			}
			if !sameTrait(te, typeID, e.Key, o.Key) || !te.IsMoreSpecific(o.Key.TypeID, e.Key.TypeID) {
				continue
			}
			ok, seen := holds[j]
			if !seen {
				ok = s.boundsHold(engines, o.Key.TypeID, typeID)
				holds[j] = ok
			}
			if ok {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, e)
		}
	}
	return out
}

// sameTrait reports whether a and b implement the same trait for typeID.
// Trait arguments are compared after instantiating each impl for typeID,
// so `Dbl<T> for P<T>` and `Dbl<u64> for P<u64>` agree on P<u64>.
func sameTrait(te *typesystem.Engine, typeID typesystem.TypeID, a, b TraitKey) bool {
	if !a.Name.Path.Equal(b.Name.Path) || len(a.Name.Args) != len(b.Name.Args) {
		return false
	}
	sa := te.SubstFromSupersetAndSubset(a.TypeID, typeID)
	sb := te.SubstFromSupersetAndSubset(b.TypeID, typeID)
	forward, backward := true, true
	for i := range a.Name.Args {
		x, y := te.Apply(a.Name.Args[i], sa), te.Apply(b.Name.Args[i], sb)
		forward = forward && te.Check(typesystem.ConstraintSubset, x, y)
		backward = backward && te.Check(typesystem.ConstraintSubset, y, x)
	}
	return forward || backward
}

// ItemsForTypeAndTrait returns the items that implement trait with args
// for typeID. The items are copies instantiated for typeID.
func (s *SymbolTable) ItemsForTypeAndTrait(engines *Engines, typeID typesystem.TypeID, trait ast.CallPath, args []typesystem.TypeID) []ResolvedItem {
	te := engines.Types
	typeID = te.Dealias(typeID)
	if te.IsErrorRecovery(typeID) {
		return nil
	}
	var matched []TraitEntry
	s.WalkScopeChain(func(scope *SymbolTable) bool {
		for _, e := range scope.implementedTraits.getImpls(te, typeID, false) {
			if !e.Key.Name.Path.Equal(trait) || len(e.Key.Name.Args) != len(args) {
				continue
			}
			if !te.Check(typesystem.ConstraintSubset, typeID, e.Key.TypeID) {
				continue
			}
			ok := true
			for i, a := range args {
				if !te.Check(typesystem.ConstraintSubset, a, e.Key.Name.Args[i]) {
					ok = false
					break
				}
			}
			if ok {
				matched = append(matched, e)
			}
		}
		return true
	})

	var out []ResolvedItem
	for _, e := range s.mostSpecific(engines, typeID, matched) {
		subst := te.SubstFromSupersetAndSubset(e.Key.TypeID, typeID)
		items := filterDummyMethods(engines.Decls, te, e.Value.Items, typeID, e.Key.TypeID)
		for _, name := range items.sortedNames() {
			out = append(out, makeItemForType(engines, items[name], subst, typeID))
		}
	}
	return out
}

// makeItemForType stores a copy of item with subst applied. Methods also
// get their implementing type replaced by typeID.
func makeItemForType(engines *Engines, item ResolvedItem, subst typesystem.Subst, typeID typesystem.TypeID) ResolvedItem {
	it := mustTyped(item)
	d := engines.Decls.Get(it.Decl)
	if fn, ok := d.(*decls.FunctionDecl); ok && fn.ImplementingFor != nil {
		s := make(typesystem.Subst, len(subst)+1)
		for k, v := range subst {
			s[k] = v
		}
		s[*fn.ImplementingFor] = typeID
		subst = s
	}
	parent := it.Decl
	return TypedItem{Kind: it.Kind, Decl: engines.Decls.InsertSubstituted(engines.Types, d, subst, &parent)}
}

// TraitItemForType resolves the item called symbol on typeID. asTrait,
// when given, restricts the search to that trait. span is the use site.
func (s *SymbolTable) TraitItemForType(h *diagnostics.Handler, engines *Engines, symbol string, typeID typesystem.TypeID, asTrait *ast.CallPath, span source.Span) (ResolvedItem, error) {
	te := engines.Types
	type candidate struct {
		item ResolvedItem
		key  TraitKey
	}
	candidates := make(map[string]candidate)
	for _, e := range s.entriesForType(engines, typeID) {
		item, ok := e.Value.Items[symbol]
		if !ok {
			continue
		}
		display := e.Key.Name.Display(te)
		if asTrait != nil && asTrait.String() != display && !asTrait.Equal(e.Key.Name.Path) {
			continue
		}
		candidates[display] = candidate{item: item, key: e.Key}
	}

	switch len(candidates) {
	case 1:
		for _, c := range candidates {
			return c.item, nil
		}
	case 0:
		h.Emit(diagnostics.NewError(diagnostics.ErrT006, span,
			fmt.Sprintf("symbol %q not found for type %q", symbol, te.Display(typeID))))
		return nil, &diagnostics.ErrorEmitted{Count: 1}
	}

	names := make([]string, 0, len(candidates))
	for k := range candidates {
		names = append(names, k)
	}
	sort.Strings(names)
	traits := make([]string, len(names))
	err := diagnostics.NewError(diagnostics.ErrT005, span,
		fmt.Sprintf("multiple applicable items in scope for %q on type %q", symbol, te.Display(typeID)))
	for i, n := range names {
		c := candidates[n]
		traits[i] = c.key.Name.Path.Suffix
		at := itemSpan(engines.Decls, c.item)
		err.WithRelated(at).
			WithNote("candidate #%d is defined in an impl of trait %q for type %q at %s",
				i+1, n, te.Display(c.key.TypeID), at.PathWithLineCol())
	}
	err.WithNote("disambiguate with one of: %s", strings.Join(traits, ", "))
	h.Emit(err)
	return nil, &diagnostics.ErrorEmitted{Count: 1}
}

// TraitNamesForType lists the traits implemented for typeID, generic
// impls included.
func (s *SymbolTable) TraitNamesForType(engines *Engines, typeID typesystem.TypeID) []TraitName {
	var out []TraitName
	s.eachEntryForType(engines, typeID, func(e TraitEntry) {
		if !e.Key.IsImplSelf {
			out = append(out, TraitName{Path: e.Key.Name.Path, Args: append([]typesystem.TypeID(nil), e.Key.Name.Args...)})
		}
	})
	return out
}

// ImplSpansForType returns the spans of every impl that applies to typeID.
func (s *SymbolTable) ImplSpansForType(engines *Engines, typeID typesystem.TypeID) []source.Span {
	var out []source.Span
	s.eachEntryForType(engines, typeID, func(e TraitEntry) {
		out = append(out, e.Value.ImplSpan)
	})
	return out
}

func (s *SymbolTable) eachEntryForType(engines *Engines, typeID typesystem.TypeID, fn func(TraitEntry)) {
	te := engines.Types
	typeID = te.Dealias(typeID)
	if te.IsErrorRecovery(typeID) {
		return
	}
	s.WalkScopeChain(func(scope *SymbolTable) bool {
		for _, e := range scope.implementedTraits.getImpls(te, typeID, false) {
			if te.Check(typesystem.ConstraintSubset, typeID, e.Key.TypeID) {
				fn(e)
			}
		}
		return true
	})
}

// ImplSpansForTraitName returns the spans of every impl of trait visible
// from s.
func (s *SymbolTable) ImplSpansForTraitName(trait ast.CallPath) []source.Span {
	var out []source.Span
	s.WalkScopeChain(func(scope *SymbolTable) bool {
		for _, e := range scope.implementedTraits.Entries() {
			if e.Key.Name.Path.Equal(trait) {
				out = append(out, e.Value.ImplSpan)
			}
		}
		return true
	})
	return out
}

// ImplSpansForDecl returns the spans of the impls of a struct or enum
// declaration for any instantiation of it. Other declarations yield the
// impls of their type.
func (s *SymbolTable) ImplSpansForDecl(engines *Engines, id decls.DeclID) []source.Span {
	var typeID typesystem.TypeID
	switch d := engines.Decls.Get(id).(type) {
	case *decls.StructDecl:
		typeID = engines.Types.OpenParams(d.Type)
	case *decls.EnumDecl:
		typeID = engines.Types.OpenParams(d.Type)
	case *decls.FunctionDecl:
		typeID = d.ReturnType
	case *decls.ConstantDecl:
		typeID = d.Type
	case *decls.TraitTypeDecl:
		typeID = d.Type
	}
	if typeID == 0 {
		return nil
	}
	return s.ImplSpansForType(engines, typeID)
}
