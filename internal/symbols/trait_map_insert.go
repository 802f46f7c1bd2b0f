package symbols

import (
	"fmt"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// ImplInsert describes one type-checked impl block.
type ImplInsert struct {
	TraitName ast.CallPath
	TraitArgs []typesystem.TypeID
	// ImplTypeParams are the generic parameters of the impl with their
	// bounds, `where` clauses included.
	ImplTypeParams []typesystem.TypeParameter
	TypeID         typesystem.TypeID
	Items          []ResolvedItem
	ImplSpan       source.Span
	TraitDeclSpan  *source.Span
	IsImplSelf     bool
	// IsExtendingExistingImpl is set when the impl is re-registered from
	// an import rather than declared here.
	IsExtendingExistingImpl bool
}

// InsertTraitImplementation records an impl in this scope's trait map.
// Coherence problems are reported to h but the impl is always inserted.
func (s *SymbolTable) InsertTraitImplementation(h *diagnostics.Handler, engines *Engines, in ImplInsert) error {
	te, de := engines.Types, engines.Decls
	typeID := te.Dealias(in.TypeID)

	typeParams := te.TypeParameters(typeID)
	for i := range typeParams {
		for _, ip := range in.ImplTypeParams {
			if ip.TypeID == typeParams[i].TypeID {
				typeParams[i].TraitConstraints = append([]typesystem.TraitConstraint(nil), ip.TraitConstraints...)
			}
		}
	}

	return h.Scope(func(h *diagnostics.Handler) error {
		items := make(TraitItems, len(in.Items))
		for _, item := range in.Items {
			it := mustTyped(item)
			name := itemName(de, it)
			if it.Kind == ItemFunction {
				if _, dup := items[name]; dup {
					h.Emit(diagnostics.NewError(diagnostics.ErrT003, itemSpan(de, it),
						fmt.Sprintf("name %q is defined multiple times", name)))
				}
			}
			items[name] = it
		}

		traitName := &TraitName{Path: in.TraitName, Args: append([]typesystem.TypeID(nil), in.TraitArgs...)}
		typeDisplay := te.Display(typeID)

		for _, existing := range s.implementedTraits.getImpls(te, typeID, false) {
			typesSubset := typesAreSubset(te, typeID, existing.Key.TypeID)
			traitsSubset := traitsAreSubset(te, traitName, existing.Key.Name)
			if !s.paramConstraintsHold(engines, existing.Key.TypeParams, typeParams) {
				continue
			}

			switch {
			case !in.IsExtendingExistingImpl && typesSubset && traitsSubset && !in.IsImplSelf:
				h.Emit(diagnostics.NewError(diagnostics.ErrT001, in.ImplSpan,
					fmt.Sprintf("conflicting implementations of trait %q for type %q",
						traitName.Display(te), typeDisplay)).
					WithRelated(existing.Value.ImplSpan))
			case typesSubset && (traitsSubset || in.IsImplSelf):
				for _, name := range items.sortedNames() {
					if _, ok := existing.Value.Items[name]; !ok {
						continue
					}
					it := mustTyped(items[name])
					h.Emit(diagnostics.NewError(diagnostics.ErrT002, itemSpan(de, it),
						fmt.Sprintf("duplicate %s %q defined for type %q", it.Kind, name, typeDisplay)).
						WithRelated(itemSpan(de, existing.Value.Items[name])))
				}
			}
		}

		s.implementedTraits.insertInner(te, TraitKey{
			Name:       traitName,
			TypeID:     typeID,
			TypeParams: typeParams,
			DeclSpan:   in.TraitDeclSpan,
			IsImplSelf: in.IsImplSelf,
		}, TraitValue{Items: items, ImplSpan: in.ImplSpan})
		return nil
	})
}

// paramConstraintsHold reports whether every concrete slot of params
// satisfies the bounds of the matching slot in mapParams. Failures are
// not reported.
func (s *SymbolTable) paramConstraintsHold(engines *Engines, mapParams, params []typesystem.TypeParameter) bool {
	n := len(mapParams)
	if len(params) < n {
		n = len(params)
	}
	for i := 0; i < n; i++ {
		id := params[i].TypeID
		if !engines.Types.IsConcrete(id) {
			continue
		}
		if err := s.CheckTraitConstraints(diagnostics.NewHandler(), engines, id, mapParams[i].TraitConstraints, source.Span{}); err != nil {
			return false
		}
	}
	return true
}

// typesAreSubset is the non-generic subset check plus a walk over
// reference layers, which must agree on mutability at every level.
func typesAreSubset(te *typesystem.Engine, a, b typesystem.TypeID) bool {
	if !te.Check(typesystem.NonGenericConstraintSubset, a, b) {
		return false
	}
	for {
		ar, aok := te.UnaliasedInfo(a).(typesystem.Ref)
		br, bok := te.UnaliasedInfo(b).(typesystem.Ref)
		if !aok || !bok {
			return true
		}
		if ar.ToMutable != br.ToMutable {
			return false
		}
		a, b = ar.Referenced, br.Referenced
	}
}

func traitsAreSubset(te *typesystem.Engine, a, b *TraitName) bool {
	if a.Path.Suffix != b.Path.Suffix || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !te.Check(typesystem.NonGenericConstraintSubset, a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

func (tm *TraitMap) insertInner(te *typesystem.Engine, key TraitKey, value TraitValue) {
	one := NewTraitMap()
	one.buckets[te.RootFilter(key.TypeID)] = []TraitEntry{{Key: key, Value: value}}
	one.insertSeen[key.TypeID] = struct{}{}
	tm.Extend(te, one)
}
