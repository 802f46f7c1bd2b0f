package symbols

import (
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// FilterByTraitDeclSpan returns the entries that implement the trait
// declared at span.
func (tm *TraitMap) FilterByTraitDeclSpan(te *typesystem.Engine, span source.Span) *TraitMap {
	out := NewTraitMap()
	for _, f := range tm.sortedFilters() {
		for _, e := range tm.buckets[f] {
			if e.Key.DeclSpan != nil && e.Key.DeclSpan.Equal(span) {
				out.insertInner(te, e.Key.clone(), TraitValue{Items: e.Value.Items.clone(), ImplSpan: e.Value.ImplSpan})
			}
		}
	}
	return out
}

// FilterByTypeItemImport returns the entries that apply to typeID when
// the type is imported by name, together with the entries of every type
// nested inside it.
func (tm *TraitMap) FilterByTypeItemImport(engines *Engines, typeID typesystem.TypeID) *TraitMap {
	te := engines.Types
	typeID = te.Dealias(typeID)

	outer := func(l, r typesystem.TypeID) bool {
		return te.Check(typesystem.ConstraintSubset, l, r) || te.Check(typesystem.NonGenericConstraintSubset, r, l)
	}
	inner := func(l, r typesystem.TypeID) bool {
		return te.Check(typesystem.ConstraintSubset, l, r)
	}

	out := tm.filterByType(engines, []typesystem.TypeID{typeID}, outer)
	out.Extend(te, tm.filterByType(engines, te.InnerTypes(typeID, false), inner))
	return out
}

func (tm *TraitMap) filterByType(engines *Engines, types []typesystem.TypeID, decider func(l, r typesystem.TypeID) bool) *TraitMap {
	te := engines.Types
	out := NewTraitMap()
	for _, id := range types {
		for _, e := range tm.getImpls(te, id, true) {
			mapType := e.Key.TypeID
			if !te.IsChangeable(id) && id == mapType {
				out.insertInner(te, e.Key.clone(), TraitValue{Items: e.Value.Items.clone(), ImplSpan: e.Value.ImplSpan})
				continue
			}
			if decider(id, mapType) {
				out.insertInner(te, e.Key.clone(), TraitValue{
					Items:    filterDummyMethods(engines.Decls, te, e.Value.Items, id, mapType),
					ImplSpan: e.Value.ImplSpan,
				})
			}
		}
	}
	return out
}

// filterDummyMethods drops interface stand-ins inserted for a generic
// parameter unless the queried type is itself such a parameter.
func filterDummyMethods(de *decls.Engine, te *typesystem.Engine, items TraitItems, typeID, mapType typesystem.TypeID) TraitItems {
	insertable := true
	if te.IsUnknownGeneric(mapType) && te.IsFromTypeParameter(mapType) {
		insertable = te.IsUnknownGeneric(typeID)
	}
	out := make(TraitItems, len(items))
	for name, item := range items {
		if !insertable && isDummyMethod(de, item) {
			continue
		}
		out[name] = item
	}
	return out
}
