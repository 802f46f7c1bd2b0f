package analyzer

import (
	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// checkImplBounds runs once every impl of the module is in the trait map.
// It checks the supertraits of the implemented trait on the impl type and
// the declared bounds of every struct and enum the impl mentions.
func (w *walker) checkImplBounds(info *implInfo) {
	te := w.te()
	scope := info.env.scope

	if info.trait != nil && len(info.trait.Supertraits) > 0 {
		sup, _ := te.ApplyConstraints(info.trait.Supertraits, info.subst)
		_ = scope.CheckTraitConstraints(w.a.h, w.a.engines, info.selfType, sup, info.decl.Trait.Span)
	}

	span := ast.TypeSpan(info.decl.SelfType)
	mentioned := te.InnerTypes(info.selfType, true)
	for _, arg := range info.traitArgs {
		mentioned = append(mentioned, te.InnerTypes(arg, true)...)
	}
	for _, id := range mentioned {
		declParams, args := w.declaredParams(id)
		if len(declParams) == 0 || len(declParams) != len(args) {
			continue
		}
		s := make(typesystem.Subst, len(declParams))
		for i := range declParams {
			s[declParams[i].TypeID] = args[i].TypeID
		}
		for i, p := range declParams {
			if len(p.TraitConstraints) == 0 || te.IsErrorRecovery(args[i].TypeID) {
				continue
			}
			bounds, _ := te.ApplyConstraints(p.TraitConstraints, s)
			_ = scope.CheckTraitConstraints(w.a.h, w.a.engines, args[i].TypeID, bounds, span)
		}
	}
}

// declaredParams returns the parameters a struct or enum was declared
// with and the arguments id instantiates them with.
func (w *walker) declaredParams(id typesystem.TypeID) (declared, args []typesystem.TypeParameter) {
	switch t := w.te().UnaliasedInfo(id).(type) {
	case typesystem.Struct:
		if d, ok := w.de().Get(t.Decl).(*decls.StructDecl); ok {
			return d.TypeParams, t.Params
		}
	case typesystem.Enum:
		if d, ok := w.de().Get(t.Decl).(*decls.EnumDecl); ok {
			return d.TypeParams, t.Params
		}
	}
	return nil, nil
}
