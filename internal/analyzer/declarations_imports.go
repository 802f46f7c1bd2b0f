package analyzer

import (
	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/symbols"
)

// VisitUseDecl brings the public names of another module into scope,
// together with the impls that come with them:
//
//	use m::*;      every public name and the whole trait map of m
//	use m::Trait;  the impls of Trait
//	use m::Type;   the impls that apply to Type or types nested in it
func (w *walker) VisitUseDecl(n *ast.UseDecl) {
	dep := n.Module()
	if dep == w.module.Name {
		w.a.h.Errorf(diagnostics.ErrA006, n.Path.Span, "module %s cannot import itself", dep)
		return
	}
	depScope, ok := w.a.scopes[dep]
	if !ok {
		// Unknown modules are reported while ordering the program.
		return
	}
	te := w.a.engines.Types
	tm := w.scope.TraitMap()

	if n.Glob {
		for _, sym := range depScope.Symbols() {
			if sym.Public {
				w.importSymbol(sym, n.Path.Span)
			}
		}
		tm.Extend(te, depScope.TraitMap())
		return
	}

	if len(n.Path.Prefixes) != 1 {
		w.a.h.Errorf(diagnostics.ErrA006, n.Path.Span, "cannot import %s: only module items can be imported", n.Path)
		return
	}
	sym, ok := depScope.FindLocal(n.Path.Suffix)
	if !ok || sym.OriginModule != dep {
		w.a.h.Errorf(diagnostics.ErrA006, n.Path.Span, "module %s has no item named %s", dep, n.Path.Suffix)
		return
	}
	if !sym.Public {
		w.a.h.Errorf(diagnostics.ErrA006, n.Path.Span, "%s %s is private to module %s", sym.Kind, sym.Name, dep)
		return
	}
	w.importSymbol(sym, n.Path.Span)

	switch sym.Kind {
	case symbols.TraitSymbol:
		tr := w.a.engines.Decls.GetTrait(sym.Decl)
		tm.Extend(te, depScope.TraitMap().FilterByTraitDeclSpan(te, tr.Span))
	case symbols.StructSymbol, symbols.EnumSymbol, symbols.AliasSymbol:
		tm.Extend(te, depScope.TraitMap().FilterByTypeItemImport(w.a.engines, te.OpenParams(sym.Type)))
	}
}

func (w *walker) importSymbol(sym symbols.Symbol, at source.Span) {
	if prev, ok := w.scope.FindLocal(sym.Name); ok && prev.OriginModule != sym.OriginModule {
		if prev.OriginModule == w.module.Name {
			// local declarations shadow imports
			return
		}
		w.a.h.Errorf(diagnostics.ErrT003, at, "%s is imported from both %s and %s",
			sym.Name, prev.OriginModule, sym.OriginModule)
		return
	}
	w.scope.Define(sym)
}
