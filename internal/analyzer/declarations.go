package analyzer

import (
	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/symbols"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// declare adds a top-level symbol, reporting a clash with an earlier
// declaration of the same module. Imported names may be shadowed.
func (w *walker) declare(sym symbols.Symbol) bool {
	if prev, ok := w.scope.FindLocal(sym.Name); ok && prev.OriginModule == w.module.Name {
		w.a.h.Emit(diagnostics.NewError(diagnostics.ErrT003, sym.Span,
			"name "+sym.Name+" is defined multiple times").WithRelated(prev.Span))
		return false
	}
	w.scope.Define(sym)
	return true
}

// declOf returns the declaration a top-level node was registered under.
func (w *walker) declOf(name *ast.Ident) (symbols.Symbol, bool) {
	sym, ok := w.scope.FindLocal(name.Value)
	if !ok || !sym.Span.Equal(name.Span()) {
		return symbols.Symbol{}, false
	}
	return sym, true
}

func (w *walker) VisitStructDecl(n *ast.StructDecl) {
	te, de := w.te(), w.de()
	switch w.mode {
	case ModeNaming:
		env, params := w.declareGenerics(w.scope, symbols.ScopeBlock, n.Generics, 0)
		d := &decls.StructDecl{Name: n.Name.Value, Module: w.module.Name, TypeParams: params, Span: n.Name.Span()}
		id := de.Insert(d)
		d.Type = te.Insert(typesystem.Struct{Decl: id, Name: d.Name, Params: typesystem.CloneParams(params)})
		if w.declare(symbols.Symbol{Name: d.Name, Kind: symbols.StructSymbol, Decl: id, Type: d.Type, Public: n.Public, Span: d.Span}) {
			w.envs[n] = env
		}
	case ModeHeaders:
		sym, ok := w.declOf(n.Name)
		if !ok {
			return
		}
		env := w.envs[n]
		d := de.Get(sym.Decl).(*decls.StructDecl)
		w.attachBounds(env, d.TypeParams, n.Generics, nil)
		seen := make(map[string]bool)
		for _, f := range n.Fields {
			if seen[f.Name.Value] {
				w.a.h.Errorf(diagnostics.ErrT003, f.Name.Span(), "field %s is declared twice", f.Name.Value)
			}
			seen[f.Name.Value] = true
			d.Fields = append(d.Fields, decls.StructField{Name: f.Name.Value, Type: w.BuildType(f.Type, env)})
		}
	}
}

func (w *walker) VisitEnumDecl(n *ast.EnumDecl) {
	te, de := w.te(), w.de()
	switch w.mode {
	case ModeNaming:
		env, params := w.declareGenerics(w.scope, symbols.ScopeBlock, n.Generics, 0)
		d := &decls.EnumDecl{Name: n.Name.Value, Module: w.module.Name, TypeParams: params, Span: n.Name.Span()}
		id := de.Insert(d)
		d.Type = te.Insert(typesystem.Enum{Decl: id, Name: d.Name, Params: typesystem.CloneParams(params)})
		if w.declare(symbols.Symbol{Name: d.Name, Kind: symbols.EnumSymbol, Decl: id, Type: d.Type, Public: n.Public, Span: d.Span}) {
			w.envs[n] = env
		}
	case ModeHeaders:
		sym, ok := w.declOf(n.Name)
		if !ok {
			return
		}
		env := w.envs[n]
		d := de.Get(sym.Decl).(*decls.EnumDecl)
		w.attachBounds(env, d.TypeParams, n.Generics, nil)
		seen := make(map[string]bool)
		for _, v := range n.Variants {
			if seen[v.Name.Value] {
				w.a.h.Errorf(diagnostics.ErrT003, v.Name.Span(), "variant %s is declared twice", v.Name.Value)
			}
			seen[v.Name.Value] = true
			d.Variants = append(d.Variants, decls.StructField{Name: v.Name.Value, Type: w.BuildType(v.Type, env)})
		}
	}
}

func (w *walker) VisitAliasDecl(n *ast.AliasDecl) {
	te := w.te()
	switch w.mode {
	case ModeNaming:
		id := te.Insert(typesystem.Alias{Name: n.Name.Value, Target: te.Insert(typesystem.Unknown{})})
		w.declare(symbols.Symbol{Name: n.Name.Value, Kind: symbols.AliasSymbol, Type: id, Public: n.Public, Span: n.Name.Span()})
	case ModeHeaders:
		sym, ok := w.declOf(n.Name)
		if !ok {
			return
		}
		target := w.BuildType(n.Target, w.moduleEnv())
		for cur := target; ; {
			if cur == sym.Type {
				w.a.h.Errorf(diagnostics.ErrA003, n.Name.Span(), "type alias %s refers to itself", n.Name.Value)
				target = w.errorType()
				break
			}
			al, ok := te.Get(cur).(typesystem.Alias)
			if !ok {
				break
			}
			cur = al.Target
		}
		te.Replace(sym.Type, typesystem.Alias{Name: n.Name.Value, Target: target})
	}
}

func (w *walker) VisitTraitDecl(n *ast.TraitDecl) {
	te, de := w.te(), w.de()
	switch w.mode {
	case ModeNaming:
		self := te.Insert(typesystem.UnknownGeneric{Name: config.SelfTypeName, IsFromTypeParameter: true})
		env, params := w.declareGenerics(w.scope, symbols.ScopeBlock, n.Generics, self)
		d := &decls.TraitDecl{Name: n.Name.Value, Module: w.module.Name, TypeParams: params, Span: n.Name.Span()}
		id := de.Insert(d)
		w.a.traitSelf[id] = self
		if w.declare(symbols.Symbol{Name: d.Name, Kind: symbols.TraitSymbol, Decl: id, Public: n.Public, Span: d.Span}) {
			w.envs[n] = env
		}
	case ModeHeaders:
		sym, ok := w.declOf(n.Name)
		if !ok {
			return
		}
		env := w.envs[n]
		d := de.GetTrait(sym.Decl)
		w.attachBounds(env, d.TypeParams, n.Generics, nil)
		d.Supertraits = w.buildBounds(n.Supertraits, env)

		names := make(map[string]bool)
		member := func(name *ast.Ident) {
			if names[name.Value] {
				w.a.h.Errorf(diagnostics.ErrT003, name.Span(), "trait item %s is declared twice", name.Value)
			}
			names[name.Value] = true
		}
		for _, fd := range n.Fns {
			member(fd.Name)
			d.Fns = append(d.Fns, de.Insert(w.buildFunction(fd, env, nil)))
		}
		for _, cd := range n.Consts {
			member(cd.Name)
			d.Consts = append(d.Consts, de.Insert(&decls.ConstantDecl{
				Name: cd.Name.Value, Type: w.BuildType(cd.Type, env), HasValue: !cd.Value.IsZero(), Span: cd.Name.Span(),
			}))
		}
		for _, td := range n.Types {
			member(td.Name)
			d.Types = append(d.Types, de.Insert(&decls.TraitTypeDecl{Name: td.Name.Value, Span: td.Name.Span()}))
		}
	}
}

func (w *walker) VisitFnDecl(n *ast.FnDecl) {
	switch w.mode {
	case ModeNaming:
		w.declare(symbols.Symbol{Name: n.Name.Value, Kind: symbols.FunctionSymbol, Public: n.Public, Span: n.Name.Span()})
	case ModeHeaders:
		sym, ok := w.declOf(n.Name)
		if !ok {
			return
		}
		sym.Decl = w.de().Insert(w.buildFunction(n, w.moduleEnv(), nil))
		w.scope.Define(sym)
	}
}

// buildFunction builds the signature of fn in env. implFor is the type of
// the enclosing impl, if any.
func (w *walker) buildFunction(fn *ast.FnDecl, env typeEnv, implFor *typesystem.TypeID) *decls.FunctionDecl {
	te := w.te()
	fenv, params := w.declareGenerics(env.scope, symbols.ScopeFunction, fn.Generics, env.selfType)
	w.attachBounds(fenv, params, fn.Generics, fn.Where)

	d := &decls.FunctionDecl{
		Name:            fn.Name.Value,
		TypeParams:      params,
		ImplementingFor: implFor,
		HasBody:         fn.HasBody(),
		Span:            fn.Name.Span(),
	}
	for _, p := range fn.Params {
		if !p.IsSelf {
			d.Params = append(d.Params, decls.FnParam{Name: p.Name.Value, Type: w.BuildType(p.Type, fenv)})
			continue
		}
		var typ typesystem.TypeID
		if env.selfType == 0 {
			w.a.h.Errorf(diagnostics.ErrA003, p.Name.Span(), "self parameter outside of a trait or impl")
			typ = w.errorType()
		} else {
			typ = env.selfType
			if p.Ref {
				typ = te.Insert(typesystem.Ref{ToMutable: p.Mut, Referenced: typ})
			}
		}
		d.Params = append(d.Params, decls.FnParam{Name: config.SelfParamName, Type: typ, IsSelf: true})
	}
	d.ReturnType = w.BuildType(fn.ReturnType, fenv)
	return d
}
