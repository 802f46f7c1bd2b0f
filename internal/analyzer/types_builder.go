package analyzer

import (
	"fmt"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/symbols"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// typeEnv is where type expressions are resolved: a scope holding the
// generic parameters in reach, and what Self stands for.
type typeEnv struct {
	scope    *symbols.SymbolTable
	selfType typesystem.TypeID // zero outside traits and impls
}

func (w *walker) moduleEnv() typeEnv {
	return typeEnv{scope: w.scope}
}

func (w *walker) errorType() typesystem.TypeID {
	return w.te().Insert(typesystem.ErrorRecovery{})
}

// resolvePath finds the symbol a path names: single names through the
// scope chain, `m::Name` in module m.
func (w *walker) resolvePath(scope *symbols.SymbolTable, path ast.CallPath) (symbols.Symbol, bool) {
	switch len(path.Prefixes) {
	case 0:
		return scope.Find(path.Suffix)
	case 1:
		if path.Prefixes[0] == w.module.Name {
			return w.scope.FindLocal(path.Suffix)
		}
		dep, ok := w.a.scopes[path.Prefixes[0]]
		if !ok {
			return symbols.Symbol{}, false
		}
		sym, ok := dep.FindLocal(path.Suffix)
		if !ok || !sym.Public {
			return symbols.Symbol{}, false
		}
		return sym, true
	}
	return symbols.Symbol{}, false
}

// BuildType converts a type expression into a type handle. Problems are
// reported and yield an error-recovery type.
func (w *walker) BuildType(t ast.Type, env typeEnv) typesystem.TypeID {
	te := w.te()
	switch t := t.(type) {
	case nil:
		return te.Insert(typesystem.Tuple{})
	case *ast.TupleType:
		elems := make([]typesystem.TypeID, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = w.BuildType(e, env)
		}
		return te.Insert(typesystem.Tuple{Elems: elems})
	case *ast.ArrayType:
		return te.Insert(typesystem.Array{Elem: w.BuildType(t.Elem, env), Len: t.Len})
	case *ast.StrArrayType:
		return te.Insert(typesystem.StringArray{Len: t.Len})
	case *ast.RefType:
		return te.Insert(typesystem.Ref{ToMutable: t.Mutable, Referenced: w.BuildType(t.Elem, env)})
	case *ast.NamedType:
		return w.buildNamedType(t, env)
	}
	panic(fmt.Sprintf("analyzer: unexpected type node %T", t))
}

func (w *walker) buildNamedType(t *ast.NamedType, env typeEnv) typesystem.TypeID {
	te := w.te()
	span := ast.TypeSpan(t)
	if len(t.Path.Prefixes) == 0 {
		if id, ok := w.primitive(t.Path.Suffix); ok {
			if len(t.Args) > 0 {
				w.a.h.Errorf(diagnostics.ErrA002, span, "type %s takes no type arguments", t.Path.Suffix)
				return w.errorType()
			}
			return id
		}
		if t.Path.Suffix == config.SelfTypeName {
			if env.selfType == 0 {
				w.a.h.Errorf(diagnostics.ErrA001, span, "Self is only available inside traits and impls")
				return w.errorType()
			}
			return env.selfType
		}
	}

	sym, ok := w.resolvePath(env.scope, t.Path)
	if !ok {
		w.a.h.Errorf(diagnostics.ErrA001, span, "undeclared type %s", t.Path)
		return w.errorType()
	}

	args := make([]typesystem.TypeID, len(t.Args))
	for i, a := range t.Args {
		args[i] = w.BuildType(a, env)
	}

	switch sym.Kind {
	case symbols.StructSymbol, symbols.EnumSymbol:
		declParams := te.TypeParameters(sym.Type)
		if len(args) != len(declParams) {
			w.a.h.Errorf(diagnostics.ErrA002, span, "%s %s expects %d type arguments, got %d",
				sym.Kind, sym.Name, len(declParams), len(args))
			return w.errorType()
		}
		params := make([]typesystem.TypeParameter, len(args))
		for i, p := range declParams {
			params[i] = typesystem.TypeParameter{Name: p.Name, TypeID: args[i]}
		}
		if sym.Kind == symbols.StructSymbol {
			return te.Insert(typesystem.Struct{Decl: sym.Decl, Name: sym.Name, Params: params})
		}
		return te.Insert(typesystem.Enum{Decl: sym.Decl, Name: sym.Name, Params: params})
	case symbols.AliasSymbol, symbols.TypeParamSymbol:
		if len(args) > 0 {
			w.a.h.Errorf(diagnostics.ErrA002, span, "%s %s takes no type arguments", sym.Kind, sym.Name)
			return w.errorType()
		}
		return sym.Type
	}
	w.a.h.Errorf(diagnostics.ErrA003, span, "%s is a %s, not a type", t.Path, sym.Kind)
	return w.errorType()
}

func (w *walker) primitive(name string) (typesystem.TypeID, bool) {
	te := w.te()
	switch name {
	case config.U8TypeName:
		return te.Insert(typesystem.UnsignedInteger{Bits: 8}), true
	case config.U16TypeName:
		return te.Insert(typesystem.UnsignedInteger{Bits: 16}), true
	case config.U32TypeName:
		return te.Insert(typesystem.UnsignedInteger{Bits: 32}), true
	case config.U64TypeName:
		return te.Insert(typesystem.UnsignedInteger{Bits: 64}), true
	case config.U256TypeName:
		return te.Insert(typesystem.UnsignedInteger{Bits: 256}), true
	case config.BoolTypeName:
		return te.Insert(typesystem.Boolean{}), true
	case config.B256TypeName:
		return te.Insert(typesystem.B256{}), true
	case config.StrTypeName:
		return te.Insert(typesystem.StringSlice{}), true
	}
	return 0, false
}

// resolveTrait finds the trait a path names, reporting A001/A003.
func (w *walker) resolveTrait(scope *symbols.SymbolTable, path ast.CallPath) (symbols.Symbol, bool) {
	sym, ok := w.resolvePath(scope, path)
	if !ok {
		w.a.h.Errorf(diagnostics.ErrA001, path.Span, "undeclared trait %s", path)
		return symbols.Symbol{}, false
	}
	if sym.Kind != symbols.TraitSymbol {
		w.a.h.Errorf(diagnostics.ErrA003, path.Span, "%s is a %s, not a trait", path, sym.Kind)
		return symbols.Symbol{}, false
	}
	return sym, true
}

// buildBounds resolves trait bounds into constraints named by their
// canonical trait path.
func (w *walker) buildBounds(bounds []ast.TraitBound, env typeEnv) []typesystem.TraitConstraint {
	var out []typesystem.TraitConstraint
	for _, b := range bounds {
		sym, ok := w.resolveTrait(env.scope, b.Path)
		if !ok {
			continue
		}
		args := make([]typesystem.TypeID, len(b.Args))
		for i, a := range b.Args {
			args[i] = w.BuildType(a, env)
		}
		tr := w.de().GetTrait(sym.Decl)
		if len(args) != len(tr.TypeParams) {
			w.a.h.Errorf(diagnostics.ErrA002, b.Path.Span, "trait %s expects %d type arguments, got %d",
				sym.Name, len(tr.TypeParams), len(args))
			continue
		}
		out = append(out, typesystem.TraitConstraint{
			TraitName:     traitPath(sym.OriginModule, sym.Name),
			TypeArguments: args,
		})
	}
	return out
}

// declareGenerics creates one generic per parameter in a scope enclosed
// by outer. Bounds are attached separately by attachBounds once every
// trait they may name is declared.
func (w *walker) declareGenerics(outer *symbols.SymbolTable, scopeType symbols.ScopeType, generics []ast.GenericParam, selfType typesystem.TypeID) (typeEnv, []typesystem.TypeParameter) {
	te := w.te()
	scope := symbols.NewEnclosedSymbolTable(outer, scopeType)
	env := typeEnv{scope: scope, selfType: selfType}
	params := make([]typesystem.TypeParameter, len(generics))
	for i, g := range generics {
		id := te.Insert(typesystem.UnknownGeneric{Name: g.Name.Value, IsFromTypeParameter: true})
		if _, dup := scope.FindLocal(g.Name.Value); dup {
			w.a.h.Errorf(diagnostics.ErrT003, g.Name.Span(), "generic parameter %s is declared twice", g.Name.Value)
		}
		scope.Define(symbols.Symbol{Name: g.Name.Value, Kind: symbols.TypeParamSymbol, Type: id, Span: g.Name.Span()})
		params[i] = typesystem.TypeParameter{Name: g.Name.Value, TypeID: id}
	}
	return env, params
}

// attachBounds resolves the bounds of params and records them on both the
// parameters and their generic types.
func (w *walker) attachBounds(env typeEnv, params []typesystem.TypeParameter, generics []ast.GenericParam, where []ast.WherePredicate) {
	te := w.te()
	for i, g := range generics {
		params[i].TraitConstraints = append(params[i].TraitConstraints, w.buildBounds(g.Bounds, env)...)
	}
	for _, wp := range where {
		idx := -1
		for i, p := range params {
			if p.Name == wp.Name.Value {
				idx = i
			}
		}
		if idx < 0 {
			w.a.h.Errorf(diagnostics.ErrA001, wp.Name.Span(), "where clause names unknown generic parameter %s", wp.Name.Value)
			continue
		}
		params[idx].TraitConstraints = append(params[idx].TraitConstraints, w.buildBounds(wp.Bounds, env)...)
	}
	for _, p := range params {
		g := te.Get(p.TypeID).(typesystem.UnknownGeneric)
		g.TraitConstraints = p.TraitConstraints
		te.Replace(p.TypeID, g)
	}
}
