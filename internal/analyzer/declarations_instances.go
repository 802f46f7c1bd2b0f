package analyzer

import (
	"sort"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/symbols"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// implInfo is a checked impl block, kept for the bounds pass.
type implInfo struct {
	decl     *ast.ImplDecl
	env      typeEnv
	selfType typesystem.TypeID
	params   []typesystem.TypeParameter

	// Trait impls only.
	trait     *decls.TraitDecl
	traitPath ast.CallPath
	traitArgs []typesystem.TypeID
	// subst maps the trait's Self and parameters to the impl's types.
	subst typesystem.Subst
}

func (w *walker) VisitImplDecl(n *ast.ImplDecl) {
	te, de := w.te(), w.de()

	env, params := w.declareGenerics(w.scope, symbols.ScopeImpl, n.Generics, 0)
	selfType := w.BuildType(n.SelfType, env)
	if te.IsErrorRecovery(selfType) {
		return
	}
	env.selfType = selfType
	w.attachBounds(env, params, n.Generics, n.Where)
	info := &implInfo{decl: n, env: env, selfType: selfType, params: params, traitPath: inherentPath}

	if !n.IsInherent() {
		sym, ok := w.resolveTrait(env.scope, *n.Trait)
		if !ok {
			return
		}
		tr := de.GetTrait(sym.Decl)
		args := make([]typesystem.TypeID, len(n.TraitArgs))
		for i, a := range n.TraitArgs {
			args[i] = w.BuildType(a, env)
		}
		if len(args) != len(tr.TypeParams) {
			w.a.h.Errorf(diagnostics.ErrA002, n.Trait.Span, "trait %s expects %d type arguments, got %d",
				sym.Name, len(tr.TypeParams), len(args))
			return
		}
		info.trait = tr
		info.traitPath = traitPath(sym.OriginModule, sym.Name)
		info.traitArgs = args
		info.subst = typesystem.Subst{w.a.traitSelf[sym.Decl]: selfType}
		for i, p := range tr.TypeParams {
			info.subst[p.TypeID] = args[i]
		}
	}

	w.insertBoundMethods(info)
	items := w.implItems(info)

	in := symbols.ImplInsert{
		TraitName:      info.traitPath,
		TraitArgs:      info.traitArgs,
		ImplTypeParams: params,
		TypeID:         selfType,
		Items:          items,
		ImplSpan:       n.Span,
		IsImplSelf:     n.IsInherent(),
	}
	if info.trait != nil {
		sp := info.trait.Span
		in.TraitDeclSpan = &sp
	}
	_ = w.scope.InsertTraitImplementation(w.a.h, w.a.engines, in)
	w.impls = append(w.impls, info)
}

// implItems builds the items of an impl. For trait impls the items are
// checked against the trait interface and the defaults the impl does not
// override are added.
func (w *walker) implItems(info *implInfo) []symbols.ResolvedItem {
	te, de := w.te(), w.de()
	n := info.decl
	implFor := info.selfType

	var items []symbols.ResolvedItem
	provided := make(map[string]symbols.ItemKind)
	spans := make(map[string]*ast.Ident)
	for _, fd := range n.Fns {
		id := de.Insert(w.buildFunction(fd, info.env, &implFor))
		items = append(items, symbols.TypedItem{Kind: symbols.ItemFunction, Decl: id})
		provided[fd.Name.Value] = symbols.ItemFunction
		spans[fd.Name.Value] = fd.Name
	}
	for _, cd := range n.Consts {
		id := de.Insert(&decls.ConstantDecl{
			Name: cd.Name.Value, Type: w.BuildType(cd.Type, info.env), HasValue: !cd.Value.IsZero(), Span: cd.Name.Span(),
		})
		items = append(items, symbols.TypedItem{Kind: symbols.ItemConstant, Decl: id})
		provided[cd.Name.Value] = symbols.ItemConstant
		spans[cd.Name.Value] = cd.Name
	}
	for _, td := range n.Types {
		var typ typesystem.TypeID
		if td.Type == nil {
			w.a.h.Errorf(diagnostics.ErrA003, td.Name.Span(), "associated type %s needs a definition in an impl", td.Name.Value)
			typ = w.errorType()
		} else {
			typ = w.BuildType(td.Type, info.env)
		}
		id := de.Insert(&decls.TraitTypeDecl{Name: td.Name.Value, Type: typ, Span: td.Name.Span()})
		items = append(items, symbols.TypedItem{Kind: symbols.ItemType, Decl: id})
		provided[td.Name.Value] = symbols.ItemType
		spans[td.Name.Value] = td.Name
	}

	tr := info.trait
	if tr == nil {
		return items
	}

	interfaceKinds := make(map[string]symbols.ItemKind)
	for _, id := range tr.Fns {
		interfaceKinds[de.Get(id).DeclName()] = symbols.ItemFunction
	}
	for _, id := range tr.Consts {
		interfaceKinds[de.Get(id).DeclName()] = symbols.ItemConstant
	}
	for _, id := range tr.Types {
		interfaceKinds[de.Get(id).DeclName()] = symbols.ItemType
	}
	names := make([]string, 0, len(provided))
	for name := range provided {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if kind, ok := interfaceKinds[name]; !ok || kind != provided[name] {
			w.a.h.Errorf(diagnostics.ErrA005, spans[name].Span(), "%s %s is not a member of trait %s",
				provided[name], name, tr.Name)
		}
	}

	var missing []string
	for _, id := range tr.Fns {
		fn := de.GetFunction(id)
		if _, ok := provided[fn.Name]; ok {
			continue
		}
		if !fn.HasBody {
			missing = append(missing, fn.Name)
			continue
		}
		parent := id
		nid := de.InsertSubstituted(te, fn, info.subst, &parent)
		de.GetFunction(nid).ImplementingFor = &implFor
		items = append(items, symbols.TypedItem{Kind: symbols.ItemFunction, Decl: nid})
	}
	for _, id := range tr.Consts {
		c := de.Get(id).(*decls.ConstantDecl)
		if _, ok := provided[c.Name]; ok {
			continue
		}
		if !c.HasValue {
			missing = append(missing, c.Name)
			continue
		}
		parent := id
		items = append(items, symbols.TypedItem{Kind: symbols.ItemConstant, Decl: de.InsertSubstituted(te, c, info.subst, &parent)})
	}
	for _, id := range tr.Types {
		if name := de.Get(id).DeclName(); provided[name] != symbols.ItemType {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		w.a.h.Errorf(diagnostics.ErrA004, n.Trait.Span, "impl of trait %s for %s is missing %s",
			tr.Name, te.Display(info.selfType), strings.Join(missing, ", "))
	}
	return items
}

// insertBoundMethods makes the interface of every bound of the impl's
// generic parameters available on the parameter inside the impl scope.
// Supertraits of a bound are followed.
func (w *walker) insertBoundMethods(info *implInfo) {
	te, de := w.te(), w.de()
	for _, p := range info.params {
		generic := p.TypeID
		seen := make(map[string]bool)
		var add func(c typesystem.TraitConstraint)
		add = func(c typesystem.TraitConstraint) {
			key := c.TraitName.String()
			for _, a := range c.TypeArguments {
				key += "," + te.Key(a)
			}
			if seen[key] {
				return
			}
			seen[key] = true
			traitID, tr, ok := w.a.lookupTrait(c.TraitName)
			if !ok || len(tr.TypeParams) != len(c.TypeArguments) {
				return
			}
			s := typesystem.Subst{w.a.traitSelf[traitID]: generic}
			for i, tp := range tr.TypeParams {
				s[tp.TypeID] = c.TypeArguments[i]
			}
			var items []symbols.ResolvedItem
			for _, fid := range tr.Fns {
				parent := fid
				nid := de.InsertSubstituted(te, de.Get(fid), s, &parent)
				fn := de.GetFunction(nid)
				fn.IsTraitMethodDummy = true
				fn.ImplementingFor = &generic
				items = append(items, symbols.TypedItem{Kind: symbols.ItemFunction, Decl: nid})
			}
			sp := tr.Span
			_ = info.env.scope.InsertTraitImplementation(w.a.h, w.a.engines, symbols.ImplInsert{
				TraitName:     c.TraitName,
				TraitArgs:     c.TypeArguments,
				TypeID:        generic,
				Items:         items,
				ImplSpan:      info.decl.Span,
				TraitDeclSpan: &sp,
			})
			for _, sup := range tr.Supertraits {
				cs, _ := te.ApplyConstraints([]typesystem.TraitConstraint{sup}, s)
				add(cs[0])
			}
		}
		for _, c := range p.TraitConstraints {
			add(c)
		}
	}
}
