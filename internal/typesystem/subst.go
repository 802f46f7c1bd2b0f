package typesystem

// Subst maps generic handles to the types that replace them.
type Subst map[TypeID]TypeID

// SubstFromSupersetAndSubset walks superset and subset in parallel and
// records, for every generic or placeholder of superset, the type found
// at the same position of subset.
func (e *Engine) SubstFromSupersetAndSubset(superset, subset TypeID) Subst {
	s := make(Subst)
	e.collectSubst(s, superset, subset)
	return s
}

func (e *Engine) collectSubst(s Subst, sup, sub TypeID) {
	sup, sub = e.Dealias(sup), e.Dealias(sub)
	if sup == sub {
		return
	}
	switch a := e.Get(sup).(type) {
	case UnknownGeneric, Placeholder:
		if _, ok := s[sup]; !ok {
			s[sup] = sub
		}
	case Ref:
		if b, ok := e.Get(sub).(Ref); ok {
			e.collectSubst(s, a.Referenced, b.Referenced)
		}
	case Tuple:
		if b, ok := e.Get(sub).(Tuple); ok && len(a.Elems) == len(b.Elems) {
			for i := range a.Elems {
				e.collectSubst(s, a.Elems[i], b.Elems[i])
			}
		}
	case Array:
		if b, ok := e.Get(sub).(Array); ok {
			e.collectSubst(s, a.Elem, b.Elem)
		}
	case Slice:
		if b, ok := e.Get(sub).(Slice); ok {
			e.collectSubst(s, a.Elem, b.Elem)
		}
	case Ptr:
		if b, ok := e.Get(sub).(Ptr); ok {
			e.collectSubst(s, a.Elem, b.Elem)
		}
	case Struct:
		if b, ok := e.Get(sub).(Struct); ok && a.Decl == b.Decl && len(a.Params) == len(b.Params) {
			for i := range a.Params {
				e.collectSubst(s, a.Params[i].TypeID, b.Params[i].TypeID)
			}
		}
	case Enum:
		if b, ok := e.Get(sub).(Enum); ok && a.Decl == b.Decl && len(a.Params) == len(b.Params) {
			for i := range a.Params {
				e.collectSubst(s, a.Params[i].TypeID, b.Params[i].TypeID)
			}
		}
	case Custom:
		if b, ok := e.Get(sub).(Custom); ok && len(a.Args) == len(b.Args) {
			for i := range a.Args {
				e.collectSubst(s, a.Args[i], b.Args[i])
			}
		}
	}
}

// Apply returns id with s applied. Unchanged types keep their handle;
// changed ones are inserted as new types.
func (e *Engine) Apply(id TypeID, s Subst) TypeID {
	if len(s) == 0 || id == 0 {
		return id
	}
	if r, ok := s[id]; ok {
		return r
	}
	switch t := e.Get(id).(type) {
	case Ref:
		if r := e.Apply(t.Referenced, s); r != t.Referenced {
			return e.Insert(Ref{ToMutable: t.ToMutable, Referenced: r})
		}
	case Alias:
		if r := e.Apply(t.Target, s); r != t.Target {
			return e.Insert(Alias{Name: t.Name, Target: r})
		}
	case Array:
		if r := e.Apply(t.Elem, s); r != t.Elem {
			return e.Insert(Array{Elem: r, Len: t.Len})
		}
	case Slice:
		if r := e.Apply(t.Elem, s); r != t.Elem {
			return e.Insert(Slice{Elem: r})
		}
	case Ptr:
		if r := e.Apply(t.Elem, s); r != t.Elem {
			return e.Insert(Ptr{Elem: r})
		}
	case TraitType:
		if r := e.Apply(t.Implementor, s); r != t.Implementor {
			return e.Insert(TraitType{Name: t.Name, Implementor: r})
		}
	case Tuple:
		if elems, changed := e.applyList(t.Elems, s); changed {
			return e.Insert(Tuple{Elems: elems})
		}
	case Custom:
		if args, changed := e.applyList(t.Args, s); changed {
			return e.Insert(Custom{Name: t.Name, Args: args})
		}
	case Struct:
		if params, changed := e.ApplyParams(t.Params, s); changed {
			return e.Insert(Struct{Decl: t.Decl, Name: t.Name, Params: params})
		}
	case Enum:
		if params, changed := e.ApplyParams(t.Params, s); changed {
			return e.Insert(Enum{Decl: t.Decl, Name: t.Name, Params: params})
		}
	case UnknownGeneric:
		if cs, changed := e.ApplyConstraints(t.TraitConstraints, s); changed {
			t.TraitConstraints = cs
			return e.Insert(t)
		}
	}
	return id
}

func (e *Engine) applyList(ids []TypeID, s Subst) ([]TypeID, bool) {
	out := make([]TypeID, len(ids))
	changed := false
	for i, id := range ids {
		out[i] = e.Apply(id, s)
		changed = changed || out[i] != id
	}
	return out, changed
}

// ApplyParams applies s to every slot and constraint of params.
func (e *Engine) ApplyParams(params []TypeParameter, s Subst) ([]TypeParameter, bool) {
	out := CloneParams(params)
	changed := false
	for i := range out {
		id := e.Apply(out[i].TypeID, s)
		if id != out[i].TypeID {
			out[i].TypeID = id
			changed = true
		}
		if cs, ok := e.ApplyConstraints(out[i].TraitConstraints, s); ok {
			out[i].TraitConstraints = cs
			changed = true
		}
	}
	return out, changed
}

// ApplyConstraints applies s to the type arguments of every constraint.
func (e *Engine) ApplyConstraints(cs []TraitConstraint, s Subst) ([]TraitConstraint, bool) {
	changed := false
	out := make([]TraitConstraint, len(cs))
	for i, c := range cs {
		args, ok := e.applyList(c.TypeArguments, s)
		out[i] = TraitConstraint{TraitName: c.TraitName, TypeArguments: args}
		changed = changed || ok
	}
	if !changed {
		return cs, false
	}
	return out, true
}

// OpenParams returns id with the generic parameters of a struct or enum
// type replaced by fresh placeholders, so that the result matches every
// instantiation of the declaration.
func (e *Engine) OpenParams(id TypeID) TypeID {
	s := make(Subst)
	for _, p := range e.TypeParameters(id) {
		if e.IsUnknownGeneric(p.TypeID) {
			s[p.TypeID] = e.Insert(Placeholder{Name: p.Name})
		}
	}
	return e.Apply(id, s)
}
