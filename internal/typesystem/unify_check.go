package typesystem

// CheckMode selects the relation Check decides.
type CheckMode int

const (
	// ConstraintSubset: left fits where right is expected. Anything fits a
	// generic on the right; two generics fit when right's bounds are a
	// subset of left's.
	ConstraintSubset CheckMode = iota
	// NonGenericConstraintSubset is ConstraintSubset except that a
	// concrete left never fits a generic right, and two generics only fit
	// when they have the same name and bounds.
	NonGenericConstraintSubset
	// Coercion: a value of left can be used as right (`&mut T` to `&T`,
	// `!` to anything, concrete to generic when the generic does not occur
	// in the concrete type).
	Coercion
	// Equality: both describe the same type, generics compared by name.
	Equality
)

func (m CheckMode) String() string {
	switch m {
	case ConstraintSubset:
		return "constraint-subset"
	case NonGenericConstraintSubset:
		return "non-generic-constraint-subset"
	case Coercion:
		return "coercion"
	case Equality:
		return "equality"
	}
	return "unknown"
}

// Check decides the relation mode between left and right. It does not
// record any substitution.
func (e *Engine) Check(mode CheckMode, left, right TypeID) bool {
	return e.check(mode, left, right)
}

func (e *Engine) checkList(mode CheckMode, left, right []TypeID) bool {
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if !e.check(mode, left[i], right[i]) {
			return false
		}
	}
	return true
}

func isPermissive(info TypeInfo) bool {
	switch info.(type) {
	case Unknown, Placeholder, ErrorRecovery:
		return true
	}
	return false
}

func (e *Engine) check(mode CheckMode, left, right TypeID) bool {
	left, right = e.Dealias(left), e.Dealias(right)
	if left == right {
		return true
	}
	li, ri := e.Get(left), e.Get(right)
	if isPermissive(li) || isPermissive(ri) {
		return true
	}

	lg, lGeneric := li.(UnknownGeneric)
	rg, rGeneric := ri.(UnknownGeneric)
	switch {
	case lGeneric && rGeneric:
		if mode == Equality || mode == NonGenericConstraintSubset {
			return lg.Name == rg.Name && e.constraintsSubset(lg.TraitConstraints, rg.TraitConstraints) &&
				e.constraintsSubset(rg.TraitConstraints, lg.TraitConstraints)
		}
		return e.constraintsSubset(rg.TraitConstraints, lg.TraitConstraints)
	case rGeneric:
		switch mode {
		case ConstraintSubset:
			return true
		case Coercion:
			return !e.occurs(right, left)
		}
		return false
	case lGeneric:
		return false
	}

	if _, ok := li.(Never); ok {
		if mode == Coercion {
			return true
		}
		_, ok := ri.(Never)
		return ok
	}

	switch l := li.(type) {
	case UnsignedInteger:
		switch r := ri.(type) {
		case UnsignedInteger:
			return l.Bits == r.Bits
		case Numeric:
			return true
		}
	case Numeric:
		switch ri.(type) {
		case Numeric, UnsignedInteger:
			return true
		}
	case Boolean:
		_, ok := ri.(Boolean)
		return ok
	case B256:
		_, ok := ri.(B256)
		return ok
	case StringSlice:
		_, ok := ri.(StringSlice)
		return ok
	case RawUntypedPtr:
		_, ok := ri.(RawUntypedPtr)
		return ok
	case RawUntypedSlice:
		_, ok := ri.(RawUntypedSlice)
		return ok
	case StringArray:
		r, ok := ri.(StringArray)
		return ok && l.Len == r.Len
	case TypeParam:
		r, ok := ri.(TypeParam)
		return ok && l.Index == r.Index
	case Tuple:
		r, ok := ri.(Tuple)
		return ok && e.checkList(mode, l.Elems, r.Elems)
	case Array:
		r, ok := ri.(Array)
		return ok && l.Len == r.Len && e.check(mode, l.Elem, r.Elem)
	case Slice:
		r, ok := ri.(Slice)
		return ok && e.check(mode, l.Elem, r.Elem)
	case Ptr:
		r, ok := ri.(Ptr)
		return ok && e.check(mode, l.Elem, r.Elem)
	case Ref:
		r, ok := ri.(Ref)
		if !ok {
			return false
		}
		if l.ToMutable != r.ToMutable && !(mode == Coercion && l.ToMutable) {
			return false
		}
		return e.check(mode, l.Referenced, r.Referenced)
	case Struct:
		r, ok := ri.(Struct)
		return ok && l.Decl == r.Decl && e.checkList(mode, paramIDs(l.Params), paramIDs(r.Params))
	case Enum:
		r, ok := ri.(Enum)
		return ok && l.Decl == r.Decl && e.checkList(mode, paramIDs(l.Params), paramIDs(r.Params))
	case Custom:
		r, ok := ri.(Custom)
		return ok && l.Name.Equal(r.Name) && e.checkList(mode, l.Args, r.Args)
	case TraitType:
		r, ok := ri.(TraitType)
		return ok && l.Name == r.Name
	}
	return false
}

// constraintsSubset reports whether every constraint of sub also appears
// in super.
func (e *Engine) constraintsSubset(sub, super []TraitConstraint) bool {
	for _, c := range sub {
		found := false
		for _, d := range super {
			if c.TraitName.Equal(d.TraitName) && e.checkList(Equality, c.TypeArguments, d.TypeArguments) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// occurs reports whether generic appears inside other.
func (e *Engine) occurs(generic, other TypeID) bool {
	g := e.Get(generic).(UnknownGeneric)
	for _, t := range e.InnerTypes(other, true) {
		if t == generic {
			return true
		}
		if og, ok := e.UnaliasedInfo(t).(UnknownGeneric); ok && og.Name == g.Name {
			return true
		}
	}
	return false
}

// IsMoreSpecific reports whether a is strictly more specific than b: a
// fits where b is expected but not the other way round.
func (e *Engine) IsMoreSpecific(a, b TypeID) bool {
	return e.Check(ConstraintSubset, a, b) && !e.Check(ConstraintSubset, b, a)
}
