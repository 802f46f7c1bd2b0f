package typesystem

// RootKind is the coarse shape of a type.
type RootKind int

const (
	RootUnknown RootKind = iota
	RootNever
	RootPlaceholder
	RootTypeParam
	RootStringSlice
	RootStringArray
	RootU8
	RootU16
	RootU32
	RootU64
	RootU256
	RootBool
	RootCustom
	RootB256
	RootErrorRecovery
	RootTuple
	RootEnum
	RootStruct
	RootArray
	RootRawUntypedPtr
	RootRawUntypedSlice
	RootPtr
	RootSlice
	RootTraitType
)

// TypeRootFilter is the bucket key of a type in a trait map. It only
// narrows candidate scans; it never decides type equivalence.
type TypeRootFilter struct {
	Kind RootKind
	N    uint64 // tuple arity, array/string length, type param index
	Name string // custom and trait type names
	Decl DeclRef
}

// Less orders filters deterministically.
func (f TypeRootFilter) Less(o TypeRootFilter) bool {
	if f.Kind != o.Kind {
		return f.Kind < o.Kind
	}
	if f.N != o.N {
		return f.N < o.N
	}
	if f.Name != o.Name {
		return f.Name < o.Name
	}
	return f.Decl < o.Decl
}

var PlaceholderFilter = TypeRootFilter{Kind: RootPlaceholder}

// RootFilter classifies id for bucketing. Aliases and references are
// looked through, so `&T`, `&mut T` and an alias of T share T's bucket.
func (e *Engine) RootFilter(id TypeID) TypeRootFilter {
	switch t := e.Get(id).(type) {
	case Unknown:
		return TypeRootFilter{Kind: RootUnknown}
	case Never:
		return TypeRootFilter{Kind: RootNever}
	case UnknownGeneric, Placeholder:
		return PlaceholderFilter
	case TypeParam:
		return TypeRootFilter{Kind: RootTypeParam, N: uint64(t.Index)}
	case StringSlice:
		return TypeRootFilter{Kind: RootStringSlice}
	case StringArray:
		return TypeRootFilter{Kind: RootStringArray, N: t.Len}
	case UnsignedInteger:
		switch t.Bits {
		case 8:
			return TypeRootFilter{Kind: RootU8}
		case 16:
			return TypeRootFilter{Kind: RootU16}
		case 32:
			return TypeRootFilter{Kind: RootU32}
		case 256:
			return TypeRootFilter{Kind: RootU256}
		}
		return TypeRootFilter{Kind: RootU64}
	case Boolean:
		return TypeRootFilter{Kind: RootBool}
	case Custom:
		return TypeRootFilter{Kind: RootCustom, Name: t.Name.Suffix}
	case B256:
		return TypeRootFilter{Kind: RootB256}
	case Numeric:
		return TypeRootFilter{Kind: RootU64} // u64 is the default
	case ErrorRecovery:
		return TypeRootFilter{Kind: RootErrorRecovery}
	case Tuple:
		return TypeRootFilter{Kind: RootTuple, N: uint64(len(t.Elems))}
	case Enum:
		return TypeRootFilter{Kind: RootEnum, Decl: t.Decl}
	case Struct:
		return TypeRootFilter{Kind: RootStruct, Decl: t.Decl}
	case Array:
		return TypeRootFilter{Kind: RootArray, N: t.Len}
	case RawUntypedPtr:
		return TypeRootFilter{Kind: RootRawUntypedPtr}
	case RawUntypedSlice:
		return TypeRootFilter{Kind: RootRawUntypedSlice}
	case Ptr:
		return TypeRootFilter{Kind: RootPtr}
	case Slice:
		return TypeRootFilter{Kind: RootSlice}
	case Alias:
		return e.RootFilter(t.Target)
	case TraitType:
		return TypeRootFilter{Kind: RootTraitType, Name: t.Name}
	case Ref:
		return e.RootFilter(t.Referenced)
	}
	return TypeRootFilter{Kind: RootUnknown}
}
