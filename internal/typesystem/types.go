package typesystem

import (
	"github.com/funvibe/traitmap/internal/ast"
)

// TypeID is a handle into an Engine. The zero value is not a valid type.
type TypeID uint32

// DeclRef is an opaque handle of the struct or enum declaration a type was
// built from. It is assigned by the declaration store.
type DeclRef uint32

// TypeInfo is the description of one type stored in the engine.
type TypeInfo interface {
	typeInfo()
}

type (
	Unknown struct{}
	Never   struct{}

	// UnknownGeneric is a generic parameter such as T in `impl<T: Eq> ...`.
	UnknownGeneric struct {
		Name             string
		TraitConstraints []TraitConstraint
		// IsFromTypeParameter is set for parameters declared on an impl
		// or function, as opposed to inference placeholders.
		IsFromTypeParameter bool
	}

	// Placeholder stands for a type to be filled in later, e.g. `_`.
	Placeholder struct {
		Name string
	}

	// TypeParam is the n-th generic parameter of a declaration.
	TypeParam struct {
		Index int
	}

	StringSlice struct{}

	StringArray struct {
		Len uint64
	}

	UnsignedInteger struct {
		Bits int
	}

	Boolean struct{}
	B256    struct{}

	// Numeric is an integer whose width is not decided yet.
	Numeric struct{}

	// Custom is a named type that has not been resolved to a declaration.
	// Trait identities used by constraint checks are also Custom.
	Custom struct {
		Name ast.CallPath
		Args []TypeID
	}

	ErrorRecovery struct{}

	Tuple struct {
		Elems []TypeID
	}

	Enum struct {
		Decl   DeclRef
		Name   string
		Params []TypeParameter
	}

	Struct struct {
		Decl   DeclRef
		Name   string
		Params []TypeParameter
	}

	Array struct {
		Elem TypeID
		Len  uint64
	}

	Alias struct {
		Name   string
		Target TypeID
	}

	// TraitType is an associated type of a trait, e.g. Self::Item.
	TraitType struct {
		Name        string
		Implementor TypeID
	}

	Ref struct {
		ToMutable  bool
		Referenced TypeID
	}

	Ptr struct {
		Elem TypeID
	}

	Slice struct {
		Elem TypeID
	}

	RawUntypedPtr   struct{}
	RawUntypedSlice struct{}
)

func (Unknown) typeInfo()         {}
func (Never) typeInfo()           {}
func (UnknownGeneric) typeInfo()  {}
func (Placeholder) typeInfo()     {}
func (TypeParam) typeInfo()       {}
func (StringSlice) typeInfo()     {}
func (StringArray) typeInfo()     {}
func (UnsignedInteger) typeInfo() {}
func (Boolean) typeInfo()         {}
func (B256) typeInfo()            {}
func (Numeric) typeInfo()         {}
func (Custom) typeInfo()          {}
func (ErrorRecovery) typeInfo()   {}
func (Tuple) typeInfo()           {}
func (Enum) typeInfo()            {}
func (Struct) typeInfo()          {}
func (Array) typeInfo()           {}
func (Alias) typeInfo()           {}
func (TraitType) typeInfo()       {}
func (Ref) typeInfo()             {}
func (Ptr) typeInfo()             {}
func (Slice) typeInfo()           {}
func (RawUntypedPtr) typeInfo()   {}
func (RawUntypedSlice) typeInfo() {}

// TraitConstraint is one bound: `Into<u64>` is {Into, [u64]}.
type TraitConstraint struct {
	TraitName     ast.CallPath
	TypeArguments []TypeID
}

// TypeParameter is a generic slot of a struct, enum or impl, together
// with the bounds that must hold for whatever fills it.
type TypeParameter struct {
	Name             string
	TypeID           TypeID
	TraitConstraints []TraitConstraint
}

// CloneParams returns a copy of params whose constraint slices are not
// shared with the input.
func CloneParams(params []TypeParameter) []TypeParameter {
	if params == nil {
		return nil
	}
	out := make([]TypeParameter, len(params))
	for i, p := range params {
		out[i] = p
		out[i].TraitConstraints = append([]TraitConstraint(nil), p.TraitConstraints...)
	}
	return out
}
