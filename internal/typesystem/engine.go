package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
)

// Engine is the arena of all types of a compilation session. Types are not
// interned: every Insert returns a fresh handle.
type Engine struct {
	slab []TypeInfo

	// NumericBits is the width Numeric decays to.
	NumericBits int
}

func NewEngine() *Engine {
	return &Engine{
		slab:        []TypeInfo{nil}, // 0 is reserved
		NumericBits: config.DefaultNumericBits,
	}
}

func (e *Engine) Insert(info TypeInfo) TypeID {
	if info == nil {
		panic("typesystem: inserting nil TypeInfo")
	}
	e.slab = append(e.slab, info)
	return TypeID(len(e.slab) - 1)
}

func (e *Engine) Get(id TypeID) TypeInfo {
	if id == 0 || int(id) >= len(e.slab) {
		panic(fmt.Sprintf("typesystem: invalid type id %d", id))
	}
	return e.slab[id]
}

// Replace overwrites the info stored under id.
func (e *Engine) Replace(id TypeID, info TypeInfo) {
	e.Get(id)
	e.slab[id] = info
}

// Len returns the number of types inserted so far.
func (e *Engine) Len() int { return len(e.slab) - 1 }

// Dealias strips Alias layers.
func (e *Engine) Dealias(id TypeID) TypeID {
	for i := 0; i < len(e.slab); i++ {
		a, ok := e.Get(id).(Alias)
		if !ok {
			return id
		}
		id = a.Target
	}
	panic("typesystem: alias cycle")
}

// UnaliasedInfo returns the info of id with Alias layers stripped.
func (e *Engine) UnaliasedInfo(id TypeID) TypeInfo {
	return e.Get(e.Dealias(id))
}

// children returns the handles directly nested inside info.
func children(info TypeInfo) []TypeID {
	switch t := info.(type) {
	case Custom:
		return t.Args
	case Tuple:
		return t.Elems
	case Struct:
		return paramIDs(t.Params)
	case Enum:
		return paramIDs(t.Params)
	case Array:
		return []TypeID{t.Elem}
	case Alias:
		return []TypeID{t.Target}
	case TraitType:
		return []TypeID{t.Implementor}
	case Ref:
		return []TypeID{t.Referenced}
	case Ptr:
		return []TypeID{t.Elem}
	case Slice:
		return []TypeID{t.Elem}
	case UnknownGeneric:
		var ids []TypeID
		for _, c := range t.TraitConstraints {
			ids = append(ids, c.TypeArguments...)
		}
		return ids
	}
	return nil
}

func paramIDs(params []TypeParameter) []TypeID {
	ids := make([]TypeID, len(params))
	for i, p := range params {
		ids[i] = p.TypeID
	}
	return ids
}

// InnerTypes returns every handle transitively nested in id, without
// duplicates, in discovery order. id itself is first when includeSelf.
func (e *Engine) InnerTypes(id TypeID, includeSelf bool) []TypeID {
	seen := map[TypeID]bool{id: true}
	var out []TypeID
	if includeSelf {
		out = append(out, id)
	}
	var walk func(TypeID)
	walk = func(cur TypeID) {
		for _, c := range children(e.Get(cur)) {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(id)
	return out
}

// IsConcrete reports whether id contains no generic, placeholder or
// unknown parts.
func (e *Engine) IsConcrete(id TypeID) bool {
	for _, t := range e.InnerTypes(id, true) {
		switch e.Get(t).(type) {
		case UnknownGeneric, Placeholder, TypeParam, Unknown:
			return false
		}
	}
	return true
}

// IsChangeable reports whether unification could still change what id
// stands for.
func (e *Engine) IsChangeable(id TypeID) bool {
	switch e.UnaliasedInfo(id).(type) {
	case Unknown, Numeric, UnknownGeneric, Placeholder:
		return true
	}
	return false
}

func (e *Engine) IsUnknownGeneric(id TypeID) bool {
	_, ok := e.UnaliasedInfo(id).(UnknownGeneric)
	return ok
}

// IsFromTypeParameter reports whether id is a generic declared as a type
// parameter of an impl or function.
func (e *Engine) IsFromTypeParameter(id TypeID) bool {
	g, ok := e.UnaliasedInfo(id).(UnknownGeneric)
	return ok && g.IsFromTypeParameter
}

func (e *Engine) IsErrorRecovery(id TypeID) bool {
	_, ok := e.UnaliasedInfo(id).(ErrorRecovery)
	return ok
}

// TypeParameters returns the generic slots of a struct or enum type,
// filled with its arguments.
func (e *Engine) TypeParameters(id TypeID) []TypeParameter {
	switch t := e.UnaliasedInfo(id).(type) {
	case Struct:
		return CloneParams(t.Params)
	case Enum:
		return CloneParams(t.Params)
	}
	return nil
}

// NewCustom inserts the Custom type used to compare trait identities.
func (e *Engine) NewCustom(name ast.CallPath, args []TypeID) TypeID {
	return e.Insert(Custom{Name: name, Args: append([]TypeID(nil), args...)})
}

// DecayNumeric rewrites every Numeric reachable from id to the default
// integer width. It fails when id is still completely unknown.
func (e *Engine) DecayNumeric(id TypeID, span source.Span) *diagnostics.DiagnosticError {
	id = e.Dealias(id)
	if _, ok := e.Get(id).(Unknown); ok {
		return diagnostics.NewError(diagnostics.ErrT007, span, "type annotation needed: cannot infer type")
	}
	for _, t := range e.InnerTypes(id, true) {
		if _, ok := e.Get(t).(Numeric); ok {
			e.Replace(t, UnsignedInteger{Bits: e.NumericBits})
		}
	}
	return nil
}

// Display renders a type the way it is written in source.
func (e *Engine) Display(id TypeID) string {
	var b strings.Builder
	e.display(&b, id)
	return b.String()
}

func (e *Engine) displayList(b *strings.Builder, ids []TypeID) {
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		e.display(b, id)
	}
}

func (e *Engine) displayParams(b *strings.Builder, name string, params []TypeParameter) {
	b.WriteString(name)
	if len(params) > 0 {
		b.WriteString("<")
		e.displayList(b, paramIDs(params))
		b.WriteString(">")
	}
}

func (e *Engine) display(b *strings.Builder, id TypeID) {
	switch t := e.Get(id).(type) {
	case Unknown:
		b.WriteString("{unknown}")
	case Never:
		b.WriteString("!")
	case UnknownGeneric:
		b.WriteString(t.Name)
	case Placeholder:
		b.WriteString("_")
	case TypeParam:
		fmt.Fprintf(b, "typeparam(%d)", t.Index)
	case StringSlice:
		b.WriteString(config.StrTypeName)
	case StringArray:
		fmt.Fprintf(b, "str[%d]", t.Len)
	case UnsignedInteger:
		fmt.Fprintf(b, "u%d", t.Bits)
	case Boolean:
		b.WriteString(config.BoolTypeName)
	case B256:
		b.WriteString(config.B256TypeName)
	case Numeric:
		b.WriteString("numeric")
	case Custom:
		b.WriteString(t.Name.String())
		if len(t.Args) > 0 {
			b.WriteString("<")
			e.displayList(b, t.Args)
			b.WriteString(">")
		}
	case ErrorRecovery:
		b.WriteString("{error}")
	case Tuple:
		b.WriteString("(")
		e.displayList(b, t.Elems)
		if len(t.Elems) == 1 {
			b.WriteString(",")
		}
		b.WriteString(")")
	case Struct:
		e.displayParams(b, t.Name, t.Params)
	case Enum:
		e.displayParams(b, t.Name, t.Params)
	case Array:
		b.WriteString("[")
		e.display(b, t.Elem)
		fmt.Fprintf(b, "; %d]", t.Len)
	case Alias:
		b.WriteString(t.Name)
	case TraitType:
		b.WriteString(t.Name)
	case Ref:
		b.WriteString("&")
		if t.ToMutable {
			b.WriteString("mut ")
		}
		e.display(b, t.Referenced)
	case Ptr:
		b.WriteString("__ptr[")
		e.display(b, t.Elem)
		b.WriteString("]")
	case Slice:
		b.WriteString("__slice[")
		e.display(b, t.Elem)
		b.WriteString("]")
	case RawUntypedPtr:
		b.WriteString("raw_ptr")
	case RawUntypedSlice:
		b.WriteString("raw_slice")
	}
}

// Key returns a canonical structural encoding of id. Two handles have the
// same key only if they describe the same type; generic parameters are
// keyed by handle since equally named generics of different impls differ.
func (e *Engine) Key(id TypeID) string {
	var b strings.Builder
	e.key(&b, id)
	return b.String()
}

func (e *Engine) keyList(b *strings.Builder, ids []TypeID) {
	b.WriteString("(")
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		e.key(b, id)
	}
	b.WriteString(")")
}

func (e *Engine) key(b *strings.Builder, id TypeID) {
	id = e.Dealias(id)
	switch t := e.Get(id).(type) {
	case UnknownGeneric, Placeholder, Unknown:
		fmt.Fprintf(b, "?%d", id)
	case Struct:
		fmt.Fprintf(b, "struct#%d", t.Decl)
		e.keyList(b, paramIDs(t.Params))
	case Enum:
		fmt.Fprintf(b, "enum#%d", t.Decl)
		e.keyList(b, paramIDs(t.Params))
	case Custom:
		b.WriteString("custom:" + t.Name.String())
		e.keyList(b, t.Args)
	case Tuple:
		b.WriteString("tuple")
		e.keyList(b, t.Elems)
	case Array:
		fmt.Fprintf(b, "array%d", t.Len)
		e.keyList(b, []TypeID{t.Elem})
	case Ref:
		if t.ToMutable {
			b.WriteString("&mut")
		} else {
			b.WriteString("&")
		}
		e.keyList(b, []TypeID{t.Referenced})
	case Ptr:
		b.WriteString("ptr")
		e.keyList(b, []TypeID{t.Elem})
	case Slice:
		b.WriteString("slice")
		e.keyList(b, []TypeID{t.Elem})
	case TraitType:
		b.WriteString("traittype:" + t.Name)
		e.keyList(b, []TypeID{t.Implementor})
	default:
		e.display(b, id)
	}
}
