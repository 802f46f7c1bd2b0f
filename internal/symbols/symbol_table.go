package symbols

import (
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

type SymbolKind int

type ScopeType int

const (
	ScopeModule ScopeType = iota // Top level of a module
	ScopeImpl                    // Body of an impl block
	ScopeFunction
	ScopeBlock
)

const (
	TraitSymbol SymbolKind = iota
	StructSymbol
	EnumSymbol
	AliasSymbol
	FunctionSymbol
	TypeParamSymbol // Generic parameter of an impl or function
)

func (k SymbolKind) String() string {
	switch k {
	case TraitSymbol:
		return "trait"
	case StructSymbol:
		return "struct"
	case EnumSymbol:
		return "enum"
	case AliasSymbol:
		return "type alias"
	case FunctionSymbol:
		return "function"
	case TypeParamSymbol:
		return "type parameter"
	}
	return "symbol"
}

// IsType reports whether the symbol names a type.
func (k SymbolKind) IsType() bool {
	switch k {
	case StructSymbol, EnumSymbol, AliasSymbol, TypeParamSymbol:
		return true
	}
	return false
}

type Symbol struct {
	Name string
	Kind SymbolKind
	Decl decls.DeclID      // zero for aliases and type parameters
	Type typesystem.TypeID // declared type for structs, enums, aliases and type parameters
	// OriginModule is the module that declared the symbol; it differs from
	// the scope's module for imported symbols.
	OriginModule string
	Public       bool
	Span         source.Span
}

// SymbolTable is one lexical scope. Each scope owns the trait map of the
// impls declared in it.
type SymbolTable struct {
	outer     *SymbolTable
	scopeType ScopeType
	module    string
	store     map[string]Symbol

	implementedTraits *TraitMap
}

// NewSymbolTable creates the root scope of a module.
func NewSymbolTable(module string) *SymbolTable {
	return &SymbolTable{
		scopeType:         ScopeModule,
		module:            module,
		store:             make(map[string]Symbol),
		implementedTraits: NewTraitMap(),
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	st := NewSymbolTable(outer.module)
	st.outer = outer
	st.scopeType = scopeType
	return st
}

// Outer returns the outer scope symbol table
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

func (s *SymbolTable) ScopeType() ScopeType { return s.scopeType }

func (s *SymbolTable) Module() string { return s.module }

// TraitMap returns the trait map owned by this scope.
func (s *SymbolTable) TraitMap() *TraitMap {
	return s.implementedTraits
}

// Define adds sym to this scope, replacing any symbol of the same name.
func (s *SymbolTable) Define(sym Symbol) {
	if sym.OriginModule == "" {
		sym.OriginModule = s.module
	}
	s.store[sym.Name] = sym
}

// Find looks name up in this scope and then in the outer ones.
func (s *SymbolTable) Find(name string) (Symbol, bool) {
	sym, ok := s.store[name]
	if !ok && s.outer != nil {
		return s.outer.Find(name)
	}
	return sym, ok
}

// FindLocal looks name up in this scope only.
func (s *SymbolTable) FindLocal(name string) (Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}

// Symbols returns the symbols defined directly in this scope.
func (s *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, 0, len(s.store))
	for _, sym := range s.store {
		out = append(out, sym)
	}
	return out
}

// WalkScopeChain calls fn for this scope and every outer one, innermost
// first, until fn returns false.
func (s *SymbolTable) WalkScopeChain(fn func(*SymbolTable) bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if !fn(cur) {
			return
		}
	}
}

// Clone copies the scope together with its trait map and caches. The
// outer chain is shared.
func (s *SymbolTable) Clone() *SymbolTable {
	c := &SymbolTable{
		outer:             s.outer,
		scopeType:         s.scopeType,
		module:            s.module,
		store:             make(map[string]Symbol, len(s.store)),
		implementedTraits: s.implementedTraits.Clone(),
	}
	for k, v := range s.store {
		c.store[k] = v
	}
	return c
}
