package decls

import (
	"fmt"

	"github.com/funvibe/traitmap/internal/typesystem"
)

// Engine stores declarations. Handles stay valid for the whole session.
type Engine struct {
	slab    []Decl
	parents map[DeclID]DeclID
}

func NewEngine() *Engine {
	return &Engine{slab: []Decl{nil}, parents: make(map[DeclID]DeclID)}
}

func (e *Engine) Insert(d Decl) DeclID {
	if d == nil {
		panic("decls: inserting nil declaration")
	}
	e.slab = append(e.slab, d)
	return DeclID(len(e.slab) - 1)
}

func (e *Engine) Get(id DeclID) Decl {
	if id == 0 || int(id) >= len(e.slab) {
		panic(fmt.Sprintf("decls: invalid declaration id %d", id))
	}
	return e.slab[id]
}

// GetFunction returns the function stored under id or panics.
func (e *Engine) GetFunction(id DeclID) *FunctionDecl {
	fn, ok := e.Get(id).(*FunctionDecl)
	if !ok {
		panic(fmt.Sprintf("decls: %d is a %T, not a function", id, e.Get(id)))
	}
	return fn
}

func (e *Engine) GetTrait(id DeclID) *TraitDecl {
	tr, ok := e.Get(id).(*TraitDecl)
	if !ok {
		panic(fmt.Sprintf("decls: %d is a %T, not a trait", id, e.Get(id)))
	}
	return tr
}

// InsertSubstituted stores a copy of d with s applied and records parent
// as its origin when given.
func (e *Engine) InsertSubstituted(te *typesystem.Engine, d Decl, s typesystem.Subst, parent *DeclID) DeclID {
	id := e.Insert(d.substitute(te, s))
	if parent != nil {
		e.parents[id] = *parent
	}
	return id
}

// Parent returns the declaration id was copied from.
func (e *Engine) Parent(id DeclID) (DeclID, bool) {
	p, ok := e.parents[id]
	return p, ok
}

// Root follows Parent links to the original declaration.
func (e *Engine) Root(id DeclID) DeclID {
	for {
		p, ok := e.parents[id]
		if !ok {
			return id
		}
		id = p
	}
}

// Len returns the number of declarations stored.
func (e *Engine) Len() int { return len(e.slab) - 1 }
