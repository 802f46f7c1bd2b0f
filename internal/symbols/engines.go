package symbols

import (
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// Engines bundles the type and declaration stores every trait map
// operation consults.
type Engines struct {
	Types *typesystem.Engine
	Decls *decls.Engine
}

func NewEngines() *Engines {
	return &Engines{Types: typesystem.NewEngine(), Decls: decls.NewEngine()}
}

func (e *Engines) Te() *typesystem.Engine { return e.Types }
func (e *Engines) De() *decls.Engine      { return e.Decls }
