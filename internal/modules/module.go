package modules

import (
	"sort"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/token"
)

// Module is one source file of a program. Module names form a flat
// namespace; `use m::Item;` refers to module m.
type Module struct {
	Name   string
	Path   string
	File   *source.File
	Tokens []token.Token
	AST    *ast.Module
}

// Program is the set of modules checked together.
type Program struct {
	Modules map[string]*Module
}

func NewProgram() *Program {
	return &Program{Modules: make(map[string]*Module)}
}

// Add registers a module built from source text. A second module with the
// same name replaces the first.
func (p *Program) Add(name, path, input string) *Module {
	m := &Module{Name: name, Path: path, File: source.NewFile(path, input)}
	p.Modules[name] = m
	return m
}

func (p *Program) Get(name string) (*Module, bool) {
	m, ok := p.Modules[name]
	return m, ok
}

// Names returns module names in sorted order.
func (p *Program) Names() []string {
	names := make([]string, 0, len(p.Modules))
	for name := range p.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the modules in name order.
func (p *Program) Sorted() []*Module {
	names := p.Names()
	mods := make([]*Module, len(names))
	for i, name := range names {
		mods[i] = p.Modules[name]
	}
	return mods
}
