package analyzer

import (
	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/decls"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/symbols"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// AnalysisMode is one pass over a module.
type AnalysisMode int

const (
	ModeNaming    AnalysisMode = iota // Declare every top-level name
	ModeImports                       // Resolve `use` declarations
	ModeHeaders                       // Build struct fields, aliases, trait interfaces and fn signatures
	ModeInstances                     // Check impl blocks and insert them
	ModeBounds                        // Check trait bounds required by impls
)

// Analyzer checks the declarations of a program module by module. Modules
// must be analyzed after the modules they import.
type Analyzer struct {
	engines *symbols.Engines
	h       *diagnostics.Handler

	// scopes maps module names to their module scope.
	scopes map[string]*symbols.SymbolTable
	// traitSelf is the generic standing for Self inside a trait.
	traitSelf map[decls.DeclID]typesystem.TypeID
}

// New creates an Analyzer reporting to h.
func New(engines *symbols.Engines, h *diagnostics.Handler) *Analyzer {
	return &Analyzer{
		engines:   engines,
		h:         h,
		scopes:    make(map[string]*symbols.SymbolTable),
		traitSelf: make(map[decls.DeclID]typesystem.TypeID),
	}
}

func (a *Analyzer) Engines() *symbols.Engines { return a.engines }

// Scope returns the module scope of an analyzed module.
func (a *Analyzer) Scope(module string) (*symbols.SymbolTable, bool) {
	s, ok := a.scopes[module]
	return s, ok
}

type walker struct {
	a      *Analyzer
	module *ast.Module
	scope  *symbols.SymbolTable
	mode   AnalysisMode

	// envs holds the generic scopes of declarations between passes.
	envs map[ast.Item]typeEnv
	// impls collects checked impl blocks for the bounds pass.
	impls []*implInfo
}

func (w *walker) te() *typesystem.Engine { return w.a.engines.Types }
func (w *walker) de() *decls.Engine      { return w.a.engines.Decls }

// AnalyzeModule runs every pass over m and returns its module scope.
func (a *Analyzer) AnalyzeModule(m *ast.Module) *symbols.SymbolTable {
	w := &walker{a: a, module: m, scope: symbols.NewSymbolTable(m.Name), envs: make(map[ast.Item]typeEnv)}
	a.scopes[m.Name] = w.scope

	for _, mode := range []AnalysisMode{ModeNaming, ModeImports, ModeHeaders, ModeInstances, ModeBounds} {
		w.mode = mode
		if mode == ModeBounds {
			for _, info := range w.impls {
				w.checkImplBounds(info)
			}
			continue
		}
		for _, item := range m.Items {
			w.visit(item)
		}
	}
	return w.scope
}

func (w *walker) visit(item ast.Item) {
	switch n := item.(type) {
	case *ast.UseDecl:
		if w.mode == ModeImports {
			w.VisitUseDecl(n)
		}
	case *ast.TraitDecl:
		w.VisitTraitDecl(n)
	case *ast.StructDecl:
		w.VisitStructDecl(n)
	case *ast.EnumDecl:
		w.VisitEnumDecl(n)
	case *ast.AliasDecl:
		w.VisitAliasDecl(n)
	case *ast.FnDecl:
		w.VisitFnDecl(n)
	case *ast.ImplDecl:
		if w.mode == ModeInstances {
			w.VisitImplDecl(n)
		}
	}
}

// traitPath is the canonical path impls of a trait are recorded under.
func traitPath(module, name string) ast.CallPath {
	return ast.NewCallPath(module, name)
}

// inherentPath is the trait path of inherent impls.
var inherentPath = ast.NewCallPath(config.SelfTypeName)

// lookupTrait returns the trait declaration recorded under a canonical
// trait path.
func (a *Analyzer) lookupTrait(path ast.CallPath) (decls.DeclID, *decls.TraitDecl, bool) {
	if len(path.Prefixes) != 1 {
		return 0, nil, false
	}
	scope, ok := a.scopes[path.Prefixes[0]]
	if !ok {
		return 0, nil, false
	}
	sym, ok := scope.FindLocal(path.Suffix)
	if !ok || sym.Kind != symbols.TraitSymbol || sym.OriginModule != path.Prefixes[0] {
		return 0, nil, false
	}
	return sym.Decl, a.engines.Decls.GetTrait(sym.Decl), true
}
