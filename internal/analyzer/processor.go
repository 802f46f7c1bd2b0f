package analyzer

import (
	"github.com/funvibe/traitmap/internal/pipeline"
	"github.com/funvibe/traitmap/internal/symbols"
)

// SemanticAnalyzerProcessor orders the parsed modules and analyzes them,
// filling the context's engines and module scopes.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	ctx.Order = ctx.Program.Order(ctx.Handler)

	if ctx.Engines == nil {
		ctx.Engines = symbols.NewEngines()
	}
	ctx.Engines.Types.NumericBits = ctx.Project.NumericBits()

	a := New(ctx.Engines, ctx.Handler)
	for _, m := range ctx.Order {
		before := len(ctx.Handler.Errors())
		scope := a.AnalyzeModule(m.AST)
		ctx.Scopes[m.Name] = scope
		ctx.Logf("module %s: %d impl entries, %d errors", m.Name, scope.TraitMap().Len(), len(ctx.Handler.Errors())-before)
	}
	return ctx
}
