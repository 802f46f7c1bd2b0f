package parser

import (
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/pipeline"
	"github.com/funvibe/traitmap/internal/source"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	for _, m := range ctx.Program.Sorted() {
		if m.Tokens == nil {
			// Should not happen when the lexer runs first.
			ctx.Handler.Emit(diagnostics.NewError(diagnostics.ErrP001,
				source.NewSpan(m.File, 0, 0), "parser: token stream is nil"))
			continue
		}
		before := len(ctx.Handler.Errors())
		m.AST = New(m.File, m.Tokens, ctx.Handler).ParseModule(m.Name)
		if n := len(ctx.Handler.Errors()) - before; n > 0 {
			ctx.Logf("module %s: %d parse errors", m.Name, n)
		}
	}
	return ctx
}
