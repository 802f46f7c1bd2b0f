package lexer

import (
	"github.com/funvibe/traitmap/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	for _, m := range ctx.Program.Sorted() {
		m.Tokens = New(m.File).Tokenize()
	}
	ctx.Logf("lexed %d modules", len(ctx.Program.Modules))
	return ctx
}
