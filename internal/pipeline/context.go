package pipeline

import (
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/traitmap/internal/config"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/modules"
	"github.com/funvibe/traitmap/internal/symbols"
)

// PipelineContext carries the program through the stages.
type PipelineContext struct {
	// Session identifies one run; it is stamped into logs and the xref
	// database.
	Session uuid.UUID
	Project *config.Project
	Logger  *log.Logger

	Program *modules.Program

	// Order is the dependency order computed by the analyzer.
	Order []*modules.Module

	// Engines and Scopes are filled by the analyzer. Scopes maps a module
	// name to its module scope.
	Engines *symbols.Engines
	Scopes  map[string]*symbols.SymbolTable

	Handler *diagnostics.Handler
}

func NewPipelineContext(prog *modules.Program, project *config.Project) *PipelineContext {
	if project == nil {
		project = config.DefaultProject()
	}
	return &PipelineContext{
		Session: uuid.New(),
		Project: project,
		Logger:  log.New(io.Discard, "", 0),
		Program: prog,
		Scopes:  make(map[string]*symbols.SymbolTable),
		Handler: diagnostics.NewHandler(),
	}
}

// Logf logs through the context logger, prefixed with the short session id.
func (ctx *PipelineContext) Logf(format string, args ...interface{}) {
	if ctx.Logger == nil {
		return
	}
	ctx.Logger.Printf("[%s] "+format, append([]interface{}{ctx.ShortSession()}, args...)...)
}

// ShortSession returns the first eight hex digits of the session id.
func (ctx *PipelineContext) ShortSession() string {
	return ctx.Session.String()[:8]
}

func (ctx *PipelineContext) HasErrors() bool {
	return ctx.Handler.HasErrors()
}
