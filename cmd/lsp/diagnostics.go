package main

import (
	"path/filepath"

	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/pipeline"
)

func (s *LanguageServer) publishDiagnostics(uri string, ctx *pipeline.PipelineContext) error {
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: convertDiagnostics(ctx.Handler.Errors(), uriToPath(uri)),
		},
	})
}

// convertDiagnostics keeps the errors reported in filePath. Errors in
// other modules of the workspace are published when those are opened.
func convertDiagnostics(errors []*diagnostics.DiagnosticError, filePath string) []Diagnostic {
	result := make([]Diagnostic, 0)
	targetPath := filepath.Clean(filePath)

	for _, err := range errors {
		if err.File != "" && filepath.Clean(err.File) != targetPath {
			continue
		}
		d := Diagnostic{
			Range:    spanRange(err.Span),
			Severity: SeverityError,
			Code:     string(err.Code),
			Message:  err.Message,
			Source:   "traitc",
		}
		for _, note := range err.Notes {
			d.Message += "\n" + note
		}
		result = append(result, d)
	}
	return result
}
