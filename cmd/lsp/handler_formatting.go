package main

import (
	"log"
	"strings"

	"github.com/funvibe/traitmap/internal/prettyprinter"
)

func (s *LanguageServer) handleFormatting(id interface{}, params DocumentFormattingParams) error {
	uri := params.TextDocument.URI
	content, module, ctx, ok := s.document(uri)
	if !ok {
		return s.sendResult(id, []TextEdit{})
	}
	m, found := ctx.Program.Get(module)
	if !found || m.AST == nil {
		return s.sendResult(id, []TextEdit{})
	}
	// The printer drops comments and items that failed to parse.
	if strings.Contains(content, "//") || strings.Contains(content, "/*") {
		log.Printf("not formatting %s: it has comments", uri)
		return s.sendResult(id, []TextEdit{})
	}
	for _, err := range convertDiagnostics(ctx.Handler.Errors(), uriToPath(uri)) {
		if code, _ := err.Code.(string); strings.HasPrefix(code, "P") {
			log.Printf("not formatting %s: it has syntax errors", uri)
			return s.sendResult(id, []TextEdit{})
		}
	}

	formatted := prettyprinter.Print(m.AST)
	if formatted == content {
		return s.sendResult(id, []TextEdit{})
	}
	lastLine := strings.Count(content, "\n")
	edit := TextEdit{
		Range: Range{
			Start: Position{Line: 0, Character: 0},
			End:   Position{Line: lastLine, Character: len(getLine(content, lastLine))},
		},
		NewText: formatted,
	}
	return s.sendResult(id, []TextEdit{edit})
}
