package main

import (
	"log"
)

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = uriToPath(*params.RootURI)
	} else if params.RootPath != nil && *params.RootPath != "" {
		s.rootPath = *params.RootPath
	}
	log.Printf("initialize, root %q", s.rootPath)

	return s.sendResult(id, InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:           1, // Full sync
			HoverProvider:              true,
			DefinitionProvider:         true,
			ImplementationProvider:     true,
			DocumentFormattingProvider: true,
		},
	})
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	s.shutdown = true
	return s.sendResult(id, nil)
}
