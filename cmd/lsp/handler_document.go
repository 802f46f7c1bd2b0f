package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/funvibe/traitmap/internal/analyzer"
	"github.com/funvibe/traitmap/internal/lexer"
	"github.com/funvibe/traitmap/internal/parser"
	"github.com/funvibe/traitmap/internal/pipeline"
)

// DocumentState stores the state of a single open document
type DocumentState struct {
	Content string                    // Current file content
	Module  string                    // Module name of the document
	Context *pipeline.PipelineContext // Result of the last analysis
	Mu      sync.RWMutex              // Mutex to protect access to state
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := &DocumentState{Content: params.TextDocument.Text}
	doc.Context, doc.Module = s.analyzeDocument(doc.Content, uri)

	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()

	log.Printf("Opened file: %s (module %s)", uri, doc.Module)
	return s.publishDiagnostics(uri, doc.Context)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	// Full content sync only
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	content := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.mu.RLock()
	doc, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("document %s not found", uri)
	}

	ctx, module := s.analyzeDocument(content, uri)
	doc.Mu.Lock()
	doc.Content = content
	doc.Context = ctx
	doc.Module = module
	doc.Mu.Unlock()

	return s.publishDiagnostics(uri, ctx)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	log.Printf("Closed file: %s", params.TextDocument.URI)
	return nil
}

// analyzeDocument checks the document together with the other modules of
// its directory and returns the result and the document's module name.
func (s *LanguageServer) analyzeDocument(content, uri string) (*pipeline.PipelineContext, string) {
	prog, project, module := loadWorkspace(uriToPath(uri), content)
	ctx := pipeline.NewPipelineContext(prog, project)
	ctx.Logger = log.Default()
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
	).Run(ctx)
	return ctx, module
}

// document returns the state of uri and a consistent snapshot of it.
func (s *LanguageServer) document(uri string) (content, module string, ctx *pipeline.PipelineContext, ok bool) {
	s.mu.RLock()
	doc, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return "", "", nil, false
	}
	doc.Mu.RLock()
	defer doc.Mu.RUnlock()
	return doc.Content, doc.Module, doc.Context, doc.Context != nil
}
