package main

import (
	"sort"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/symbols"
)

func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
	sym, _, _, ok := s.symbolAt(params.TextDocument.URI, params.Position)
	if !ok || sym.Span.IsZero() {
		return s.sendResult(id, nil)
	}
	return s.sendResult(id, spanLocation(sym.Span))
}

// handleImplementation lists the impls of the trait, or of the type,
// under the cursor.
func (s *LanguageServer) handleImplementation(id interface{}, params ImplementationParams) error {
	sym, scope, ctx, ok := s.symbolAt(params.TextDocument.URI, params.Position)
	if !ok {
		return s.sendResult(id, nil)
	}

	var spans []source.Span
	switch sym.Kind {
	case symbols.TraitSymbol:
		spans = scope.ImplSpansForTraitName(ast.NewCallPath(sym.OriginModule, sym.Name))
	case symbols.StructSymbol, symbols.EnumSymbol:
		spans = scope.ImplSpansForDecl(ctx.Engines, sym.Decl)
	case symbols.AliasSymbol:
		spans = scope.ImplSpansForType(ctx.Engines, sym.Type)
	}

	locs := make([]Location, 0, len(spans))
	for _, sp := range spans {
		locs = append(locs, spanLocation(sp))
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].URI != locs[j].URI {
			return locs[i].URI < locs[j].URI
		}
		return locs[i].Range.Start.Line < locs[j].Range.Start.Line
	})
	return s.sendResult(id, locs)
}
