package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/pipeline"
	"github.com/funvibe/traitmap/internal/symbols"
)

// symbolAt resolves the identifier under pos in the scope of the
// document's module.
func (s *LanguageServer) symbolAt(uri string, pos Position) (symbols.Symbol, *symbols.SymbolTable, *pipeline.PipelineContext, bool) {
	content, module, ctx, ok := s.document(uri)
	if !ok {
		return symbols.Symbol{}, nil, nil, false
	}
	word := getWordAtPosition(content, pos.Line, pos.Character)
	if word == "" {
		return symbols.Symbol{}, nil, nil, false
	}
	scope, ok := ctx.Scopes[module]
	if !ok {
		return symbols.Symbol{}, nil, nil, false
	}
	sym, ok := scope.Find(word)
	return sym, scope, ctx, ok
}

func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	sym, scope, ctx, ok := s.symbolAt(params.TextDocument.URI, params.Position)
	if !ok {
		return s.sendResult(id, nil)
	}
	return s.sendResult(id, Hover{
		Contents: MarkupContent{Kind: "markdown", Value: describeSymbol(ctx, scope, sym)},
	})
}

// describeSymbol renders the hover text: the declaration header and the
// traits or impls visible from scope.
func describeSymbol(ctx *pipeline.PipelineContext, scope *symbols.SymbolTable, sym symbols.Symbol) string {
	te := ctx.Engines.Types
	var b strings.Builder
	b.WriteString("```\n")
	switch sym.Kind {
	case symbols.TraitSymbol:
		fmt.Fprintf(&b, "trait %s::%s\n```\n", sym.OriginModule, sym.Name)
		spans := scope.ImplSpansForTraitName(ast.NewCallPath(sym.OriginModule, sym.Name))
		if len(spans) == 1 {
			b.WriteString("\n1 impl in scope:\n")
		} else {
			fmt.Fprintf(&b, "\n%d impls in scope", len(spans))
			if len(spans) > 0 {
				b.WriteString(":\n")
			}
		}
		locs := make([]string, len(spans))
		for i, sp := range spans {
			locs[i] = sp.PathWithLineCol()
		}
		sort.Strings(locs)
		for _, l := range locs {
			b.WriteString("- " + l + "\n")
		}
		return b.String()
	case symbols.AliasSymbol:
		fmt.Fprintf(&b, "type %s = %s\n```\n", sym.Name, te.Display(te.Dealias(sym.Type)))
	case symbols.StructSymbol, symbols.EnumSymbol:
		fmt.Fprintf(&b, "%s %s\n```\n", sym.Kind, te.Display(sym.Type))
	default:
		fmt.Fprintf(&b, "%s %s\n```\n", sym.Kind, sym.Name)
		return b.String()
	}

	seen := make(map[string]bool)
	var traits []string
	for _, n := range scope.TraitNamesForType(ctx.Engines, te.OpenParams(te.Dealias(sym.Type))) {
		d := n.Display(te)
		if !seen[d] {
			seen[d] = true
			traits = append(traits, d)
		}
	}
	sort.Strings(traits)
	if len(traits) == 0 {
		b.WriteString("\nNo trait impls in scope\n")
	} else {
		b.WriteString("\nImplements: " + strings.Join(traits, ", ") + "\n")
	}
	return b.String()
}
