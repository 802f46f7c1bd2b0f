package symbols

import "testing"

func TestSymbolTableScopes(t *testing.T) {
	root := NewSymbolTable("main")
	root.Define(Symbol{Name: "Dbl", Kind: TraitSymbol})
	inner := NewEnclosedSymbolTable(root, ScopeImpl)
	inner.Define(Symbol{Name: "T", Kind: TypeParamSymbol})

	if sym, ok := inner.Find("Dbl"); !ok || sym.Kind != TraitSymbol || sym.OriginModule != "main" {
		t.Errorf("expected Dbl from the outer scope, got %+v, %v", sym, ok)
	}
	if _, ok := inner.FindLocal("Dbl"); ok {
		t.Error("FindLocal must not look outward")
	}
	if _, ok := root.Find("T"); ok {
		t.Error("outer scope must not see inner symbols")
	}
	if !TypeParamSymbol.IsType() || TraitSymbol.IsType() {
		t.Error("unexpected IsType results")
	}

	var visited []ScopeType
	inner.WalkScopeChain(func(s *SymbolTable) bool {
		visited = append(visited, s.ScopeType())
		return true
	})
	if len(visited) != 2 || visited[0] != ScopeImpl || visited[1] != ScopeModule {
		t.Errorf("unexpected walk order %v", visited)
	}

	n := 0
	inner.WalkScopeChain(func(*SymbolTable) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("walk did not stop early: %d", n)
	}
}
