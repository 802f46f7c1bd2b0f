package modules

import (
	"strings"

	"github.com/funvibe/traitmap/internal/diagnostics"
)

// Order returns the parsed modules so that every module comes after the
// modules it imports. Imports of unknown modules are reported as C002 and
// ignored; every import cycle is reported once as C001 and broken at the
// edge that closes it. Modules without an AST are skipped.
func (p *Program) Order(h *diagnostics.Handler) []*Module {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var order []*Module
	var stack []string

	var visit func(m *Module)
	visit = func(m *Module) {
		state[m.Name] = visiting
		stack = append(stack, m.Name)
		for _, u := range m.AST.Uses() {
			dep := u.Module()
			if dep == m.Name {
				continue
			}
			target, ok := p.Modules[dep]
			if !ok || target.AST == nil {
				h.Errorf(diagnostics.ErrC002, u.Path.Span, "module '%s' not found", dep)
				continue
			}
			switch state[dep] {
			case unvisited:
				visit(target)
			case visiting:
				h.Emit(diagnostics.NewError(diagnostics.ErrC001, u.Path.Span,
					"module dependency cycle: "+cyclePath(stack, dep)))
			}
		}
		stack = stack[:len(stack)-1]
		state[m.Name] = done
		order = append(order, m)
	}

	for _, m := range p.Sorted() {
		if m.AST == nil || state[m.Name] != unvisited {
			continue
		}
		visit(m)
	}
	return order
}

func cyclePath(stack []string, dep string) string {
	start := 0
	for i, name := range stack {
		if name == dep {
			start = i
			break
		}
	}
	path := append(append([]string(nil), stack[start:]...), dep)
	return strings.Join(path, " -> ")
}
