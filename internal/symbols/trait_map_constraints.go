package symbols

import (
	"fmt"
	"strings"

	"github.com/funvibe/traitmap/internal/ast"
	"github.com/funvibe/traitmap/internal/diagnostics"
	"github.com/funvibe/traitmap/internal/source"
	"github.com/funvibe/traitmap/internal/typesystem"
)

// implementedTrait is a trait identity found for a type: its name and
// the Custom type carrying its arguments.
type implementedTrait struct {
	name   string
	typeID typesystem.TypeID
}

// CheckTraitConstraints verifies that typeID implements every trait in
// constraints, reporting one T004 per missing bound at accessSpan.
// Successful checks are remembered by this scope's trait map.
func (s *SymbolTable) CheckTraitConstraints(h *diagnostics.Handler, engines *Engines, typeID typesystem.TypeID, constraints []typesystem.TraitConstraint, accessSpan source.Span) error {
	te := engines.Types
	typeID = te.Dealias(typeID)
	if err := te.DecayNumeric(typeID, accessSpan); err != nil {
		h.Emit(err)
		return &diagnostics.ErrorEmitted{Count: 1}
	}
	if len(constraints) == 0 {
		return nil
	}

	tm := s.implementedTraits
	key := satisfiedKey(te, typeID, constraints)
	if _, ok := tm.satisfiedCache[key]; ok {
		return nil
	}

	err := h.Scope(func(h *diagnostics.Handler) error {
		implemented := s.implementedTraitsFor(engines, typeID)
		seen := make(map[string]bool, len(constraints))
		for _, c := range constraints {
			ck := constraintKey(te, c)
			if seen[ck] {
				continue
			}
			seen[ck] = true

			name := c.TraitName.Suffix
			if !hasTrait(te, implemented, c) {
				h.Emit(diagnostics.NewError(diagnostics.ErrT004, accessSpan,
					fmt.Sprintf("trait constraint not satisfied: type %q does not implement %q",
						te.Display(typeID), constraintDisplay(te, name, c.TypeArguments))))
			}
		}
		return nil
	})
	if err == nil {
		tm.satisfiedCache[key] = struct{}{}
	}
	return err
}

func hasTrait(te *typesystem.Engine, implemented []implementedTrait, c typesystem.TraitConstraint) bool {
	name := c.TraitName.Suffix
	required := te.NewCustom(ast.NewCallPath(name), c.TypeArguments)
	for _, it := range implemented {
		if it.name == name && te.Check(typesystem.ConstraintSubset, it.typeID, required) {
			return true
		}
	}
	return false
}

// boundsHold reports, without emitting diagnostics, whether the bounds of
// every generic slot of implType hold once it is instantiated for typeID.
func (s *SymbolTable) boundsHold(engines *Engines, implType, typeID typesystem.TypeID) bool {
	te := engines.Types
	subst := te.SubstFromSupersetAndSubset(implType, typeID)
	for g, t := range subst {
		ug, ok := te.Get(g).(typesystem.UnknownGeneric)
		if !ok || len(ug.TraitConstraints) == 0 {
			continue
		}
		cs, _ := te.ApplyConstraints(ug.TraitConstraints, subst)
		if !s.satisfies(engines, t, cs) {
			return false
		}
	}
	return true
}

func (s *SymbolTable) satisfies(engines *Engines, typeID typesystem.TypeID, constraints []typesystem.TraitConstraint) bool {
	te := engines.Types
	typeID = te.Dealias(typeID)
	if te.IsErrorRecovery(typeID) {
		return true
	}
	if g, ok := te.Get(typeID).(typesystem.UnknownGeneric); ok {
		for _, c := range constraints {
			if !boundedBy(te, g.TraitConstraints, c) {
				return false
			}
		}
		return true
	}
	implemented := s.scanImplementedTraits(engines, typeID)
	for _, c := range constraints {
		if !hasTrait(te, implemented, c) {
			return false
		}
	}
	return true
}

// boundedBy reports whether c is one of a generic's declared bounds.
func boundedBy(te *typesystem.Engine, bounds []typesystem.TraitConstraint, c typesystem.TraitConstraint) bool {
	for _, b := range bounds {
		if !b.TraitName.Equal(c.TraitName) || len(b.TypeArguments) != len(c.TypeArguments) {
			continue
		}
		same := true
		for i := range b.TypeArguments {
			if !te.Check(typesystem.Equality, b.TypeArguments[i], c.TypeArguments[i]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// implementedTraitsFor scans the whole scope chain for the traits
// implemented by typeID.
func (s *SymbolTable) implementedTraitsFor(engines *Engines, typeID typesystem.TypeID) []implementedTrait {
	s.implementedTraits.constraintScans++
	return s.scanImplementedTraits(engines, typeID)
}

func (s *SymbolTable) scanImplementedTraits(engines *Engines, typeID typesystem.TypeID) []implementedTrait {
	te := engines.Types
	var out []implementedTrait
	s.WalkScopeChain(func(scope *SymbolTable) bool {
		for _, e := range scope.implementedTraits.getImpls(te, typeID, true) {
			if e.Key.IsImplSelf || !te.Check(typesystem.ConstraintSubset, typeID, e.Key.TypeID) {
				continue
			}
			name := e.Key.Name.Path.Suffix
			out = append(out, implementedTrait{
				name:   name,
				typeID: te.NewCustom(ast.NewCallPath(name), e.Key.Name.Args),
			})
		}
		return true
	})
	return out
}

// TypeTrait pairs an implementing type with the trait it satisfies.
type TypeTrait struct {
	TypeID typesystem.TypeID
	Trait  string
}

// SatisfiedTypesForConstraints returns, for every impl visible from s
// whose type typeID coerces to, the constraints it satisfies.
func (s *SymbolTable) SatisfiedTypesForConstraints(engines *Engines, typeID typesystem.TypeID, constraints []typesystem.TraitConstraint) []TypeTrait {
	te := engines.Types
	typeID = te.Dealias(typeID)
	var out []TypeTrait
	s.WalkScopeChain(func(scope *SymbolTable) bool {
		for _, e := range scope.implementedTraits.getImpls(te, typeID, true) {
			for _, c := range constraints {
				if c.TraitName.Suffix != e.Key.Name.Path.Suffix {
					continue
				}
				implArgs := te.NewCustom(ast.NewCallPath(c.TraitName.Suffix), e.Key.Name.Args)
				wantArgs := te.NewCustom(ast.NewCallPath(c.TraitName.Suffix), c.TypeArguments)
				if te.Check(typesystem.ConstraintSubset, implArgs, wantArgs) && te.Check(typesystem.Coercion, typeID, e.Key.TypeID) {
					out = append(out, TypeTrait{
						TypeID: e.Key.TypeID,
						Trait:  constraintDisplay(te, c.TraitName.Suffix, e.Key.Name.Args),
					})
					break
				}
			}
		}
		return true
	})
	return out
}

func satisfiedKey(te *typesystem.Engine, typeID typesystem.TypeID, constraints []typesystem.TraitConstraint) string {
	var b strings.Builder
	b.WriteString(te.Key(typeID))
	for _, c := range constraints {
		b.WriteByte('|')
		b.WriteString(constraintKey(te, c))
	}
	return b.String()
}

func constraintKey(te *typesystem.Engine, c typesystem.TraitConstraint) string {
	var b strings.Builder
	b.WriteString(c.TraitName.String())
	b.WriteByte('<')
	for i, a := range c.TypeArguments {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(te.Key(a))
	}
	b.WriteByte('>')
	return b.String()
}

func constraintDisplay(te *typesystem.Engine, name string, args []typesystem.TypeID) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = te.Display(a)
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}
