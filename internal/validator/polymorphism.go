package validator

import (
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/apimodel/internal/model"
)

// indexHierarchy records every inherits/implements target as a parent and
// maps it to its direct subtypes.
func (s *session) indexHierarchy() {
	add := func(parent, child model.TypeName) {
		s.parents[parent] = true
		if !slices.Contains(s.children[parent], child) {
			s.children[parent] = append(s.children[parent], child)
		}
	}
	for _, table := range []map[model.TypeName]model.TypeDefinition{s.types, s.behaviors} {
		for name, def := range table {
			b := def.Base()
			if b.Inherits != nil {
				add(b.Inherits.Type, name)
			}
			for _, impl := range b.Implements {
				add(impl.Type, name)
			}
		}
	}
}

// guardLeaf flags a direct reference to a parent type unless an exemption applies.
func (s *session) guardLeaf(sc scope, name model.TypeName) {
	if !s.parents[name] {
		return
	}
	if reason, ok := s.policy.Exemption(name); ok {
		s.log.Debug("parent reference exempted", "type", name, "reason", reason)
		return
	}
	if s.isVestigial(name) {
		return
	}
	s.errorf(sc, ErrPolymorphism,
		"'%s' is a base type of %s and cannot be referenced directly; use a concrete type or a tagged union",
		name, describeChildren(s.children[name]))
}

// isVestigial reports whether a parent has exactly one concrete subtype that
// declares no properties of its own.
func (s *session) isVestigial(name model.TypeName) bool {
	kids := s.children[name]
	if len(kids) != 1 || s.parents[kids[0]] {
		return false
	}
	def, ok := s.lookupAny(kids[0])
	return ok && len(model.OwnProperties(def)) == 0
}

func describeChildren(kids []model.TypeName) string {
	sorted := slices.Clone(kids)
	slices.SortFunc(sorted, func(a, b model.TypeName) int {
		return compareNames(a, b)
	})
	switch len(sorted) {
	case 0:
		return "no types"
	case 1:
		return "'" + sorted[0].String() + "'"
	default:
		return "'" + sorted[0].String() + "' and " + strconv.Itoa(len(sorted)-1) + " more"
	}
}

func compareNames(a, b model.TypeName) int {
	return strings.Compare(a.String(), b.String())
}
