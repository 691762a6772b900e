package validator

import (
	"github.com/roach88/apimodel/internal/model"
)

// validateTaggedUnion checks the discriminant contract of a type alias
// declaring variants. Members are flattened through nested union aliases.
func (s *session) validateTaggedUnion(sc scope, d *model.TypeAlias, union *model.UnionOf) {
	v := d.Variants
	if v.Kind == model.InternalTag && v.Tag == "" {
		s.errorf(sc, ErrTaggedUnion, "Internal tag of '%s' does not name a tag property", d.Name)
	}

	seen := map[model.TypeName]bool{d.Name: true}
	for _, member := range s.flattenUnion(sc, d, union, seen) {
		s.validateValue(sc.guarded(), member)

		inst, ok := member.(*model.InstanceOf)
		if !ok {
			s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' member %s must be a type reference", d.Name, model.String(member))
			continue
		}
		def, ok := s.lookup(inst.Type)
		if !ok {
			continue
		}

		switch v.Kind {
		case model.ExternalTag:
			if def.Base().VariantName == "" {
				s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' member '%s' has no variant name", d.Name, inst.Type)
			}
		case model.InternalTag:
			iface, ok := def.(*model.Interface)
			if !ok {
				s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' member '%s' must be an interface, got %s",
					d.Name, inst.Type, def.Kind())
				continue
			}
			if v.Tag != "" && !s.hasProperty(iface, v.Tag) {
				s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' member '%s' does not declare tag property '%s'",
					d.Name, inst.Type, v.Tag)
			}
		default:
			s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' has unknown variants kind '%s'", d.Name, v.Kind)
			return
		}
	}
}

// flattenUnion expands inline unions and references to untagged union
// aliases. Expanded aliases are marked reached without being validated as
// members themselves. seen holds the aliases on the current expansion path,
// so an alias shared by sibling branches is expanded once per branch.
func (s *session) flattenUnion(sc scope, d *model.TypeAlias, union *model.UnionOf, seen map[model.TypeName]bool) []model.ValueOf {
	var members []model.ValueOf
	for _, item := range union.Items {
		switch item := item.(type) {
		case *model.UnionOf:
			members = append(members, s.flattenUnion(sc, d, item, seen)...)
			continue
		case *model.InstanceOf:
			nested, ok := s.unionAlias(item.Type)
			if !ok {
				break
			}
			if seen[item.Type] {
				s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' nests itself through '%s'", d.Name, item.Type)
				continue
			}
			seen[item.Type] = true
			if s.visitType(item.Type) {
				s.checkDocURL(sc.forType(nested), nested.DocURL)
				s.flattenedOnly[item.Type] = true
			}
			members = append(members, s.flattenUnion(sc, d, nested.Type.(*model.UnionOf), seen)...)
			delete(seen, item.Type)
			continue
		}
		members = append(members, item)
	}
	return members
}

// unionAlias returns the alias behind name if it is an untagged union alias.
func (s *session) unionAlias(name model.TypeName) (*model.TypeAlias, bool) {
	def, ok := s.lookup(name)
	if !ok {
		return nil, false
	}
	alias, ok := def.(*model.TypeAlias)
	if !ok || alias.Variants != nil || len(alias.Generics) > 0 {
		return nil, false
	}
	if _, ok := alias.Type.(*model.UnionOf); !ok {
		return nil, false
	}
	return alias, true
}

// hasProperty reports whether an interface or one of its ancestors declares
// a property with the given name.
func (s *session) hasProperty(iface *model.Interface, name string) bool {
	found := false
	check := func(props []model.Property) {
		for _, p := range props {
			if p.Name == name {
				found = true
			}
		}
	}
	check(iface.Properties)
	s.walkAncestors(&iface.BaseType, func(def model.TypeDefinition) {
		check(model.OwnProperties(def))
	})
	return found
}
