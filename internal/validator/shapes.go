package validator

import (
	"fmt"

	"github.com/roach88/apimodel/internal/model"
)

// validateDefinition dispatches on the definition kind. The switch is
// exhaustive: an unknown implementation is a programming error.
func (s *session) validateDefinition(sc scope, def model.TypeDefinition) {
	s.checkDocURL(sc, def.Base().DocURL)

	switch d := def.(type) {
	case *model.Request:
		s.validateRequest(sc, d)
	case *model.Response:
		s.validateResponse(sc, d)
	case *model.Interface:
		s.validateInterface(sc, d)
	case *model.Enum:
		s.validateEnum(sc, d)
	case *model.TypeAlias:
		s.validateTypeAlias(sc, d)
	default:
		panic(fmt.Sprintf("validator: unknown definition kind %T", def))
	}
}

func (s *session) validateRequest(sc scope, d *model.Request) {
	s.validateInheritance(sc, &d.BaseType)
	// Path, query and body properties share one identifier space.
	set := s.inheritedProperties(&d.BaseType)
	s.validateProperties(sc.with("path"), d.Path, set)
	s.validateProperties(sc.with("query"), d.Query, set)
	s.validateBody(sc.with("body"), &d.BaseType, d.Body, set, s.policy.RequestBase)
}

func (s *session) validateResponse(sc scope, d *model.Response) {
	s.validateInheritance(sc, &d.BaseType)
	inherited := s.inheritedProperties(&d.BaseType)
	s.validateBody(sc.with("body"), &d.BaseType, d.Body, inherited, s.policy.ResponseBase)
}

// validateBody checks a request or response body. A body that is not a flat
// property list may only inherit from the root base type: inheriting concrete
// fields next to a non-object body cannot be serialized.
func (s *session) validateBody(sc scope, b *model.BaseType, body model.Body, set propertySet, root model.TypeName) {
	if body.Kind != model.BodyProperties && b.Inherits != nil && b.Inherits.Type != root {
		s.errorf(sc, ErrInheritedBody, "A body of kind '%s' can only be combined with inheriting from '%s', not '%s'",
			bodyKind(body), root, b.Inherits.Type)
	}

	switch body.Kind {
	case model.BodyProperties:
		s.validateProperties(sc, body.Properties, set)
	case model.BodyValue:
		s.validateValue(sc.guarded(), body.Value)
		s.checkJSONEvents(sc, body.Value)
	case model.BodyNone, "":
	default:
		panic(fmt.Sprintf("validator: unknown body kind %q", body.Kind))
	}
}

func bodyKind(body model.Body) model.BodyKind {
	if body.Kind == "" {
		return model.BodyNone
	}
	return body.Kind
}

func (s *session) validateInterface(sc scope, d *model.Interface) {
	s.validateInheritance(sc, &d.BaseType)
	s.validateProperties(sc, d.Properties, s.inheritedProperties(&d.BaseType))
	if d.Variants != nil {
		s.validateContainer(sc, d)
	}
}

// validateContainer enforces the variant container policy: a single variant
// property must be required, several variant properties must all be optional.
func (s *session) validateContainer(sc scope, d *model.Interface) {
	var variants []model.Property
	for _, p := range d.Properties {
		if !p.ContainerProperty {
			variants = append(variants, p)
		}
	}

	switch len(variants) {
	case 0:
		s.errorf(sc, ErrVariantContainer, "Variant container '%s' declares no variant properties", d.Name)
	case 1:
		if !variants[0].Required {
			s.errorf(sc.with(variants[0].Name), ErrVariantContainer,
				"Single-variant container property '%s' must be required", variants[0].Name)
		}
	default:
		for _, p := range variants {
			if p.Required {
				s.errorf(sc.with(p.Name), ErrVariantContainer,
					"Multi-variant container property '%s' must be optional", p.Name)
			}
		}
	}
}

// validateEnum checks member uniqueness only.
func (s *session) validateEnum(sc scope, d *model.Enum) {
	keys := make(map[string]bool)
	names := make(map[string]bool)
	for _, m := range d.Members {
		key := s.fold.String(m.Key())
		if keys[key] {
			s.errorf(sc, ErrDuplicate, "Duplicate enum member identifier '%s'", m.Key())
		}
		keys[key] = true
		for _, n := range append([]string{m.Name}, m.Aliases...) {
			if names[n] {
				s.errorf(sc, ErrDuplicate, "Duplicate enum member name or alias '%s'", n)
			}
			names[n] = true
		}
	}
}

func (s *session) validateTypeAlias(sc scope, d *model.TypeAlias) {
	if d.Variants == nil {
		s.validateValue(sc.guarded(), d.Type)
		s.checkJSONEvents(sc, d.Type)
		return
	}

	if len(d.Generics) > 0 {
		s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' cannot have generic parameters", d.Name)
	}
	union, ok := d.Type.(*model.UnionOf)
	if !ok {
		s.errorf(sc, ErrTaggedUnion, "Tagged union '%s' must be a union_of, got %s", d.Name, model.String(d.Type))
		s.validateValue(sc.guarded(), d.Type)
		return
	}
	s.validateTaggedUnion(sc, d, union)
}

// propertySet is the identifier and name index of a property collection.
// ids are case-folded; names and aliases are case-sensitive.
type propertySet struct {
	ids   map[string]bool
	names map[string]bool
}

func newPropertySet() propertySet {
	return propertySet{ids: make(map[string]bool), names: make(map[string]bool)}
}

func (s *session) addProperties(set propertySet, props []model.Property) {
	for _, p := range props {
		set.ids[s.fold.String(p.Key())] = true
		set.names[p.Name] = true
		for _, a := range p.Aliases {
			set.names[a] = true
		}
	}
}

// inheritedProperties collects the properties of every ancestor reachable
// through inherits, implements and behaviors. The walk is cycle-safe.
func (s *session) inheritedProperties(b *model.BaseType) propertySet {
	set := newPropertySet()
	s.walkAncestors(b, func(def model.TypeDefinition) {
		s.addProperties(set, model.OwnProperties(def))
	})
	return set
}

// walkAncestors calls fn once for every resolvable ancestor of b.
func (s *session) walkAncestors(b *model.BaseType, fn func(model.TypeDefinition)) {
	seen := map[model.TypeName]bool{b.Name: true}
	var walk func(*model.BaseType)
	walk = func(b *model.BaseType) {
		visit := func(name model.TypeName, behavior bool) {
			if seen[name] {
				return
			}
			seen[name] = true
			def, ok := s.lookup(name)
			if behavior {
				def, ok = s.lookupBehavior(name)
			}
			if !ok {
				return
			}
			fn(def)
			walk(def.Base())
		}
		if b.Inherits != nil {
			visit(b.Inherits.Type, false)
		}
		for _, impl := range b.Implements {
			visit(impl.Type, false)
		}
		for _, beh := range b.Behaviors {
			visit(beh.Type, true)
		}
	}
	walk(b)
}

// validateProperties checks uniqueness against set, adds each property to
// it and validates the property types.
func (s *session) validateProperties(sc scope, props []model.Property, set propertySet) {
	for _, p := range props {
		psc := sc.with(p.Name)

		id := s.fold.String(p.Key())
		if set.ids[id] {
			s.errorf(psc, ErrDuplicate, "Duplicate property identifier '%s'", p.Key())
		}
		set.ids[id] = true

		for _, n := range append([]string{p.Name}, p.Aliases...) {
			if set.names[n] {
				s.errorf(psc, ErrDuplicate, "Duplicate property name or alias '%s'", n)
			}
			set.names[n] = true
		}

		s.validateValue(psc.guarded(), p.Type)
		s.checkJSONEvents(psc, p.Type)
	}
}
