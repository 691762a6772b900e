package validator

import (
	"strings"

	"github.com/roach88/apimodel/internal/model"
)

// validateInheritance checks the inherits, implements and behaviors edges of
// a definition, then its attached behaviors. Generic arguments on these edges
// are not subject to the polymorphism guard.
func (s *session) validateInheritance(sc scope, b *model.BaseType) {
	if b.Inherits != nil {
		s.validateParent(sc.with("inherits"), *b.Inherits)
	}

	for _, impl := range b.Implements {
		isc := sc.with("implements")
		def, ok := s.validateParent(isc, impl)
		if ok && def.Kind() != model.KindInterface {
			s.errorf(isc, ErrKindMismatch, "'%s' has kind %s and cannot be implemented", impl.Type, def.Kind())
		}
	}

	for _, beh := range b.Behaviors {
		bsc := sc.with("behaviors")
		def, ok := s.validateBehaviorRef(sc, beh.Type)
		switch {
		case ok:
			s.checkArity(bsc, beh.Type, def, len(beh.Generics))
		case s.isType(beh.Type):
			s.errorf(bsc, ErrKindMismatch, "'%s' is not a behavior", beh.Type)
		default:
			s.errorf(bsc, ErrUnresolvedReference, "No behavior definition for '%s'", beh.Type)
		}
		for _, g := range beh.Generics {
			s.validateValue(bsc.unguarded(), g)
		}
	}

	s.validateAttachedBehaviors(sc, b)
}

// validateParent resolves an inherits or implements target in the ordinary
// type table and validates it.
func (s *session) validateParent(sc scope, edge model.Inherits) (model.TypeDefinition, bool) {
	def, ok := s.validateTypeRef(sc, edge.Type)
	switch {
	case ok:
		s.checkArity(sc, edge.Type, def, len(edge.Generics))
	case s.isBehavior(edge.Type):
		s.errorf(sc, ErrKindMismatch, "'%s' is a behavior and must be listed under behaviors", edge.Type)
	default:
		s.errorf(sc, ErrUnresolvedReference, "No type definition for '%s'", edge.Type)
	}
	for _, g := range edge.Generics {
		s.validateValue(sc.unguarded(), g)
	}
	return def, ok
}

func (s *session) isType(name model.TypeName) bool {
	_, ok := s.lookup(name)
	return ok
}

func (s *session) isBehavior(name model.TypeName) bool {
	_, ok := s.lookupBehavior(name)
	return ok
}

// validateAttachedBehaviors checks that every attached behavior is declared
// on the definition or one of its ancestors. A short name resolves through
// the registration table; a qualified "namespace:Name" resolves directly.
func (s *session) validateAttachedBehaviors(sc scope, b *model.BaseType) {
	if len(b.AttachedBehaviors) == 0 {
		return
	}
	visible := s.visibleBehaviors(b)
	asc := sc.with("attached_behaviors")

	for _, ref := range b.AttachedBehaviors {
		name, ok := s.resolveAttached(ref)
		if !ok {
			s.errorf(asc, ErrBehavior, "Unknown behavior '%s'", ref)
			continue
		}
		s.validateBehaviorRef(sc, name)
		if !visible[name] {
			s.errorf(asc, ErrBehavior, "Attached behavior '%s' is not implemented by '%s' or its ancestors", name, b.Name)
		}
	}
}

func (s *session) resolveAttached(ref string) (model.TypeName, bool) {
	if strings.Contains(ref, ":") {
		name, err := model.ParseTypeName(ref)
		if err != nil || !s.isBehavior(name) {
			return model.TypeName{}, false
		}
		return name, true
	}
	name, ok := s.behaviorByShortName[ref]
	return name, ok
}

// visibleBehaviors collects the behaviors declared on b and its ancestors.
func (s *session) visibleBehaviors(b *model.BaseType) map[model.TypeName]bool {
	visible := make(map[model.TypeName]bool)
	collect := func(b *model.BaseType) {
		for _, beh := range b.Behaviors {
			visible[beh.Type] = true
		}
	}
	collect(b)
	s.walkAncestors(b, func(def model.TypeDefinition) {
		if def.Base().Behavior {
			visible[def.Base().Name] = true
		}
		collect(def.Base())
	})
	return visible
}
