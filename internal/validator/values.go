package validator

import (
	"fmt"

	"github.com/roach88/apimodel/internal/model"
)

// validateValue walks a value expression. Every instance_of reaching a
// definition validates that definition once.
func (s *session) validateValue(sc scope, v model.ValueOf) {
	switch v := v.(type) {
	case nil:
		s.errorf(sc, ErrUnresolvedReference, "Missing value type")
	case *model.InstanceOf:
		s.validateInstance(sc, v)
	case *model.ArrayOf:
		s.validateValue(sc, v.Value)
	case *model.UnionOf:
		for _, item := range v.Items {
			s.validateValue(sc, item)
		}
	case *model.DictionaryOf:
		s.validateValue(sc, v.Key)
		s.validateValue(sc, v.Value)
	case *model.UserDefinedValue, *model.LiteralValue:
	default:
		panic(fmt.Sprintf("validator: unknown value kind %T", v))
	}
}

func (s *session) validateInstance(sc scope, inst *model.InstanceOf) {
	name := inst.Type

	switch {
	case sc.open[name]:
		if len(inst.Generics) > 0 {
			s.errorf(sc, ErrGenericArity, "Generic parameter '%s' cannot take generic arguments", name)
		}
		return
	case isBuiltin(name):
		if len(inst.Generics) > 0 {
			s.errorf(sc, ErrGenericArity, "Expected 0 generic parameters for '%s' but got %d", name, len(inst.Generics))
		}
		return
	}

	if _, ok := s.lookup(name); !ok {
		if _, isBehavior := s.lookupBehavior(name); isBehavior {
			s.errorf(sc, ErrKindMismatch, "'%s' is a behavior and cannot be used as a value type", name)
		} else if _, scalar := s.policy.ScalarEvents[name]; !scalar {
			s.errorf(sc, ErrUnresolvedReference, "No type definition for '%s'", name)
		}
		for _, g := range inst.Generics {
			s.validateValue(sc, g)
		}
		return
	}

	def, _ := s.validateTypeRef(sc, name)
	s.checkArity(sc, name, def, len(inst.Generics))
	if sc.guard {
		s.guardLeaf(sc, name)
	}
	for _, g := range inst.Generics {
		s.validateValue(sc, g)
	}
}
