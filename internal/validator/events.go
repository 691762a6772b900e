package validator

import (
	"fmt"
	"strings"

	"github.com/roach88/apimodel/internal/model"
)

// JSONEvent is the first JSON token a value can deserialize from.
type JSONEvent string

// JSON events.
const (
	EventString  JSONEvent = "string"
	EventNumber  JSONEvent = "number"
	EventBoolean JSONEvent = "boolean"
	EventNull    JSONEvent = "null"
	EventObject  JSONEvent = "object"
	EventArray   JSONEvent = "array"
)

var eventOrder = []JSONEvent{EventString, EventNumber, EventBoolean, EventNull, EventObject, EventArray}

// ParseJSONEvent validates an event name read from configuration.
func ParseJSONEvent(s string) (JSONEvent, error) {
	for _, e := range eventOrder {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown JSON event %q", s)
}

type eventSet uint8

func eventBit(e JSONEvent) eventSet {
	for i, o := range eventOrder {
		if o == e {
			return 1 << i
		}
	}
	return 0
}

func (es eventSet) String() string {
	var names []string
	for i, e := range eventOrder {
		if es&(1<<i) != 0 {
			names = append(names, string(e))
		}
	}
	return strings.Join(names, ", ")
}

// jsonEvents computes the events a value may start with. It reports false
// when the value is opaque: open generics, user-defined values, unresolved
// names and alias cycles.
func (s *session) jsonEvents(sc scope, v model.ValueOf, seen map[model.TypeName]bool) (eventSet, bool) {
	switch v := v.(type) {
	case *model.ArrayOf:
		return eventBit(EventArray), true
	case *model.DictionaryOf:
		return eventBit(EventObject), true
	case *model.LiteralValue:
		switch v.Value.(type) {
		case string:
			return eventBit(EventString), true
		case bool:
			return eventBit(EventBoolean), true
		case nil:
			return eventBit(EventNull), true
		default:
			return eventBit(EventNumber), true
		}
	case *model.UnionOf:
		var all eventSet
		for _, item := range v.Items {
			es, ok := s.jsonEvents(sc, item, seen)
			if !ok {
				return 0, false
			}
			all |= es
		}
		return all, true
	case *model.InstanceOf:
		return s.instanceEvents(sc, v.Type, seen)
	default:
		return 0, false
	}
}

func (s *session) instanceEvents(sc scope, name model.TypeName, seen map[model.TypeName]bool) (eventSet, bool) {
	if sc.open[name] {
		return 0, false
	}
	if e, ok := builtins[name]; ok {
		return eventBit(e), true
	}
	if events, ok := s.policy.ScalarEvents[name]; ok {
		var es eventSet
		for _, e := range events {
			es |= eventBit(e)
		}
		return es, true
	}

	def, ok := s.lookup(name)
	if !ok {
		return 0, false
	}
	switch d := def.(type) {
	case *model.Enum:
		return eventBit(EventString), true
	case *model.TypeAlias:
		if d.Variants != nil {
			return eventBit(EventObject), true
		}
		if seen[name] || len(d.Generics) > 0 {
			return 0, false
		}
		seen[name] = true
		defer delete(seen, name)
		return s.jsonEvents(sc.forType(d), d.Type, seen)
	default:
		return eventBit(EventObject), true
	}
}

// checkJSONEvents warns about untagged unions whose members share a JSON
// event, which makes them undecidable on the first token. Literal members are
// told apart by value and are not compared.
func (s *session) checkJSONEvents(sc scope, v model.ValueOf) {
	if !s.opts.JSONEvents {
		return
	}
	switch v := v.(type) {
	case *model.ArrayOf:
		s.checkJSONEvents(sc, v.Value)
	case *model.DictionaryOf:
		s.checkJSONEvents(sc, v.Value)
	case *model.InstanceOf:
		for _, g := range v.Generics {
			s.checkJSONEvents(sc, g)
		}
	case *model.UnionOf:
		s.checkUnionEvents(sc, v)
		for _, item := range v.Items {
			s.checkJSONEvents(sc, item)
		}
	}
}

func (s *session) checkUnionEvents(sc scope, u *model.UnionOf) {
	type member struct {
		value  model.ValueOf
		events eventSet
	}
	var members []member
	for _, item := range u.Items {
		if _, literal := item.(*model.LiteralValue); literal {
			continue
		}
		es, ok := s.jsonEvents(sc, item, make(map[model.TypeName]bool))
		if !ok {
			return
		}
		members = append(members, member{item, es})
	}

	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if shared := members[i].events & members[j].events; shared != 0 {
				s.warnf(sc, ErrAmbiguousUnion, "Ambiguous union: '%s' and '%s' both deserialize from %s",
					model.String(members[i].value), model.String(members[j].value), shared)
				return
			}
		}
	}
}
