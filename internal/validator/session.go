package validator

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/apimodel/internal/model"
)

// builtinNamespace holds the primitive names that resolve without definitions.
const builtinNamespace = "_builtins"

var builtins = map[model.TypeName]JSONEvent{
	tn(builtinNamespace, "string"):  EventString,
	tn(builtinNamespace, "boolean"): EventBoolean,
	tn(builtinNamespace, "number"):  EventNumber,
	tn(builtinNamespace, "null"):    EventNull,
}

func isBuiltin(name model.TypeName) bool {
	_, ok := builtins[name]
	return ok
}

// scope is the attribution context threaded through every check.
type scope struct {
	endpoint string
	side     Side
	path     []string
	// open holds the generic parameters of the enclosing definition.
	open map[model.TypeName]bool
	// guard enables the leaf-type check on instance_of references.
	guard bool
}

func (sc scope) with(segment string) scope {
	path := make([]string, len(sc.path), len(sc.path)+1)
	copy(path, sc.path)
	sc.path = append(path, segment)
	return sc
}

func (sc scope) guarded() scope {
	sc.guard = true
	return sc
}

func (sc scope) unguarded() scope {
	sc.guard = false
	return sc
}

// forType starts a fresh path at a definition, keeping endpoint attribution.
func (sc scope) forType(def model.TypeDefinition) scope {
	b := def.Base()
	open := make(map[model.TypeName]bool, len(b.Generics))
	for _, g := range b.Generics {
		open[g] = true
	}
	return scope{
		endpoint: sc.endpoint,
		side:     sc.side,
		path:     []string{b.Name.String()},
		open:     open,
	}
}

// session is the state of one validation pass: the resolver tables, the
// reachability tracker and the error accumulator.
type session struct {
	opts   Options
	policy Policy
	log    *slog.Logger
	fold   cases.Caser
	report *Report

	types               map[model.TypeName]model.TypeDefinition
	behaviors           map[model.TypeName]model.TypeDefinition
	behaviorByShortName map[string]model.TypeName

	visitedTypes     map[model.TypeName]bool
	visitedBehaviors map[model.TypeName]bool

	// flattenedOnly holds union aliases reached only through tagged-union
	// flattening. Their JSON event check runs on the first plain reference.
	flattenedOnly map[model.TypeName]bool

	// parents are inherits/implements targets; children maps each to its subtypes.
	parents  map[model.TypeName]bool
	children map[model.TypeName][]model.TypeName
}

func newSession(m *model.Model, opts Options) *session {
	s := &session{
		opts:                opts,
		policy:              opts.Policy,
		log:                 opts.logger(),
		fold:                cases.Fold(),
		report:              newReport(),
		types:               make(map[model.TypeName]model.TypeDefinition),
		behaviors:           make(map[model.TypeName]model.TypeDefinition),
		behaviorByShortName: make(map[string]model.TypeName),
		visitedTypes:        make(map[model.TypeName]bool),
		visitedBehaviors:    make(map[model.TypeName]bool),
		flattenedOnly:       make(map[model.TypeName]bool),
		parents:             make(map[model.TypeName]bool),
		children:            make(map[model.TypeName][]model.TypeName),
	}
	s.register(m.Types)
	s.indexHierarchy()
	return s
}

// register builds the type and behavior tables. A second definition with an
// already registered name is reported and ignored; behavior short names use
// the last registration.
func (s *session) register(defs []model.TypeDefinition) {
	general := scope{}
	for _, def := range defs {
		name := def.Base().Name
		table := s.types
		if def.Base().Behavior {
			table = s.behaviors
		}
		if _, exists := table[name]; exists {
			s.errorf(general, ErrDuplicate, "Duplicate definition of '%s'", name)
			continue
		}
		table[name] = def

		if def.Base().Behavior {
			if prior, ok := s.behaviorByShortName[name.Name]; ok {
				s.errorf(general, ErrDuplicate, "Behavior short name '%s' is ambiguous between '%s' and '%s'; '%s' is used",
					name.Name, prior, name, name)
			}
			s.behaviorByShortName[name.Name] = name
		}
	}
}

func (s *session) errorf(sc scope, code, format string, args ...any) {
	s.emit(sc, code, SeverityError, fmt.Sprintf(format, args...))
}

func (s *session) warnf(sc scope, code, format string, args ...any) {
	s.emit(sc, code, SeverityWarning, fmt.Sprintf(format, args...))
}

func (s *session) emit(sc scope, code string, severity Severity, message string) {
	e := ValidationError{
		Code:     code,
		Severity: severity,
		Endpoint: sc.endpoint,
		Side:     sc.side,
		Path:     strings.Join(sc.path, " / "),
		Message:  message,
	}
	s.log.Debug("model issue", "code", code, "endpoint", e.Endpoint, "side", e.Side, "path", e.Path, "message", message)
	s.report.add(e)
}

// lookup resolves an ordinary type. It never falls back to behaviors.
func (s *session) lookup(name model.TypeName) (model.TypeDefinition, bool) {
	def, ok := s.types[name]
	return def, ok
}

// lookupBehavior resolves a behavior. It never falls back to ordinary types.
func (s *session) lookupBehavior(name model.TypeName) (model.TypeDefinition, bool) {
	def, ok := s.behaviors[name]
	return def, ok
}

// lookupAny resolves a name in the type table, then in the behavior table.
// Only ancestor walks use it: an edge already checked for the right table.
func (s *session) lookupAny(name model.TypeName) (model.TypeDefinition, bool) {
	if def, ok := s.types[name]; ok {
		return def, true
	}
	return s.lookupBehavior(name)
}

// visitType marks a type reached and reports whether it was new.
func (s *session) visitType(name model.TypeName) bool {
	if s.visitedTypes[name] {
		return false
	}
	s.visitedTypes[name] = true
	return true
}

// visitBehavior marks a behavior reached and reports whether it was new.
func (s *session) visitBehavior(name model.TypeName) bool {
	if s.visitedBehaviors[name] {
		return false
	}
	s.visitedBehaviors[name] = true
	return true
}

// validateTypeRef validates a resolved ordinary type the first time it is reached.
func (s *session) validateTypeRef(sc scope, name model.TypeName) (model.TypeDefinition, bool) {
	def, ok := s.lookup(name)
	if !ok {
		return nil, false
	}
	if s.visitType(name) {
		s.validateDefinition(sc.forType(def), def)
	} else if s.flattenedOnly[name] {
		delete(s.flattenedOnly, name)
		if alias, ok := def.(*model.TypeAlias); ok {
			s.checkJSONEvents(sc.forType(def), alias.Type)
		}
	}
	return def, true
}

// validateBehaviorRef is validateTypeRef for the behavior table.
func (s *session) validateBehaviorRef(sc scope, name model.TypeName) (model.TypeDefinition, bool) {
	def, ok := s.lookupBehavior(name)
	if !ok {
		return nil, false
	}
	if s.visitBehavior(name) {
		s.validateDefinition(sc.forType(def), def)
	}
	return def, true
}

// genericCount is the number of generic arguments a reference must supply.
func genericCount(def model.TypeDefinition) int {
	if def.Kind() == model.KindEnum {
		return 0
	}
	return len(def.Base().Generics)
}

func (s *session) checkArity(sc scope, name model.TypeName, def model.TypeDefinition, got int) {
	if want := genericCount(def); want != got {
		s.errorf(sc, ErrGenericArity, "Expected %d generic parameters for '%s' but got %d", want, name, got)
	}
}

func (s *session) checkDocURL(sc scope, raw string) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.errorf(sc, ErrDocURL, "Malformed documentation url '%s'", raw)
	}
}
