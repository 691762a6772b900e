package validator

import (
	"io"
	"log/slog"

	"github.com/roach88/apimodel/internal/model"
)

// Options configures one validation pass.
type Options struct {
	Policy Policy

	// FailFast makes Validate return a *FailedError after the full pass when
	// any error was collected.
	FailFast bool

	// JSONEvents enables the advisory union ambiguity check.
	JSONEvents bool

	// Routing optionally maps endpoint names to URL templates from an
	// independent routing spec, used to double-check path placeholders.
	Routing map[string][]string

	Logger *slog.Logger
}

// DefaultOptions returns the default policy with the JSON event check enabled.
func DefaultOptions() Options {
	return Options{Policy: DefaultPolicy(), JSONEvents: true}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Stats summarizes reachability.
type Stats struct {
	Total   int `json:"total"`
	Visited int `json:"visited"`
	Pruned  int `json:"pruned"`
}

// Result is the outcome of a validation pass.
type Result struct {
	// Model is the input with unreached types and behaviors removed.
	Model  *model.Model
	Report *Report
	Stats  Stats
	// Pruned lists the dropped definitions in input order.
	Pruned []model.TypeName
}

// Validate checks a model and returns the pruned model with the error report.
//
// The pass always completes. In fail-fast mode a *FailedError is returned
// together with the Result when the report holds errors; warnings never fail.
// The input model is not modified.
func Validate(m *model.Model, opts Options) (*Result, error) {
	s := newSession(m, opts)
	s.log.Debug("validation started", "types", len(s.types), "behaviors", len(s.behaviors), "endpoints", len(m.Endpoints))

	s.checkInheritanceCycles()

	for _, ep := range s.orderEndpoints(m.Endpoints) {
		s.validateEndpoint(ep)
	}
	s.validateRoots()

	result := s.prune(m)
	s.log.Debug("validation finished",
		"visited", result.Stats.Visited,
		"pruned", result.Stats.Pruned,
		"errors", result.Report.ErrorCount(),
		"warnings", result.Report.WarningCount())

	if opts.FailFast && result.Report.ErrorCount() > 0 {
		return result, &FailedError{Errors: result.Report.ErrorCount()}
	}
	return result, nil
}

// validateRoots validates the policy roots under the general context. A root
// missing from the model is skipped: small models need not declare one.
func (s *session) validateRoots() {
	for _, root := range s.policy.Roots {
		if _, ok := s.validateTypeRef(scope{}, root); !ok {
			s.log.Debug("root type not in model", "type", root)
		}
	}
}

// prune keeps reached definitions in input order. Behaviors are re-attached
// only if reached.
func (s *session) prune(m *model.Model) *Result {
	out := &model.Model{Endpoints: m.Endpoints}
	var pruned []model.TypeName
	for _, def := range m.Types {
		b := def.Base()
		reached := s.visitedTypes[b.Name]
		table := s.types
		if b.Behavior {
			reached = s.visitedBehaviors[b.Name]
			table = s.behaviors
		}
		// Duplicates were ignored at registration; only the registered one survives.
		if reached && table[b.Name] == def {
			out.Types = append(out.Types, def)
		} else {
			pruned = append(pruned, b.Name)
		}
	}
	return &Result{
		Model:  out,
		Report: s.report,
		Pruned: pruned,
		Stats: Stats{
			Total:   len(m.Types),
			Visited: len(out.Types),
			Pruned:  len(pruned),
		},
	}
}
