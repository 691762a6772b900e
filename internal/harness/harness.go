package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/apimodel/internal/compiler"
	"github.com/roach88/apimodel/internal/config"
	"github.com/roach88/apimodel/internal/routing"
	"github.com/roach88/apimodel/internal/validator"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Load the configuration (defaults when none is given)
// 2. Load the routing spec, if any
// 3. Compile and validate the model
// 4. Evaluate assertions against the outcome
//
// An error is returned only when the scenario cannot be executed; failed
// assertions are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with validator logs sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	cfg := config.Default()
	if scenario.Config != "" {
		loaded, err := config.Load(scenario.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	// Scenarios always observe the whole report.
	opts.FailFast = false
	opts.Logger = logger

	routes := scenario.Routing
	if routes == "" {
		routes = cfg.Routing
	}
	if routes != "" {
		spec, err := routing.Load(routes)
		if err != nil {
			return nil, err
		}
		opts.Routing = spec
	}

	m, err := compiler.CompileFile(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to compile model: %w", err)
	}

	outcome, err := validator.Validate(m, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to validate model: %w", err)
	}

	result := NewResult()
	result.Issues = append(result.Issues, outcome.Report.All()...)
	result.Pruned = append(result.Pruned, outcome.Pruned...)
	result.Stats = outcome.Stats
	for _, def := range outcome.Model.Types {
		result.Kept = append(result.Kept, def.Base().Name)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
