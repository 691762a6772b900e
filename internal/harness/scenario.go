package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the metamodel source: JSON, YAML, CUE or a CUE package directory.
	Model string `yaml:"model"`

	// Config is an optional apimodel.yaml.
	Config string `yaml:"config,omitempty"`

	// Routing is an optional routing spec.
	Routing string `yaml:"routing,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the report or the pruned model.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Valid is the expected outcome (used by valid).
	Valid *bool `yaml:"valid,omitempty"`

	// Code, Endpoint, Side and Message select entries (used by issue_contains
	// and issue_count). Empty fields match anything; Message is a substring.
	Code     string `yaml:"code,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Side     string `yaml:"side,omitempty"`
	Message  string `yaml:"message,omitempty"`

	// Count is the expected number of matching entries (used by issue_count).
	Count int `yaml:"count,omitempty"`

	// Codes is the expected code order (used by issue_order).
	Codes []string `yaml:"codes,omitempty"`

	// Types are "namespace:Name" keys (used by pruned and kept).
	Types []string `yaml:"types,omitempty"`
}

// Assertion type constants.
const (
	AssertValid         = "valid"
	AssertIssueContains = "issue_contains"
	AssertIssueOrder    = "issue_order"
	AssertIssueCount    = "issue_count"
	AssertPruned        = "pruned"
	AssertKept          = "kept"
)

// LoadScenario reads and parses a scenario YAML file. Relative paths are
// resolved against the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving model, config and routing paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths BEFORE validation
	for _, p := range []*string{&scenario.Model, &scenario.Config, &scenario.Routing} {
		if *p != "" && !filepath.IsAbs(*p) && basePath != "" {
			*p = filepath.Join(basePath, *p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Model == "" {
		return fmt.Errorf("model is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, p := range []string{s.Model, s.Config, s.Routing} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertValid:
		if a.Valid == nil {
			return fmt.Errorf("assertions[%d]: valid is required for valid", index)
		}
	case AssertIssueContains:
		if a.Code == "" && a.Message == "" {
			return fmt.Errorf("assertions[%d]: code or message is required for issue_contains", index)
		}
	case AssertIssueOrder:
		if len(a.Codes) == 0 {
			return fmt.Errorf("assertions[%d]: codes list is required for issue_order", index)
		}
	case AssertIssueCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for issue_count", index)
		}
	case AssertPruned, AssertKept:
		if len(a.Types) == 0 {
			return fmt.Errorf("assertions[%d]: types list is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
