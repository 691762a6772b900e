package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/apimodel/internal/validator"
)

// Snapshot renders a scenario outcome as stable text: reachability counts,
// pruned definitions in input order, then every report entry in report order.
func Snapshot(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	fmt.Fprintf(&buf, "types: %d total, %d visited, %d pruned\n",
		result.Stats.Total, result.Stats.Visited, result.Stats.Pruned)
	for _, n := range result.Pruned {
		fmt.Fprintf(&buf, "pruned: %s\n", n)
	}
	for _, issue := range result.Issues {
		if issue.Severity == validator.SeverityWarning {
			fmt.Fprintf(&buf, "warning: %s\n", issue.Error())
			continue
		}
		fmt.Fprintf(&buf, "error: %s\n", issue.Error())
	}
	return []byte(buf.String())
}

// RunWithGolden executes a scenario and compares the snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
