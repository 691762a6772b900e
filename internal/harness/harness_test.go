package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestdata(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return scenario
}

// TestRun_Scenarios runs every scenario under testdata and expects all
// assertions to hold.
func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"ping_valid", "ping_missing_placeholder", "ping_routing", "ping_cue_unresolved"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadTestdata(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"ping_valid", "ping_missing_placeholder", "ping_routing"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestdata(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_FailingAssertions(t *testing.T) {
	scenario := loadTestdata(t, "ping_valid")
	scenario.Assertions = []Assertion{
		{Type: AssertValid, Valid: boolPtr(false)},
		{Type: AssertPruned, Types: []string{"ping:PingRequest"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 2)
}

func TestRun_ConfigDisablesFailFast(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "apimodel.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("version: 1\nfail_fast: true\n"), 0644))

	scenario := loadTestdata(t, "ping_missing_placeholder")
	scenario.Config = cfg

	result, err := Run(scenario)
	require.NoError(t, err, "fail-fast never aborts a scenario")
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
}

func TestRun_CompileError(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(model, []byte(`{"types": 1}`), 0644))

	_, err := Run(&Scenario{Name: "broken", Model: model})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile model")
}

func TestRun_BadRouting(t *testing.T) {
	scenario := loadTestdata(t, "ping_valid")
	scenario.Routing = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Run(scenario)
	require.Error(t, err)
}

func TestSnapshot_Warnings(t *testing.T) {
	r := sampleResult()
	snap := string(Snapshot("sample", r))
	assert.Contains(t, snap, "scenario: sample\n")
	assert.Contains(t, snap, "pruned: unused:Orphan\n")
	assert.Contains(t, snap, "error: [E212] Inheritance cycle: a:A -> a:A\n")
	assert.Contains(t, snap, "warning: [E213] ping response: Ambiguous union\n")
}
