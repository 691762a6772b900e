package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

func sampleResult() *Result {
	r := NewResult()
	r.Issues = []validator.ValidationError{
		{Code: "E212", Severity: validator.SeverityError, Message: "Inheritance cycle: a:A -> a:A"},
		{Code: "E209", Severity: validator.SeverityError, Endpoint: "ping", Side: validator.SideRequest, Path: "ping:PingRequest", Message: "Path parameter 'id' is missing in request definition"},
		{Code: "E213", Severity: validator.SeverityWarning, Endpoint: "ping", Side: validator.SideResponse, Message: "Ambiguous union"},
	}
	r.Pruned = []model.TypeName{{Namespace: "unused", Name: "Orphan"}}
	r.Kept = []model.TypeName{{Namespace: "ping", Name: "PingRequest"}}
	return r
}

func boolPtr(b bool) *bool { return &b }

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"valid false", Assertion{Type: AssertValid, Valid: boolPtr(false)}, ""},
		{"valid true", Assertion{Type: AssertValid, Valid: boolPtr(true)}, "valid = true"},
		{"contains code", Assertion{Type: AssertIssueContains, Code: "E209"}, ""},
		{"contains full selector", Assertion{Type: AssertIssueContains, Code: "E209", Endpoint: "ping", Side: "request", Message: "'id'"}, ""},
		{"contains wrong side", Assertion{Type: AssertIssueContains, Code: "E209", Side: "response"}, "not found in report"},
		{"contains wrong message", Assertion{Type: AssertIssueContains, Message: "nope"}, `message containing "nope"`},
		{"order", Assertion{Type: AssertIssueOrder, Codes: []string{"E212", "E213"}}, ""},
		{"order reversed", Assertion{Type: AssertIssueOrder, Codes: []string{"E213", "E212"}}, "only [E213] matched in order"},
		{"count all", Assertion{Type: AssertIssueCount, Count: 3}, ""},
		{"count code", Assertion{Type: AssertIssueCount, Code: "E213", Count: 1}, ""},
		{"count mismatch", Assertion{Type: AssertIssueCount, Code: "E201", Count: 1}, "0 entries"},
		{"pruned", Assertion{Type: AssertPruned, Types: []string{"unused:Orphan"}}, ""},
		{"pruned missing", Assertion{Type: AssertPruned, Types: []string{"ping:PingRequest"}}, "missing [ping:PingRequest]"},
		{"kept", Assertion{Type: AssertKept, Types: []string{"ping:PingRequest"}}, ""},
		{"unknown", Assertion{Type: "final_state"}, "unknown assertion type: final_state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesReport(t *testing.T) {
	err := &AssertionError{
		Type:     AssertIssueCount,
		Expected: "1 entries",
		Actual:   "0 entries",
		Issues:   sampleResult().Issues[:1],
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: issue_count")
	assert.Contains(t, msg, "Expected: 1 entries")
	assert.Contains(t, msg, "Actual: 0 entries")
	assert.Contains(t, msg, "[1] [E212] Inheritance cycle: a:A -> a:A")
}

func TestResult_Valid(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Valid())

	r.Issues = append(r.Issues, validator.ValidationError{Code: "E213", Severity: validator.SeverityWarning})
	assert.True(t, r.Valid(), "warnings never fail")

	r.Issues = append(r.Issues, validator.ValidationError{Code: "E201", Severity: validator.SeverityError})
	assert.False(t, r.Valid())
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
