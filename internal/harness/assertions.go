package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

// AssertionError is returned when an assertion fails.
// It includes the full report to help debug the failure.
type AssertionError struct {
	Type     string                      // Assertion type for categorization
	Expected string                      // Human-readable expected outcome
	Actual   string                      // Human-readable actual outcome
	Issues   []validator.ValidationError // Full report for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Issues) > 0 {
		fmt.Fprintf(&buf, "\nFull report:\n")
		for i, issue := range e.Issues {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, issue.Error())
		}
	}

	return buf.String()
}

// matchIssue checks an entry against the non-empty selector fields.
func matchIssue(issue validator.ValidationError, a Assertion) bool {
	if a.Code != "" && issue.Code != a.Code {
		return false
	}
	if a.Endpoint != "" && issue.Endpoint != a.Endpoint {
		return false
	}
	if a.Side != "" && string(issue.Side) != a.Side {
		return false
	}
	return a.Message == "" || strings.Contains(issue.Message, a.Message)
}

func describeSelector(a Assertion) string {
	var parts []string
	if a.Code != "" {
		parts = append(parts, "code "+a.Code)
	}
	if a.Endpoint != "" {
		parts = append(parts, "endpoint "+a.Endpoint)
	}
	if a.Side != "" {
		parts = append(parts, "side "+a.Side)
	}
	if a.Message != "" {
		parts = append(parts, fmt.Sprintf("message containing %q", a.Message))
	}
	if len(parts) == 0 {
		return "any entry"
	}
	return strings.Join(parts, ", ")
}

func assertValid(result *Result, a Assertion) error {
	if result.Valid() == *a.Valid {
		return nil
	}
	return &AssertionError{
		Type:     AssertValid,
		Expected: fmt.Sprintf("valid = %t", *a.Valid),
		Actual:   fmt.Sprintf("valid = %t", result.Valid()),
		Issues:   result.Issues,
	}
}

// assertIssueContains checks that at least one entry matches the selector.
func assertIssueContains(result *Result, a Assertion) error {
	for _, issue := range result.Issues {
		if matchIssue(issue, a) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertIssueContains,
		Expected: describeSelector(a),
		Actual:   "not found in report",
		Issues:   result.Issues,
	}
}

// assertIssueOrder checks that the codes appear in report order.
// Codes don't need to be consecutive (intervening entries are allowed).
func assertIssueOrder(result *Result, a Assertion) error {
	next := 0
	for _, issue := range result.Issues {
		if next < len(a.Codes) && issue.Code == a.Codes[next] {
			next++
		}
	}
	if next == len(a.Codes) {
		return nil
	}
	return &AssertionError{
		Type:     AssertIssueOrder,
		Expected: fmt.Sprintf("codes in order %v", a.Codes),
		Actual:   fmt.Sprintf("only %v matched in order", a.Codes[:next]),
		Issues:   result.Issues,
	}
}

// assertIssueCount checks the number of entries matching the selector.
func assertIssueCount(result *Result, a Assertion) error {
	count := 0
	for _, issue := range result.Issues {
		if matchIssue(issue, a) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertIssueCount,
		Expected: fmt.Sprintf("%d entries with %s", a.Count, describeSelector(a)),
		Actual:   fmt.Sprintf("%d entries", count),
		Issues:   result.Issues,
	}
}

// assertTypes checks that every listed type is in the given set.
func assertTypes(kind string, set []model.TypeName, a Assertion, issues []validator.ValidationError) error {
	var missing []string
	for _, want := range a.Types {
		if !slices.ContainsFunc(set, func(n model.TypeName) bool { return n.String() == want }) {
			missing = append(missing, want)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s types %v", kind, a.Types),
		Actual:   fmt.Sprintf("missing %v", missing),
		Issues:   issues,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertValid:
			err = assertValid(result, a)
		case AssertIssueContains:
			err = assertIssueContains(result, a)
		case AssertIssueOrder:
			err = assertIssueOrder(result, a)
		case AssertIssueCount:
			err = assertIssueCount(result, a)
		case AssertPruned:
			err = assertTypes(AssertPruned, result.Pruned, a, result.Issues)
		case AssertKept:
			err = assertTypes(AssertKept, result.Kept, a, result.Issues)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
