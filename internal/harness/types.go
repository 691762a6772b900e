package harness

import (
	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Issues are the report entries in report order.
	Issues []validator.ValidationError `json:"issues"`

	// Pruned lists the definitions dropped from the model.
	Pruned []model.TypeName `json:"pruned"`

	// Kept lists the surviving definitions.
	Kept []model.TypeName `json:"kept"`

	Stats validator.Stats `json:"stats"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Issues: []validator.ValidationError{},
		Pruned: []model.TypeName{},
		Kept:   []model.TypeName{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Valid reports whether no entry has error severity.
func (r *Result) Valid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == validator.SeverityError {
			return false
		}
	}
	return true
}
