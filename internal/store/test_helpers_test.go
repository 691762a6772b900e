package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/apimodel/internal/model"
	"github.com/roach88/apimodel/internal/validator"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run summary with minimal required fields.
func createTestRun(source, hash string) Run {
	return Run{
		Source:           source,
		ModelHash:        hash,
		ValidatorVersion: model.ValidatorVersion,
		Stats:            validator.Stats{Total: 3, Visited: 2, Pruned: 1},
		Errors:           1,
		Warnings:         1,
		Pruned:           []model.TypeName{{Namespace: "unused", Name: "Orphan"}},
	}
}

// createTestIssues returns one error and one warning.
func createTestIssues() []validator.ValidationError {
	return []validator.ValidationError{
		{
			Code:     validator.ErrPathMismatch,
			Severity: validator.SeverityError,
			Endpoint: "ping",
			Side:     validator.SideRequest,
			Path:     "ping:PingRequest",
			Message:  "Path parameter 'id' is missing in request definition",
		},
		{
			Code:     validator.ErrAmbiguousUnion,
			Severity: validator.SeverityWarning,
			Path:     "_types:U",
			Message:  "Ambiguous union",
		},
	}
}
