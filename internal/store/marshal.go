package store

import (
	"fmt"

	"github.com/go-json-experiment/json"

	"github.com/roach88/apimodel/internal/model"
)

// marshalPruned converts the pruned type list to JSON TEXT for storage.
// Output is deterministic so identical runs store identical rows.
func marshalPruned(names []model.TypeName) (string, error) {
	if names == nil {
		names = []model.TypeName{}
	}
	data, err := json.Marshal(names, json.Deterministic(true))
	if err != nil {
		return "", fmt.Errorf("marshal pruned: %w", err)
	}
	return string(data), nil
}

// unmarshalPruned parses JSON TEXT to a type name list.
func unmarshalPruned(data string) ([]model.TypeName, error) {
	names := []model.TypeName{}
	if data == "" || data == "[]" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal pruned: %w", err)
	}
	return names, nil
}
