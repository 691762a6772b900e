// Package routing loads an independent routing spec used to cross-check the
// url placeholders of a metamodel.
//
// Two formats are accepted: a YAML or JSON map from endpoint name to path
// templates, and an OpenAPI 3 document where operationId is the endpoint name.
package routing

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Spec maps endpoint names to their path templates.
type Spec map[string][]string

// Load reads a routing spec from a file, detecting the format from content.
func Load(path string) (Spec, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, fmt.Errorf("read routing spec: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a routing spec from YAML or JSON content.
func Parse(raw []byte) (Spec, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parse routing spec: %w", err)
	}
	if _, ok := probe["openapi"]; ok {
		return parseOpenAPI(raw)
	}
	if _, ok := probe["swagger"]; ok {
		return nil, fmt.Errorf("parse routing spec: swagger 2 documents are not supported, convert to OpenAPI 3")
	}

	var spec Spec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse routing map: %w", err)
	}
	return spec, nil
}

func parseOpenAPI(raw []byte) (Spec, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI document: %w", err)
	}

	spec := make(Spec)
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil || op.OperationID == "" {
				continue
			}
			if !slices.Contains(spec[op.OperationID], p) {
				spec[op.OperationID] = append(spec[op.OperationID], p)
			}
		}
	}
	return spec, nil
}

// Endpoints returns the endpoint names in sorted order.
func (s Spec) Endpoints() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
