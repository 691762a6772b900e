// Package harness provides conformance testing for metamodel validation.
//
// A scenario names a model, optional configuration and routing spec, and
// assertions over the validation outcome. Scenarios are plain YAML so model
// authors can pin expected diagnostics next to the model they describe.
//
// # Scenario Format
//
//	name: ping_missing_placeholder
//	description: "url placeholder without a path property"
//	model: models/ping.json
//	config: apimodel.yaml        # optional
//	routing: routes.yaml         # optional
//	assertions:
//	  - type: valid
//	    valid: false
//	  - type: issue_contains
//	    code: E209
//	    endpoint: ping
//	    side: request
//	    message: "Path parameter 'id'"
//	  - type: issue_count
//	    code: E209
//	    count: 1
//	  - type: pruned
//	    types: ["unused:Orphan"]
//
// Paths are relative to the scenario file.
//
// # Assertion Types
//
//   - valid: the report has no errors (or has some, with valid: false)
//   - issue_contains: an entry matches code, endpoint, side and message substring
//   - issue_order: the given codes appear in report order
//   - issue_count: the number of entries with a code (all entries when empty)
//   - pruned: every listed type was pruned
//   - kept: every listed type survived pruning
//
// # Golden Snapshots
//
// Snapshot renders the report and pruned list as stable text. RunWithGolden
// compares it against testdata/golden/{name}.golden using goldie.
package harness
