// Package model provides the in-memory API metamodel consumed by the validator.
//
// This package contains type definitions, the JSON wire codec and content
// fingerprinting only. All other internal packages import model; model imports
// nothing internal.
//
// Key design constraints:
//   - TypeDefinition and ValueOf are sealed interfaces; every switch over them
//     is exhaustive and panics on an unknown implementation
//   - TypeName is a comparable struct and is used directly as a map key
//   - All JSON tags use snake_case; variants carry a "kind" discriminator
package model
