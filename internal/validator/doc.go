// Package validator checks the semantic consistency of an API metamodel.
//
// Validation is a single depth-first pass driven by endpoints. Every
// definition reachable from an endpoint's request or response (through
// inheritance, behaviors, generics and property types) is validated exactly
// once; definitions never reached are pruned from the returned model.
//
// Errors are collected, never returned mid-pass. Each error is attributed to
// the endpoint and side (request or response) that first reached the
// offending definition, or to the general bucket for checks that run outside
// any endpoint. Endpoints that declare and resolve both request and response
// are validated first so shared definitions are attributed to complete
// endpoints.
//
// All state (resolver tables, reachability tracker, report) belongs to one
// Validate call. Cyclic graphs terminate because a definition is marked
// visited before its members are validated.
package validator
