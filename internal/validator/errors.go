package validator

import (
	"fmt"
	"sort"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrUnresolvedReference = "E201" // no definition for a type name
	ErrKindMismatch        = "E202" // definition used in a slot requiring another kind
	ErrGenericArity        = "E203" // generic argument count mismatch
	ErrDuplicate           = "E204" // duplicate identifier, name, alias or definition
	ErrInheritedBody       = "E205" // non-object body inheriting concrete fields
	ErrVariantContainer    = "E206" // single/multi-variant container rules
	ErrTaggedUnion         = "E207" // tagged union discriminant contract
	ErrPolymorphism        = "E208" // non-leaf type referenced directly
	ErrPathMismatch        = "E209" // path properties vs url placeholders
	ErrDocURL              = "E210" // malformed documentation url
	ErrMissingEndpointType = "E211" // endpoint without request or response
	ErrInheritanceCycle    = "E212" // inherits/implements cycle
	ErrAmbiguousUnion      = "E213" // union members share a JSON event (advisory)
	ErrBehavior            = "E214" // attached behavior unknown or not implemented
)

// Severity distinguishes errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Side is the half of an endpoint an error is attributed to.
type Side string

const (
	SideNone     Side = ""
	SideRequest  Side = "request"
	SideResponse Side = "response"
)

// ValidationError is a single problem found in the model.
type ValidationError struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Endpoint string   `json:"endpoint,omitempty"`
	Side     Side     `json:"side,omitempty"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ", e.Code)
	if e.Endpoint != "" {
		sb.WriteString(e.Endpoint)
		if e.Side != SideNone {
			sb.WriteString(" " + string(e.Side))
		}
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(e.Path + ": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// EndpointReport holds the errors attributed to one endpoint.
type EndpointReport struct {
	Request  []ValidationError `json:"request,omitempty"`
	Response []ValidationError `json:"response,omitempty"`
}

// Report accumulates validation errors grouped by endpoint and side.
// Errors raised outside any endpoint go to General.
type Report struct {
	General   []ValidationError          `json:"general,omitempty"`
	Endpoints map[string]*EndpointReport `json:"endpoints,omitempty"`

	errors   int
	warnings int
}

func newReport() *Report {
	return &Report{Endpoints: make(map[string]*EndpointReport)}
}

func (r *Report) add(e ValidationError) {
	if e.Severity == SeverityWarning {
		r.warnings++
	} else {
		r.errors++
	}
	if e.Endpoint == "" {
		r.General = append(r.General, e)
		return
	}
	ep := r.Endpoints[e.Endpoint]
	if ep == nil {
		ep = &EndpointReport{}
		r.Endpoints[e.Endpoint] = ep
	}
	if e.Side == SideResponse {
		ep.Response = append(ep.Response, e)
	} else {
		ep.Request = append(ep.Request, e)
	}
}

// ErrorCount returns the number of error-severity entries.
func (r *Report) ErrorCount() int { return r.errors }

// WarningCount returns the number of advisory warnings.
func (r *Report) WarningCount() int { return r.warnings }

// EndpointNames returns the endpoints with at least one entry, sorted.
func (r *Report) EndpointNames() []string {
	names := make([]string, 0, len(r.Endpoints))
	for name := range r.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every entry: general first, then endpoints by name with
// request entries before response entries.
func (r *Report) All() []ValidationError {
	all := append([]ValidationError(nil), r.General...)
	for _, name := range r.EndpointNames() {
		ep := r.Endpoints[name]
		all = append(all, ep.Request...)
		all = append(all, ep.Response...)
	}
	return all
}

// FailedError is returned by Validate in fail-fast mode when the completed
// pass found at least one error. The Result is still returned alongside it.
type FailedError struct {
	Errors int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("model validation failed with %d error(s)", e.Errors)
}
