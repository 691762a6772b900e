package validator

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/apimodel/internal/model"
)

// TestValidationError_Error tests the rendering of each attribution level.
func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  ValidationError
		want string
	}{
		{
			name: "general",
			err:  ValidationError{Code: ErrInheritanceCycle, Message: "Inheritance cycle: a:A -> a:A"},
			want: "[E212] Inheritance cycle: a:A -> a:A",
		},
		{
			name: "general with path",
			err:  ValidationError{Code: ErrDuplicate, Path: "a:A / x", Message: "dup"},
			want: "[E204] a:A / x: dup",
		},
		{
			name: "endpoint side",
			err:  ValidationError{Code: ErrMissingEndpointType, Endpoint: "ping", Side: SideResponse, Message: "Missing response type"},
			want: "[E211] ping response: Missing response type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

// TestReport_Grouping tests bucket selection and the All ordering.
func TestReport_Grouping(t *testing.T) {
	r := newReport()
	r.add(ValidationError{Code: "E1", Endpoint: "b", Side: SideResponse})
	r.add(ValidationError{Code: "E2", Endpoint: "b", Side: SideRequest})
	r.add(ValidationError{Code: "E3"})
	r.add(ValidationError{Code: "E4", Endpoint: "a", Side: SideRequest, Severity: SeverityWarning})

	assert.Equal(t, 3, r.ErrorCount())
	assert.Equal(t, 1, r.WarningCount())
	assert.Equal(t, []string{"a", "b"}, r.EndpointNames())

	var order []string
	for _, e := range r.All() {
		order = append(order, e.Code)
	}
	assert.Equal(t, []string{"E3", "E4", "E2", "E1"}, order)
}

// TestPolicy_Exemption tests name and namespace lookups.
func TestPolicy_Exemption(t *testing.T) {
	p := DefaultPolicy()

	reason, ok := p.Exemption(tn("_types", "RequestBase"))
	assert.True(t, ok)
	assert.Equal(t, "common request parameters", reason)

	_, ok = p.Exemption(tn("_types.aggregations", "Aggregate"))
	assert.True(t, ok)
	_, ok = p.Exemption(tn("_types.aggregations.bucket", "Bucket"))
	assert.True(t, ok, "sub-namespaces are covered")
	_, ok = p.Exemption(tn("_types.aggregationsx", "Other"))
	assert.False(t, ok)

	_, ok = p.Exemption(tn("_types.mapping", "PropertyBase"))
	assert.True(t, ok)
	_, ok = p.Exemption(tn("test", "Base"))
	assert.False(t, ok)
}

// TestTarjanSCC tests component discovery and cycle path reconstruction.
func TestTarjanSCC(t *testing.T) {
	a, b, c, d := tn("x", "A"), tn("x", "B"), tn("x", "C"), tn("x", "D")
	graph := hierarchyGraph{
		a: {b},
		b: {c},
		c: {a},
		d: {d},
	}

	var cycles [][]model.TypeName
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, reconstructCyclePath(scc, graph))
		}
	}
	assert.Equal(t, [][]model.TypeName{{a, b, c, a}, {d, d}}, cycles)
}

// TestValidate_GoldenReport pins the text rendering of a mixed report.
func TestValidate_GoldenReport(t *testing.T) {
	m := &model.Model{
		Types: []model.TypeDefinition{
			request("ping:PingRequest", nil, required("shape", ref("ping:Base"))),
			response("ping:PingResponse"),
			iface("ping:Base", required("name", str())),
			child("ping:Circle", "ping:Base", required("radius", num())),
			child("ping:Square", "ping:Base", required("side", num())),
			child("loop:A", "loop:B"),
			child("loop:B", "loop:A"),
		},
		Endpoints: []model.Endpoint{endpoint("ping", "ping:PingRequest", "ping:PingResponse", "/_ping/{id}")},
	}

	result := validate(t, m)

	var sb strings.Builder
	for _, e := range result.Report.All() {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", []byte(sb.String()))
}
