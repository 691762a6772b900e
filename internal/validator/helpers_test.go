package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/apimodel/internal/model"
)

func str() model.ValueOf { return model.Instance("_builtins", "string") }

func num() model.ValueOf { return model.Instance("_builtins", "number") }

// ref builds an instance_of from a "namespace:Name" string.
func ref(name string, generics ...model.ValueOf) *model.InstanceOf {
	return &model.InstanceOf{Type: mustName(name), Generics: generics}
}

func mustName(s string) model.TypeName {
	n, err := model.ParseTypeName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func namePtr(s string) *model.TypeName {
	n := mustName(s)
	return &n
}

func required(name string, v model.ValueOf) model.Property {
	return model.Property{Name: name, Type: v, Required: true}
}

func optional(name string, v model.ValueOf) model.Property {
	return model.Property{Name: name, Type: v}
}

func iface(name string, props ...model.Property) *model.Interface {
	return &model.Interface{BaseType: model.BaseType{Name: mustName(name)}, Properties: props}
}

func child(name, parent string, props ...model.Property) *model.Interface {
	i := iface(name, props...)
	i.Inherits = &model.Inherits{Type: mustName(parent)}
	return i
}

func request(name string, path []model.Property, body ...model.Property) *model.Request {
	r := &model.Request{BaseType: model.BaseType{Name: mustName(name)}, Path: path}
	if len(body) > 0 {
		r.Body = model.Body{Kind: model.BodyProperties, Properties: body}
	}
	return r
}

func response(name string) *model.Response {
	return &model.Response{
		BaseType: model.BaseType{Name: mustName(name)},
		Body:     model.Body{Kind: model.BodyNone},
	}
}

func alias(name string, v model.ValueOf) *model.TypeAlias {
	return &model.TypeAlias{BaseType: model.BaseType{Name: mustName(name)}, Type: v}
}

func union(items ...model.ValueOf) *model.UnionOf {
	return &model.UnionOf{Items: items}
}

func endpoint(name, req, res string, urls ...string) model.Endpoint {
	ep := model.Endpoint{Name: name}
	if req != "" {
		ep.Request = namePtr(req)
	}
	if res != "" {
		ep.Response = namePtr(res)
	}
	for _, u := range urls {
		ep.URLs = append(ep.URLs, model.URLTemplate{Path: u, Methods: []string{"GET"}})
	}
	return ep
}

// singleEndpoint wires one endpoint whose request body carries the given
// properties, plus any extra definitions.
func singleEndpoint(body []model.Property, defs ...model.TypeDefinition) *model.Model {
	types := []model.TypeDefinition{
		request("test:Request", nil, body...),
		response("test:Response"),
	}
	return &model.Model{
		Types:     append(types, defs...),
		Endpoints: []model.Endpoint{endpoint("test", "test:Request", "test:Response", "/")},
	}
}

func validate(t *testing.T, m *model.Model) *Result {
	t.Helper()
	return validateWith(t, m, DefaultOptions())
}

func validateWith(t *testing.T, m *model.Model, opts Options) *Result {
	t.Helper()
	result, err := Validate(m, opts)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func codes(r *Result) []string {
	var out []string
	for _, e := range r.Report.All() {
		out = append(out, e.Code)
	}
	return out
}

func messages(r *Result) []string {
	var out []string
	for _, e := range r.Report.All() {
		out = append(out, e.Message)
	}
	return out
}

func typeNames(m *model.Model) []string {
	var out []string
	for _, def := range m.Types {
		out = append(out, def.Base().Name.String())
	}
	return out
}
