package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModel = `{
  "types": [
    {
      "kind": "request",
      "name": {"namespace": "_global.get", "name": "Request"},
      "inherits": {"type": {"namespace": "_types", "name": "RequestBase"}},
      "path": [
        {"name": "id", "type": {"kind": "instance_of", "type": {"namespace": "_builtins", "name": "string"}}, "required": true}
      ],
      "query": [
        {"name": "pretty", "type": {"kind": "instance_of", "type": {"namespace": "_builtins", "name": "boolean"}}, "required": false}
      ],
      "body": {"kind": "no_body"}
    },
    {
      "kind": "response",
      "name": {"namespace": "_global.get", "name": "Response"},
      "body": {"kind": "value", "value": {
        "kind": "dictionary_of",
        "key": {"kind": "instance_of", "type": {"namespace": "_builtins", "name": "string"}},
        "value": {"kind": "array_of", "value": {"kind": "user_defined_value"}},
        "single_key": true
      }}
    },
    {
      "kind": "interface",
      "name": {"namespace": "_types", "name": "Container"},
      "variants": {"kind": "container"},
      "properties": [
        {"name": "meta", "type": {"kind": "literal_value", "value": "x"}, "required": false, "container_property": true},
        {"name": "only", "type": {"kind": "instance_of", "type": {"namespace": "_builtins", "name": "number"}}, "required": true}
      ]
    },
    {
      "kind": "enum",
      "name": {"namespace": "_types", "name": "Color"},
      "members": [{"name": "red"}, {"name": "blue", "identifier": "Blue", "aliases": ["azure"]}]
    },
    {
      "kind": "type_alias",
      "name": {"namespace": "_types", "name": "Shape"},
      "variants": {"kind": "internal_tag", "tag": "type"},
      "type": {"kind": "union_of", "items": [
        {"kind": "instance_of", "type": {"namespace": "_types", "name": "Circle"}},
        {"kind": "literal_value", "value": 3}
      ]}
    }
  ],
  "endpoints": [
    {
      "name": "get",
      "request": {"namespace": "_global.get", "name": "Request"},
      "response": {"namespace": "_global.get", "name": "Response"},
      "urls": [{"path": "/{index}/_doc/{id}", "methods": ["GET"]}]
    }
  ]
}`

func TestDecodeSampleModel(t *testing.T) {
	m, err := Decode([]byte(sampleModel))
	require.NoError(t, err)
	require.Len(t, m.Types, 5)
	require.Len(t, m.Endpoints, 1)

	req, ok := m.Types[0].(*Request)
	require.True(t, ok)
	assert.Equal(t, TypeName{Namespace: "_types", Name: "RequestBase"}, req.Inherits.Type)
	require.Len(t, req.Path, 1)
	assert.True(t, req.Path[0].Required)
	assert.Equal(t, BodyNone, req.Body.Kind)

	resp, ok := m.Types[1].(*Response)
	require.True(t, ok)
	require.Equal(t, BodyValue, resp.Body.Kind)
	dict, ok := resp.Body.Value.(*DictionaryOf)
	require.True(t, ok)
	assert.True(t, dict.SingleKey)
	arr, ok := dict.Value.(*ArrayOf)
	require.True(t, ok)
	assert.IsType(t, &UserDefinedValue{}, arr.Value)

	iface, ok := m.Types[2].(*Interface)
	require.True(t, ok)
	require.NotNil(t, iface.Variants)
	assert.True(t, iface.Properties[0].ContainerProperty)
	assert.Equal(t, "x", iface.Properties[0].Type.(*LiteralValue).Value)

	enum, ok := m.Types[3].(*Enum)
	require.True(t, ok)
	assert.Equal(t, "Blue", enum.Members[1].Key())
	assert.Equal(t, "red", enum.Members[0].Key())

	alias, ok := m.Types[4].(*TypeAlias)
	require.True(t, ok)
	require.NotNil(t, alias.Variants)
	assert.Equal(t, InternalTag, alias.Variants.Kind)
	assert.Equal(t, "type", alias.Variants.Tag)
	union := alias.Type.(*UnionOf)
	assert.Equal(t, float64(3), union.Items[1].(*LiteralValue).Value)

	assert.Equal(t, []string{"index", "id"}, m.Endpoints[0].Placeholders())
}

func TestDecodeRejectsUnknownMembers(t *testing.T) {
	_, err := Decode([]byte(`{"types": [], "endpoints": [], "extra": 1}`))
	require.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown kind",
			doc:  `{"types":[{"kind":"class","name":{"namespace":"a","name":"B"}}],"endpoints":[]}`,
			want: `unknown kind "class"`,
		},
		{
			name: "missing namespace",
			doc:  `{"types":[{"kind":"enum","name":{"namespace":"","name":"B"}}],"endpoints":[]}`,
			want: "name requires namespace",
		},
		{
			name: "alias without type",
			doc:  `{"types":[{"kind":"type_alias","name":{"namespace":"a","name":"B"}}],"endpoints":[]}`,
			want: "type_alias requires a type",
		},
		{
			name: "container on alias",
			doc:  `{"types":[{"kind":"type_alias","name":{"namespace":"a","name":"B"},"type":{"kind":"user_defined_value"},"variants":{"kind":"container"}}],"endpoints":[]}`,
			want: "type_alias variants",
		},
		{
			name: "bad value kind",
			doc:  `{"types":[{"kind":"type_alias","name":{"namespace":"a","name":"B"},"type":{"kind":"tuple_of"}}],"endpoints":[]}`,
			want: `unknown value kind "tuple_of"`,
		},
		{
			name: "unsupported version",
			doc:  `{"version":"9","types":[],"endpoints":[]}`,
			want: "unsupported format version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEncodeDecodePreservesStructure(t *testing.T) {
	m, err := Decode([]byte(sampleModel))
	require.NoError(t, err)

	data, err := Encode(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version"`)

	again, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestFingerprintStable(t *testing.T) {
	m, err := Decode([]byte(sampleModel))
	require.NoError(t, err)

	a, err := Fingerprint(m)
	require.NoError(t, err)
	b, err := Fingerprint(m)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	m.Types = m.Types[:4]
	c, err := Fingerprint(m)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
