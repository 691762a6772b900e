package model

import (
	"fmt"
	"strings"
)

// TypeName identifies a definition by namespace and name.
// The fully-qualified key is "namespace:name".
type TypeName struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// String returns the fully-qualified key.
func (n TypeName) String() string {
	return n.Namespace + ":" + n.Name
}

// ParseTypeName parses a "namespace:name" key.
func ParseTypeName(s string) (TypeName, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return TypeName{}, fmt.Errorf("invalid type name %q, expected \"namespace:name\"", s)
	}
	return TypeName{Namespace: s[:i], Name: s[i+1:]}, nil
}

// Kind is the discriminator of a TypeDefinition.
type Kind string

// Definition kinds.
const (
	KindRequest   Kind = "request"
	KindResponse  Kind = "response"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindTypeAlias Kind = "type_alias"
)

// TypeDefinition is a sealed interface over the definition kinds.
// Only *Request, *Response, *Interface, *Enum and *TypeAlias implement it.
type TypeDefinition interface {
	Base() *BaseType
	Kind() Kind
	typeDefinition()
}

// Inherits is an edge to a parent type or behavior with its generic arguments.
type Inherits struct {
	Type     TypeName
	Generics []ValueOf
}

// BaseType holds the attributes shared by every definition kind.
type BaseType struct {
	Name              TypeName
	DocURL            string
	Generics          []TypeName
	Inherits          *Inherits
	Implements        []Inherits
	Behaviors         []Inherits
	AttachedBehaviors []string
	// VariantName is the external tag under which this type appears in a union.
	VariantName string
	// Behavior marks a definition that lives in the behavior side table.
	Behavior bool
}

// Base returns the shared attributes.
func (b *BaseType) Base() *BaseType { return b }

// Property is a named, typed member of a definition.
type Property struct {
	Name              string
	Identifier        string
	Aliases           []string
	Type              ValueOf
	Required          bool
	ContainerProperty bool
}

// Key returns the identifier used for case-insensitive uniqueness and path matching.
func (p Property) Key() string {
	if p.Identifier != "" {
		return p.Identifier
	}
	return p.Name
}

// BodyKind is the discriminator of a Body.
type BodyKind string

// Body kinds.
const (
	BodyProperties BodyKind = "properties"
	BodyValue      BodyKind = "value"
	BodyNone       BodyKind = "no_body"
)

// Body is the payload of a request or response.
// Properties is set for BodyProperties, Value for BodyValue.
type Body struct {
	Kind       BodyKind
	Properties []Property
	Value      ValueOf
}

// Request is a definition of kind "request".
type Request struct {
	BaseType
	Path  []Property
	Query []Property
	Body  Body
}

// Response is a definition of kind "response".
type Response struct {
	BaseType
	Body Body
}

// Container describes an interface whose non-container properties are variants.
type Container struct {
	NonExhaustive bool
}

// Interface is a definition of kind "interface".
type Interface struct {
	BaseType
	Properties []Property
	Variants   *Container
}

// EnumMember is a single enum value.
type EnumMember struct {
	Name       string
	Identifier string
	Aliases    []string
}

// Key returns the identifier used for case-insensitive uniqueness.
func (m EnumMember) Key() string {
	if m.Identifier != "" {
		return m.Identifier
	}
	return m.Name
}

// Enum is a definition of kind "enum".
type Enum struct {
	BaseType
	Members []EnumMember
}

// TagKind is the discriminator of TaggedVariants.
type TagKind string

// Tagged union kinds.
const (
	InternalTag TagKind = "internal_tag"
	ExternalTag TagKind = "external_tag"
)

// TaggedVariants describes how the members of a union alias are discriminated.
// Tag is the discriminant property name for InternalTag.
type TaggedVariants struct {
	Kind          TagKind
	Tag           string
	NonExhaustive bool
}

// TypeAlias is a definition of kind "type_alias".
type TypeAlias struct {
	BaseType
	Type     ValueOf
	Variants *TaggedVariants
}

func (*Request) Kind() Kind   { return KindRequest }
func (*Response) Kind() Kind  { return KindResponse }
func (*Interface) Kind() Kind { return KindInterface }
func (*Enum) Kind() Kind      { return KindEnum }
func (*TypeAlias) Kind() Kind { return KindTypeAlias }

func (*Request) typeDefinition()   {}
func (*Response) typeDefinition()  {}
func (*Interface) typeDefinition() {}
func (*Enum) typeDefinition()      {}
func (*TypeAlias) typeDefinition() {}

// OwnProperties returns the properties declared directly on a definition.
// For requests this is path, query and body properties; enums and aliases have none.
func OwnProperties(def TypeDefinition) []Property {
	switch d := def.(type) {
	case *Request:
		props := make([]Property, 0, len(d.Path)+len(d.Query)+len(d.Body.Properties))
		props = append(props, d.Path...)
		props = append(props, d.Query...)
		return append(props, d.Body.Properties...)
	case *Response:
		return d.Body.Properties
	case *Interface:
		return d.Properties
	case *Enum, *TypeAlias:
		return nil
	default:
		panic(fmt.Sprintf("model: unknown definition %T", def))
	}
}

// URLTemplate is a path template and the HTTP methods it accepts.
type URLTemplate struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// Endpoint ties a request and a response type to its URL templates.
type Endpoint struct {
	Name     string        `json:"name"`
	DocURL   string        `json:"doc_url,omitempty"`
	Request  *TypeName     `json:"request,omitempty"`
	Response *TypeName     `json:"response,omitempty"`
	URLs     []URLTemplate `json:"urls"`
}

// Model is a complete metamodel: definitions (including behaviors) and endpoints.
type Model struct {
	Types     []TypeDefinition
	Endpoints []Endpoint
}
