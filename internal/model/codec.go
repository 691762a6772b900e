package model

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Wire representation. Every variant carries a "kind" discriminator; the
// domain types stay free of encoding concerns.

type wireModel struct {
	Version   string     `json:"version,omitempty"`
	Types     []wireType `json:"types"`
	Endpoints []Endpoint `json:"endpoints"`
}

type wireInherits struct {
	Type     TypeName    `json:"type"`
	Generics []wireValue `json:"generics,omitempty"`
}

type wireProperty struct {
	Name              string    `json:"name"`
	Identifier        string    `json:"identifier,omitempty"`
	Aliases           []string  `json:"aliases,omitempty"`
	Type              wireValue `json:"type"`
	Required          bool      `json:"required"`
	ContainerProperty bool      `json:"container_property,omitzero"`
}

type wireBody struct {
	Kind       BodyKind       `json:"kind"`
	Properties []wireProperty `json:"properties,omitempty"`
	Value      *wireValue     `json:"value,omitempty"`
}

type wireVariants struct {
	Kind          string `json:"kind"`
	Tag           string `json:"tag,omitempty"`
	NonExhaustive bool   `json:"non_exhaustive,omitzero"`
}

type wireMember struct {
	Name       string   `json:"name"`
	Identifier string   `json:"identifier,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

type wireType struct {
	Kind              Kind           `json:"kind"`
	Name              TypeName       `json:"name"`
	DocURL            string         `json:"doc_url,omitempty"`
	Generics          []TypeName     `json:"generics,omitempty"`
	Inherits          *wireInherits  `json:"inherits,omitempty"`
	Implements        []wireInherits `json:"implements,omitempty"`
	Behaviors         []wireInherits `json:"behaviors,omitempty"`
	AttachedBehaviors []string       `json:"attached_behaviors,omitempty"`
	VariantName       string         `json:"variant_name,omitempty"`
	Behavior          bool           `json:"behavior,omitzero"`

	Path       []wireProperty `json:"path,omitempty"`
	Query      []wireProperty `json:"query,omitempty"`
	Body       *wireBody      `json:"body,omitempty"`
	Properties []wireProperty `json:"properties,omitempty"`
	Members    []wireMember   `json:"members,omitempty"`
	Type       *wireValue     `json:"type,omitempty"`
	Variants   *wireVariants  `json:"variants,omitempty"`
}

// wireValue.Value holds a nested value expression for array_of and
// dictionary_of, and a scalar for literal_value.
type wireValue struct {
	Kind      ValueKind      `json:"kind"`
	Type      *TypeName      `json:"type,omitempty"`
	Generics  []wireValue    `json:"generics,omitempty"`
	Value     jsontext.Value `json:"value,omitzero"`
	Items     []wireValue    `json:"items,omitempty"`
	Key       *wireValue     `json:"key,omitempty"`
	SingleKey bool           `json:"single_key,omitzero"`
}

// Decode parses a metamodel document. Unknown members are rejected.
func Decode(data []byte) (*Model, error) {
	var w wireModel
	if err := json.Unmarshal(data, &w, json.RejectUnknownMembers(true)); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if w.Version != "" && w.Version != FormatVersion {
		return nil, fmt.Errorf("decode model: unsupported format version %q", w.Version)
	}

	m := &Model{Endpoints: w.Endpoints}
	for i, wt := range w.Types {
		def, err := wt.decode()
		if err != nil {
			return nil, fmt.Errorf("decode model: types[%d] (%s): %w", i, wt.Name, err)
		}
		m.Types = append(m.Types, def)
	}
	return m, nil
}

// Encode renders a metamodel document as indented JSON.
func Encode(m *Model) ([]byte, error) {
	w := wireModel{
		Version:   FormatVersion,
		Types:     make([]wireType, 0, len(m.Types)),
		Endpoints: m.Endpoints,
	}
	if w.Endpoints == nil {
		w.Endpoints = []Endpoint{}
	}
	for _, def := range m.Types {
		wt, err := encodeType(def)
		if err != nil {
			return nil, fmt.Errorf("encode model: %s: %w", def.Base().Name, err)
		}
		w.Types = append(w.Types, wt)
	}
	return json.Marshal(w, json.Deterministic(true), jsontext.Multiline(true), jsontext.WithIndent("  "))
}

func (wt wireType) decode() (TypeDefinition, error) {
	base, err := wt.base()
	if err != nil {
		return nil, err
	}

	switch wt.Kind {
	case KindRequest:
		path, err := decodeProperties(wt.Path)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		query, err := decodeProperties(wt.Query)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		body, err := decodeBody(wt.Body)
		if err != nil {
			return nil, err
		}
		return &Request{BaseType: base, Path: path, Query: query, Body: body}, nil

	case KindResponse:
		body, err := decodeBody(wt.Body)
		if err != nil {
			return nil, err
		}
		return &Response{BaseType: base, Body: body}, nil

	case KindInterface:
		props, err := decodeProperties(wt.Properties)
		if err != nil {
			return nil, err
		}
		iface := &Interface{BaseType: base, Properties: props}
		if wt.Variants != nil {
			if wt.Variants.Kind != "container" {
				return nil, fmt.Errorf("interface variants must be \"container\", got %q", wt.Variants.Kind)
			}
			iface.Variants = &Container{NonExhaustive: wt.Variants.NonExhaustive}
		}
		return iface, nil

	case KindEnum:
		enum := &Enum{BaseType: base}
		for _, m := range wt.Members {
			enum.Members = append(enum.Members, EnumMember(m))
		}
		return enum, nil

	case KindTypeAlias:
		if wt.Type == nil {
			return nil, fmt.Errorf("type_alias requires a type")
		}
		v, err := wt.Type.decode()
		if err != nil {
			return nil, err
		}
		alias := &TypeAlias{BaseType: base, Type: v}
		if wt.Variants != nil {
			switch TagKind(wt.Variants.Kind) {
			case InternalTag, ExternalTag:
			default:
				return nil, fmt.Errorf("type_alias variants must be %q or %q, got %q", InternalTag, ExternalTag, wt.Variants.Kind)
			}
			alias.Variants = &TaggedVariants{
				Kind:          TagKind(wt.Variants.Kind),
				Tag:           wt.Variants.Tag,
				NonExhaustive: wt.Variants.NonExhaustive,
			}
		}
		return alias, nil

	default:
		return nil, fmt.Errorf("unknown kind %q", wt.Kind)
	}
}

func (wt wireType) base() (BaseType, error) {
	base := BaseType{
		Name:              wt.Name,
		DocURL:            wt.DocURL,
		Generics:          wt.Generics,
		AttachedBehaviors: wt.AttachedBehaviors,
		VariantName:       wt.VariantName,
		Behavior:          wt.Behavior,
	}
	if wt.Name.Name == "" || wt.Name.Namespace == "" {
		return base, fmt.Errorf("name requires namespace and name")
	}
	if wt.Inherits != nil {
		inh, err := wt.Inherits.decode()
		if err != nil {
			return base, fmt.Errorf("inherits: %w", err)
		}
		base.Inherits = &inh
	}
	var err error
	if base.Implements, err = decodeInheritsList(wt.Implements); err != nil {
		return base, fmt.Errorf("implements: %w", err)
	}
	if base.Behaviors, err = decodeInheritsList(wt.Behaviors); err != nil {
		return base, fmt.Errorf("behaviors: %w", err)
	}
	return base, nil
}

func (wi wireInherits) decode() (Inherits, error) {
	generics, err := decodeValues(wi.Generics)
	if err != nil {
		return Inherits{}, err
	}
	return Inherits{Type: wi.Type, Generics: generics}, nil
}

func decodeInheritsList(list []wireInherits) ([]Inherits, error) {
	var out []Inherits
	for _, wi := range list {
		inh, err := wi.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, inh)
	}
	return out, nil
}

func decodeProperties(list []wireProperty) ([]Property, error) {
	var out []Property
	for _, wp := range list {
		v, err := wp.Type.decode()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", wp.Name, err)
		}
		out = append(out, Property{
			Name:              wp.Name,
			Identifier:        wp.Identifier,
			Aliases:           wp.Aliases,
			Type:              v,
			Required:          wp.Required,
			ContainerProperty: wp.ContainerProperty,
		})
	}
	return out, nil
}

func decodeBody(wb *wireBody) (Body, error) {
	if wb == nil {
		return Body{Kind: BodyNone}, nil
	}
	switch wb.Kind {
	case BodyProperties:
		props, err := decodeProperties(wb.Properties)
		if err != nil {
			return Body{}, fmt.Errorf("body: %w", err)
		}
		return Body{Kind: BodyProperties, Properties: props}, nil
	case BodyValue:
		if wb.Value == nil {
			return Body{}, fmt.Errorf("body: value body requires a value")
		}
		v, err := wb.Value.decode()
		if err != nil {
			return Body{}, fmt.Errorf("body: %w", err)
		}
		return Body{Kind: BodyValue, Value: v}, nil
	case BodyNone:
		return Body{Kind: BodyNone}, nil
	default:
		return Body{}, fmt.Errorf("body: unknown kind %q", wb.Kind)
	}
}

func decodeValues(list []wireValue) ([]ValueOf, error) {
	var out []ValueOf
	for _, wv := range list {
		v, err := wv.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (wv wireValue) nested() (ValueOf, error) {
	if len(wv.Value) == 0 {
		return nil, fmt.Errorf("%s requires a value", wv.Kind)
	}
	var inner wireValue
	if err := json.Unmarshal(wv.Value, &inner, json.RejectUnknownMembers(true)); err != nil {
		return nil, err
	}
	return inner.decode()
}

func (wv wireValue) decode() (ValueOf, error) {
	switch wv.Kind {
	case ValueInstanceOf:
		if wv.Type == nil {
			return nil, fmt.Errorf("instance_of requires a type")
		}
		generics, err := decodeValues(wv.Generics)
		if err != nil {
			return nil, err
		}
		return &InstanceOf{Type: *wv.Type, Generics: generics}, nil
	case ValueArrayOf:
		v, err := wv.nested()
		if err != nil {
			return nil, err
		}
		return &ArrayOf{Value: v}, nil
	case ValueUnionOf:
		items, err := decodeValues(wv.Items)
		if err != nil {
			return nil, err
		}
		return &UnionOf{Items: items}, nil
	case ValueDictionaryOf:
		if wv.Key == nil {
			return nil, fmt.Errorf("dictionary_of requires a key")
		}
		key, err := wv.Key.decode()
		if err != nil {
			return nil, err
		}
		v, err := wv.nested()
		if err != nil {
			return nil, err
		}
		return &DictionaryOf{Key: key, Value: v, SingleKey: wv.SingleKey}, nil
	case ValueUserDefined:
		return &UserDefinedValue{}, nil
	case ValueLiteral:
		var lit any
		if len(wv.Value) > 0 {
			if err := json.Unmarshal(wv.Value, &lit); err != nil {
				return nil, err
			}
		}
		switch lit.(type) {
		case string, float64, bool:
		default:
			return nil, fmt.Errorf("literal_value must be a string, number or boolean")
		}
		return &LiteralValue{Value: lit}, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", wv.Kind)
	}
}

func encodeType(def TypeDefinition) (wireType, error) {
	b := def.Base()
	wt := wireType{
		Kind:              def.Kind(),
		Name:              b.Name,
		DocURL:            b.DocURL,
		Generics:          b.Generics,
		AttachedBehaviors: b.AttachedBehaviors,
		VariantName:       b.VariantName,
		Behavior:          b.Behavior,
	}
	var err error
	if b.Inherits != nil {
		inh, err := encodeInherits(*b.Inherits)
		if err != nil {
			return wt, err
		}
		wt.Inherits = &inh
	}
	for _, i := range b.Implements {
		inh, err := encodeInherits(i)
		if err != nil {
			return wt, err
		}
		wt.Implements = append(wt.Implements, inh)
	}
	for _, i := range b.Behaviors {
		inh, err := encodeInherits(i)
		if err != nil {
			return wt, err
		}
		wt.Behaviors = append(wt.Behaviors, inh)
	}

	switch d := def.(type) {
	case *Request:
		if wt.Path, err = encodeProperties(d.Path); err != nil {
			return wt, err
		}
		if wt.Query, err = encodeProperties(d.Query); err != nil {
			return wt, err
		}
		wt.Body, err = encodeBody(d.Body)
	case *Response:
		wt.Body, err = encodeBody(d.Body)
	case *Interface:
		wt.Properties, err = encodeProperties(d.Properties)
		if d.Variants != nil {
			wt.Variants = &wireVariants{Kind: "container", NonExhaustive: d.Variants.NonExhaustive}
		}
	case *Enum:
		for _, m := range d.Members {
			wt.Members = append(wt.Members, wireMember(m))
		}
	case *TypeAlias:
		var v wireValue
		v, err = encodeValue(d.Type)
		wt.Type = &v
		if d.Variants != nil {
			wt.Variants = &wireVariants{Kind: string(d.Variants.Kind), Tag: d.Variants.Tag, NonExhaustive: d.Variants.NonExhaustive}
		}
	default:
		panic(fmt.Sprintf("model: unknown definition %T", def))
	}
	return wt, err
}

func encodeInherits(i Inherits) (wireInherits, error) {
	generics, err := encodeValues(i.Generics)
	return wireInherits{Type: i.Type, Generics: generics}, err
}

func encodeProperties(props []Property) ([]wireProperty, error) {
	var out []wireProperty
	for _, p := range props {
		v, err := encodeValue(p.Type)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		out = append(out, wireProperty{
			Name:              p.Name,
			Identifier:        p.Identifier,
			Aliases:           p.Aliases,
			Type:              v,
			Required:          p.Required,
			ContainerProperty: p.ContainerProperty,
		})
	}
	return out, nil
}

func encodeBody(b Body) (*wireBody, error) {
	switch b.Kind {
	case BodyProperties:
		props, err := encodeProperties(b.Properties)
		return &wireBody{Kind: BodyProperties, Properties: props}, err
	case BodyValue:
		v, err := encodeValue(b.Value)
		return &wireBody{Kind: BodyValue, Value: &v}, err
	default:
		return &wireBody{Kind: BodyNone}, nil
	}
}

func encodeValues(list []ValueOf) ([]wireValue, error) {
	var out []wireValue
	for _, v := range list {
		wv, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, wv)
	}
	return out, nil
}

func encodeNested(v ValueOf) (jsontext.Value, error) {
	wv, err := encodeValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wv)
}

func encodeValue(v ValueOf) (wireValue, error) {
	wv := wireValue{}
	if v == nil {
		return wv, fmt.Errorf("missing value")
	}
	wv.Kind = v.ValueKind()
	var err error
	switch v := v.(type) {
	case *InstanceOf:
		t := v.Type
		wv.Type = &t
		wv.Generics, err = encodeValues(v.Generics)
	case *ArrayOf:
		wv.Value, err = encodeNested(v.Value)
	case *UnionOf:
		wv.Items, err = encodeValues(v.Items)
	case *DictionaryOf:
		var key wireValue
		if key, err = encodeValue(v.Key); err != nil {
			return wv, err
		}
		wv.Key = &key
		wv.SingleKey = v.SingleKey
		wv.Value, err = encodeNested(v.Value)
	case *UserDefinedValue:
	case *LiteralValue:
		wv.Value, err = json.Marshal(v.Value)
	default:
		panic(fmt.Sprintf("model: unknown value %T", v))
	}
	return wv, err
}
