package model

import "fmt"

// ValueKind is the discriminator of a ValueOf.
type ValueKind string

// Value expression kinds.
const (
	ValueInstanceOf   ValueKind = "instance_of"
	ValueArrayOf      ValueKind = "array_of"
	ValueUnionOf      ValueKind = "union_of"
	ValueDictionaryOf ValueKind = "dictionary_of"
	ValueUserDefined  ValueKind = "user_defined_value"
	ValueLiteral      ValueKind = "literal_value"
)

// ValueOf is a sealed interface over value expressions.
// Only *InstanceOf, *ArrayOf, *UnionOf, *DictionaryOf, *UserDefinedValue
// and *LiteralValue implement it.
type ValueOf interface {
	ValueKind() ValueKind
	valueOf()
}

// InstanceOf references a definition, a builtin or an open generic parameter.
type InstanceOf struct {
	Type     TypeName
	Generics []ValueOf
}

// ArrayOf is a homogeneous list.
type ArrayOf struct {
	Value ValueOf
}

// UnionOf is an untagged union unless its alias declares variants.
type UnionOf struct {
	Items []ValueOf
}

// DictionaryOf is a string-keyed map. SingleKey maps hold exactly one entry.
type DictionaryOf struct {
	Key       ValueOf
	Value     ValueOf
	SingleKey bool
}

// UserDefinedValue is an opaque value supplied by the API user.
type UserDefinedValue struct{}

// LiteralValue is a constant: a string, a float64 or a bool.
type LiteralValue struct {
	Value any
}

func (*InstanceOf) ValueKind() ValueKind       { return ValueInstanceOf }
func (*ArrayOf) ValueKind() ValueKind          { return ValueArrayOf }
func (*UnionOf) ValueKind() ValueKind          { return ValueUnionOf }
func (*DictionaryOf) ValueKind() ValueKind     { return ValueDictionaryOf }
func (*UserDefinedValue) ValueKind() ValueKind { return ValueUserDefined }
func (*LiteralValue) ValueKind() ValueKind     { return ValueLiteral }

func (*InstanceOf) valueOf()       {}
func (*ArrayOf) valueOf()          {}
func (*UnionOf) valueOf()          {}
func (*DictionaryOf) valueOf()     {}
func (*UserDefinedValue) valueOf() {}
func (*LiteralValue) valueOf()     {}

// Instance is a shorthand for building an InstanceOf.
func Instance(namespace, name string, generics ...ValueOf) *InstanceOf {
	return &InstanceOf{Type: TypeName{Namespace: namespace, Name: name}, Generics: generics}
}

// String renders a value expression in a compact, TypeScript-like notation
// used in error messages.
func String(v ValueOf) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case *InstanceOf:
		s := v.Type.String()
		if len(v.Generics) > 0 {
			s += "<"
			for i, g := range v.Generics {
				if i > 0 {
					s += ", "
				}
				s += String(g)
			}
			s += ">"
		}
		return s
	case *ArrayOf:
		return String(v.Value) + "[]"
	case *UnionOf:
		s := ""
		for i, item := range v.Items {
			if i > 0 {
				s += " | "
			}
			s += String(item)
		}
		return s
	case *DictionaryOf:
		return fmt.Sprintf("Dictionary<%s, %s>", String(v.Key), String(v.Value))
	case *UserDefinedValue:
		return "UserDefined"
	case *LiteralValue:
		return fmt.Sprintf("%#v", v.Value)
	default:
		panic(fmt.Sprintf("model: unknown value %T", v))
	}
}
