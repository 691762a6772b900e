package validator

import (
	"strings"

	"github.com/roach88/apimodel/internal/model"
)

// Policy holds the model-specific tables the validator consults. Every
// polymorphism exemption is data keyed by type name or namespace together
// with the reason it is allowed, so the list can be audited on its own.
type Policy struct {
	// RequestBase and ResponseBase are the only parents a request or response
	// with a non-object body may inherit from.
	RequestBase  model.TypeName
	ResponseBase model.TypeName

	// Roots are validated outside any endpoint so they are never pruned.
	Roots []model.TypeName

	// ReuseBases are parents shared for field reuse, not for polymorphism.
	ReuseBases map[model.TypeName]string

	// DisambiguatedNamespaces exempt every parent under a namespace (or one
	// of its sub-namespaces) that is disambiguated by another mechanism.
	DisambiguatedNamespaces map[string]string

	// DiscriminatedParents carry an explicit field naming the concrete variant.
	DiscriminatedParents map[model.TypeName]string

	// ScalarEvents associates types that have no definition in the model
	// with the JSON tokens they deserialize from.
	ScalarEvents map[model.TypeName][]JSONEvent
}

// Exemption returns why a parent type may be referenced directly, if it may.
func (p Policy) Exemption(name model.TypeName) (string, bool) {
	if reason, ok := p.ReuseBases[name]; ok {
		return reason, true
	}
	if reason, ok := p.DiscriminatedParents[name]; ok {
		return reason, true
	}
	for ns, reason := range p.DisambiguatedNamespaces {
		if name.Namespace == ns || strings.HasPrefix(name.Namespace, ns+".") {
			return reason, true
		}
	}
	return "", false
}

func tn(namespace, name string) model.TypeName {
	return model.TypeName{Namespace: namespace, Name: name}
}

// DefaultPolicy returns the tables used when no configuration overrides them.
func DefaultPolicy() Policy {
	return Policy{
		RequestBase:  tn("_types", "RequestBase"),
		ResponseBase: tn("_types", "ResponseBase"),
		Roots:        []model.TypeName{tn("_types", "ErrorResponseBase")},
		ReuseBases: map[model.TypeName]string{
			tn("_types", "RequestBase"):                 "common request parameters",
			tn("_types", "ResponseBase"):                "common response fields",
			tn("_types", "AcknowledgedResponseBase"):    "shared acknowledged flag",
			tn("_types", "ShardsOperationResponseBase"): "shared shard statistics",
			tn("_types", "WriteResponseBase"):           "shared write result fields",
			tn("_types", "ErrorCause"):                  "error causes nest and extend freely",
			tn("_types.query_dsl", "QueryBase"):         "boost and name shared by all queries",
		},
		DisambiguatedNamespaces: map[string]string{
			"_types.aggregations": "response keys are prefixed with the aggregation type",
		},
		DiscriminatedParents: map[model.TypeName]string{
			tn("_types.mapping", "PropertyBase"):     "discriminated by the 'type' field",
			tn("_types.analysis", "TokenFilterBase"): "discriminated by the 'type' field",
			tn("_types.analysis", "CharFilterBase"):  "discriminated by the 'type' field",
			tn("_types.analysis", "TokenizerBase"):   "discriminated by the 'type' field",
			tn("_types.analysis", "NormalizerBase"):  "discriminated by the 'type' field",
			tn("ml._types", "DataframeAnalysisBase"): "discriminated by the wrapping key",
		},
	}
}
