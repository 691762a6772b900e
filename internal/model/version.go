package model

// Version constants for the metamodel wire format and the validator.
const (
	// FormatVersion is the metamodel wire format version.
	FormatVersion = "1"

	// ValidatorVersion is the apimodel validator version.
	ValidatorVersion = "0.3.0"
)
