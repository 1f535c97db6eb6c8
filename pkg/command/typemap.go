package command

import (
	"fmt"
	"strconv"
)

// Kind is the primitive type of an argument.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// KindOf maps a declared schema type to a Kind. Anything outside the fixed
// table is treated as a string.
func KindOf(declared string) Kind {
	switch Kind(declared) {
	case KindInteger, KindNumber, KindBoolean:
		return Kind(declared)
	default:
		return KindString
	}
}

// Converter turns a raw command-line value into a typed value.
type Converter func(string) (any, error)

// ConverterFor returns the Converter for a declared schema type.
func ConverterFor(declared string) Converter {
	return KindOf(declared).Convert
}

// Convert parses s according to k.
func (k Kind) Convert(s string) (any, error) {
	switch k {
	case KindInteger:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer value %q", s)
		}
		return v, nil
	case KindNumber:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value %q", s)
		}
		return v, nil
	case KindBoolean:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value %q", s)
		}
		return v, nil
	default:
		return s, nil
	}
}
