package view

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Coercer converts a loosely-typed raw value to a declared scalar type. The
// loose setter overload routes through it before the typed setter.
type Coercer interface {
	// Convert coerces raw to the named target type. When primitive is true a
	// nil raw value is rejected instead of passed through.
	Convert(raw any, target string, primitive bool) (any, error)
}

// WeakCoercer is the default Coercer: weakly-typed decoding, so "42" becomes
// an int and 1 becomes true where the target asks for it.
type WeakCoercer struct{}

// Convert implements Coercer for the builtin scalar types.
func (WeakCoercer) Convert(raw any, target string, primitive bool) (any, error) {
	if raw == nil {
		if primitive {
			return nil, fmt.Errorf("cannot assign nil to primitive type %q", target)
		}
		return nil, nil
	}
	switch target {
	case "string":
		var out string
		return decodeWeak(raw, &out, target)
	case "int":
		var out int
		return decodeWeak(raw, &out, target)
	case "int64":
		var out int64
		return decodeWeak(raw, &out, target)
	case "float64":
		var out float64
		return decodeWeak(raw, &out, target)
	case "bool":
		var out bool
		return decodeWeak(raw, &out, target)
	default:
		return nil, fmt.Errorf("cannot coerce value of type %T to non-scalar type %q", raw, target)
	}
}

func decodeWeak[T any](raw any, out *T, target string) (any, error) {
	if err := mapstructure.WeakDecode(raw, out); err != nil {
		return nil, fmt.Errorf("cannot convert %v (%T) to %s: %w", raw, raw, target, err)
	}
	return *out, nil
}
