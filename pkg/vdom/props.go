package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// FormatProp converts a prop value to its attribute string. The second
// result is false when the attribute should be absent: nil and false.
func FormatProp(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		if val {
			return "", true
		}
		return "", false
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// PropsEqual compares two prop values for equality.
func PropsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// DefaultPropertyMirrors are the props kept on live properties rather
// than attributes when no other set is configured.
var DefaultPropertyMirrors = []string{"value", "checked", "selected", "indeterminate"}

// MirrorValue converts a prop to its live property type: bool for the
// boolean states, the formatted string otherwise. A nil or "false" boolean
// state is false.
func MirrorValue(name string, value any) any {
	switch name {
	case "checked", "selected", "indeterminate":
		switch v := value.(type) {
		case nil:
			return false
		case bool:
			return v
		case string:
			return v != "" && v != "false"
		default:
			return true
		}
	}
	s, _ := FormatProp(value)
	return s
}
