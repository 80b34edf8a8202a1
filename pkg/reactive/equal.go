package reactive

import "reflect"

// identical reports whether a and b are the same value by identity.
// Comparable values use ==. Slices are identical when they share the
// backing array and length; maps, channels and pointers when they are the
// same reference. Functions are never identical unless both are nil.
func identical[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	}
	return identicalValue(reflect.ValueOf(any(a)), reflect.ValueOf(any(b)))
}

func identicalValue(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Slice:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return a.Len() == b.Len() && a.UnsafePointer() == b.UnsafePointer()
	case reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return a.UnsafePointer() == b.UnsafePointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Interface:
		return identicalValue(a.Elem(), b.Elem())
	}

	if a.Comparable() && b.Comparable() {
		return a.Equal(b)
	}
	return false
}
