package scope

import "reflect"

// identical reports whether a and b are the same value under strict
// equality: maps, slices, pointers, funcs and channels compare by identity,
// floats by ==, and other comparable values by ==. Values of different
// dynamic types, and values that cannot be compared, are never identical.
//
// Slices compare by backing array and length. Go may give every
// zero-capacity slice the same address, so two distinct empty slices with
// no capacity compare identical; the compiled [] literal always has
// capacity.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan,
		reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()

	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()

	case reflect.Float32, reflect.Float64:
		// NaN is never identical to itself
		return va.Float() == vb.Float()

	default:
		if !va.Comparable() || !vb.Comparable() {
			return false
		}

		return va.Equal(vb)
	}
}
