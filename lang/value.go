package lang

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Owns reports whether obj has a property named name: a key of a map with
// string keys, or an exported field of a struct (by Go name or json tag).
// Pointers and interfaces are followed; nil has no properties.
func Owns(obj any, name string) bool {
	_, ok := lookup(obj, name)

	return ok
}

// Member returns the property name of obj, or nil if obj does not own it.
func Member(obj any, name string) any {
	v, _ := lookup(obj, name)

	return v
}

func lookup(obj any, name string) (any, bool) {
	switch m := obj.(type) {
	case nil:
		return nil, false
	case map[string]any:
		v, ok := m[name]

		return v, ok
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String || v.IsNil() {
			return nil, false
		}

		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}

		return e.Interface(), true

	case reflect.Struct:
		index, ok := structFields(v.Type())[name]
		if !ok {
			return nil, false
		}

		f, err := v.FieldByIndexErr(index)
		if err != nil {
			// nil embedded pointer
			return nil, false
		}

		return f.Interface(), true

	default:
		return nil, false
	}
}

//nolint:gochecknoglobals
var fieldCache sync.Map // reflect.Type → map[string][]int

// structFields maps the property names of a struct type to field indexes.
// A json tag name takes precedence over the Go field name.
func structFields(t reflect.Type) map[string][]int {
	if cached, ok := fieldCache.Load(t); ok {
		if fields, ok := cached.(map[string][]int); ok {
			return fields
		}
	}

	fields := make(map[string][]int)

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		if _, ok := fields[f.Name]; !ok {
			fields[f.Name] = f.Index
		}

		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag != "" && tag != "-" {
			fields[tag] = f.Index
		}
	}

	actual, _ := fieldCache.LoadOrStore(t, fields)
	if fields, ok := actual.(map[string][]int); ok {
		return fields
	}

	return fields
}

// Truthy reports whether v is truthy. nil, false, zero, NaN, the empty
// string and nil pointers, maps, slices, funcs and channels are falsy;
// everything else, including empty non-nil containers, is truthy.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0

	case reflect.Float32, reflect.Float64:
		f := rv.Float()

		return f != 0 && !math.IsNaN(f)

	case reflect.String:
		return rv.Len() != 0

	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()

	default:
		return true
	}
}

// ToString converts a literal value to the string JavaScript would produce,
// as used for object keys.
func ToString(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return NumberString(v)
	case string:
		return v
	default:
		return ""
	}
}

// NumberString formats f the way JavaScript's Number.prototype.toString
// does: fixed notation for magnitudes in [1e-6, 1e21), exponent notation
// otherwise.
func NumberString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")

	return mant + "e" + sign + exp
}
