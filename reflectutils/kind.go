package reflectutils

import "reflect"

// IsBuiltin reports whether t is a primitive type: booleans, numbers, strings,
// and unnamed slices, arrays or maps.
//
// Builtin types are never resolved as dependencies, they are either given a
// default value or rejected.
func IsBuiltin(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	case reflect.Slice, reflect.Array, reflect.Map:
		return t.Name() == ""
	default:
		return false
	}
}

// IsEmptyInterface reports whether t is any.
func IsEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// IsStructLike reports whether t is a struct or a pointer to a struct.
func IsStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
