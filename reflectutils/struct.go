// Package reflectutils gathers the reflection helpers shared by the container
// and the config loader.
package reflectutils

import "reflect"

// Visitor is called for every value reached while walking a struct.
type Visitor func(val reflect.Value, typ reflect.Type, path []string)

// AllVisitors chains visitors, calling them in order.
func AllVisitors(visitors ...Visitor) Visitor {
	return func(val reflect.Value, typ reflect.Type, path []string) {
		for _, v := range visitors {
			v(val, typ, path)
		}
	}
}

// WalkStruct applies a visitor on a value and, recursively, on all of its exported fields.
func WalkStruct(element any, visitor Visitor) {
	walk(reflect.ValueOf(element), nil, visitor)
}

func walk(val reflect.Value, path []string, visitor Visitor) {
	visitor(val, val.Type(), path)

	val = Deref(val)
	if !val.IsValid() || val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		walk(val.Field(i), append(path, field.Name), visitor)
	}
}

// Deref follows pointers and interfaces until it reaches a concrete value.
func Deref(value reflect.Value) reflect.Value {
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		value = value.Elem()
	}
	return value
}

// CreateNilStructs allocates nil pointers to structs so nested fields can be set.
func CreateNilStructs(val reflect.Value, typ reflect.Type, _ []string) {
	if typ.Kind() == reflect.Pointer &&
		val.IsNil() &&
		val.CanSet() &&
		typ.Elem().Kind() == reflect.Struct {

		val.Set(reflect.New(typ.Elem()))
	}
}
