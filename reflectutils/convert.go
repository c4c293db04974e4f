package reflectutils

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ConvertString converts the textual form of a value, typically read from a
// struct tag, into a value of type t.
func ConvertString(raw string, t reflect.Type) (reflect.Value, error) {
	var (
		converted any
		err       error
	)
	switch {
	case t == durationType:
		converted, err = cast.ToDurationE(raw)
	case t.Kind() == reflect.String:
		converted = raw
	case t.Kind() == reflect.Bool:
		converted, err = cast.ToBoolE(raw)
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		converted, err = cast.ToInt64E(raw)
	case t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uintptr:
		converted, err = cast.ToUint64E(raw)
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		converted, err = cast.ToFloat64E(raw)
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String:
		converted, err = cast.ToStringSliceE(splitList(raw))
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Int:
		converted, err = cast.ToIntSliceE(splitList(raw))
	default:
		return reflect.Value{}, fmt.Errorf("cannot convert %q to %s: unsupported type", raw, t)
	}
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot convert %q to %s:\n\t%w", raw, t, err)
	}

	return reflect.ValueOf(converted).Convert(t), nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
