package di

import (
	"fmt"
	"io"
	"reflect"
)

// Identifier names either a constructable type or an arbitrary logical key.
type Identifier string

var (
	ErrorType    = TypeOf[error]()
	CloserType   = TypeOf[io.Closer]()
	ResolverType = TypeOf[Resolver]()
	StringerType = TypeOf[fmt.Stringer]()
)

func (id Identifier) String() string {
	return string(id)
}

// TypeOf returns the reflect.Type of I, including when I is an interface.
func TypeOf[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}

// IdentifierOf returns the identifier under which the type T is known to a Catalog.
func IdentifierOf[T any]() Identifier {
	return IdentifierFor(TypeOf[T]())
}

// IdentifierFor computes the canonical identifier of a type.
//
// Named types render as "<pkgpath>.<Name>", pointers get a "*" prefix, and
// every other type falls back to its reflect string.
func IdentifierFor(t reflect.Type) Identifier {
	if t == nil {
		return ""
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return Identifier(t.PkgPath() + "." + t.Name())
	}
	if t.Kind() == reflect.Pointer {
		return "*" + IdentifierFor(t.Elem())
	}
	return Identifier(t.String())
}
