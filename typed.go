package di

import "fmt"

// Get resolves id and asserts the result to T.
func Get[T any](r Resolver, id Identifier) (T, error) {
	var zero T
	value, err := r.Get(id)
	if err != nil {
		return zero, err
	}
	return as[T](id, value)
}

// MustGet is like Get but panics on error.
func MustGet[T any](r Resolver, id Identifier) T {
	value, err := Get[T](r, id)
	if err != nil {
		panic(fmt.Sprintf("failed to get %q:\n\t%v", id, err))
	}
	return value
}

// Resolve builds the value registered for the type T.
//
// T is made known to the catalog of the container if it was not already, so
// a struct type can be resolved without being defined first.
func Resolve[T any](c *Container) (T, error) {
	id := c.catalog.discover(TypeOf[T]())
	return Get[T](c, id)
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container) T {
	value, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s:\n\t%v", IdentifierOf[T](), err))
	}
	return value
}

func as[T any](id Identifier, value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, containerError(id, nil, "entry %q is a %T, not a %s", id, value, TypeOf[T]())
	}
	return typed, nil
}
