package di

import (
	"errors"
	"fmt"
)

var (
	// ErrContainer is matched by every failure except ErrNotFound.
	ErrContainer = errors.New("container error")

	ErrNotFound              = errors.New("not found")
	ErrNotInstantiable       = errors.New("not instantiable")
	ErrCircularDependency    = errors.New("circular dependency")
	ErrUnresolvableParameter = errors.New("unresolvable parameter")
)

// Error is the error raised by the container.
//
// Kind is one of the package sentinels, ID is the identifier (or parameter
// name for ErrUnresolvableParameter) the failure is about.
type Error struct {
	Kind error
	ID   Identifier
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:\n\t%v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return target == ErrContainer && e.Kind != ErrNotFound
}

// IsNotFound reports whether err is, or wraps, a not found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func notFound(id Identifier) error {
	return &Error{
		Kind: ErrNotFound,
		ID:   id,
		Msg:  fmt.Sprintf("no entry or type found for %q", id),
	}
}

func notInstantiable(id Identifier) error {
	return &Error{
		Kind: ErrNotInstantiable,
		ID:   id,
		Msg:  fmt.Sprintf("type %q is not instantiable, a redirect or a factory must be registered for it", id),
	}
}

func circularDependency(id Identifier, chain string) error {
	return &Error{
		Kind: ErrCircularDependency,
		ID:   id,
		Msg:  fmt.Sprintf("circular dependency detected while resolving %q:\n%s", id, chain),
	}
}

func unresolvableParameter(owner Identifier, name string) error {
	return &Error{
		Kind: ErrUnresolvableParameter,
		ID:   Identifier(name),
		Msg:  fmt.Sprintf("cannot resolve parameter %q of %q: builtin type without default value", name, owner),
	}
}

func containerError(id Identifier, cause error, format string, args ...any) error {
	return &Error{
		Kind: ErrContainer,
		ID:   id,
		Msg:  fmt.Sprintf(format, args...),
		Err:  cause,
	}
}
