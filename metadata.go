package di

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/sportlog/di/reflectutils"
)

const (
	injectTag  = "inject"
	defaultTag = "default"
)

type (
	// TypeMetadata describes how to build a type.
	TypeMetadata struct {
		ID            Identifier
		Type          reflect.Type
		Constructible bool
		Parameters    []ParameterSpec

		build builder
	}

	// ParameterSpec describes one constructor parameter, or one injected
	// field for types built by allocation.
	ParameterSpec struct {
		Name string
		// DeclaredType is empty when the parameter accepts anything.
		DeclaredType Identifier
		Builtin      bool
		HasDefault   bool
		Default      any

		typ reflect.Type
	}

	builder func(args []reflect.Value) (reflect.Value, error)
)

func (p ParameterSpec) String() string {
	s := p.Name
	if p.DeclaredType != "" {
		s += " " + string(p.DeclaredType)
	}
	if p.HasDefault {
		s += fmt.Sprintf(" = %v", p.Default)
	}
	return s
}

func (c *Catalog) buildMetadata(desc *descriptor) (*TypeMetadata, error) {
	md := &TypeMetadata{
		ID:   desc.id,
		Type: desc.typ,
	}

	switch {
	case desc.opts.abstract:
		return md, nil

	case desc.opts.constructor != nil:
		fn := reflect.ValueOf(desc.opts.constructor)
		md.Constructible = true
		md.Parameters = c.parametersOf(fn.Type(), desc.opts)
		md.build = func(args []reflect.Value) (reflect.Value, error) {
			return callFunc(fn, args, fn.Type().IsVariadic())
		}
		return md, nil

	case reflectutils.IsStructLike(desc.typ):
		params, fields, err := c.injectedFields(desc.typ)
		if err != nil {
			return nil, err
		}
		md.Constructible = true
		md.Parameters = params
		md.build = allocate(desc.typ, fields)
		return md, nil

	default:
		// interfaces, builtins, funcs, chans
		return md, nil
	}
}

// parametersOf describes the inputs of a function. opts may be nil.
func (c *Catalog) parametersOf(fnTyp reflect.Type, opts *DefinitionOptions) []ParameterSpec {
	if opts == nil {
		opts = &DefinitionOptions{}
	}

	params := make([]ParameterSpec, fnTyp.NumIn())
	for i := range params {
		typ := fnTyp.In(i)
		p := ParameterSpec{
			Name: fmt.Sprintf("arg%d", i),
			typ:  typ,
		}
		if i < len(opts.paramNames) && opts.paramNames[i] != "" {
			p.Name = opts.paramNames[i]
		}

		switch injected, found := opts.injects[i]; {
		case found:
			p.DeclaredType = injected
		case typ == ResolverType:
			p.DeclaredType = resolverID
		case reflectutils.IsEmptyInterface(typ):
		case reflectutils.IsBuiltin(typ):
			p.DeclaredType = IdentifierFor(typ)
			p.Builtin = true
		default:
			p.DeclaredType = c.discover(typ)
		}

		if value, found := opts.defaults[i]; found {
			p.HasDefault, p.Default = true, value
		} else if value, found := opts.namedDefaults[p.Name]; found {
			p.HasDefault, p.Default = true, value
		} else if fnTyp.IsVariadic() && i == len(params)-1 {
			p.HasDefault, p.Default = true, reflect.MakeSlice(typ, 0, 0).Interface()
		}

		params[i] = p
	}

	return params
}

// injectedFields lists the exported fields tagged with `inject`.
//
// The tag value, when set, is the identifier to resolve instead of the field
// type. A `default` tag gives the value used when nothing can be resolved.
func (c *Catalog) injectedFields(typ reflect.Type) ([]ParameterSpec, []int, error) {
	structTyp := typ
	if structTyp.Kind() == reflect.Pointer {
		structTyp = structTyp.Elem()
	}

	var (
		params []ParameterSpec
		fields []int
	)
	for i := 0; i < structTyp.NumField(); i++ {
		field := structTyp.Field(i)
		injected, tagged := field.Tag.Lookup(injectTag)
		if !tagged {
			continue
		}
		if !field.IsExported() {
			return nil, nil, fmt.Errorf("field %s of %s is tagged for injection but is not exported", field.Name, typ)
		}

		p := ParameterSpec{
			Name: field.Name,
			typ:  field.Type,
		}
		switch {
		case injected != "":
			p.DeclaredType = Identifier(injected)
		case field.Type == ResolverType:
			p.DeclaredType = resolverID
		case reflectutils.IsEmptyInterface(field.Type):
		case reflectutils.IsBuiltin(field.Type):
			p.DeclaredType = IdentifierFor(field.Type)
			p.Builtin = true
		default:
			p.DeclaredType = c.discover(field.Type)
		}

		if raw, found := field.Tag.Lookup(defaultTag); found {
			value, err := reflectutils.ConvertString(raw, field.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid default for field %s of %s:\n\t%w", field.Name, typ, err)
			}
			p.HasDefault, p.Default = true, value.Interface()
		}

		params = append(params, p)
		fields = append(fields, i)
	}

	return params, fields, nil
}

func allocate(typ reflect.Type, fields []int) builder {
	pointer := typ.Kind() == reflect.Pointer
	structTyp := typ
	if pointer {
		structTyp = typ.Elem()
	}

	return func(args []reflect.Value) (reflect.Value, error) {
		instance := reflect.New(structTyp)
		for i, idx := range fields {
			instance.Elem().Field(idx).Set(args[i])
		}
		if pointer {
			return instance, nil
		}
		return instance.Elem(), nil
	}
}

// callFunc calls fn, turning a panic or a returned error into an error.
func callFunc(fn reflect.Value, args []reflect.Value, spread bool) (out reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic calling %s: %v", fn.Type(), r)
		}
	}()

	var results []reflect.Value
	if spread {
		results = fn.CallSlice(args)
	} else {
		results = fn.Call(args)
	}

	if len(results) == 2 && !results[1].IsNil() {
		return reflect.Value{}, results[1].Interface().(error)
	}

	return results[0], nil
}

// argument converts a resolved value into a call argument of type typ.
func argument(value any, typ reflect.Type) (reflect.Value, error) {
	if value == nil {
		if isNillable(typ) {
			return reflect.Zero(typ), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid value for %s", typ)
	}

	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(typ) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", value, typ)
	}
	return v, nil
}

func unwrap(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

func validateFactorySignature(fnTyp reflect.Type) error {
	if fnTyp == nil || fnTyp.Kind() != reflect.Func {
		return errors.New("factory must be a function")
	}
	if fnTyp.NumOut() != 1 && fnTyp.NumOut() != 2 {
		return errors.New("factory must either return the instance and an error, or just the instance")
	}
	if fnTyp.NumOut() == 2 && fnTyp.Out(1) != ErrorType {
		return errors.New("if factory returns two elements, it must return an error as the second element")
	}
	return nil
}
