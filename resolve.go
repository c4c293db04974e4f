package di

import (
	"fmt"
	"reflect"

	"github.com/sportlog/di/set"
)

func (c *Container) get(id Identifier, s *session) (any, error) {
	if id == resolverID {
		return s, nil
	}

	id, err := c.follow(id)
	if err != nil {
		return nil, err
	}

	var factory *aliasEntry
	if entry, found := c.aliases[id]; found && entry.kind == factoryEntry {
		factory = &entry
	}

	if value, found := c.resolved[id]; found {
		return value, nil
	}

	if chain, cyclic := s.inflight.push(id); cyclic {
		return nil, circularDependency(id, chain)
	}
	defer s.inflight.pop()

	var value any
	if factory != nil {
		c.logger.Debug().Stringer("id", id).Int("depth", s.inflight.len()).Msg("instantiating from factory")
		value, err = c.instantiateFromFactory(id, factory, s)
	} else {
		c.logger.Debug().Stringer("id", id).Int("depth", s.inflight.len()).Msg("instantiating")
		value, err = c.instantiate(id, s)
	}
	if err != nil {
		return nil, err
	}

	c.store(id, value)

	return value, nil
}

// follow walks the redirect chain starting at id and returns its end.
func (c *Container) follow(id Identifier) (Identifier, error) {
	visited := set.New[Identifier]()
	for {
		entry, found := c.aliases[id]
		if !found || entry.kind != redirectEntry {
			return id, nil
		}
		if !visited.Add(id) {
			return "", circularDependency(id, "redirect loop through "+string(id))
		}

		c.logger.Trace().Stringer("from", id).Stringer("to", entry.target).Msg("following redirect")
		id = entry.target
	}
}

func (c *Container) instantiate(id Identifier, s *session) (any, error) {
	md, found, err := c.catalog.Lookup(id)
	if err != nil {
		return nil, containerError(id, err, "failed to inspect type %q", id)
	}
	if !found {
		return nil, notFound(id)
	}
	if !md.Constructible {
		return nil, notInstantiable(id)
	}

	args, err := c.resolveParameters(id, md.Parameters, s)
	if err != nil {
		return nil, err
	}

	instance, err := md.build(args)
	if err != nil {
		return nil, containerError(id, err, "failed to instantiate %q", id)
	}

	return unwrap(instance), nil
}

func (c *Container) instantiateFromFactory(id Identifier, factory *aliasEntry, s *session) (any, error) {
	var (
		fn     = factory.fn
		fnTyp  = fn.Type()
		args   []reflect.Value
		spread bool
	)

	if len(factory.deps) > 0 {
		if required := factory.requiredArgs(); required > len(factory.deps) {
			return nil, containerError(
				id, nil,
				"error retrieving entry for %q: factory expects more arguments than dependencies supply (%d expected, %d supplied)",
				id, required, len(factory.deps),
			)
		}

		for i, dep := range factory.deps {
			value, err := c.get(dep, s)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dependency %q of %q:\n\t%w", dep, id, err)
			}

			var paramTyp reflect.Type
			switch {
			case i < factory.requiredArgs():
				paramTyp = fnTyp.In(i)
			case fnTyp.IsVariadic():
				paramTyp = fnTyp.In(fnTyp.NumIn() - 1).Elem()
			default:
				// more dependencies than parameters, the extra ones are only resolved
				continue
			}

			arg, err := argument(value, paramTyp)
			if err != nil {
				return nil, containerError(id, err, "dependency %q cannot be passed to the factory of %q", dep, id)
			}
			args = append(args, arg)
		}
	} else {
		var err error
		args, err = c.resolveParameters(id, c.catalog.parametersOf(fnTyp, nil), s)
		if err != nil {
			return nil, err
		}
		spread = fnTyp.IsVariadic()
	}

	value, err := callFunc(fn, args, spread)
	if err != nil {
		return nil, containerError(id, err, "factory of %q failed", id)
	}

	return unwrap(value), nil
}

func (c *Container) resolveParameters(owner Identifier, params []ParameterSpec, s *session) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(params))
	for i, p := range params {
		value, err := c.resolveParameter(owner, p, s)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parameter %q of %q:\n\t%w", p.Name, owner, err)
		}
		args[i], err = argument(value, p.typ)
		if err != nil {
			return nil, containerError(owner, err, "parameter %q of %q received an incompatible value", p.Name, owner)
		}
	}
	return args, nil
}

func (c *Container) resolveParameter(owner Identifier, p ParameterSpec, s *session) (any, error) {
	if p.DeclaredType != "" && !p.Builtin {
		return c.get(p.DeclaredType, s)
	}
	if p.HasDefault {
		return p.Default, nil
	}
	return nil, unresolvableParameter(owner, p.Name)
}

func (c *Container) has(id Identifier) bool {
	if id == "" {
		return false
	}
	if id == resolverID {
		return true
	}
	if _, found := c.aliases[id]; found {
		return true
	}
	if _, found := c.resolved[id]; found {
		return true
	}
	return c.catalog.Has(id)
}

func (c *Container) set(id Identifier, value any, deps []Identifier) error {
	if err := c.checkRegistrable(id); err != nil {
		return err
	}

	var entry aliasEntry
	switch v := value.(type) {
	case Identifier:
		entry = newRedirect(v)
	case string:
		entry = newRedirect(Identifier(v))
	default:
		var err error
		entry, err = newFactory(value, deps)
		if err != nil {
			return containerError(id, err, "invalid factory for %q", id)
		}
	}

	if entry.kind == redirectEntry {
		if entry.target == "" {
			return containerError(id, nil, "cannot redirect %q to an empty identifier", id)
		}
		if entry.target == id {
			return containerError(id, nil, "cannot redirect %q to itself", id)
		}
	}

	c.aliases[id] = entry
	c.logger.Debug().Stringer("id", id).Stringer("entry", entry).Msg("registered")

	return nil
}

func (c *Container) checkRegistrable(id Identifier) error {
	if id == "" {
		return containerError(id, nil, "identifier cannot be empty")
	}
	if id == resolverID {
		return containerError(id, nil, "type %q is already registered", id)
	}
	if _, found := c.resolved[id]; found {
		return containerError(id, nil, "type %q is already resolved", id)
	}
	if _, found := c.aliases[id]; found {
		return containerError(id, nil, "type %q is already registered", id)
	}
	return nil
}

func (c *Container) store(id Identifier, value any) {
	c.resolved[id] = value
	c.order = append(c.order, id)
}
