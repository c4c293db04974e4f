package di

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_Get(t *testing.T) {
	t.Run("it should build a struct without constructor nor definition", func(t *testing.T) {
		// GIVEN
		c := New()

		// WHEN
		user, err := Resolve[*DummyUser](c)

		// THEN
		require.NoError(t, err)
		assert.NotNil(t, user)
	})

	t.Run("it should return the same instance on multiple resolves", func(t *testing.T) {
		// GIVEN
		var calls atomic.Int64
		cat := NewCatalog()
		MustDefine[*Counted](cat, Constructor(newCounted(&calls)))
		c := New(WithCatalog(cat))

		// WHEN
		first, err := Resolve[*Counted](c)
		require.NoError(t, err)
		second, err := Resolve[*Counted](c)
		require.NoError(t, err)

		// THEN
		assert.Same(t, first, second)
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("it should share the instance between a redirect and its target", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))

		// WHEN
		viaInterface, err := c.Get(dummyInterfaceID)
		require.NoError(t, err)
		direct, err := c.Get(dummyID)
		require.NoError(t, err)

		// THEN
		assert.Implements(t, (*DummyInterface)(nil), viaInterface)
		assert.Same(t, direct, viaInterface)
	})

	t.Run("it should serve a redirect from the memo when the target is already resolved", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Alias(dummyInterfaceID, dummyID))
		direct, err := c.Get(dummyID)
		require.NoError(t, err)

		// WHEN
		viaInterface, err := c.Get(dummyInterfaceID)

		// THEN
		require.NoError(t, err)
		assert.Same(t, direct, viaInterface)
	})

	t.Run("it should inject the redirected instance into dependents", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))

		// WHEN
		foo, err := Resolve[*Foo](c)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "foo", foo.GetFoo())
		dummy, err := c.Get(dummyInterfaceID)
		require.NoError(t, err)
		assert.Same(t, dummy, foo.dummy)
	})

	t.Run("it should use the declared default of a builtin parameter", func(t *testing.T) {
		// GIVEN
		cat := NewCatalog()
		MustDefine[*Server](cat,
			Constructor(NewServer),
			ParamNames("port", "host"),
			Default(0, 8080),
			DefaultFor("host", "localhost"),
		)
		c := New(WithCatalog(cat))

		// WHEN
		server, err := Resolve[*Server](c)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 8080, server.Port)
		assert.Equal(t, "localhost", server.Host)
	})

	t.Run("it should use the default of an optional parameter", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))

		// WHEN
		dummy, err := Resolve[*Dummy](c)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "", dummy.optionalValue)
	})

	t.Run("it should fail on a builtin parameter without default", func(t *testing.T) {
		// GIVEN
		cat := NewCatalog()
		MustDefine[*Server](cat, Constructor(NewServer), ParamNames("port", "host"), Default(1, "localhost"))
		c := New(WithCatalog(cat))

		// WHEN
		_, err := Resolve[*Server](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnresolvableParameter)
		assert.ErrorIs(t, err, ErrContainer)
		assert.False(t, IsNotFound(err))
		assert.Contains(t, err.Error(), `cannot resolve parameter "port"`)
	})

	t.Run("it should fail on an untyped parameter without default", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("untyped", func(v any) string { return fmt.Sprint(v) }))

		// WHEN
		_, err := c.Get("untyped")

		// THEN
		assert.ErrorIs(t, err, ErrUnresolvableParameter)
	})

	t.Run("it should fail with not found for an unknown identifier", func(t *testing.T) {
		// GIVEN
		c := New()

		// WHEN
		_, err := c.Get("unregistered.typeName")

		// THEN
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.NotErrorIs(t, err, ErrContainer)
		var diErr *Error
		require.ErrorAs(t, err, &diErr)
		assert.Equal(t, Identifier("unregistered.typeName"), diErr.ID)
	})

	t.Run("it should fail with not instantiable for an interface without registration", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))

		// WHEN
		_, err := Resolve[DummyInterface](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotInstantiable)
		assert.ErrorIs(t, err, ErrContainer)
		assert.False(t, IsNotFound(err))
	})

	t.Run("it should fail to build a type depending on an unregistered interface", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))

		// WHEN
		_, err := Resolve[*Foo](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotInstantiable)
		assert.Contains(t, err.Error(), `failed to resolve parameter "dummy"`)
	})

	t.Run("it should detect a type requiring itself and stay usable", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))

		// WHEN
		_, err := Resolve[*DummyRecursive](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCircularDependency)
		assert.ErrorIs(t, err, ErrContainer)

		dummy, err := Resolve[*Dummy](c)
		require.NoError(t, err)
		assert.NotNil(t, dummy)

		_, err = Resolve[*DummyRecursive](c)
		assert.ErrorIs(t, err, ErrCircularDependency, "a failed resolution must not be memoized")
	})

	t.Run("it should render the chain of an indirect cycle", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))

		// WHEN
		_, err := Resolve[*Left](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCircularDependency)
		left, right := string(IdentifierOf[*Left]()), string(IdentifierOf[*Right]())
		assert.Contains(t, err.Error(), left+"\n\t -> "+right+"\n\t\t -> "+left)
	})

	t.Run("it should follow chains of redirects", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set("first", "second"))
		require.NoError(t, c.Set("second", dummyInterfaceID))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))

		// WHEN
		first, err := c.Get("first")
		require.NoError(t, err)
		direct, err := c.Get(dummyID)
		require.NoError(t, err)

		// THEN
		assert.Same(t, direct, first)
	})

	t.Run("it should fail on a redirect loop", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("a", "b"))
		require.NoError(t, c.Set("b", "c"))
		require.NoError(t, c.Set("c", "a"))

		// WHEN
		_, err := c.Get("a")

		// THEN
		assert.ErrorIs(t, err, ErrCircularDependency)
	})

	t.Run("it should use the factory at the end of a redirect chain", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("greeting", "message"))
		require.NoError(t, c.Set("message", func() string { return "hello" }))

		// WHEN
		value, err := Get[string](c, "greeting")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "hello", value)
	})

	t.Run("it should build structs from their tagged fields", func(t *testing.T) {
		// GIVEN
		cat := newTestCatalog()
		MustDefine[*Server](cat, Constructor(NewServer), Default(0, 80), Default(1, "example.org"))
		c := New(WithCatalog(cat))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))
		require.NoError(t, c.Set("label", func() string { return "main" }))

		// WHEN
		handler, err := Resolve[*Handler](c)

		// THEN
		require.NoError(t, err)
		dummy, _ := c.Get(dummyID)
		assert.Same(t, dummy, handler.Dummy)
		assert.Equal(t, 80, handler.Server.Port)
		assert.Equal(t, "handler", handler.Name)
		assert.Equal(t, 3, handler.Retries)
		assert.Equal(t, "main", handler.Label)
	})

	t.Run("it should resolve a parameter from an injected identifier", func(t *testing.T) {
		// GIVEN
		cat := NewCatalog()
		MustDefine[*Server](cat, Constructor(NewServer), Inject(0, "http.port"), Default(1, "localhost"))
		c := New(WithCatalog(cat))
		require.NoError(t, c.Set("http.port", func() int { return 9000 }))

		// WHEN
		server, err := Resolve[*Server](c)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 9000, server.Port)
	})

	t.Run("it should wrap the error returned by a constructor", func(t *testing.T) {
		// GIVEN
		cat := NewCatalog()
		MustDefine[*Server](cat, Constructor(NewBrokenServer))
		c := New(WithCatalog(cat))

		// WHEN
		_, err := Resolve[*Server](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.ErrorIs(t, err, ErrContainer)
		assert.False(t, isResolved(c, serverID))
	})

	t.Run("it should recover from a panicking constructor", func(t *testing.T) {
		// GIVEN
		cat := NewCatalog()
		MustDefine[*Server](cat, Constructor(func() *Server { panic("kaboom") }))
		c := New(WithCatalog(cat))

		// WHEN
		_, err := Resolve[*Server](c)

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrContainer)
		assert.Contains(t, err.Error(), "kaboom")

		_, err = Resolve[*DummyUser](c)
		assert.NoError(t, err)
	})

	t.Run("it should inject a resolver bound to the ongoing resolution", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))
		require.NoError(t, c.Set("lazy", func(r Resolver) (DummyInterface, error) {
			return Get[DummyInterface](r, dummyInterfaceID)
		}))

		// WHEN
		lazy, err := c.Get("lazy")

		// THEN
		require.NoError(t, err)
		direct, err := c.Get(dummyID)
		require.NoError(t, err)
		assert.Same(t, direct, lazy)
	})

	t.Run("it should detect cycles going through an injected resolver", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("self", func(r Resolver) (any, error) {
			return r.Get("self")
		}))

		// WHEN
		_, err := c.Get("self")

		// THEN
		assert.ErrorIs(t, err, ErrCircularDependency)
	})

	t.Run("it should keep an injected resolver usable after the resolution", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set("resolver", func(r Resolver) Resolver { return r }))
		r, err := Get[Resolver](c, "resolver")
		require.NoError(t, err)

		// WHEN
		dummy, err := r.Get(dummyID)

		// THEN
		require.NoError(t, err)
		assert.NotNil(t, dummy)
		assert.True(t, r.Has(dummyID))
	})

	t.Run("it should let a factory reach another entry through its resolver", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Instance("dep", 41))
		require.NoError(t, c.Set("outer", func(r Resolver) (int, error) {
			dep, err := Get[int](r, "dep")
			return dep + 1, err
		}))

		// WHEN
		outer, err := Get[int](c, "outer")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 42, outer)
	})

	t.Run("it should lock an injected resolver shared between goroutines after the resolution", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set("resolver", func(r Resolver) Resolver { return r }))
		r, err := Get[Resolver](c, "resolver")
		require.NoError(t, err)

		// WHEN
		var (
			wg      sync.WaitGroup
			results = make([]any, 16)
			errs    = make([]error, 16)
		)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = r.Get(dummyID)
				errs[i] = errors.Join(errs[i], c.Instance(Identifier(fmt.Sprintf("instance.%d", i)), i))
			}()
		}
		wg.Wait()

		// THEN
		for i := range results {
			require.NoError(t, errs[i])
			assert.Same(t, results[0], results[i])
			assert.True(t, r.Has(Identifier(fmt.Sprintf("instance.%d", i))))
		}
	})

	t.Run("it should fail when the entry is not of the requested type", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("answer", func() int { return 42 }))

		// WHEN
		_, err := Get[string](c, "answer")

		// THEN
		assert.ErrorIs(t, err, ErrContainer)
		assert.Contains(t, err.Error(), "is a int, not a string")
	})

	t.Run("it should serialize concurrent resolutions", func(t *testing.T) {
		// GIVEN
		var calls atomic.Int64
		cat := NewCatalog()
		MustDefine[*Counted](cat, Constructor(newCounted(&calls)))
		c := New(WithCatalog(cat))

		// WHEN
		var wg sync.WaitGroup
		results := make([]*Counted, 16)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = MustResolve[*Counted](c)
			}()
		}
		wg.Wait()

		// THEN
		assert.Equal(t, int64(1), calls.Load())
		for _, r := range results {
			assert.Same(t, results[0], r)
		}
	})

	t.Run("it should log resolutions", func(t *testing.T) {
		// GIVEN
		var buf bytes.Buffer
		c := New(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

		// WHEN
		_, err := Resolve[*DummyUser](c)

		// THEN
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"message":"resolved"`)
		assert.Contains(t, buf.String(), `"component":"di"`)
	})
}

func TestContainer_Factory(t *testing.T) {
	t.Run("it should return the value produced by a factory", func(t *testing.T) {
		// GIVEN
		c := New()
		dummy := &Dummy{}
		require.NoError(t, c.Set(dummyInterfaceID, func() DummyInterface { return dummy }))

		// WHEN
		value, err := c.Get(dummyInterfaceID)

		// THEN
		require.NoError(t, err)
		assert.True(t, c.Has(dummyInterfaceID))
		assert.Same(t, dummy, value)
	})

	t.Run("it should resolve the factory parameters when no dependency is given", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(fooID, func(dummy *Dummy) *Foo { return NewFoo(dummy) }))

		// WHEN
		foo, err := Get[*Foo](c, fooID)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "foo", foo.GetFoo())
	})

	t.Run("it should store any value, not only objects", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("foo", func() string { return "some string" }))

		// WHEN
		value, err := c.Get("foo")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "some string", value)
	})

	t.Run("it should call the factory with the given dependencies", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))
		require.NoError(t, c.Set(fooID, func(dummy DummyInterface) *Foo { return NewFoo(dummy) }, dummyInterfaceID))

		// WHEN
		foo, err := Get[*Foo](c, fooID)

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "foo", foo.GetFoo())
	})

	t.Run("it should fail when the factory expects more arguments than dependencies", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set("pair", func(a *Dummy, b *DummyUser) string { return "pair" }, dummyID))

		// WHEN
		_, err := c.Get("pair")

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrContainer)
		assert.Contains(t, err.Error(), "factory expects more arguments than dependencies supply")
		assert.False(t, isResolved(c, "pair"))
	})

	t.Run("it should check the factory arity before resolving its dependencies", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set("pair", func(a, b int) int { return a + b }, "missing"))

		// WHEN
		_, err := c.Get("pair")

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrContainer)
		assert.False(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "(2 expected, 1 supplied)")
	})

	t.Run("it should resolve extra dependencies without passing them", func(t *testing.T) {
		// GIVEN
		cat := newTestCatalog()
		MustDefine[*DummyUser](cat)
		c := New(WithCatalog(cat))
		require.NoError(t, c.Set("single", func(d *Dummy) string { return d.Name() }, dummyID, IdentifierOf[*DummyUser]()))

		// WHEN
		value, err := c.Get("single")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "dummy", value)
		assert.True(t, isResolved(c, IdentifierOf[*DummyUser]()))
	})

	t.Run("it should pass trailing dependencies to a variadic factory", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("a", func() string { return "a" }))
		require.NoError(t, c.Set("b", func() string { return "b" }))
		require.NoError(t, c.Set("c", func() string { return "c" }))
		require.NoError(t, c.Set("joined", func(first string, rest ...string) string {
			return first + "+" + strings.Join(rest, "+")
		}, "a", "b", "c"))

		// WHEN
		value, err := Get[string](c, "joined")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "a+b+c", value)
	})

	t.Run("it should call a variadic factory without dependencies", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("count", func(values ...string) int { return len(values) }))

		// WHEN
		value, err := Get[int](c, "count")

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 0, value)
	})

	t.Run("it should call the factory once", func(t *testing.T) {
		// GIVEN
		var calls atomic.Int64
		c := New()
		require.NoError(t, c.Set("counted", newCounted(&calls)))

		// WHEN
		first, err := c.Get("counted")
		require.NoError(t, err)
		second, err := c.Get("counted")
		require.NoError(t, err)

		// THEN
		assert.Same(t, first, second)
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("it should memoize the value only under the requested identifier", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set("custom.dummy", func() *Dummy { return NewDummy("custom") }))

		// WHEN
		custom, err := c.Get("custom.dummy")
		require.NoError(t, err)
		regular, err := c.Get(dummyID)
		require.NoError(t, err)

		// THEN
		assert.NotSame(t, custom, regular)
	})

	t.Run("it should wrap the error returned by the factory", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("broken", func() (string, error) { return "", errBoom }))

		// WHEN
		_, err := c.Get("broken")

		// THEN
		assert.ErrorIs(t, err, errBoom)
		assert.ErrorIs(t, err, ErrContainer)
	})

	t.Run("it should reject a dependency of an incompatible type", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("number", func() int { return 1 }))
		require.NoError(t, c.Set("text", func(s string) string { return s }, "number"))

		// WHEN
		_, err := c.Get("text")

		// THEN
		assert.ErrorIs(t, err, ErrContainer)
		assert.Contains(t, err.Error(), "int is not assignable to string")
	})

	t.Run("it should surface a missing dependency as not found", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("needs.missing", func(v any) any { return v }, "missing"))

		// WHEN
		_, err := c.Get("needs.missing")

		// THEN
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), `failed to resolve dependency "missing"`)
	})
}

func TestContainer_Set(t *testing.T) {
	t.Run("it should refuse to register a resolved identifier", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))
		_, err := c.Get(dummyID)
		require.NoError(t, err)

		// WHEN
		err = c.Set(dummyID, "somethingElse")

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrContainer)
		assert.Contains(t, err.Error(), "already resolved")
	})

	t.Run("it should refuse to register an identifier twice", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))

		// WHEN
		err := c.Set(dummyInterfaceID, "alreadyRegistered")

		// THEN
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrContainer)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("it should refuse to register again a redirect that was used", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))
		_, err := c.Get(dummyInterfaceID)
		require.NoError(t, err)

		// WHEN
		err = c.Set(dummyInterfaceID, "alreadyRegistered")

		// THEN
		assert.ErrorIs(t, err, ErrContainer)
	})

	testCases := []struct {
		name     string
		id       Identifier
		value    any
		expected string
	}{
		{name: "an empty identifier", id: "", value: "target", expected: "identifier cannot be empty"},
		{name: "a redirect to itself", id: "self", value: "self", expected: "cannot redirect \"self\" to itself"},
		{name: "a redirect to nothing", id: "void", value: "", expected: "empty identifier"},
		{name: "a value that is neither an identifier nor a function", id: "number", value: 42, expected: "factory must be a function"},
		{name: "a factory returning nothing", id: "nothing", value: func() {}, expected: "must either return the instance and an error"},
		{name: "a factory returning a non error second value", id: "pair", value: func() (int, int) { return 1, 2 }, expected: "must return an error as the second element"},
		{name: "the reserved resolver identifier", id: IdentifierOf[Resolver](), value: "other", expected: "already registered"},
	}
	for _, tc := range testCases {
		t.Run("it should refuse "+tc.name, func(t *testing.T) {
			// GIVEN
			c := New()

			// WHEN
			err := c.Set(tc.id, tc.value)

			// THEN
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrContainer)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}

	t.Run("it should refuse a factory registered with a non function", func(t *testing.T) {
		// GIVEN
		c := New()

		// WHEN
		err := c.Factory("text", "not a function")

		// THEN
		assert.ErrorIs(t, err, ErrContainer)
		assert.False(t, c.Has("text"))
	})

	t.Run("it should panic on MustSet failures", func(t *testing.T) {
		// GIVEN
		c := New().MustSet("a", "b")

		// THEN
		assert.Panics(t, func() { c.MustSet("a", "c") })
	})
}

func TestContainer_Has(t *testing.T) {
	t.Run("it should know defined types", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))

		// WHEN / THEN
		assert.True(t, c.Has(fooID))
		assert.True(t, c.Has(dummyInterfaceID), "not instantiable types are still known")
	})

	t.Run("it should not know unknown identifiers", func(t *testing.T) {
		// GIVEN
		c := New()

		// WHEN / THEN
		assert.False(t, c.Has("SomeClass"))
		assert.False(t, c.Has(""))
	})

	t.Run("it should know registered identifiers", func(t *testing.T) {
		// GIVEN
		c := New()
		assert.False(t, c.Has(fooInterfaceID))

		// WHEN
		require.NoError(t, c.Set(fooInterfaceID, fooID))

		// THEN
		assert.True(t, c.Has(fooInterfaceID))
	})

	t.Run("it should know a factory even if it cannot succeed", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("doomed", func(port int) int { return port }))

		// WHEN / THEN
		assert.True(t, c.Has("doomed"))
		_, err := c.Get("doomed")
		assert.ErrorIs(t, err, ErrUnresolvableParameter)
	})

	t.Run("it should know types discovered as dependencies", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(NewCatalog()))
		require.NoError(t, c.Set("user.holder", func(u *DummyUser) *DummyUser { return u }))
		assert.False(t, c.Has(IdentifierOf[*DummyUser]()))

		// WHEN
		_, err := c.Get("user.holder")

		// THEN
		require.NoError(t, err)
		assert.True(t, c.Has(IdentifierOf[*DummyUser]()))
	})

	t.Run("it should know instances and the injected resolver", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Instance("config", map[string]string{"env": "test"}))

		// WHEN / THEN
		assert.True(t, c.Has("config"))
		assert.True(t, c.Has(IdentifierOf[Resolver]()))
	})
}

func TestContainer_Instance(t *testing.T) {
	t.Run("it should return the given instance", func(t *testing.T) {
		// GIVEN
		c := New()
		server := &Server{Port: 1}
		require.NoError(t, c.Instance(serverID, server))

		// WHEN
		resolved, err := Resolve[*Server](c)

		// THEN
		require.NoError(t, err)
		assert.Same(t, server, resolved)
	})

	t.Run("it should inject the instance into dependents", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		dummy := NewDummy("provided")
		require.NoError(t, c.Instance(dummyInterfaceID, dummy))

		// WHEN
		foo, err := Resolve[*Foo](c)

		// THEN
		require.NoError(t, err)
		assert.Same(t, dummy, foo.dummy)
	})

	t.Run("it should refuse an identifier already registered or resolved", func(t *testing.T) {
		// GIVEN
		c := New()
		require.NoError(t, c.Set("alias", "target"))
		require.NoError(t, c.Instance("value", 1))

		// WHEN
		errRegistered := c.Instance("alias", 2)
		errResolved := c.Instance("value", 3)

		// THEN
		assert.ErrorContains(t, errRegistered, "already registered")
		assert.ErrorContains(t, errResolved, "already resolved")
	})
}

func TestContainer_Close(t *testing.T) {
	t.Run("it should close resolved entries in reverse order", func(t *testing.T) {
		// GIVEN
		var closed []string
		c := New()
		require.NoError(t, c.Set("first", func() *Closing { return &Closing{name: "first", closed: &closed} }))
		require.NoError(t, c.Set("second", func(_ *Closing) *Closing {
			return &Closing{name: "second", closed: &closed}
		}, "first"))
		require.NoError(t, c.Set("unused", func() *Closing { return &Closing{name: "unused", closed: &closed} }))
		_, err := c.Get("second")
		require.NoError(t, err)

		// WHEN
		err = c.Close()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first"}, closed)
	})

	t.Run("it should close a value shared by several identifiers once", func(t *testing.T) {
		// GIVEN
		var closed []string
		c := New()
		shared := &Closing{name: "shared", closed: &closed}
		require.NoError(t, c.Instance("one", shared))
		require.NoError(t, c.Instance("two", shared))

		// WHEN
		err := c.Close()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, []string{"shared"}, closed)
	})

	t.Run("it should join close errors", func(t *testing.T) {
		// GIVEN
		var closed []string
		c := New()
		require.NoError(t, c.Instance("one", &Closing{name: "one", closed: &closed, err: errBoom}))
		require.NoError(t, c.Instance("two", &Closing{name: "two", closed: &closed, err: errors.New("bang")}))

		// WHEN
		err := c.Close()

		// THEN
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "bang")
		assert.Len(t, closed, 2)
	})
}

func TestContainer_Describe(t *testing.T) {
	t.Run("it should describe aliases, catalog and resolved entries", func(t *testing.T) {
		// GIVEN
		c := New(WithCatalog(newTestCatalog()))
		require.NoError(t, c.Set(dummyInterfaceID, dummyID))
		_, err := Resolve[*Foo](c)
		require.NoError(t, err)

		// WHEN
		description := c.Describe()

		// THEN
		assert.Contains(t, description, "* Aliases:\n\t- "+string(dummyInterfaceID)+" -> "+string(dummyID))
		assert.Contains(t, description, string(fooID)+" (constructible=true)")
		assert.Contains(t, description, string(dummyInterfaceID)+" (constructible=false)")
		assert.Contains(t, description, "\t\t- dummy "+string(dummyInterfaceID))
		assert.Contains(t, description, "* Resolved:\n\t- "+string(dummyID)+": *di.Dummy\n\t- "+string(fooID)+": *di.Foo")
	})
}

func isResolved(c *Container, id Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, found := c.resolved[id]
	return found
}
