package di

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportlog/di/option"
	"github.com/sportlog/di/set"
)

// resolverID is the reserved identifier under which a Resolver bound to the
// ongoing resolution is injected.
var resolverID = IdentifierFor(ResolverType)

type (
	// Resolver gives access to entries of a container.
	//
	// A Resolver injected into a constructor or a factory belongs to the
	// resolution calling it: until that resolution returns it may only be
	// used synchronously, from the constructor or factory itself. Once the
	// resolution is over it behaves like the container and can be shared.
	Resolver interface {
		// Get returns the entry for id, building it on first use.
		Get(id Identifier) (any, error)
		// Has reports whether Get would not fail with ErrNotFound.
		Has(id Identifier) bool
	}

	// Container resolves identifiers into singleton values.
	//
	// Every value is built at most once and kept for the lifetime of the
	// container. Get, Has, Set and Instance are serialized, a container can
	// be shared between goroutines.
	//
	// The container is locked for the whole resolution of an entry, so
	// constructors and factories must not call the container they are
	// registered in: such a call never returns. They take a Resolver
	// parameter instead, which resolves entries within the ongoing resolution.
	Container struct {
		mu sync.Mutex

		catalog  *Catalog
		aliases  map[Identifier]aliasEntry
		resolved map[Identifier]any
		order    []Identifier

		logger zerolog.Logger
	}

	Options struct {
		catalog *Catalog
		logger  zerolog.Logger
	}

	// session is the Resolver handed to constructors and factories asking for
	// one. It shares the in-flight set of the resolution it belongs to, and
	// falls back to the container once that resolution is over.
	session struct {
		container *Container
		inflight  *inflight
		done      atomic.Bool
	}
)

// WithCatalog makes the container build types from the given catalog instead
// of a fresh one.
func WithCatalog(cat *Catalog) option.Option[Options] {
	return func(opts *Options) {
		opts.catalog = cat
	}
}

func WithLogger(logger zerolog.Logger) option.Option[Options] {
	return func(opts *Options) {
		opts.logger = logger
	}
}

func New(opts ...option.Option[Options]) *Container {
	options := option.Build(&Options{logger: zerolog.Nop()}, opts...)
	if options.catalog == nil {
		options.catalog = NewCatalog()
	}

	return &Container{
		catalog:  options.catalog,
		aliases:  make(map[Identifier]aliasEntry),
		resolved: make(map[Identifier]any),
		logger:   options.logger.With().Str("component", "di").Logger(),
	}
}

// Catalog returns the catalog the container builds types from.
func (c *Container) Catalog() *Catalog {
	return c.catalog
}

// Get returns the value for id, building it and its dependencies on first use.
//
// It fails with ErrNotFound when nothing is known about id, and with an error
// matching ErrContainer otherwise.
func (c *Container) Get(id Identifier) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.newSession()
	defer s.done.Store(true)

	start := time.Now()
	value, err := c.get(id, s)
	if err != nil {
		c.logger.Debug().Err(err).Stringer("id", id).Msg("resolution failed")
		return nil, err
	}
	c.logger.Debug().Stringer("id", id).Dur("elapsed", time.Since(start)).Msg("resolved")

	return value, nil
}

// Has reports whether Get would not fail with ErrNotFound. It does not
// guarantee Get succeeds.
func (c *Container) Has(id Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has(id)
}

// Set registers an entry for id.
//
// value is either an Identifier (or a string) id redirects to, or a factory
// function returning the value, optionally with an error. The factory is
// called with deps resolved in order, or, when no deps are given, with its
// own parameters resolved the way constructor parameters are. deps are
// ignored for redirects.
//
// A factory must not call c, it takes a Resolver parameter to reach other
// entries while it runs.
//
// An entry cannot be registered twice, nor once id has been resolved.
func (c *Container) Set(id Identifier, value any, deps ...Identifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(id, value, deps)
}

// MustSet is like Set but panics on error.
func (c *Container) MustSet(id Identifier, value any, deps ...Identifier) *Container {
	if err := c.Set(id, value, deps...); err != nil {
		panic(fmt.Sprintf("failed to register %q:\n\t%v", id, err))
	}
	return c
}

// Alias redirects id to target.
func (c *Container) Alias(id, target Identifier) error {
	return c.Set(id, target)
}

// Factory registers fn as the factory of id. fn reaches other entries through
// a Resolver parameter, never through c.
func (c *Container) Factory(id Identifier, fn any, deps ...Identifier) error {
	if reflect.TypeOf(fn) == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return containerError(id, nil, "factory for %q must be a function, got %T", id, fn)
	}
	return c.Set(id, fn, deps...)
}

// Instance stores an already built value as the resolved entry for id.
func (c *Container) Instance(id Identifier, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkRegistrable(id); err != nil {
		return err
	}
	c.store(id, value)
	c.logger.Debug().Stringer("id", id).Msg("instance registered")

	return nil
}

// Close closes the resolved values implementing io.Closer, most recently
// resolved first.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		errs   []error
		closed = set.New[any]()
	)
	for _, id := range slices.Backward(c.order) {
		closer, ok := c.resolved[id].(io.Closer)
		if !ok {
			continue
		}
		if reflect.TypeOf(closer).Comparable() && !closed.Add(closer) {
			continue
		}
		if err := closer.Close(); err != nil {
			c.logger.Warn().Err(err).Stringer("id", id).Msg("failed to close entry")
			errs = append(errs, fmt.Errorf("failed to close %q:\n\t%w", id, err))
		}
	}

	return errors.Join(errs...)
}

// Describe renders the state of the container, for debugging purposes.
func (c *Container) Describe() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString("* Aliases:\n")
	for _, id := range slices.Sorted(maps.Keys(c.aliases)) {
		fmt.Fprintf(&b, "\t- %s %s\n", id, c.aliases[id])
	}
	b.WriteString("* Catalog:\n")
	for _, id := range c.catalog.Identifiers() {
		md, _, err := c.catalog.Lookup(id)
		if err != nil {
			fmt.Fprintf(&b, "\t- %s (invalid: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(&b, "\t- %s (constructible=%t)\n", id, md.Constructible)
		for _, p := range md.Parameters {
			fmt.Fprintf(&b, "\t\t- %s\n", p)
		}
	}
	b.WriteString("* Resolved:\n")
	for _, id := range c.order {
		fmt.Fprintf(&b, "\t- %s: %T\n", id, c.resolved[id])
	}

	return b.String()
}

func (c *Container) newSession() *session {
	return &session{
		container: c,
		inflight:  newInflight(),
	}
}

// Get resolves id within the ongoing resolution, or through the container once
// that resolution is over. The in-flight path is not locked: it is only
// reached synchronously from the goroutine holding the container's lock.
func (s *session) Get(id Identifier) (any, error) {
	if s.done.Load() {
		return s.container.Get(id)
	}
	return s.container.get(id, s)
}

func (s *session) Has(id Identifier) bool {
	if s.done.Load() {
		return s.container.Has(id)
	}
	return s.container.has(id)
}
