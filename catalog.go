package di

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sportlog/di/option"
	"github.com/sportlog/di/reflectutils"
)

type (
	// Catalog is the registry of the types a Container knows how to build.
	//
	// Types are made known either explicitly with Define, or implicitly the
	// first time they show up as a dependency. The constructor signature of
	// each type is computed on first lookup and cached for the lifetime of the
	// catalog. A Catalog is safe for concurrent use and can be shared by
	// several containers.
	Catalog struct {
		mu          sync.RWMutex
		descriptors map[Identifier]*descriptor
		byType      map[reflect.Type]Identifier

		metadata *gocache.Cache
	}

	descriptor struct {
		id       Identifier
		typ      reflect.Type
		opts     *DefinitionOptions
		explicit bool
	}

	DefinitionOptions struct {
		named         Identifier
		constructor   any
		abstract      bool
		paramNames    []string
		defaults      map[int]any
		namedDefaults map[string]any
		injects       map[int]Identifier
	}

	// Registrar installs definitions into a catalog, generated registries
	// implement it.
	Registrar interface {
		Register(cat *Catalog)
	}

	// EmptyRegistry is embedded by the struct the generator attaches its
	// Register method to.
	EmptyRegistry struct{}
)

// Named overrides the identifier a type is defined under.
func Named(id Identifier) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.named = id
	}
}

// Constructor sets the function used to build the type. It must return the
// type, or the type and an error.
func Constructor(fn any) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.constructor = fn
	}
}

// Abstract declares the type as not instantiable, even if it could be
// allocated. Such a type needs a redirect or a factory in the container.
func Abstract() option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.abstract = true
	}
}

// ParamNames names the constructor parameters, in order.
func ParamNames(names ...string) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		opts.paramNames = names
	}
}

// Default declares the default value of the constructor parameter at index.
func Default(index int, value any) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		if opts.defaults == nil {
			opts.defaults = make(map[int]any)
		}
		opts.defaults[index] = value
	}
}

// DefaultFor declares the default value of a constructor parameter by name,
// see ParamNames.
func DefaultFor(name string, value any) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		if opts.namedDefaults == nil {
			opts.namedDefaults = make(map[string]any)
		}
		opts.namedDefaults[name] = value
	}
}

// Inject resolves the constructor parameter at index from the given
// identifier instead of the identifier of its type.
func Inject(index int, id Identifier) option.Option[DefinitionOptions] {
	return func(opts *DefinitionOptions) {
		if opts.injects == nil {
			opts.injects = make(map[int]Identifier)
		}
		opts.injects[index] = id
	}
}

func NewCatalog() *Catalog {
	return &Catalog{
		descriptors: make(map[Identifier]*descriptor),
		byType:      make(map[reflect.Type]Identifier),
		metadata:    gocache.New(gocache.NoExpiration, 0),
	}
}

// Define makes the type T known to the catalog.
func Define[T any](cat *Catalog, opts ...option.Option[DefinitionOptions]) error {
	return cat.Define(TypeOf[T](), opts...)
}

// MustDefine is like Define but panics on error.
func MustDefine[T any](cat *Catalog, opts ...option.Option[DefinitionOptions]) {
	if err := Define[T](cat, opts...); err != nil {
		panic(fmt.Sprintf("failed to define %s:\n\t%v", IdentifierOf[T](), err))
	}
}

// Define makes typ known to the catalog.
//
// A type can be defined once. Defining a type previously discovered as a
// dependency replaces the discovered definition.
func (c *Catalog) Define(typ reflect.Type, opts ...option.Option[DefinitionOptions]) error {
	if typ == nil {
		return errors.New("cannot define a nil type")
	}
	options := option.Build(&DefinitionOptions{}, opts...)
	if err := validateDefinition(typ, options); err != nil {
		return fmt.Errorf("invalid definition for %s:\n\t%w", typ, err)
	}

	id := options.named
	if id == "" {
		id = IdentifierFor(typ)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, found := c.descriptors[id]; found && existing.explicit {
		return fmt.Errorf("type %q is already defined", id)
	}
	c.descriptors[id] = &descriptor{
		id:       id,
		typ:      typ,
		opts:     options,
		explicit: true,
	}
	if previous, found := c.byType[typ]; !found || !c.descriptors[previous].explicit {
		c.byType[typ] = id
	}
	c.metadata.Delete(string(id))

	return nil
}

// Install applies the given registrars to the catalog.
func (c *Catalog) Install(registrars ...Registrar) *Catalog {
	for _, r := range registrars {
		r.Register(c)
	}
	return c
}

// Has reports whether the identifier is known to the catalog.
func (c *Catalog) Has(id Identifier) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, found := c.descriptors[id]
	return found
}

// Identifiers lists every known identifier, sorted.
func (c *Catalog) Identifiers() []Identifier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]Identifier, 0, len(c.descriptors))
	for id := range c.descriptors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Lookup returns the metadata of a type, computing and caching it on first use.
func (c *Catalog) Lookup(id Identifier) (*TypeMetadata, bool, error) {
	if cached, found := c.metadata.Get(string(id)); found {
		return cached.(*TypeMetadata), true, nil
	}

	c.mu.RLock()
	desc, found := c.descriptors[id]
	c.mu.RUnlock()
	if !found {
		return nil, false, nil
	}

	md, err := c.buildMetadata(desc)
	if err != nil {
		return nil, true, err
	}
	c.metadata.Set(string(id), md, gocache.NoExpiration)

	return md, true, nil
}

// discover returns the identifier of typ, recording typ as a known type if
// it has never been seen. Builtin types are never recorded.
func (c *Catalog) discover(typ reflect.Type) Identifier {
	c.mu.RLock()
	id, found := c.byType[typ]
	c.mu.RUnlock()
	if found {
		return id
	}

	id = IdentifierFor(typ)
	if reflectutils.IsBuiltin(typ) {
		return id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if known, found := c.byType[typ]; found {
		return known
	}
	if _, taken := c.descriptors[id]; !taken {
		c.descriptors[id] = &descriptor{
			id:   id,
			typ:  typ,
			opts: &DefinitionOptions{},
		}
	}
	c.byType[typ] = id

	return id
}

func validateDefinition(typ reflect.Type, opts *DefinitionOptions) error {
	if opts.constructor == nil {
		if len(opts.paramNames) > 0 || len(opts.defaults) > 0 || len(opts.namedDefaults) > 0 || len(opts.injects) > 0 {
			return errors.New("parameter options require a constructor")
		}
		return nil
	}

	fnTyp := reflect.TypeOf(opts.constructor)
	if err := validateFactorySignature(fnTyp); err != nil {
		return err
	}
	if !fnTyp.Out(0).AssignableTo(typ) {
		return fmt.Errorf("constructor returns %s which is not assignable to %s", fnTyp.Out(0), typ)
	}
	if len(opts.paramNames) > fnTyp.NumIn() {
		return fmt.Errorf("%d parameter names given for a constructor taking %d parameters", len(opts.paramNames), fnTyp.NumIn())
	}
	for idx, value := range opts.defaults {
		if idx < 0 || idx >= fnTyp.NumIn() {
			return fmt.Errorf("default value given for parameter %d, constructor takes %d parameters", idx, fnTyp.NumIn())
		}
		if err := checkAssignable(value, fnTyp.In(idx)); err != nil {
			return fmt.Errorf("invalid default for parameter %d:\n\t%w", idx, err)
		}
	}
	for name, value := range opts.namedDefaults {
		idx := slices.Index(opts.paramNames, name)
		if idx < 0 {
			return fmt.Errorf("default value given for unknown parameter %q", name)
		}
		if err := checkAssignable(value, fnTyp.In(idx)); err != nil {
			return fmt.Errorf("invalid default for parameter %q:\n\t%w", name, err)
		}
	}
	for idx, id := range opts.injects {
		if idx < 0 || idx >= fnTyp.NumIn() {
			return fmt.Errorf("injection given for parameter %d, constructor takes %d parameters", idx, fnTyp.NumIn())
		}
		if id == "" {
			return fmt.Errorf("empty identifier injected in parameter %d", idx)
		}
	}

	return nil
}

func checkAssignable(value any, typ reflect.Type) error {
	if value == nil {
		if isNillable(typ) {
			return nil
		}
		return fmt.Errorf("nil is not a valid value for %s", typ)
	}
	if !reflect.TypeOf(value).AssignableTo(typ) {
		return fmt.Errorf("%T is not assignable to %s", value, typ)
	}
	return nil
}

func isNillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
