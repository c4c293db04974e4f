// Package di is a dependency injection container.
//
// A Container turns identifiers into values. An identifier names either a
// type known to the container's Catalog, or an entry registered with Set:
//
//	cat := di.NewCatalog()
//	di.MustDefine[*Server](cat, di.Constructor(NewServer), di.ParamNames("store", "port"), di.DefaultFor("port", 8080))
//	di.MustDefine[Store](cat) // an interface, not instantiable on its own
//
//	c := di.New(di.WithCatalog(cat))
//	c.MustSet(di.IdentifierOf[Store](), di.IdentifierOf[*MemoryStore]())
//	c.MustSet("clock", func() time.Time { return time.Now() })
//
//	server, err := di.Resolve[*Server](c)
//
// Values are built once and memoized: every later Get for the same
// identifier returns the same value. Constructor parameters are resolved
// recursively from their types; builtin parameters (numbers, strings, ...)
// are never resolved, they use their declared default or fail with
// ErrUnresolvableParameter. Cycles fail with ErrCircularDependency.
//
// Struct types can also be built without constructor: exported fields tagged
// `inject:""` are resolved, `default:"..."` tags give fallback values.
//
//	type Handler struct {
//		Store   Store         `inject:""`
//		Clock   time.Time     `inject:"clock"`
//		Timeout time.Duration `inject:"" default:"5s"`
//	}
//
// Errors distinguish missing entries (ErrNotFound) from entries that cannot
// be built (everything matching ErrContainer).
package di
