package container

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the dependency-injection runtime: it stores service
// descriptors, resolves them recursively, and shares instances according to
// each service's Lifecycle.
//
// It supports:
//   - Register / Bind / Singleton / Scoped / Instance / Alias
//   - Resolve / ResolveIn (and the generic Resolve, ResolveIn, MustResolve)
//   - BeginScope / EndScope for scoped services
//   - Deferred service providers (see ProviderRegistry)
//   - Validate for an eager check of the whole graph
//
// A Container is safe for concurrent use. Ending a scope (or clearing the
// container) while resolutions against it are still running is the caller's
// responsibility to avoid.
type Container struct {
	store  *store
	scopes *scopeManager
	log    *zap.Logger
}

// New creates an empty container. The container itself is always resolvable
// under the reserved name Self.
func New(opts ...Option) *Container {
	c := &Container{
		store:  newStore(),
		scopes: newScopeManager(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds a descriptor. It fails with ErrDuplicateService if the name
// is already registered, aliased, deferred or reserved; the store is left
// unchanged in that case.
func (c *Container) Register(d Descriptor) error {
	if err := c.store.register(d); err != nil {
		return err
	}
	c.log.Debug("service registered",
		zap.String("service", d.Name),
		zap.Stringer("lifecycle", d.Lifecycle),
		zap.Strings("dependencies", d.Dependencies),
	)
	return nil
}

// Bind registers a transient service: a new instance on every resolution.
//
//	c.Bind("mailer", func(deps []any) (any, error) {
//	    return mail.NewSMTP(deps[0].(*config.Config)), nil
//	}, "config")
func (c *Container) Bind(name string, factory Factory, deps ...string) error {
	return c.Register(Descriptor{Name: name, Lifecycle: Transient, Dependencies: deps, Factory: factory})
}

// Singleton registers a service whose instance is built once and reused.
//
//	c.Singleton("cache", func(deps []any) (any, error) {
//	    return cache.NewRedis(deps[0].(*config.Config))
//	}, "config")
func (c *Container) Singleton(name string, factory Factory, deps ...string) error {
	return c.Register(Descriptor{Name: name, Lifecycle: Singleton, Dependencies: deps, Factory: factory})
}

// Scoped registers a service with one instance per scope.
func (c *Container) Scoped(name string, factory Factory, deps ...string) error {
	return c.Register(Descriptor{Name: name, Lifecycle: Scoped, Dependencies: deps, Factory: factory})
}

// Instance registers a pre-built value as a singleton.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(name string, instance any) error {
	return c.Singleton(name, func([]any) (any, error) { return instance, nil })
}

// Alias registers an alternative name for a service. Lookups through the
// alias reach the same descriptor (and the same singleton instance).
//
//	c.Alias("config", "configuration")
func (c *Container) Alias(name, alias string) error {
	return c.store.alias(name, alias)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve returns an instance of the named service outside any scope.
// Resolving a Scoped service this way fails with ErrScopeRequired.
//
//	raw, err := c.Resolve("cache")
func (c *Container) Resolve(name string) (any, error) {
	return c.resolveName(newResolution(nil), name)
}

// ResolveIn returns an instance of the named service within scope. Scoped
// services are cached in the scope; singletons and transients behave as in
// Resolve.
func (c *Container) ResolveIn(scope ScopeID, name string) (any, error) {
	s, err := c.scopes.get(scope)
	if err != nil {
		return nil, resolutionError(ErrUnknownScope, name, "", nil)
	}
	return c.resolveName(newResolution(s), name)
}

// ── Scopes ────────────────────────────────────────────────────────────────────

// BeginScope creates a scope with an empty instance cache and returns its handle.
func (c *Container) BeginScope() ScopeID {
	id := c.scopes.begin()
	c.log.Debug("scope begun", zap.String("scope", string(id)))
	return id
}

// EndScope discards the scope's instances. Later resolutions against the
// handle fail with ErrUnknownScope, and so does ending it twice.
func (c *Container) EndScope(scope ScopeID) error {
	if err := c.scopes.end(scope); err != nil {
		return err
	}
	c.log.Debug("scope ended", zap.String("scope", string(scope)))
	return nil
}

// Scopes returns the handles of all active scopes, sorted.
func (c *Container) Scopes() []ScopeID {
	return c.scopes.ids()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Clear removes every descriptor, alias and deferred provider, and ends every
// active scope. The container stays usable and Self still resolves.
func (c *Container) Clear() {
	ended := c.scopes.endAll()
	c.store.clear()
	c.log.Debug("container cleared", zap.Int("scopes_ended", ended))
}

// Bound reports whether name (or an alias of it) is registered or deferred.
func (c *Container) Bound(name string) bool {
	return name == Self || c.store.bound(name)
}

// Names returns all registered and deferred service names, sorted.
func (c *Container) Names() []string {
	return c.store.names()
}

// Services describes every registered service, sorted by name. Deferred
// services that have not been loaded yet are not included.
func (c *Container) Services() []Info {
	return c.store.infos()
}

// Describe returns a read-only view of a registered service.
func (c *Container) Describe(name string) (Info, error) {
	e, ok, err := c.store.lookup(name)
	if err != nil {
		return Info{}, err
	}
	if !ok {
		return Info{}, resolutionError(ErrNotFound, name, "", nil)
	}
	return e.info(), nil
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve resolves name outside any scope and type-asserts the result.
//
//	// Instead of: raw, err := c.Resolve("db"); db := raw.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, name string) (T, error) {
	instance, err := c.Resolve(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return assert[T](name, instance)
}

// ResolveIn resolves name within scope and type-asserts the result.
func ResolveIn[T any](c *Container, scope ScopeID, name string) (T, error) {
	instance, err := c.ResolveIn(scope, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return assert[T](name, instance)
}

// MustResolve is like Resolve but panics on failure. Intended for bootstrap
// code where a missing service is a programming error.
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}

// Dep returns deps[i] as T. It is meant for use inside factories, where a
// wrong type is a wiring bug; the panic is reported as ErrFactoryFailed. A nil
// dependency yields the zero value of T.
//
//	func(deps []any) (any, error) {
//	    return &UserRepo{DB: container.Dep[*sql.DB](deps, 0)}, nil
//	}
func Dep[T any](deps []any, i int) T {
	if deps[i] == nil {
		var zero T
		return zero
	}
	typed, ok := deps[i].(T)
	if !ok {
		panic(fmt.Sprintf("container: dependency %d is %T, not %s", i, deps[i], typeName[T]()))
	}
	return typed
}

func assert[T any](name string, instance any) (T, error) {
	if instance == nil {
		var zero T
		return zero, nil
	}
	typed, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("container: [%s] resolved to %T, not %s", name, instance, typeName[T]())
	}
	return typed, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
