// Package container provides a string-keyed dependency-injection runtime
// and a Service Provider system for Go.
//
// # Overview
//
// The container creates, shares and discards instances on behalf of the
// application. Every service is described by a Descriptor: a unique name, a
// Lifecycle, the ordered names of its dependencies and a Factory. Go has no
// constructor reflection worth relying on, so the dependency list is always
// declared explicitly, either in code or through the manifest package.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(log))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Validate (optional): c.Validate()
//  4. Boot: registry.Boot()        — safe to resolve everything after this
//  5. Serve requests, one scope per request
//  6. Tear down: c.Clear()
//
// # Lifecycles
//
//	// Singleton — built once, reused
//	c.Singleton("db", newDB, "config")
//
//	// Transient — new instance every resolution
//	c.Bind("mailer", newMailer, "config")
//
//	// Scoped — one instance per scope
//	c.Scoped("unitOfWork", newUnitOfWork, "db")
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("config", "configuration")
//
// # Resolving
//
//	raw, err := c.Resolve("db")
//	db, err := container.Resolve[*sql.DB](c, "db")
//
//	scope := c.BeginScope()
//	defer c.EndScope(scope)
//	uow, err := container.ResolveIn[*UnitOfWork](c, scope, "unitOfWork")
//
// Dependencies are resolved depth-first in declaration order and passed to
// the factory positionally. The reserved name Self injects the container
// itself, for services that resolve collaborators lazily.
//
// # Rules
//
//   - Names are unique. Registering a taken name fails with ErrDuplicateService.
//   - A singleton is built at most once, even when first resolved concurrently.
//   - A scoped service cannot be resolved outside a scope (ErrScopeRequired)
//     and is never shared between scopes.
//   - A singleton may not depend, directly or through transient services, on
//     a scoped service. This is enforced when the singleton is resolved
//     (ErrIllegalScopedInjection) and reported up front by Validate.
//   - A service may not depend on itself within one resolution
//     (ErrCircularDependency).
//
// A factory must not resolve, through an injected container, the service it
// is currently building: the singleton or scoped slot is locked while the
// factory runs and such a call blocks forever.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(c *container.Container) error {
//	    return c.Singleton("mailer", func(deps []any) (any, error) {
//	        return mail.NewSMTP(container.Dep[*config.Config](deps, 0).Mail), nil
//	    }, "config")
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(c *container.Container) error {
//	    return c.Singleton("heavy", heavySetup) // registered on first lookup of "heavy"
//	}
package container
