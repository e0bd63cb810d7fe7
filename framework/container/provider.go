package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registration of related services.
//
// Register is called to add descriptors. Boot is called after ALL eager
// providers have been registered, making it safe to resolve other services
// inside Boot.
//
//	type CacheProvider struct{ container.BaseProvider }
//
//	func (p *CacheProvider) Register(c *container.Container) error {
//	    return c.Singleton("cache", func(deps []any) (any, error) {
//	        return cache.NewRedis(container.Dep[*config.Config](deps, 0))
//	    }, "config")
//	}
//
//	func (p *CacheProvider) Boot(c *container.Container) error {
//	    _, err := c.Resolve("cache") // warm up
//	    return err
//	}
type ServiceProvider interface {
	// Register adds descriptors to the container.
	// Do NOT resolve other services here — use Boot() for that.
	Register(c *Container) error

	// Boot is called after all eager providers are registered.
	Boot(c *Container) error

	// Provides returns the service names this provider registers.
	// Only consulted for deferred providers.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() names is first looked up.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(c *container.Container) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Eager providers are registered immediately (and
// booted immediately if the registry already booted). Deferred providers
// are registered the first time one of their names is looked up.
// Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	booted := r.booted
	r.mu.Unlock()

	if provider.IsDeferred() {
		return r.deferProvider(provider)
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("registering provider %T: %w", provider, err)
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	r.mu.Unlock()

	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting provider %T: %w", provider, err)
		}
	}
	return nil
}

// deferProvider installs a loader for the provider's names. The loader runs
// the provider's Register, then its Boot if the registry has booted.
func (r *ProviderRegistry) deferProvider(provider ServiceProvider) error {
	names := provider.Provides()
	if len(names) == 0 {
		return fmt.Errorf("deferred provider %T provides no services", provider)
	}

	return r.app.store.deferTo(names, func() error {
		if err := provider.Register(r.app); err != nil {
			return fmt.Errorf("registering provider %T: %w", provider, err)
		}
		if r.Booted() {
			if err := provider.Boot(r.app); err != nil {
				return fmt.Errorf("booting provider %T: %w", provider, err)
			}
		}
		return nil
	})
}

// Boot calls Boot() on all eager providers, in registration order. Calling
// it again is a no-op.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting provider %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
