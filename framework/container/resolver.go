package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── Resolution ────────────────────────────────────────────────────────────────

// resolveName is the entry point of one top-level resolution.
func (c *Container) resolveName(r *resolution, name string) (any, error) {
	if name == Self {
		return c, nil
	}

	e, ok, err := c.store.lookup(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, resolutionError(ErrNotFound, name, "", nil)
	}
	return c.build(r, e)
}

// build produces an instance of e, resolving its dependencies depth-first in
// declaration order and applying e's lifecycle.
//
// Dependencies are resolved before the instance's slot is locked; only the
// factory call and the cache write run under the lock. A goroutine therefore
// never holds one slot while waiting on another.
func (c *Container) build(r *resolution, e *entry) (any, error) {
	switch e.Lifecycle {
	case Scoped:
		if r.scope == nil {
			return nil, resolutionError(ErrScopeRequired, e.Name, "", r.path())
		}
		if inst, ok := r.scope.cached(e.Name); ok {
			return inst, nil
		}
	case Singleton:
		if inst, ok := e.cached(); ok {
			return inst, nil
		}
	}

	if err := r.enter(e.Name); err != nil {
		return nil, err
	}
	defer r.leave(e.Name)

	prev := r.singleton
	if e.Lifecycle == Singleton {
		r.singleton = e.Name
	}
	defer func() { r.singleton = prev }()

	deps, err := c.dependencies(r, e)
	if err != nil {
		return nil, err
	}

	construct := func() (any, error) { return c.invoke(r, e, deps) }

	var (
		inst    any
		created bool
	)
	switch e.Lifecycle {
	case Singleton:
		inst, created, err = e.getOrBuild(construct)
	case Scoped:
		sl, serr := r.scope.slotFor(e.Name)
		if serr != nil {
			return nil, resolutionError(ErrUnknownScope, e.Name, "", r.path())
		}
		inst, created, err = sl.getOrBuild(construct)
	default:
		inst, err = construct()
		created = err == nil
	}
	if err != nil {
		return nil, err
	}

	if created {
		c.log.Debug("instance built",
			zap.String("service", e.Name),
			zap.Stringer("lifecycle", e.Lifecycle),
		)
	}
	return inst, nil
}

// dependencies resolves e's declared dependencies in order.
func (c *Container) dependencies(r *resolution, e *entry) ([]any, error) {
	deps := make([]any, len(e.Dependencies))

	for i, name := range e.Dependencies {
		if name == Self {
			deps[i] = c
			continue
		}

		dep, ok, err := c.store.lookup(name)
		if err != nil {
			return nil, &ResolutionError{
				Kind:       ErrUnresolvedDependency,
				Service:    e.Name,
				Dependency: name,
				Chain:      r.path(),
				Err:        err,
			}
		}
		if !ok {
			return nil, resolutionError(ErrUnresolvedDependency, e.Name, name, r.path())
		}

		if dep.Lifecycle == Scoped && r.singleton != "" {
			return nil, resolutionError(ErrIllegalScopedInjection, r.singleton, dep.Name, r.path())
		}

		v, err := c.build(r, dep)
		if err != nil {
			return nil, err
		}
		deps[i] = v
	}
	return deps, nil
}

// invoke calls e's factory, turning a returned error or a panic into
// ErrFactoryFailed.
func (c *Container) invoke(r *resolution, e *entry, deps []any) (inst any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &ResolutionError{
				Kind:    ErrFactoryFailed,
				Service: e.Name,
				Chain:   r.path(),
				Err:     fmt.Errorf("panic: %v", p),
			}
		}
	}()

	inst, err = e.Factory(deps)
	if err != nil {
		return nil, &ResolutionError{Kind: ErrFactoryFailed, Service: e.Name, Chain: r.path(), Err: err}
	}
	return inst, nil
}
