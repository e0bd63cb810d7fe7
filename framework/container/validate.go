package container

import (
	"errors"
	"sort"
)

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// Validate checks the whole registered graph without building anything and
// returns every problem found, joined: dependencies with no descriptor,
// cycles, and singletons that would capture a scoped service. Services of
// deferred providers that have not been loaded yet are not inspected.
//
// Resolve enforces the same rules lazily; Validate is for failing fast at boot.
func (c *Container) Validate() error {
	entries, deferred := c.store.snapshot()

	names := make([]string, 0, len(entries))
	for name, e := range entries {
		if name == e.Name {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	v := &validator{entries: entries, deferred: deferred, states: make(map[string]visitState)}
	for _, name := range names {
		v.visit(entries[name], nil)
	}
	for _, name := range names {
		if e := entries[name]; e.Lifecycle == Singleton {
			v.checkCaptive(e)
		}
	}
	return errors.Join(v.errs...)
}

type validator struct {
	entries  map[string]*entry
	deferred map[string]bool // satisfied by a loader, not inspected
	states   map[string]visitState
	errs    []error
}

// visit walks the graph depth-first, reporting missing dependencies and
// every back edge as a cycle.
func (v *validator) visit(e *entry, stack []string) {
	switch v.states[e.Name] {
	case visiting:
		chain := append(append([]string{}, stack[indexOf(stack, e.Name):]...), e.Name)
		v.errs = append(v.errs, resolutionError(ErrCircularDependency, e.Name, "", chain))
		return
	case visited:
		return
	}

	v.states[e.Name] = visiting
	stack = append(stack, e.Name)

	for _, name := range e.Dependencies {
		if name == Self || v.deferred[name] {
			continue
		}
		dep, ok := v.entries[name]
		if !ok {
			v.errs = append(v.errs, resolutionError(ErrUnresolvedDependency, e.Name, name, nil))
			continue
		}
		v.visit(dep, stack)
	}

	v.states[e.Name] = visited
}

// checkCaptive reports the first scoped service reachable from singleton s
// through non-singleton dependencies. Nested singletons are checked on
// their own.
func (v *validator) checkCaptive(s *entry) {
	seen := map[string]bool{s.Name: true}
	queue := []*entry{s}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		for _, name := range e.Dependencies {
			dep, ok := v.entries[name]
			if !ok || seen[dep.Name] {
				continue
			}
			seen[dep.Name] = true

			switch dep.Lifecycle {
			case Scoped:
				v.errs = append(v.errs, resolutionError(ErrIllegalScopedInjection, s.Name, dep.Name, nil))
				return
			case Transient:
				queue = append(queue, dep)
			}
		}
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}
