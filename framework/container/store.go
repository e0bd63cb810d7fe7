package container

import (
	"fmt"
	"sort"
	"sync"
)

// store maps canonical service names to their entries. Entries are never
// replaced or removed individually; clear drops them all at once.
type store struct {
	mu sync.RWMutex

	// name → entry
	entries map[string]*entry

	// alias → canonical name
	aliases map[string]string

	// name → loader that registers it on first lookup (deferred providers)
	deferred map[string]*deferredLoader
}

type deferredLoader struct {
	names   []string
	load    func() error
	once    sync.Once
	err     error
	running bool // guarded by store.mu
}

func newStore() *store {
	return &store{
		entries:  make(map[string]*entry),
		aliases:  make(map[string]string),
		deferred: make(map[string]*deferredLoader),
	}
}

// register inserts d unless its name is taken. The check and the insert
// happen under one lock so concurrent registrations of a name have a single
// winner.
func (s *store) register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(d.Name) {
		return fmt.Errorf("%w: [%s]", ErrDuplicateService, d.Name)
	}
	s.entries[d.Name] = newEntry(d)
	return nil
}

// alias makes alias resolve to name. name does not need to be registered yet.
func (s *store) alias(name, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alias == "" || name == "" {
		return fmt.Errorf("%w: alias and name cannot be empty", ErrInvalidDescriptor)
	}
	if alias == name {
		return fmt.Errorf("%w: [%s] is aliased to itself", ErrInvalidDescriptor, name)
	}
	if s.taken(alias) {
		return fmt.Errorf("%w: [%s]", ErrDuplicateService, alias)
	}
	s.aliases[alias] = s.canonical(name)
	return nil
}

// deferTo installs a loader that runs on the first lookup miss for any of names.
func (s *store) deferTo(names []string, load func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if s.taken(name) {
			return fmt.Errorf("%w: [%s]", ErrDuplicateService, name)
		}
	}
	l := &deferredLoader{names: names, load: load}
	for _, name := range names {
		s.deferred[name] = l
	}
	return nil
}

// lookup returns the entry for name (or one of its aliases). A miss on a
// deferred name runs its loader once and retries.
func (s *store) lookup(name string) (*entry, bool, error) {
	s.mu.RLock()
	key := s.canonical(name)
	e, ok := s.entries[key]
	l := s.deferred[key]
	s.mu.RUnlock()

	if ok || l == nil {
		return e, ok, nil
	}

	if err := s.runDeferred(l); err != nil {
		return nil, false, fmt.Errorf("loading deferred [%s]: %w", key, err)
	}

	s.mu.RLock()
	e, ok = s.entries[key]
	s.mu.RUnlock()
	return e, ok, nil
}

// runDeferred executes l exactly once. While it runs, its names accept a
// registration; afterwards they are no longer deferred. A failed loader stays
// installed so later lookups report the same error.
func (s *store) runDeferred(l *deferredLoader) error {
	l.once.Do(func() {
		s.mu.Lock()
		l.running = true
		s.mu.Unlock()

		l.err = l.load()

		s.mu.Lock()
		l.running = false
		if l.err == nil {
			for _, name := range l.names {
				if s.deferred[name] == l {
					delete(s.deferred, name)
				}
			}
		}
		s.mu.Unlock()
	})
	return l.err
}

func (s *store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	s.aliases = make(map[string]string)
	s.deferred = make(map[string]*deferredLoader)
}

func (s *store) bound(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := s.canonical(name)
	_, ok := s.entries[key]
	_, lazy := s.deferred[key]
	return ok || lazy
}

// names returns every registered and deferred name, sorted.
func (s *store) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries)+len(s.deferred))
	for name := range s.entries {
		out = append(out, name)
	}
	for name := range s.deferred {
		if _, already := s.entries[name]; !already {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// infos describes every registered entry, sorted by name, without
// triggering deferred loaders.
func (s *store) infos() []Info {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	// info waits on slots being built; never under mu
	out := make([]Info, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// snapshot returns the current entries, reachable by name and by alias,
// and the names still owned by deferred loaders, without triggering them.
func (s *store) snapshot() (map[string]*entry, map[string]bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deferred := make(map[string]bool, len(s.deferred))
	for name := range s.deferred {
		if _, ok := s.entries[name]; !ok {
			deferred[name] = true
		}
	}
	for alias, target := range s.aliases {
		if deferred[target] {
			deferred[alias] = true
		}
	}
	out := make(map[string]*entry, len(s.entries)+len(s.aliases))
	for k, v := range s.entries {
		out[k] = v
	}
	for alias, target := range s.aliases {
		if e, ok := s.entries[target]; ok {
			out[alias] = e
		}
	}
	return out, deferred
}

// taken reports whether name is unavailable for a new registration (must hold mu).
func (s *store) taken(name string) bool {
	if name == Self {
		return true
	}
	_, isEntry := s.entries[name]
	_, isAlias := s.aliases[name]
	l, isDeferred := s.deferred[name]
	return isEntry || isAlias || (isDeferred && !l.running)
}

// canonical resolves an alias to its canonical name (must hold mu).
func (s *store) canonical(name string) string {
	if target, ok := s.aliases[name]; ok {
		return target
	}
	return name
}
