package container

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ScopeID is the opaque handle of an active scope.
type ScopeID string

// scope caches scoped instances for one session.
type scope struct {
	id ScopeID

	mu    sync.Mutex
	slots map[string]*slot
	ended bool
}

// slot holds at most one instance of a service. The first successful build
// wins and is never replaced.
type slot struct {
	mu       sync.Mutex
	built    bool
	instance any
}

func (s *slot) cached() (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance, s.built
}

// getOrBuild returns the cached instance, or runs build under the slot's
// lock and caches its result. created reports whether build ran and won.
func (s *slot) getOrBuild(build func() (any, error)) (instance any, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return s.instance, false, nil
	}
	instance, err = build()
	if err != nil {
		return nil, false, err
	}
	s.instance = instance
	s.built = true
	return instance, true, nil
}

func (s *scope) slotFor(name string) (*slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, s.id)
	}
	sl, ok := s.slots[name]
	if !ok {
		sl = &slot{}
		s.slots[name] = sl
	}
	return sl, nil
}

func (s *scope) cached(name string) (any, bool) {
	s.mu.Lock()
	sl, ok := s.slots[name]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return sl.cached()
}

func (s *scope) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.slots = nil
}

// scopeManager owns the set of active scopes.
type scopeManager struct {
	mu     sync.RWMutex
	active map[ScopeID]*scope
}

func newScopeManager() *scopeManager {
	return &scopeManager{active: make(map[ScopeID]*scope)}
}

func (m *scopeManager) begin() ScopeID {
	s := &scope{
		id:    ScopeID(uuid.NewString()),
		slots: make(map[string]*slot),
	}
	m.mu.Lock()
	m.active[s.id] = s
	m.mu.Unlock()
	return s.id
}

func (m *scopeManager) get(id ScopeID) (*scope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.active[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, id)
	}
	return s, nil
}

func (m *scopeManager) end(id ScopeID) error {
	m.mu.Lock()
	s, ok := m.active[id]
	delete(m.active, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScope, id)
	}
	s.end()
	return nil
}

// endAll ends every active scope and returns how many there were.
func (m *scopeManager) endAll() int {
	m.mu.Lock()
	scopes := m.active
	m.active = make(map[ScopeID]*scope)
	m.mu.Unlock()

	for _, s := range scopes {
		s.end()
	}
	return len(scopes)
}

func (m *scopeManager) ids() []ScopeID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ScopeID, 0, len(m.active))
	for id := range m.active {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
