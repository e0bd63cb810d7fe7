package container

import (
	"fmt"
	"reflect"
	"strings"
)

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Lifecycle is the sharing policy of a service's instance.
type Lifecycle int

const (
	// Singleton services are built once and shared for the container's lifetime.
	Singleton Lifecycle = iota

	// Transient services are built anew on every resolution.
	Transient

	// Scoped services are built once per scope and never shared across scopes.
	Scoped
)

// String returns the lowercase name of the lifecycle.
func (l Lifecycle) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	default:
		return "unknown"
	}
}

// ParseLifecycle converts "singleton", "transient" or "scoped" (any case) to a Lifecycle.
func ParseLifecycle(s string) (Lifecycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "singleton":
		return Singleton, nil
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	}
	return 0, fmt.Errorf("%w: unknown lifecycle %q", ErrInvalidDescriptor, s)
}

func (l Lifecycle) valid() bool { return l >= Singleton && l <= Scoped }

// ── Descriptor ────────────────────────────────────────────────────────────────

// Self is the reserved dependency name that injects the container itself.
// It can be resolved like any other name but never registered.
const Self = "container"

// Factory builds an instance from its resolved dependencies. deps holds one
// value per declared dependency, in declaration order.
type Factory func(deps []any) (any, error)

// Descriptor is the registered metadata describing how to construct a named
// service and what it depends on.
//
//	c.Register(container.Descriptor{
//	    Name:         "users",
//	    Lifecycle:    container.Scoped,
//	    Dependencies: []string{"db", "logger"},
//	    Factory: func(deps []any) (any, error) {
//	        return NewUserRepo(deps[0].(*sql.DB), deps[1].(*zap.Logger)), nil
//	    },
//	})
type Descriptor struct {
	Name         string
	Lifecycle    Lifecycle
	Dependencies []string
	Factory      Factory
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidDescriptor)
	}
	if d.Factory == nil {
		return fmt.Errorf("%w: [%s] has no factory", ErrInvalidDescriptor, d.Name)
	}
	if !d.Lifecycle.valid() {
		return fmt.Errorf("%w: [%s] has lifecycle %d", ErrInvalidDescriptor, d.Name, d.Lifecycle)
	}
	for _, dep := range d.Dependencies {
		if dep == "" {
			return fmt.Errorf("%w: [%s] declares an empty dependency", ErrInvalidDescriptor, d.Name)
		}
	}
	return nil
}

// entry is a descriptor as owned by the store. The embedded slot is the
// singleton cache and stays empty for other lifecycles.
type entry struct {
	Descriptor
	slot
}

func newEntry(d Descriptor) *entry {
	deps := make([]string, len(d.Dependencies))
	copy(deps, d.Dependencies)
	d.Dependencies = deps
	return &entry{Descriptor: d}
}

// Info is a read-only view of a registered service.
type Info struct {
	Name         string    `json:"name"`
	Lifecycle    Lifecycle `json:"lifecycle"`
	Dependencies []string  `json:"dependencies"`
	Built        bool      `json:"built"`
}

// MarshalText lets Lifecycle appear as its name in JSON output.
func (l Lifecycle) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (l *Lifecycle) UnmarshalText(text []byte) error {
	parsed, err := ParseLifecycle(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (e *entry) info() Info {
	_, built := e.cached()
	deps := make([]string, len(e.Dependencies))
	copy(deps, e.Dependencies)
	return Info{Name: e.Name, Lifecycle: e.Lifecycle, Dependencies: deps, Built: built}
}

// ── Keys ──────────────────────────────────────────────────────────────────────

// Key normalizes a lookup key. Strings are returned unchanged; a
// reflect.Type or any other value is mapped to its package-qualified type
// name, so services can be registered and resolved by type identity.
//
//	c.Register(container.Descriptor{Name: container.Key((*UserRepository)(nil)), ...})
//	repo, err := c.Resolve(container.Key((*UserRepository)(nil)))
func Key(v any) string {
	switch k := v.(type) {
	case string:
		return k
	case reflect.Type:
		return typeKey(k)
	case nil:
		return ""
	}
	return typeKey(reflect.TypeOf(v))
}

// KeyOf returns the type key for T.
//
//	container.KeyOf[UserRepository]() == container.Key((*UserRepository)(nil))
func KeyOf[T any]() string {
	return typeKey(reflect.TypeOf((*T)(nil)).Elem())
}

func typeKey(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
