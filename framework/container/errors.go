package container

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateService is returned when a name (or alias) is already registered.
	ErrDuplicateService = errors.New("service already registered")

	// ErrNotFound is returned when the requested name has no descriptor.
	ErrNotFound = errors.New("service not found")

	// ErrScopeRequired is returned when a scoped service is resolved without a scope.
	ErrScopeRequired = errors.New("scoped service resolved outside a scope")

	// ErrUnknownScope is returned for a scope handle that is not active.
	ErrUnknownScope = errors.New("unknown scope")

	// ErrCircularDependency is returned when a service depends on itself
	// within one resolution. The message includes the full chain.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrUnresolvedDependency is returned when a declared dependency has no descriptor.
	ErrUnresolvedDependency = errors.New("unresolved dependency")

	// ErrIllegalScopedInjection is returned when a singleton directly or
	// transitively requires a scoped service.
	ErrIllegalScopedInjection = errors.New("singleton cannot depend on scoped service")

	// ErrInvalidDescriptor is returned by Register for malformed descriptors.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrFactoryFailed is returned when a factory returns an error or panics.
	ErrFactoryFailed = errors.New("factory failed")
)

// ResolutionError carries the context of a failed resolution: which service
// was being built, which dependency was at fault and the chain that led there.
type ResolutionError struct {
	Kind       error    // one of the Err* sentinels
	Service    string   // service being resolved when the failure occurred
	Dependency string   // offending dependency, if any
	Chain      []string // resolution chain, outermost first
	Err        error    // underlying cause (factory errors)
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("container: ")
	b.WriteString(e.Kind.Error())

	switch {
	case errors.Is(e.Kind, ErrCircularDependency):
		fmt.Fprintf(&b, ": %s", strings.Join(e.Chain, " -> "))
	case e.Dependency != "":
		fmt.Fprintf(&b, ": [%s] requires [%s]", e.Service, e.Dependency)
	default:
		fmt.Fprintf(&b, ": [%s]", e.Service)
	}

	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the sentinel kind and the underlying cause to errors.Is / errors.As.
func (e *ResolutionError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func resolutionError(kind error, service, dependency string, chain []string) *ResolutionError {
	return &ResolutionError{Kind: kind, Service: service, Dependency: dependency, Chain: chain}
}
