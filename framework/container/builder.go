package container

// Builder implements the fluent descriptor API.
//
//	c.Define("users").
//	    Lifecycle(container.Scoped).
//	    DependsOn("db", "logger").
//	    Factory(func(deps []any) (any, error) { ... }).
//	    Register()
type Builder struct {
	container *Container
	desc      Descriptor
}

// Define starts a descriptor for name. The lifecycle defaults to Singleton.
func (c *Container) Define(name string) *Builder {
	return &Builder{container: c, desc: Descriptor{Name: name, Lifecycle: Singleton}}
}

// Lifecycle sets the sharing policy.
func (b *Builder) Lifecycle(l Lifecycle) *Builder {
	b.desc.Lifecycle = l
	return b
}

// DependsOn appends dependencies, in the order the factory receives them.
func (b *Builder) DependsOn(names ...string) *Builder {
	b.desc.Dependencies = append(b.desc.Dependencies, names...)
	return b
}

// Factory sets the constructor.
func (b *Builder) Factory(f Factory) *Builder {
	b.desc.Factory = f
	return b
}

// Value is a shorthand for Factory when the service is a pre-built value.
//
//	c.Define("storagePath").Value("/tmp/photos").Register()
func (b *Builder) Value(v any) *Builder {
	return b.Factory(func([]any) (any, error) { return v, nil })
}

// Descriptor returns the descriptor built so far.
func (b *Builder) Descriptor() Descriptor {
	return b.desc
}

// Register adds the descriptor to the container.
func (b *Builder) Register() error {
	return b.container.Register(b.desc)
}
