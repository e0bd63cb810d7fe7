package container

import "go.uber.org/zap"

// Option configures a Container at construction.
type Option func(*Container)

// WithLogger sets the logger used for registration, scope and build events.
// The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		if log != nil {
			c.log = log.Named("container")
		}
	}
}
