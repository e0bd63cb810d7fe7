package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container"
)

type scopeKey struct{}

// ScopeMiddleware begins a container scope for every request and ends it
// once the handler returns, so Scoped services live exactly as long as the
// request.
//
//	router.Middleware(gohttp.ScopeMiddleware(c, log))
func ScopeMiddleware(c *container.Container, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := c.BeginScope()
			defer func() {
				if err := c.EndScope(scope); err != nil {
					log.Warn("ending request scope", zap.String("scope", string(scope)), zap.Error(err))
				}
			}()
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope container.ScopeID) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope stored in ctx by ScopeMiddleware.
func ScopeFrom(ctx context.Context) (container.ScopeID, bool) {
	scope, ok := ctx.Value(scopeKey{}).(container.ScopeID)
	return scope, ok
}

// Resolve resolves name within the request's scope, or outside any scope
// when the request did not pass through ScopeMiddleware.
//
//	users, err := gohttp.Resolve[*UserRepo](r, c, "users")
func Resolve[T any](r *http.Request, c *container.Container, name string) (T, error) {
	if scope, ok := ScopeFrom(r.Context()); ok {
		return container.ResolveIn[T](c, scope, name)
	}
	return container.Resolve[T](c, name)
}
