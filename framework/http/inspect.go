package http

import (
	"net/http"

	"github.com/km-arc/go-container/framework/container"
)

// Inspect returns a handler that describes the container's registered
// services and active scopes as JSON. Deferred services that have not been
// loaded yet are listed by name only and stay unloaded.
//
//	GET /debug/container
//	{"data": {"services": [...], "deferred": [...], "active_scopes": 1}}
func Inspect(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := c.Services()

		loaded := make(map[string]bool, len(services))
		for _, info := range services {
			loaded[info.Name] = true
		}
		deferred := []string{}
		for _, name := range c.Names() {
			if !loaded[name] {
				deferred = append(deferred, name)
			}
		}

		NewResponse(w).Success(map[string]any{
			"services":      services,
			"deferred":      deferred,
			"active_scopes": len(c.Scopes()),
		})
	}
}
