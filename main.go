package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
	"github.com/km-arc/go-container/framework/routing"
)

// ── Services ─────────────────────────────────────────────────────────────────

// Visits counts requests for the lifetime of the process.
type Visits struct{ n atomic.Int64 }

// Session lives for one request.
type Session struct {
	ID    string
	Visit int64
}

// AppServiceProvider wires the example's own services.
type AppServiceProvider struct{ container.BaseProvider }

func (p *AppServiceProvider) Register(c *container.Container) error {
	if err := c.Singleton("visits", func([]any) (any, error) { return &Visits{}, nil }); err != nil {
		return err
	}
	return c.Define("session").
		Lifecycle(container.Scoped).
		DependsOn("visits", "logger").
		Factory(func(deps []any) (any, error) {
			s := &Session{
				ID:    uuid.NewString(),
				Visit: container.Dep[*Visits](deps, 0).n.Add(1),
			}
			container.Dep[*zap.Logger](deps, 1).Debug("session opened", zap.String("session", s.ID))
			return s, nil
		}).
		Register()
}

func (p *AppServiceProvider) Boot(c *container.Container) error {
	router, err := container.Resolve[*routing.Router](c, "router")
	if err != nil {
		return err
	}

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "container is up"})
	})

	router.Prefix("/api/v1", func(api *routing.Router) {
		// GET /api/v1/session — the same Session for every resolution in one request
		api.Get("/session", func(w http.ResponseWriter, r *http.Request) {
			res := gohttp.NewResponse(w)
			first, err := gohttp.Resolve[*Session](r, c, "session")
			if err != nil {
				res.ResolutionFailed(err)
				return
			}
			again, err := gohttp.Resolve[*Session](r, c, "session")
			if err != nil {
				res.ResolutionFailed(err)
				return
			}
			res.Success(map[string]any{
				"session": first.ID,
				"visit":   first.Visit,
				"shared":  first == again,
			})
		})

		// GET /api/v1/services/{name}
		api.Get("/services/{name}", func(w http.ResponseWriter, r *http.Request) {
			res := gohttp.NewResponse(w)
			info, err := c.Describe(routing.Param(r, "name"))
			if err != nil {
				res.ResolutionFailed(err)
				return
			}
			res.Success(info)
		})
	})
	return nil
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := application.Register(&AppServiceProvider{}); err != nil {
		application.Logger.Fatal("registering providers", zap.Error(err))
	}
	if err := application.LoadManifest(nil); err != nil {
		application.Logger.Fatal("loading manifest", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Fatal("server stopped", zap.Error(err))
	}
}
