package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
	"github.com/km-arc/go-container/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration and the root logger.
//
// Bound names:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
//   - "logger"         → *zap.Logger
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
	Logger *zap.Logger
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	if err := app.Instance("config", p.Config); err != nil {
		return err
	}
	if err := app.Alias("config", "configuration"); err != nil {
		return err
	}
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return app.Instance("logger", log)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound names:
//   - "router"  → *routing.Router
//
// When the application runs in debug mode, Boot mounts the container
// inspector at /debug/container.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	return app.Define("router").
		DependsOn(container.Self, "logger").
		Factory(func(deps []any) (any, error) {
			return routing.New(
				container.Dep[*container.Container](deps, 0),
				container.Dep[*zap.Logger](deps, 1),
			), nil
		}).
		Register()
}

func (p *RoutingServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if !cfg.App.Debug {
		return nil
	}
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}
	router.Get("/debug/container", gohttp.Inspect(app))
	return nil
}
