package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/container/manifest"
	"github.com/km-arc/go-container/framework/logging"
	"github.com/km-arc/go-container/framework/providers"
	"github.com/km-arc/go-container/framework/routing"
)

// Application is the top-level application container.
// It embeds the Container and ProviderRegistry so user code can call
// app.Singleton(), app.Scoped(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Logger    *zap.Logger
}

// New loads configuration, builds the logger and registers the framework
// providers.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)

	log, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	c := container.New(container.WithLogger(log))
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Config:    cfg,
		Logger:    log,
	}

	if err := app.Register(&providers.ConfigServiceProvider{Config: cfg, Logger: log}); err != nil {
		return nil, err
	}
	if err := app.Register(&providers.RoutingServiceProvider{}); err != nil {
		return nil, err
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// LoadManifest applies the manifest named by CONTAINER_MANIFEST, if any,
// with factories from catalog.
func (a *Application) LoadManifest(catalog manifest.Catalog) error {
	path := a.Config.Container.Manifest
	if path == "" {
		return nil
	}
	m, err := manifest.Load(os.DirFS("."), path)
	if err != nil {
		return err
	}
	if err := m.Apply(a.Container, catalog); err != nil {
		return fmt.Errorf("applying manifest %s: %w", path, err)
	}
	a.Logger.Info("manifest applied", zap.String("path", path), zap.Int("services", len(m.Services)))
	return nil
}

// Boot validates the service graph (when CONTAINER_VALIDATE_ON_BOOT is set)
// and runs the Boot phase of every provider.
func (a *Application) Boot() error {
	if a.Providers.Booted() {
		return nil
	}
	if a.Config.Container.ValidateOnBoot {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("invalid service graph: %w", err)
		}
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	a.Logger.Info("application booted",
		zap.Int("services", len(a.Names())),
		zap.Int("providers", len(a.Providers.Providers())),
	)
	return nil
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Run boots the application (if needed) and serves HTTP until ctx is done,
// then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			zap.String("app", a.Config.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", a.Config.App.Env),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return a.Shutdown()
}

// Shutdown ends every scope, drops every service and flushes the logger.
func (a *Application) Shutdown() error {
	a.Clear()
	a.Logger.Info("application stopped")
	// Sync fails on stdout/stderr for some platforms; nothing to do about it.
	_ = a.Logger.Sync()
	return nil
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Config.IsProduction() }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
