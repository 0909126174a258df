package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/harukilab/rhythmdb/cmd/rhythmdb/container"
	"github.com/harukilab/rhythmdb/cmd/rhythmdb/routes"
	"github.com/harukilab/rhythmdb/common/bootstrap"
	"github.com/harukilab/rhythmdb/common/db"
	"github.com/harukilab/rhythmdb/common/middleware"
	"github.com/harukilab/rhythmdb/common/server"
	"github.com/harukilab/rhythmdb/migrations"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, DB, redis, cache, metrics)
	components, err := bootstrap.Setup(ctx, "rhythmdb",
		bootstrap.WithDBInitHook(func(c *bootstrap.Components) error {
			return db.Migrate(c.Config, c.Logger, migrations.FS)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap rhythmdb: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	e := setupEcho()
	setupMiddleware(e, components)
	setupHealthCheck(e, components)
	registerRoutes(e, serviceContainer)

	// Start with graceful shutdown
	srv := server.New("rhythmdb", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	if components.RateLimiter != nil {
		e.Use(middleware.GlobalRateLimitMiddleware(
			components.RateLimiter,
			components.Config.RateLimit.GlobalLimit,
			components.Config.RateLimit.WindowSeconds,
		))
	}
}

// setupHealthCheck registers the health and metrics endpoints
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy", "error": err.Error()})
		}
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"service": "rhythmdb",
		})
	})
	e.GET("/metrics", echo.WrapHandler(components.Metrics.Handler()))
}

// registerRoutes registers the community route groups behind their
// feature flags
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	cfg := serviceContainer.Components.Config
	if cfg.Features.EnablePJSK {
		routes.RegisterAliasRoutes(e, serviceContainer)
		routes.RegisterUserRoutes(e, serviceContainer)
	}
	if cfg.Features.EnableChunithm {
		routes.RegisterChunithmRoutes(e, serviceContainer)
	}
}
