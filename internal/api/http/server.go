package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weatherboard/internal/autocomplete"
	"github.com/i474232898/weatherboard/internal/chess"
	"github.com/i474232898/weatherboard/internal/weather"
)

// Deps are the components served over HTTP.
type Deps struct {
	Weather  *weather.Service
	Sessions *autocomplete.Sessions
	Chess    *chess.Game

	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// LookupTimeout bounds asynchronous lookups. Zero means no bound.
	LookupTimeout time.Duration
	// AccessLog enables the request logger middleware.
	AccessLog bool
	Logger    *slog.Logger
}

// NewApp builds the Fiber app with middleware, health, metrics and API routes.
func NewApp(deps Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weatherboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError && code != fiber.StatusBadGateway && code != fiber.StatusServiceUnavailable {
				deps.Logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherboard",
		})
	})

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	RegisterRoutes(app, deps)
	return app
}
