package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/course-insights-api/internal/config"
	"github.com/noah-isme/course-insights-api/internal/handler"
	"github.com/noah-isme/course-insights-api/internal/middleware"
	"github.com/noah-isme/course-insights-api/internal/observability"
)

// APIPrefix is the root of every versioned route.
const APIPrefix = "/api/v1"

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CatalogHandler   *handler.CatalogHandler
	CourseHandler    *handler.CourseHandler
	DashboardHandler *handler.DashboardHandler
	StepHandler      *handler.StepHandler
	SnapshotHandler  *handler.SnapshotHandler
	HealthProbes     []handler.HealthProbe
	JWTMiddleware    fiber.Handler
	ImportRateLimit  int
	ImportRateWindow time.Duration
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group(APIPrefix, func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	if deps.CatalogHandler != nil {
		deps.CatalogHandler.Register(api.Group("/metrics"))
	}

	courses := api.Group("/courses")
	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(courses)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(courses)
	}

	if deps.StepHandler != nil {
		deps.StepHandler.Register(api.Group("/steps"))
	}

	if deps.SnapshotHandler != nil {
		jwtMiddleware := deps.JWTMiddleware
		if jwtMiddleware == nil {
			jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
		}
		admin := api.Group("/admin",
			jwtMiddleware,
			middleware.RequireRole("admin", "teacher"),
			middleware.RateLimit("snapshot_import", deps.ImportRateLimit, deps.ImportRateWindow),
		)
		deps.SnapshotHandler.Register(admin)
	}
}
