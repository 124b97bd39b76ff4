package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/course-insights-api/internal/config"
	"github.com/noah-isme/course-insights-api/internal/database"
	"github.com/noah-isme/course-insights-api/internal/handler"
	"github.com/noah-isme/course-insights-api/internal/middleware"
	"github.com/noah-isme/course-insights-api/internal/models"
	"github.com/noah-isme/course-insights-api/internal/repository"
	"github.com/noah-isme/course-insights-api/internal/router"
	"github.com/noah-isme/course-insights-api/internal/service"
	"github.com/noah-isme/course-insights-api/internal/utils"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(&models.Course{}, &models.Step{}, &models.CourseCompletion{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, snapshot events disabled")
		natsConn = nil
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	stepRepo := repository.NewStepRepository(db)

	catalogService := service.NewCatalogService()
	courseService := service.NewCourseService(courseRepo, logger)
	dashboardService := service.NewDashboardService(courseRepo, stepRepo, redisClient, cfg.DashboardCacheTTL, logger)
	comparisonService := service.NewComparisonService(courseRepo, stepRepo, logger)
	stepService := service.NewStepAnalysisService(stepRepo, logger)
	snapshotService := service.NewSnapshotService(courseRepo, redisClient, natsConn, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.SnapshotMaxBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
			return utils.SendError(c, status, err.Error())
		},
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		APIPrefix:    router.APIPrefix,
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		CatalogHandler:   handler.NewCatalogHandler(catalogService, logger),
		CourseHandler:    handler.NewCourseHandler(courseService, logger),
		DashboardHandler: handler.NewDashboardHandler(dashboardService, comparisonService, logger),
		StepHandler:      handler.NewStepHandler(stepService, logger),
		SnapshotHandler:  handler.NewSnapshotHandler(snapshotService, cfg.SnapshotMaxBytes, logger),
		HealthProbes: []handler.HealthProbe{
			{Name: "database", Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
		},
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		ImportRateLimit:  cfg.ImportRateLimit,
		ImportRateWindow: cfg.ImportRateWindow,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("starting http server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
