// Package server wires the enabled modules into a Fiber application.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "modulith/docs" // swagger docs
	"modulith/internal/api"
	"modulith/internal/cache"
	"modulith/internal/config"
	"modulith/internal/database"
	"modulith/internal/middleware"
	"modulith/internal/modulegate"
	"modulith/internal/modules/files"
	"modulith/internal/modules/users"
	"modulith/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds the application dependencies and mounts module routes.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	gate           *modulegate.Gate
	backend        storage.Backend

	usersService *users.Service
	usersHandler *users.Handler
	filesService *files.Service
	filesHandler *files.Handler
}

// NewServer establishes database and Redis connections and builds a server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	backend, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage backend setup failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), backend)
}

// NewServerWithDeps builds a Server from already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB, Redis and
// storage itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, backend storage.Backend) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("modulith-api"),
		gate:           modulegate.NewGate(cfg.ModulesEnabled),
		backend:        backend,
	}

	s.usersService = users.NewService(db, users.NewRepository(db))
	s.usersHandler = users.NewHandler(s.usersService)

	// file_management depends on user_management through the UserDirectory
	// port, so the users service is built even when its routes are gated off.
	s.filesService = files.NewService(db, files.NewRepository(db), backend, s.usersService, cfg)
	s.filesHandler = files.NewHandler(s.filesService)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	// Propagates request ID, user ID and trace ID into the request context.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New())

	// After requestid and context middleware so log lines carry both.
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.CORSOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes mounts health checks, operational endpoints and every enabled
// module under /api/v1.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Legacy route: map /health to readiness so existing probes keep working.
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.Info)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Modulith Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	v1 := api.Group("/v1")

	if s.gate.Enabled(users.ModuleName) {
		s.usersHandler.RegisterRoutes(v1)
	}
	if s.gate.Enabled(files.ModuleName) {
		s.filesHandler.RegisterRoutes(v1)
	}
}

// Info reports the application identity and which modules are mounted.
func (s *Server) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    s.config.AppName,
		"version": s.config.AppVersion,
		"env":     s.config.Env,
		"modules": s.gate.Snapshot(database.ModuleNames()),
	})
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The database is required;
// Redis only degrades readiness when it is configured but unreachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": s.config.AppVersion,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds the Fiber application with middleware and routes mounted,
// without starting the listener.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   s.config.AppName,
		BodyLimit: int(s.config.MaxUploadSize) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			slog.ErrorContext(c.UserContext(), "unhandled request error", "error", err)
			return api.RespondError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start builds the app and blocks serving HTTP until shutdown.
func (s *Server) Start() error {
	app := s.NewApp()

	slog.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "error", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
