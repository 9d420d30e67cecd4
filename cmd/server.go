package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/config"
	"github.com/mutuo-app/mutuo/pkg/errx"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

func main() {
	// 1. Initialize Logger
	logx.SetLevel(logx.ParseLevel(getEnv("LOG_LEVEL", "info")))

	cfg := config.Load()
	logx.Infof("Starting %s...", cfg.App.Name)

	// 2. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 3. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		IdleTimeout:           120 * time.Second,
	})

	// 4. Global Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 5. Health Check
	app.Get("/health", healthCheckHandler(container))

	// 6. Register Routes
	guards := container.Authz.GuardMiddleware

	// Authentication: /auth/login, /auth/refresh, /auth/logout, /auth/me
	container.Authz.AuthHandlers.RegisterRoutes(app, guards)
	logx.Info("Auth routes registered")

	// Protected resource views. Each resource route carries its ownership
	// guard; level routes carry administrative-reach guards.
	api := app.Group("/api/v1", guards.Authenticate())
	api.Get("/members/:memberId", guards.RequireResource("member", "memberId"), memberViewHandler)
	api.Get("/agents/:agentId", guards.RequireResource("agent", "agentId"), agentViewHandler)
	api.Get("/units/:unitId", guards.RequireResource("unit", "unitId"), unitViewHandler)
	api.Get("/areas/:areaId", guards.RequireLevel(authz.AdminLevelArea), areaViewHandler)
	api.Get("/forums/:forumId", guards.RequireLevel(authz.AdminLevelForum), forumViewHandler)
	logx.Info("Resource routes registered")

	// 7. 404 Handler
	app.Use(notFoundHandler)

	// 8. Start Server with Graceful Shutdown
	startServer(app, cfg.App.Port)
}

// ============================================================================
// Handler Functions
// ============================================================================

// healthCheckHandler returns a health check handler
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": container.Config.App.Name,
		}

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

// The resource view handlers are intentionally thin: by the time they run,
// the guard chain has already decided access.

func memberViewHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"member_id": c.Params("memberId")})
}

func agentViewHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"agent_id": c.Params("agentId")})
}

func unitViewHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"unit_id": c.Params("unitId")})
}

func areaViewHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"area_id": c.Params("areaId")})
}

func forumViewHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"forum_id": c.Params("forumId")})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Error Handler
// ============================================================================

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.Get("X-Request-ID"),
	}).Errorf("Request error: %v", err)

	// If it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error":      e.Message,
			"code":       "FIBER_ERROR",
			"request_id": c.Get("X-Request-ID"),
		})
	}

	// If it's our custom errx.Error
	if e, ok := err.(*errx.Error); ok {
		response := fiber.Map{
			"error":      e.Message,
			"code":       e.Code,
			"type":       string(e.Type),
			"request_id": c.Get("X-Request-ID"),
		}
		if len(e.Details) > 0 {
			response["details"] = e.Details
		}
		return c.Status(e.HTTPStatus).JSON(response)
	}

	// Default unknown error
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      "Internal Server Error",
		"code":       "INTERNAL_ERROR",
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Utility Functions
// ============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// startServer starts the server with graceful shutdown
func startServer(app *fiber.App, port string) {
	go func() {
		logx.Infof("Server listening on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

// gracefulShutdown handles graceful server shutdown
func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("Received signal: %v, shutting down gracefully...", sig)

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("Server exited")
}
