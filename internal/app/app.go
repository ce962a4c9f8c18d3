// Package app assembles the storefront's fiber application.
package app

import (
	"strings"
	"time"

	"hetave/internal/handlers"
	"hetave/internal/middleware"
	"hetave/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	rateWindow    = 15 * time.Minute
	apiRateLimit  = 300
	authRateLimit = 50

	// A product form carries a primary image and up to ten color images.
	bodyLimit = 60 << 20
)

// Deps are the services and settings the HTTP layer is built from.
type Deps struct {
	Auth       *services.AuthService
	Products   *services.ProductService
	Categories *services.CategoryService
	Orders     *services.OrderService
	Contacts   *services.ContactService

	FrontendURL string
	CORSOrigins []string
	// UploadDir, when set, is served under /uploads.
	UploadDir string
	// DisableRateLimit turns the limiters off; tests use it.
	DisableRateLimit bool
	// DisableRequestLog turns the request logger off.
	DisableRequestLog bool
}

// NewApp builds the fiber app with middleware and every API route registered.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	if !deps.DisableRequestLog {
		app.Use(logger.New())
	}
	app.Use(corsMiddleware(deps.CORSOrigins))

	if !deps.DisableRateLimit {
		app.Use("/api", rateLimiter(apiRateLimit, "Too many requests from this IP, please try again later."))
		app.Use("/api/auth", rateLimiter(authRateLimit, "Too many authentication attempts, please try again later."))
		app.Use("/api/contacts", rateLimiter(authRateLimit, "Too many contact form submissions, please try again later."))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Server is running",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir)
	}

	guards := middleware.NewGuards(deps.Auth)
	api := app.Group("/api")
	handlers.NewAuthHandler(deps.Auth, deps.FrontendURL).RegisterRoutes(api, guards)
	handlers.NewProductHandler(deps.Products).RegisterRoutes(api, guards)
	handlers.NewCategoryHandler(deps.Categories).RegisterRoutes(api, guards)
	handlers.NewOrderHandler(deps.Orders).RegisterRoutes(api, guards)
	handlers.NewContactHandler(deps.Contacts).RegisterRoutes(api, guards)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
	return app
}

func rateLimiter(limit int, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: rateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})
}

// corsMiddleware allows credentials for the configured origins. Without a
// list every origin is allowed, and credentials are not.
func corsMiddleware(origins []string) fiber.Handler {
	if len(origins) == 0 {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowCredentials: true,
	})
}
