package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/apps"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	deviceHandler *handlers.DeviceHandler,
	healthHandler *handlers.HealthHandler,
	legalHandler *handlers.LegalHandler,
	plugins []apps.Plugin,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Legal pages (linked from the paywall)
	api.Get("/legal/privacy", legalHandler.PrivacyPolicy)
	api.Get("/legal/terms", legalHandler.TermsOfService)

	// Device auth: 10 req/min per IP (stricter)
	dev := api.Group("/device")
	dev.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	dev.Post("/register", deviceHandler.Register)
	dev.Post("/token", deviceHandler.Token)

	// Plugin routes - a protected group so JWT never touches public routes
	protected := api.Group("/p", middleware.JWTProtected(cfg), middleware.DeviceRequired())
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, cfg)
	}
}
