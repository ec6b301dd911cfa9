package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/apps"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/apps/vibeai"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/database"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/logging"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/routes"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Structured logging (JSON to stdout)
	stdout := logging.Setup(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(database.DB); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	logging.Attach(stdout, dbLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY is not set; every scan will fail")
	}

	vibePlugin := vibeai.New(gateway.NewOpenAIClient(cfg))
	plugins := []apps.Plugin{vibePlugin}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(database.DB, models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	deviceHandler := handlers.NewDeviceHandler(services.NewDeviceService(database.DB, cfg))
	healthHandler := handlers.NewHealthHandler(vibePlugin)
	legalHandler := handlers.NewLegalHandler("Vibe AI")

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Base64 inflates images by a third; leave room for the JSON envelope.
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxImageBytes*2 + 64*1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, deviceHandler, healthHandler, legalHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Let running scans record their results before the database closes.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	for _, p := range plugins {
		if d, ok := p.(apps.Drainer); ok {
			if err := d.Drain(ctx); err != nil {
				slog.Error("plugin drain incomplete", "plugin", p.ID(), "error", err)
			}
		}
	}
	cancel()

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
