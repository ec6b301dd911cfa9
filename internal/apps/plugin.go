package apps

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every app must implement.
type Plugin interface {
	// ID returns the unique app identifier. Routes are mounted under /api/p/<ID>.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts app-specific routes on the given Fiber group.
	// The group has JWT and device middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// Drainer is implemented by plugins that run background work which must
// finish before the process exits.
type Drainer interface {
	Plugin

	Drain(ctx context.Context) error
}
