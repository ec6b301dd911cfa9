package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/database"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// SessionCounter reports how many device sessions are live.
type SessionCounter interface {
	Sessions() int
}

type HealthHandler struct {
	sessions SessionCounter
	ping     func() error
}

func NewHealthHandler(sessions SessionCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions, ping: database.Ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Sessions:  h.sessions.Sessions(),
	})
}
