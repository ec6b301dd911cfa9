package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/services"
	"github.com/gofiber/fiber/v2"
)

type DeviceHandler struct {
	deviceService *services.DeviceService
}

func NewDeviceHandler(deviceService *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// Register handles POST /api/device/register
func (h *DeviceHandler) Register(c *fiber.Ctx) error {
	var req dto.DeviceAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.deviceService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDeviceTaken):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidDeviceID), errors.Is(err, services.ErrWeakSecret):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("device registration failed", "action", "device_register", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Token handles POST /api/device/token
func (h *DeviceHandler) Token(c *fiber.Ctx) error {
	var req dto.DeviceAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.deviceService.Token(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("device token failed", "action", "device_token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.JSON(resp)
}
