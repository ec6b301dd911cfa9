package middleware

import (
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/device"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// DeviceRequired resolves the device id from the verified token and makes
// it available through device.GetID. It must run after JWTProtected.
func DeviceRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := device.FromToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: token does not name a device",
			})
		}
		device.Set(c, id)
		return c.Next()
	}
}
