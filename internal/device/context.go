package device

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const localsKey = "device_id"

var ErrMissingDevice = errors.New("missing device id")

// ParseID validates a device id. Device ids are client-generated UUIDs.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// FromToken extracts the device id from the "sub" claim of a verified token.
func FromToken(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("missing sub claim")
	}

	return ParseID(sub)
}

// Set stores the device id on the request.
func Set(c *fiber.Ctx, id string) {
	c.Locals(localsKey, id)
}

// GetID returns the device id placed by the device middleware.
func GetID(c *fiber.Ctx) (string, error) {
	if id, ok := c.Locals(localsKey).(string); ok && id != "" {
		return id, nil
	}
	return "", ErrMissingDevice
}
