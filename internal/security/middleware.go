package security

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

func match(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func APIKeyGuard(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !match(c.Get("X-API-Key"), apiKey) {
			return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}

func AdminGuard(admin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !match(c.Get("X-Admin-Token"), admin) {
			return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
		}
		return c.Next()
	}
}
