package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// APIVersion is the version served when the client does not ask for one
const APIVersion = "1.0.0"

// VersionMiddleware parses the X-Api-Version header, stores it in context and echoes it
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", APIVersion)

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = APIVersion
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", version)

		return c.Next()
	}
}

// APIVersionFrom returns the version stored by VersionMiddleware
func APIVersionFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals("apiVersion").(string); ok {
		return v
	}
	return APIVersion
}
