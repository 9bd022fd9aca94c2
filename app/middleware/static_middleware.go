package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlugStatic screens requests under the static prefix: hidden files and
// .well-known lookups are answered without touching the filesystem.
func PlugStatic(staticPrefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()

		if strings.HasPrefix(path, staticPrefix) {
			rest := strings.TrimPrefix(path, staticPrefix)
			if strings.HasPrefix(rest, "/.") {
				return c.JSON(fiber.Map{
					"status": "ignored dynamic-static",
				})
			}
		}

		if strings.HasPrefix(path, "/.well-known/") {
			return c.JSON(fiber.Map{
				"status": "ignored dynamic-static",
			})
		}

		return c.Next()
	}
}
