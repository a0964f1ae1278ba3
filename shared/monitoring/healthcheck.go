package monitoring

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts /health and /status on the given router.
func RegisterRoutes(r fiber.Router, monitor *Monitor) {
	r.Get("/health", func(c *fiber.Ctx) error {
		if monitor.IsHealthy() {
			return c.Status(fiber.StatusOK).SendString("OK - " + monitor.GetStatusSummary())
		}
		return c.Status(fiber.StatusServiceUnavailable).SendString("Service unhealthy - " + monitor.GetStatusSummary())
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fiber.StatusOK).SendString(monitor.GetStatusSummary())
	})
}
