package middleware

import (
	"strconv"
	"time"

	"fmcg-admin-api/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per matched route.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		handled(c, c.Next())

		route := c.Route().Path
		duration := time.Since(start).Seconds()

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Method(),
			route,
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Method(),
			route,
		).Observe(duration)
		return nil
	}
}
