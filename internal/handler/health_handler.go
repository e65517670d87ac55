package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Pinger is satisfied by *cache.OverlapCache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports database and cache reachability.
func Health(db *gorm.DB, cache Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.Map{"status": "ok", "database": "ok"}
		code := fiber.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = fiber.StatusServiceUnavailable
		}
		if cache != nil {
			status["cache"] = "ok"
			if cache.Ping(ctx) != nil {
				status["cache"] = "unreachable"
			}
		}
		return c.Status(code).JSON(status)
	}
}

// Test is the liveness check the admin UI calls on start.
func Test(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Backend is working!"})
}
