package middleware

import (
	"errors"

	"fmcg-admin-api/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the fiber.Config ErrorHandler. It maps *apperror.Error and
// *fiber.Error onto the JSON envelope. Internal causes are logged, never sent.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var appErr *apperror.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Kind.Status()
		msg = appErr.Message
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		msg = fiberErr.Message
	}

	logger := log.Ctx(c.UserContext())
	switch {
	case code >= fiber.StatusInternalServerError:
		logger.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("request failed")
	case apperror.Is(err, apperror.KindForbidden):
		logger.Warn().Str("path", c.Path()).Str("ip", c.IP()).Msg("admin PIN rejected")
	default:
		logger.Debug().Err(err).Int("status", code).Str("kind", apperror.KindOf(err).String()).Msg("request rejected")
	}

	return c.Status(code).JSON(fiber.Map{"success": false, "error": msg})
}

// handled runs the error handler for a chain error so that the final status
// is visible to the middleware that called c.Next.
func handled(c *fiber.Ctx, chainErr error) {
	if chainErr == nil {
		return
	}
	if err := c.App().ErrorHandler(c, chainErr); err != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
