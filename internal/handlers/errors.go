package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/platform/logger"
	"github.com/example/tintura/internal/store"
)

// StatusFor maps an error to the HTTP status it is answered with.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if errors.Is(err, store.ErrSchemaMismatch) {
		return fiber.StatusServiceUnavailable
	}
	kind, ok := apperr.KindOf(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindAuth:
		return fiber.StatusUnauthorized
	case apperr.KindFetch, apperr.KindSave, apperr.KindUpload:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// message is the user-facing text: the apperr message when there is one,
// never the wrapped cause.
func message(err error) string {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "Internal Server Error"
}

// ErrorHandler renders every handler error as a JSON envelope.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		} else {
			log.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   message(err),
		})
	}
}
