package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/models"
)

const sessionContextKey = "adminSession"

// Authenticator resolves a bearer token to a live admin session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AdminSession, error)
}

// AuthMiddleware validates the admin bearer token against its session row
// and stores the session in the request context.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperr.Auth("missing authorization header", nil)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperr.Auth("invalid authorization header", nil)
		}

		session, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return apperr.Auth("session expired, sign in again", err)
		}

		c.Locals(sessionContextKey, session)
		return c.Next()
	}
}

// CurrentSession extracts the authenticated admin session from context.
func CurrentSession(c *fiber.Ctx) (*models.AdminSession, bool) {
	session, ok := c.Locals(sessionContextKey).(*models.AdminSession)
	return session, ok && session != nil
}

// CurrentSessionID is CurrentSession narrowed to the id.
func CurrentSessionID(c *fiber.Ctx) (uuid.UUID, bool) {
	session, ok := CurrentSession(c)
	if !ok {
		return uuid.Nil, false
	}
	return session.ID, true
}
