package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskman/internal/apperr"
	"taskman/internal/auth"
	"taskman/pkg/logger"
)

const actorKey = "actor"

// Auth pulls the bearer token out of the Authorization header, runs it
// through the guard and stores the resulting actor in the request locals.
// Handlers behind this middleware can assume Actor(c) succeeds.
//
// Token parsing and verification live in the guard, not here. The
// middleware only speaks HTTP: header shape in, 401 envelope out.
func Auth(guard *auth.Guard, logs *logger.Set) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logs.Security.Warn("Missing authorization header",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
			)
			return unauthorized(c, "No token provided")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logs.Security.Warn("Malformed authorization header",
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
			)
			return unauthorized(c, "Invalid token format")
		}

		actor, err := guard.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			if errors.Is(err, apperr.ErrAuthentication) {
				logs.Security.Warn("Rejected token",
					zap.String("method", c.Method()),
					zap.String("url", c.OriginalURL()),
				)
				return unauthorized(c, "Invalid or expired token")
			}
			// Storage trouble, not a credential verdict.
			logs.Error.Error("Error authenticating request", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
				"success": false,
				"status":  fiber.StatusInternalServerError,
			})
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// Actor returns the authenticated actor stored by Auth.
func Actor(c *fiber.Ctx) (auth.Actor, bool) {
	actor, ok := c.Locals(actorKey).(auth.Actor)
	return actor, ok
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}
