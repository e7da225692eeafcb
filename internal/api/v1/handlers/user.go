package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskman/internal/apperr"
	"taskman/internal/middleware"
)

// Me returns the authenticated user's own profile. The user comes straight
// from the actor the guard built for this request, so a deactivated or
// deleted account never gets this far.
func (h *Handler) Me(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return h.respondError(c, apperr.ErrAuthentication)
	}

	return c.JSON(fiber.Map{
		"message": "User found",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    actor.User(),
	})
}
