package v1

import (
	"github.com/gofiber/fiber/v2"

	"taskman/internal/api/v1/handlers"
)

// RegisterRoutes mounts the versioned API. authMW must be the guard-backed
// auth middleware; loginLimiter throttles credential guessing and applies
// to the login route only.
func RegisterRoutes(app *fiber.App, h *handlers.Handler, authMW, loginLimiter fiber.Handler) {
	api := app.Group("/api/v1")

	// Auth
	api.Post("/auth/register", h.Register)
	api.Post("/auth/login", loginLimiter, h.Login)

	// User
	userRoutes := api.Group("/users", authMW)
	userRoutes.Get("/me", h.Me)

	// Task
	taskRoutes := api.Group("/tasks", authMW)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)
}
