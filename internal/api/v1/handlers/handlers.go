package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskman/internal/apperr"
	"taskman/internal/auth"
	"taskman/internal/repository"
	"taskman/pkg/logger"
)

// Handler holds every dependency the API handlers need. Nothing here is
// global; main wires one Handler and hands it to the router.
type Handler struct {
	Users    *repository.UserStore
	Tasks    *repository.TaskStore
	Tokens   *auth.TokenManager
	Validate *validator.Validate
	Logs     *logger.Set
}

func New(users *repository.UserStore, tasks *repository.TaskStore, tokens *auth.TokenManager, logs *logger.Set) *Handler {
	return &Handler{
		Users:    users,
		Tasks:    tasks,
		Tokens:   tokens,
		Validate: validator.New(),
		Logs:     logs,
	}
}

// respondError translates a domain error into the response envelope.
// Anything unrecognized is a 500 with a generic body; the detail goes to
// the error log and never to the client.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var validation *apperr.ValidationError
	var conflict *apperr.ConflictError
	switch {
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  validation.Fields,
			"success": false,
			"status":  fiber.StatusBadRequest,
		})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": titleCase(conflict.Field) + " already exists",
			"success": false,
			"status":  fiber.StatusConflict,
		})
	case errors.Is(err, apperr.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Task not found",
			"success": false,
			"status":  fiber.StatusNotFound,
		})
	case errors.Is(err, apperr.ErrAuthentication):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
			"success": false,
			"status":  fiber.StatusUnauthorized,
		})
	default:
		h.Logs.Error.Error("Internal error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"success": false,
			"status":  fiber.StatusInternalServerError,
		})
	}
}

func (h *Handler) badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  fiber.StatusBadRequest,
	})
}

// validationFields flattens validator.ValidationErrors into a field to
// message map for the errors envelope key.
func validationFields(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
	}
	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// Conflict fields are ASCII column names, so byte slicing is safe.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
