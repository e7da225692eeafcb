package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskman/internal/apperr"
	"taskman/internal/auth"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,excludesall=@?"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account. Duplicate email or username comes back as a
// 409 naming the offending field; the race between two simultaneous
// registrations is settled by the unique indexes, not by a pre-check.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		h.Logs.Error.Error("Bad request in register", zap.Error(err))
		return h.badRequest(c, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		h.Logs.Audit.Warn("Validation error during register", zap.Error(err))
		return h.respondError(c, &apperr.ValidationError{Fields: validationFields(err)})
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Logs.Error.Error("Error hashing password", zap.Error(err))
		return h.respondError(c, err)
	}

	user, err := h.Users.Create(c.UserContext(), req.Email, req.Username, hashed)
	if err != nil {
		var conflict *apperr.ConflictError
		if errors.As(err, &conflict) {
			h.Logs.Security.Warn("Duplicate registration",
				zap.String("field", conflict.Field),
				zap.String("username", req.Username),
			)
		}
		return h.respondError(c, err)
	}

	h.Logs.Audit.Info("User registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login verifies credentials and returns a signed token. Unknown username,
// wrong password and deactivated account all produce the same 401 body so
// the response cannot be used to enumerate accounts.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.Logs.Error.Error("Bad request in login", zap.Error(err))
		return h.badRequest(c, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		h.Logs.Audit.Warn("Validation error during login", zap.Error(err))
		return h.respondError(c, &apperr.ValidationError{Fields: validationFields(err)})
	}

	user, err := h.Users.GetByUsername(c.UserContext(), req.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			h.Logs.Security.Warn("Login for unknown username", zap.String("username", req.Username))
			return h.invalidCredentials(c)
		}
		return h.respondError(c, err)
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		h.Logs.Security.Warn("Wrong password", zap.String("username", req.Username))
		return h.invalidCredentials(c)
	}

	if !user.IsActive {
		h.Logs.Security.Warn("Login for inactive account", zap.String("username", req.Username))
		return h.invalidCredentials(c)
	}

	token, err := h.Tokens.Issue(strconv.Itoa(user.ID))
	if err != nil {
		h.Logs.Error.Error("Error generating token", zap.Error(err))
		return h.respondError(c, err)
	}

	h.Logs.Audit.Info("Login success", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"message": "Login success",
		"success": true,
		"status":  fiber.StatusOK,
		"data": fiber.Map{
			"user_id": user.ID,
			"token":   token,
		},
	})
}

func (h *Handler) invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid credentials",
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}
