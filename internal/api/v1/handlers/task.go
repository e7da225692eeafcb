package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskman/internal/apperr"
	"taskman/internal/middleware"
	"taskman/internal/repository"
)

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    string `json:"category"`
}

// UpdateTaskRequest uses pointers so an absent field and an explicit zero
// value can be told apart.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category    *string `json:"category"`
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return h.respondError(c, apperr.ErrAuthentication)
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.Logs.Error.Error("Bad request in create task", zap.Error(err))
		return h.badRequest(c, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		return h.respondError(c, &apperr.ValidationError{Fields: validationFields(err)})
	}

	task, err := h.Tasks.Create(c.UserContext(), actor, repository.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.Logs.Audit.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", actor.UserID()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data":    task,
	})
}

// ListTasks returns a page of the caller's own tasks in creation order.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return h.respondError(c, apperr.ErrAuthentication)
	}

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	tasks, err := h.Tasks.List(c.UserContext(), actor, skip, limit)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    tasks,
	})
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return h.respondError(c, apperr.ErrAuthentication)
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return h.badRequest(c, "Invalid task ID")
	}

	task, err := h.Tasks.Get(c.UserContext(), actor, taskID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    task,
	})
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return h.respondError(c, apperr.ErrAuthentication)
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return h.badRequest(c, "Invalid task ID")
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.Logs.Error.Error("Bad request in update task", zap.Error(err))
		return h.badRequest(c, "Bad request")
	}

	if err := h.Validate.Struct(req); err != nil {
		return h.respondError(c, &apperr.ValidationError{Fields: validationFields(err)})
	}

	task, err := h.Tasks.Update(c.UserContext(), actor, taskID, repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	h.Logs.Audit.Info("Task updated", zap.Int("task_id", task.ID), zap.Int("user_id", actor.UserID()))
	return c.JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  fiber.StatusOK,
		"data":    task,
	})
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return h.respondError(c, apperr.ErrAuthentication)
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return h.badRequest(c, "Invalid task ID")
	}

	if err := h.Tasks.Delete(c.UserContext(), actor, taskID); err != nil {
		return h.respondError(c, err)
	}

	h.Logs.Audit.Info("Task deleted", zap.Int("task_id", taskID), zap.Int("user_id", actor.UserID()))
	return c.JSON(fiber.Map{
		"message": "Task deleted successfully",
		"success": true,
		"status":  fiber.StatusOK,
	})
}
