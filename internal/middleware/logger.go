package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskman/pkg/logger"
)

// ErrorHandler logs every incoming request and turns panics into a 500
// response. The panic value and stack go to the error log only; the client
// never sees internal detail.
func ErrorHandler(logs *logger.Set) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logs.Error.Error(fmt.Sprintf("Recovered from panic: %v", r),
					zap.String("stack", string(debug.Stack())),
				)
				c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
					"success": false,
					"status":  fiber.StatusInternalServerError,
				})
			}
		}()

		logs.Request.Info("Incoming request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		)
		return c.Next()
	}
}
