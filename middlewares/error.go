package middlewares

import (
	"errors"
	"log/slog"
	"strings"

	"restaurant-pos/database"
	"restaurant-pos/logger"
	"restaurant-pos/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// 1) Fiber errors (use their status code + message)
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		// 2) Validation errors (422 + per-field info)
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(map[string]string, len(ve))
			for _, fe := range ve {
				out[fe.Field()] = fe.Tag()
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "validation failed",
				"errors":  out,
			})
		}

		// 3) Domain errors
		switch {
		case errors.Is(err, models.ErrValidation):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": domainMessage(err, models.ErrValidation)})
		case errors.Is(err, models.ErrState):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": domainMessage(err, models.ErrState)})
		case errors.Is(err, database.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
		case errors.Is(err, database.ErrStaleWrite):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "record changed on another terminal, reload and retry"})
		case errors.Is(err, database.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "conflicts with an existing record"})
		}

		// 4) Unknown errors (500)
		log.Error("http_request", RequestID(c), "internal error", err,
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}

// domainMessage strips the sentinel prefix ("validation error: ") so the
// client sees only the reason.
func domainMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[:i] + msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

// RequestID returns the id assigned by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
