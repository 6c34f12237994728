package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/interview"
	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
)

// HTTPStatus maps engine errors onto response codes.
func HTTPStatus(err error) int {
	var validation *interview.ValidationError
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrAlreadyAnswered):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorBody is the JSON error for err. notFound replaces the generic text for
// 404s so each route can name what was missing.
func errorBody(err error, notFound string) (int, fiber.Map) {
	status := HTTPStatus(err)

	var message string
	switch status {
	case fiber.StatusBadRequest:
		message = err.Error()
	case fiber.StatusNotFound:
		message = notFound
	case fiber.StatusConflict:
		message = "Question already answered"
	default:
		logger.Error("Request failed", zap.Error(err))
		message = "Internal server error"
	}

	return status, fiber.Map{"error": message}
}

func writeError(c *fiber.Ctx, err error, notFound string) error {
	status, body := errorBody(err, notFound)
	return c.Status(status).JSON(body)
}

func methodNotAllowed(allowed string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Use " + allowed})
	}
}

// ErrorHandler is the fiber fallback for errors that escape a handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
