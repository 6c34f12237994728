package validation

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Config caps the length of free-text JSON fields. Bodies that are not JSON
// objects pass through untouched; the handlers treat them as empty.
type Config struct {
	// FieldLimits maps a JSON field name to its maximum length in characters.
	FieldLimits map[string]int
	Logger      *zap.Logger
}

func Middleware(cfg Config) fiber.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	validate := validator.New()

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || len(cfg.FieldLimits) == 0 {
			return c.Next()
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(c.Body(), &fields); err != nil {
			return c.Next()
		}

		for name, limit := range cfg.FieldLimits {
			raw, ok := fields[name]
			if !ok || limit <= 0 {
				continue
			}

			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				continue
			}

			if err := validate.Var(value, fmt.Sprintf("max=%d", limit)); err != nil {
				cfg.Logger.Warn("Request field too long",
					zap.String("field", name),
					zap.Int("length", len(value)),
					zap.Int("limit", limit),
					zap.String("path", c.Path()),
				)
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": fmt.Sprintf("%s exceeds maximum length of %d characters", name, limit),
				})
			}
		}

		return c.Next()
	}
}
