package requestlog

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/metrics"
)

const HeaderRequestID = "X-Request-ID"

// Middleware tags each request with an id, logs it once it completes and
// records its latency by route template.
func Middleware(log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals("request_id", requestID)

		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler write the response before logging it
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)
		route := c.Route().Path

		metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(latency.Seconds())

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("Request completed", fields...)
		case status >= fiber.StatusBadRequest:
			log.Warn("Request completed", fields...)
		default:
			log.Info("Request completed", fields...)
		}

		return nil
	}
}
