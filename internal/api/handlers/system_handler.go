package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatsReader interface {
	Stats(ctx context.Context) (map[string]int64, error)
}

type SystemHandler struct {
	db    Pinger
	cache Pinger
	stats StatsReader
}

// NewSystemHandler builds the health, readiness and stats endpoints. cache and
// stats are nil when redis is disabled.
func NewSystemHandler(db Pinger, cache Pinger, stats StatsReader) *SystemHandler {
	return &SystemHandler{db: db, cache: cache, stats: stats}
}

func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *SystemHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"sqlite": "ok"}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		logger.Warn("Readiness check failed", zap.String("dependency", "sqlite"), zap.Error(err))
		checks["sqlite"] = err.Error()
		ready = false
	}

	if h.cache != nil {
		checks["redis"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			logger.Warn("Readiness check failed", zap.String("dependency", "redis"), zap.Error(err))
			checks["redis"] = err.Error()
			ready = false
		}
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"checks": checks,
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
		"checks": checks,
	})
}

func (h *SystemHandler) Stats(c *fiber.Ctx) error {
	if h.stats == nil {
		return c.JSON(fiber.Map{"enabled": false})
	}

	events, err := h.stats.Stats(c.UserContext())
	if err != nil {
		logger.Error("Failed to read event counters", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Event counters unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"enabled": true,
		"events":  events,
	})
}
