package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/api/handlers"
	"github.com/interview-sim/backend/internal/cache/redis"
	"github.com/interview-sim/backend/internal/ingestion"
	"github.com/interview-sim/backend/internal/interview"
	"github.com/interview-sim/backend/internal/metrics"
	"github.com/interview-sim/backend/internal/middleware/ratelimit"
	"github.com/interview-sim/backend/internal/middleware/requestlog"
	"github.com/interview-sim/backend/internal/middleware/security"
	"github.com/interview-sim/backend/internal/middleware/validation"
	"github.com/interview-sim/backend/internal/storage/sqlite"
	"github.com/interview-sim/backend/pkg/config"
	"github.com/interview-sim/backend/pkg/logger"
)

type server struct {
	app     *fiber.App
	db      *sqlite.Client
	cache   *redis.Client
	limiter *ratelimit.RateLimiter
}

// newServer opens the stores and assembles the fiber app. Redis is optional;
// when it is disabled keywords are extracted on every start and event
// counters are not kept.
func newServer(cfg *config.Config) (*server, error) {
	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	srv := &server{db: db}

	var (
		keywordCache interview.KeywordCache
		events       handlers.EventCounter
		cachePinger  handlers.Pinger
		stats        handlers.StatsReader
	)

	if cfg.Redis.Enabled {
		cache, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.KeywordTTLSec)*time.Second,
		)
		if err != nil {
			db.Close()
			return nil, err
		}
		srv.cache = cache
		keywordCache, events, cachePinger, stats = cache, cache, cache, cache
	} else {
		logger.Info("Redis disabled; keyword cache and event counters are off")
	}

	metrics.Init()

	engine := interview.NewEngine(interview.DefaultHeuristics().WithConfig(cfg.Interview), db, keywordCache)
	interviews := handlers.NewInterviewHandler(engine, ingestion.NewNormalizer(), events)
	sockets := handlers.NewWebSocketHandler(interviews)
	system := handlers.NewSystemHandler(db, cachePinger, stats)

	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestlog.Middleware(logger.GetLogger()))
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins(cfg.Security.AllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		IsDevelopment:  cfg.Security.IsDevelopment,
	}))

	if cfg.RateLimit.Enabled {
		srv.limiter = ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Logger:               logger.GetLogger(),
		})
		app.Use(srv.limiter.Middleware("/health", "/ready", "/metrics"))
	}

	app.Use(validation.Middleware(validation.Config{
		FieldLimits: map[string]int{
			"resume_text": cfg.Interview.MaxResumeLength,
			"answer_text": cfg.Interview.MaxAnswerLength,
		},
		Logger: logger.GetLogger(),
	}))

	app.Get("/health", system.Health)
	app.Get("/ready", system.Ready)
	app.Get("/metrics", metrics.MetricsHandler())
	app.Get("/api/v1/stats", system.Stats)

	interviews.Register(app)

	app.Use("/ws/interview", sockets.Upgrade)
	app.Get("/ws/interview", websocket.New(sockets.HandleConnection))

	srv.app = app

	logger.Info("Routes registered",
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return srv, nil
}

func (s *server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if err := s.db.Close(); err != nil {
		logger.Warn("Failed to close sqlite", zap.Error(err))
	}
}

func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
