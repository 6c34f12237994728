package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/metrics"
	"github.com/interview-sim/backend/pkg/circuitbreaker"
	"github.com/interview-sim/backend/pkg/logger"
)

const keywordCacheType = "resume_keywords"

// Event counter names shared by the HTTP and websocket handlers.
const (
	EventSessionStarted  = "sessions_started"
	EventAnswerSubmitted = "answers_submitted"
	EventReportGenerated = "reports_generated"
)

type Client struct {
	client     *redis.Client
	breaker    *circuitbreaker.CircuitBreaker
	keywordTTL time.Duration
}

func NewClient(host string, port int, password string, db int, keywordTTL time.Duration) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	breaker := circuitbreaker.NewCircuitBreaker("redis", circuitbreaker.Config{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		Logger:           logger.GetLogger(),
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	logger.Info("Redis client initialized", zap.String("addr", addr), zap.Duration("keyword_ttl", keywordTTL))

	return &Client{client: client, breaker: breaker, keywordTTL: keywordTTL}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetKeywords looks up the keywords previously extracted for a resume hash.
func (c *Client) GetKeywords(ctx context.Context, textHash string) ([]string, bool, error) {
	var data []byte
	err := c.breaker.Execute(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, keywordKey(textHash)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get keyword cache: %w", err)
	}

	if data == nil {
		metrics.CacheMisses.WithLabelValues(keywordCacheType).Inc()
		return nil, false, nil
	}

	var keywords []string
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}

	metrics.CacheHits.WithLabelValues(keywordCacheType).Inc()
	logger.Debug("Keyword cache hit", zap.String("text_hash", textHash))
	return keywords, true, nil
}

func (c *Client) SetKeywords(ctx context.Context, textHash string, keywords []string) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	err = c.breaker.Execute(ctx, func() error {
		return c.client.Set(ctx, keywordKey(textHash), data, c.keywordTTL).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set keyword cache: %w", err)
	}

	logger.Debug("Keywords cached", zap.String("text_hash", textHash), zap.Duration("ttl", c.keywordTTL))
	return nil
}

func (c *Client) IncrementMetric(ctx context.Context, metricName string) error {
	return c.breaker.Execute(ctx, func() error {
		return c.client.Incr(ctx, metricKey(metricName)).Err()
	})
}

// Stats reads every event counter in one round trip.
func (c *Client) Stats(ctx context.Context) (map[string]int64, error) {
	names := []string{EventSessionStarted, EventAnswerSubmitted, EventReportGenerated}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = metricKey(name)
	}

	var values []interface{}
	err := c.breaker.Execute(ctx, func() error {
		var err error
		values, err = c.client.MGet(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read event counters: %w", err)
	}

	stats := make(map[string]int64, len(names))
	for i, name := range names {
		stats[name] = 0
		if s, ok := values[i].(string); ok {
			var n int64
			if _, err := fmt.Sscan(s, &n); err == nil {
				stats[name] = n
			}
		}
	}
	return stats, nil
}

func keywordKey(textHash string) string {
	return fmt.Sprintf("keywords:%s", textHash)
}

func metricKey(name string) string {
	return fmt.Sprintf("metric:%s", name)
}
