// Package retry runs an operation again with exponential backoff while its
// error is classified as transient.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

type Policy struct {
	Name         string
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
	// Retryable decides whether an error is worth another attempt. Nil retries
	// every error.
	Retryable func(error) bool
	Logger    *zap.Logger
}

func DefaultPolicy(name string) Policy {
	return Policy{
		Name:         name,
		MaxAttempts:  3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
		Logger:       zap.NewNop(),
	}
}

// Do calls op until it succeeds, returns a non-retryable error, the attempts
// run out or ctx is done. The last error from op is returned unchanged.
func (p Policy) Do(ctx context.Context, op func() error) error {
	p = p.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				p.Logger.Info("Operation succeeded after retry",
					zap.String("operation", p.Name),
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := p.Backoff(attempt)
		p.Logger.Warn("Operation failed, retrying",
			zap.String("operation", p.Name),
			zap.Error(lastErr),
			zap.Int("attempt", attempt),
			zap.Duration("delay", wait),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// Backoff is the wait after the given failed attempt, starting at 1.
func (p Policy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()

	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	return time.Duration(d)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func() error {
		var err error
		result, err = op()
		return err
	})
	return result, err
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 50 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = p.InitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return p
}
