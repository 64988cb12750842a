package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"deepsent/internal/interfaces"
	"deepsent/internal/logger"
	"deepsent/internal/metrics"
	"deepsent/internal/types"
)

// RetryPolicy is a bounded exponential backoff.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy: 5 attempts, 3s first delay, growing by 1.5x.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 3 * time.Second, Multiplier: 1.5}
}

// Delay is the pause after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
}

// RetryOption tunes WithRetry.
type RetryOption func(*retryGenerator)

// WithSleep replaces the context-aware sleep between attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(r *retryGenerator) {
		r.sleep = sleep
	}
}

type retryGenerator struct {
	next   interfaces.Generator
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

var _ interfaces.Generator = (*retryGenerator)(nil)

// WithRetry retries transient upstream failures of next according to policy.
// Any other error is returned at once.
func WithRetry(next interfaces.Generator, policy RetryPolicy, opts ...RetryOption) interfaces.Generator {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	r := &retryGenerator{next: next, policy: policy, sleep: sleepCtx}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *retryGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := r.next.Generate(ctx, req)
		if err == nil {
			metrics.GenerationAttempts.WithLabelValues("success").Inc()
			return out, nil
		}
		lastErr = err

		if !IsTransient(err) {
			metrics.GenerationAttempts.WithLabelValues("fatal").Inc()
			return "", err
		}
		metrics.GenerationAttempts.WithLabelValues("transient").Inc()

		if attempt == r.policy.MaxAttempts {
			break
		}
		delay := r.policy.Delay(attempt)
		logger.Warn(ctx, "Transient generation error, retrying",
			"ticker", req.Ticker,
			"attempt", attempt,
			"max_attempts", r.policy.MaxAttempts,
			"delay", delay.String(),
			"error", err.Error(),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("retry aborted: %w", err)
		}
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
