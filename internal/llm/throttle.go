package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"deepsent/internal/interfaces"
	"deepsent/internal/types"
)

type throttledGenerator struct {
	next    interfaces.Generator
	limiter *rate.Limiter
}

var _ interfaces.Generator = (*throttledGenerator)(nil)

// WithThrottle spaces calls to next at least interval apart. Callers block
// until their turn; a non-positive interval disables throttling.
func WithThrottle(next interfaces.Generator, interval time.Duration) interfaces.Generator {
	if interval <= 0 {
		return next
	}
	return &throttledGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (t *throttledGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.next.Generate(ctx, req)
}
