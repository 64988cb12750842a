package noop

import (
	"context"
	"time"

	"deepsent/internal/logger"
	"deepsent/internal/types"
)

// NoopSource is the fallback used when no news source is configured.
// Every collection comes back empty.
type NoopSource struct{}

func NewNoopSource() *NoopSource {
	return &NoopSource{}
}

func (s *NoopSource) Name() string { return "noop" }

func (s *NoopSource) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]types.ScoredItem, error) {
	logger.Debug(ctx, "Noop source called - returning no posts", "ticker", ticker)
	return nil, nil
}
