package collectorobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsent/internal/collector"
	"deepsent/internal/collector/noop"
	"deepsent/internal/types"
)

type failingCollector struct{ err error }

func (f failingCollector) Collect(ctx context.Context, req types.CollectRequest) (*types.CollectResult, error) {
	return nil, f.err
}

func TestWrapPassesThrough(t *testing.T) {
	c := Wrap(collector.NewService(noop.NewNoopSource(), nil))
	res, err := c.Collect(context.Background(), types.CollectRequest{Ticker: "AAPL", StartDate: "2025-01-01", EndDate: "2025-01-02"})
	require.NoError(t, err)
	assert.Empty(t, res.Posts)

	boom := errors.New("boom")
	_, err = Wrap(failingCollector{err: boom}).Collect(context.Background(), types.CollectRequest{})
	assert.ErrorIs(t, err, boom)
}
