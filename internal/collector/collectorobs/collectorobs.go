package collectorobs

import (
	"context"

	"deepsent/internal/interfaces"
	"deepsent/internal/logger"
	"deepsent/internal/trace"
	"deepsent/internal/types"
)

// observableCollector wraps a Collector with logging and tracing
type observableCollector struct {
	collector interfaces.Collector
}

var _ interfaces.Collector = (*observableCollector)(nil)

// Wrap wraps a collector with observability middleware
func Wrap(collector interfaces.Collector) interfaces.Collector {
	return &observableCollector{
		collector: collector,
	}
}

func (oc *observableCollector) Collect(ctx context.Context, req types.CollectRequest) (*types.CollectResult, error) {
	ctx, span := trace.StartSpan(ctx, "collector.Collect")
	defer span.End()
	trace.Annotate(ctx, trace.AttrTicker.String(req.Ticker))

	logger.DebugSkip(ctx, 1, "Collecting social data",
		"ticker", req.Ticker,
		"start", req.StartDate,
		"end", req.EndDate,
		"daily_limit", req.DailyLimit,
	)

	res, err := oc.collector.Collect(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to collect social data", err,
			"ticker", req.Ticker,
		)
		return nil, err
	}

	trace.Annotate(ctx, trace.AttrPosts.Int(len(res.Posts)))
	fields := []any{"ticker", req.Ticker, "posts", len(res.Posts)}
	if res.AvgSentiment != nil {
		fields = append(fields, "avg_sentiment", *res.AvgSentiment)
	}
	logger.InfoSkip(ctx, 1, "Social data collected", fields...)

	return res, nil
}
