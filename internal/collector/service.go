// Package collector turns a raw news feed into the collection result consumed
// by report generation: dated, per-day limited, newest-first posts with their
// mean sentiment and a trend chart.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"deepsent/internal/chart"
	"deepsent/internal/interfaces"
	"deepsent/internal/logger"
	"deepsent/internal/metrics"
	"deepsent/internal/sentiment"
	"deepsent/internal/types"
)

const dateLayout = "2006-01-02"

// Source fetches scored items for a ticker published within [from, to].
type Source interface {
	Name() string
	Fetch(ctx context.Context, ticker string, from, to time.Time) ([]types.ScoredItem, error)
}

// Config configures the collection service
type Config struct {
	MaxArticles int    // Hard cap on posts per collection
	ChartDir    string // Where trend charts are written; empty disables
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxArticles: 3000,
	}
}

// Service implements interfaces.Collector on top of a Source.
type Service struct {
	source Source
	cfg    *Config
}

var _ interfaces.Collector = (*Service)(nil)

func NewService(source Source, cfg *Config) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{source: source, cfg: cfg}
}

// Collect fetches and shapes the posts of req.
func (s *Service) Collect(ctx context.Context, req types.CollectRequest) (*types.CollectResult, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	from, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", req.StartDate, err)
	}
	to, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", req.EndDate, err)
	}
	// inclusive end day
	until := to.Add(24*time.Hour - time.Second)

	logger.Info(ctx, "Collecting posts", "ticker", ticker, "source", s.source.Name(), "from", req.StartDate, "to", req.EndDate)

	raw, err := s.source.Fetch(ctx, ticker, from, until)
	if err != nil {
		return nil, fmt.Errorf("fetch %s posts from %s: %w", ticker, s.source.Name(), err)
	}

	posts := s.shape(raw, req)
	metrics.CollectedPosts.WithLabelValues(s.source.Name()).Add(float64(len(posts)))

	result := &types.CollectResult{
		Posts:        posts,
		PeriodStart:  req.StartDate,
		PeriodEnd:    req.EndDate,
		AvgSentiment: sentiment.Mean(scores(posts)),
		Figure:       chart.TrendFigure(ticker, posts),
	}

	if result.Figure != nil && s.cfg.ChartDir != "" {
		path, err := chart.Save(s.cfg.ChartDir, result.Figure)
		if err != nil {
			logger.Warn(ctx, "Failed to save trend chart", "ticker", ticker, "error", err.Error())
		} else {
			result.TrendChart = path
		}
	}

	logger.Info(ctx, "Posts collected",
		"ticker", ticker,
		"raw", len(raw),
		"kept", len(posts),
		"dropped", len(raw)-len(posts),
	)
	return result, nil
}

// shape dates, filters, limits and orders raw items.
func (s *Service) shape(raw []types.ScoredItem, req types.CollectRequest) []types.ScoredItem {
	perDay := make(map[string]int)
	posts := make([]types.ScoredItem, 0, len(raw))
	for _, it := range raw {
		d := sentiment.ResolveDate(it)
		if d == sentiment.UnknownDate || d < req.StartDate || d > req.EndDate {
			continue
		}
		if req.DailyLimit > 0 && perDay[d] >= req.DailyLimit {
			continue
		}
		perDay[d]++
		it.DateStr = d
		posts = append(posts, it)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].DateStr != posts[j].DateStr {
			return posts[i].DateStr > posts[j].DateStr
		}
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})

	if s.cfg.MaxArticles > 0 && len(posts) > s.cfg.MaxArticles {
		posts = posts[:s.cfg.MaxArticles]
	}
	return posts
}

func scores(items []types.ScoredItem) []float64 {
	var out []float64
	for _, it := range items {
		if v, ok := it.Score(); ok {
			out = append(out, v)
		}
	}
	return out
}
