package sentiment

import (
	"math"

	"deepsent/internal/types"
)

const (
	// DefaultAnomalyThreshold is the minimum absolute day-over-day change of
	// the daily median, on the [-1, 1] scale.
	DefaultAnomalyThreshold = 0.2
	// DefaultMinDailyCount is the minimum number of scored posts a day needs
	// to take part in anomaly detection.
	DefaultMinDailyCount = 5
)

// tieTolerance keeps changes such as 0.3-0.1 on the inclusive side of a 0.2 threshold.
const tieTolerance = 1e-9

type detectOptions struct {
	threshold float64
	minCount  int
}

// Option tunes anomaly detection.
type Option func(*detectOptions)

// WithThreshold sets the minimum absolute change that counts as an anomaly.
func WithThreshold(t float64) Option {
	return func(o *detectOptions) {
		o.threshold = t
	}
}

// WithMinCount sets the minimum posts per day.
func WithMinCount(n int) Option {
	return func(o *detectOptions) {
		o.minCount = n
	}
}

// DailyStats computes the median sentiment and post count of every day that
// has at least minCount scored posts, ascending by date, with the change from
// the previous retained day. The first day has a nil change. It returns nil
// when the input has no timestamps or no scores.
func DailyStats(items []types.ScoredItem, minCount int) []types.DailySentimentStat {
	if !hasTimeAndScore(items) {
		return nil
	}

	var stats []types.DailySentimentStat
	for _, g := range GroupByDay(items) {
		scores := g.Scores()
		if len(scores) == 0 || len(scores) < minCount {
			continue
		}
		stats = append(stats, types.DailySentimentStat{
			Date:      g.Date,
			Sentiment: median(scores),
			Count:     len(scores),
		})
	}

	for i := 1; i < len(stats); i++ {
		change := stats[i].Sentiment - stats[i-1].Sentiment
		abs := math.Abs(change)
		stats[i].Change = &change
		stats[i].AbsChange = &abs
	}
	return stats
}

// DetectAnomalies returns the days whose median sentiment moved by at least
// the threshold since the previous qualifying day, classified as surge or
// plunge. Fewer than two qualifying days yield no anomalies.
func DetectAnomalies(items []types.ScoredItem, opts ...Option) []types.DailySentimentStat {
	o := detectOptions{threshold: DefaultAnomalyThreshold, minCount: DefaultMinDailyCount}
	for _, opt := range opts {
		opt(&o)
	}

	stats := DailyStats(items, o.minCount)
	if len(stats) < 2 {
		return nil
	}

	var anomalies []types.DailySentimentStat
	for _, s := range stats[1:] {
		if *s.AbsChange < o.threshold-tieTolerance {
			continue
		}
		if *s.Change > 0 {
			s.Type = types.AnomalySurge
		} else {
			s.Type = types.AnomalyPlunge
		}
		anomalies = append(anomalies, s)
	}
	return anomalies
}

func hasTimeAndScore(items []types.ScoredItem) bool {
	var hasTime, hasScore bool
	for _, it := range items {
		if it.HasTime() {
			hasTime = true
		}
		if it.Sentiment != nil {
			hasScore = true
		}
		if hasTime && hasScore {
			return true
		}
	}
	return false
}
