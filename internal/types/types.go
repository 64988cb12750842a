package types

import (
	"time"
)

// ScoredItem is one collected post or article with its sentiment score.
type ScoredItem struct {
	// DateStr is the canonical YYYY-MM-DD day, when the collector already tagged it.
	DateStr       string    `json:"date_str,omitempty"`
	TimePublished string    `json:"time_published,omitempty"`
	PublishedAt   time.Time `json:"published_at,omitzero"`
	// Sentiment is in [-1, 1]; nil means the item was never scored.
	Sentiment *float64 `json:"sentiment,omitempty"`
	Relevance float64  `json:"relevance,omitempty"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	URL       string   `json:"url,omitempty"`
	Source    string   `json:"source"`
}

// Score returns the sentiment score and whether the item was scored.
func (s ScoredItem) Score() (float64, bool) {
	if s.Sentiment == nil {
		return 0, false
	}
	return *s.Sentiment, true
}

// HasTime reports whether any timestamp field is populated.
func (s ScoredItem) HasTime() bool {
	return s.DateStr != "" || s.TimePublished != "" || !s.PublishedAt.IsZero()
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

type AnomalyType string

const (
	AnomalySurge  AnomalyType = "surge"
	AnomalyPlunge AnomalyType = "plunge"
)

// DailySentimentStat is the per-day aggregate used by anomaly detection.
type DailySentimentStat struct {
	Date      string      `json:"date"`
	Sentiment float64     `json:"avg_sentiment"`
	Count     int         `json:"comment_count"`
	Change    *float64    `json:"sent_change"`
	AbsChange *float64    `json:"abs_change"`
	Type      AnomalyType `json:"type,omitempty"`
}

// DayDistribution is the per-day box plot summary.
type DayDistribution struct {
	Date       string    `json:"date"`
	Label      string    `json:"label"`
	Values     []float64 `json:"values"`
	Count      int       `json:"count"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []float64 `json:"outliers,omitempty"`
}

// Fundamentals maps indicator names to values. Values are float64 or the
// string "N/A"; Order keeps display order stable.
type Fundamentals struct {
	Values map[string]any `json:"values"`
	Order  []string       `json:"order"`
}

// NewFundamentals returns an empty, ordered indicator set.
func NewFundamentals() *Fundamentals {
	return &Fundamentals{Values: map[string]any{}}
}

// Set stores an indicator, remembering first-insertion order.
func (f *Fundamentals) Set(name string, value any) {
	if _, ok := f.Values[name]; !ok {
		f.Order = append(f.Order, name)
	}
	f.Values[name] = value
}

// Get returns the indicator value or "N/A".
func (f *Fundamentals) Get(name string) any {
	if f == nil {
		return "N/A"
	}
	if v, ok := f.Values[name]; ok {
		return v
	}
	return "N/A"
}

// CollectRequest is the input of the collection collaborator.
type CollectRequest struct {
	Ticker     string `json:"ticker"`
	DailyLimit int    `json:"daily_limit"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// CollectResult is the output of the collection collaborator.
type CollectResult struct {
	Posts        []ScoredItem `json:"posts"`
	PeriodStart  string       `json:"period_start"`
	PeriodEnd    string       `json:"period_end"`
	AvgSentiment *float64     `json:"avg_sentiment"`
	Figure       *Figure      `json:"fig,omitempty"`
	TrendChart   string       `json:"trend_chart,omitempty"`
}

// Period renders "start to end" for prompts and headers.
func (r CollectResult) Period() string {
	return r.PeriodStart + " to " + r.PeriodEnd
}

// GenerateRequest is the input of the generation collaborator.
type GenerateRequest struct {
	Ticker       string        `json:"ticker"`
	Fundamentals *Fundamentals `json:"fundamentals"`
	SocialData   []ScoredItem  `json:"social_data"`
	Period       string        `json:"period"`
	ChartPath    string        `json:"chart_path,omitempty"`
}

// ReportEntry is a cached report artifact. Never mutated after creation.
type ReportEntry struct {
	ID           string        `json:"id"`
	Key          string        `json:"key"`
	Ticker       string        `json:"ticker"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	Report       string        `json:"report"`
	Chart        *Figure       `json:"fig,omitempty"`
	AvgSentiment *float64      `json:"avg_sentiment"`
	Posts        []ScoredItem  `json:"posts"`
	Period       string        `json:"period"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Elapsed      time.Duration `json:"elapsed"`
}
