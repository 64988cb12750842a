// Package alphavantage reads scored news from the Alpha Vantage
// NEWS_SENTIMENT endpoint.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"deepsent/internal/api"
	"deepsent/internal/collector"
	"deepsent/internal/logger"
	"deepsent/internal/types"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"
	// maxLimit is the largest page the endpoint serves.
	maxLimit  = 1000
	timeParam = "20060102T1504"
	timeStamp = "20060102T150405"
)

// ErrMissingAPIKey is returned when the source is used without a key.
var ErrMissingAPIKey = errors.New("alphavantage: ALPHAVANTAGE_API_KEY is not set")

// Source implements collector.Source for Alpha Vantage.
type Source struct {
	client *api.Client
	apiKey string
}

var _ collector.Source = (*Source)(nil)

// NewSource creates a source. An empty baseURL selects DefaultBaseURL.
func NewSource(apiKey, baseURL string, opts ...api.ClientOption) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts = append([]api.ClientOption{api.WithBaseURL(baseURL), api.WithTimeout(30 * time.Second)}, opts...)
	return &Source{client: api.NewClient(opts...), apiKey: apiKey}
}

func (s *Source) Name() string { return "alphavantage" }

type feedResponse struct {
	Items       string     `json:"items"`
	Feed        []feedItem `json:"feed"`
	Information string     `json:"Information"`
	Note        string     `json:"Note"`
	ErrorMsg    string     `json:"Error Message"`
}

type feedItem struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	TimePublished         string            `json:"time_published"`
	Summary               string            `json:"summary"`
	Source                string            `json:"source"`
	OverallSentimentScore float64           `json:"overall_sentiment_score"`
	TickerSentiment       []tickerSentiment `json:"ticker_sentiment"`
}

type tickerSentiment struct {
	Ticker         string `json:"ticker"`
	RelevanceScore string `json:"relevance_score"`
	SentimentScore string `json:"ticker_sentiment_score"`
}

// Fetch returns the newest articles mentioning ticker in [from, to].
func (s *Source) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]types.ScoredItem, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{
		"function":  {"NEWS_SENTIMENT"},
		"tickers":   {ticker},
		"time_from": {from.Format(timeParam)},
		"time_to":   {to.Format(timeParam)},
		"sort":      {"LATEST"},
		"limit":     {strconv.Itoa(maxLimit)},
		"apikey":    {s.apiKey},
	}

	var resp feedResponse
	if err := s.client.GetJSON(ctx, "/query", query, &resp); err != nil {
		return nil, fmt.Errorf("news sentiment request: %w", err)
	}
	if msg := firstNonEmpty(resp.ErrorMsg, resp.Note, resp.Information); msg != "" && len(resp.Feed) == 0 {
		return nil, fmt.Errorf("alphavantage: %s", msg)
	}

	items := make([]types.ScoredItem, 0, len(resp.Feed))
	for _, f := range resp.Feed {
		items = append(items, toItem(f, ticker))
	}
	logger.Debug(ctx, "Alpha Vantage feed parsed", "ticker", ticker, "items", len(items))
	return items, nil
}

// toItem scores the article with the ticker's own sentiment, falling back to
// the article's overall score when the ticker is not listed.
func toItem(f feedItem, ticker string) types.ScoredItem {
	item := types.ScoredItem{
		TimePublished: f.TimePublished,
		Title:         strings.TrimSpace(f.Title),
		Summary:       strings.TrimSpace(f.Summary),
		URL:           f.URL,
		Source:        f.Source,
	}
	if t, err := time.Parse(timeStamp, f.TimePublished); err == nil {
		item.PublishedAt = t
	}

	score := f.OverallSentimentScore
	for _, ts := range f.TickerSentiment {
		if !strings.EqualFold(ts.Ticker, ticker) {
			continue
		}
		if v, err := strconv.ParseFloat(ts.SentimentScore, 64); err == nil {
			score = v
		}
		if v, err := strconv.ParseFloat(ts.RelevanceScore, 64); err == nil {
			item.Relevance = v
		}
		break
	}
	score = min(max(score, -1), 1)
	item.Sentiment = &score
	return item
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
