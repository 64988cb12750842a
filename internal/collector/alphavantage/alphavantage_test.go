package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `{
  "items": "2",
  "feed": [
    {
      "title": " Apple beats estimates ",
      "url": "https://example.com/a",
      "time_published": "20250102T133000",
      "summary": "Strong quarter",
      "source": "Reuters",
      "overall_sentiment_score": 0.1,
      "ticker_sentiment": [
        {"ticker": "MSFT", "relevance_score": "0.1", "ticker_sentiment_score": "-0.5"},
        {"ticker": "AAPL", "relevance_score": "0.8", "ticker_sentiment_score": "0.42"}
      ]
    },
    {
      "title": "Market wrap",
      "url": "https://example.com/b",
      "time_published": "20250101T080000",
      "source": "Bloomberg",
      "overall_sentiment_score": -0.2,
      "ticker_sentiment": []
    }
  ]
}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "NEWS_SENTIMENT", q.Get("function"))
		assert.Equal(t, "AAPL", q.Get("tickers"))
		assert.Equal(t, "20250101T0000", q.Get("time_from"))
		assert.Equal(t, "20250102T2359", q.Get("time_to"))
		assert.Equal(t, "key", q.Get("apikey"))
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	src := NewSource("key", srv.URL)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 2, 23, 59, 59, 0, time.UTC)

	items, err := src.Fetch(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Apple beats estimates", items[0].Title)
	assert.InDelta(t, 0.42, *items[0].Sentiment, 1e-9)
	assert.InDelta(t, 0.8, items[0].Relevance, 1e-9)
	assert.Equal(t, time.Date(2025, 1, 2, 13, 30, 0, 0, time.UTC), items[0].PublishedAt)

	assert.InDelta(t, -0.2, *items[1].Sentiment, 1e-9)
	assert.Equal(t, "Bloomberg", items[1].Source)
}

func TestFetchRateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Information": "rate limit reached"}`))
	}))
	defer srv.Close()

	_, err := NewSource("key", srv.URL).Fetch(context.Background(), "AAPL", time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit reached")
}

func TestFetchWithoutKey(t *testing.T) {
	_, err := NewSource("", "").Fetch(context.Background(), "AAPL", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
