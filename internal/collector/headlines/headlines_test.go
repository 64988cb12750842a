package headlines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <item>
    <title>Apple beats estimates, shares surge</title>
    <link>https://example.com/1</link>
    <description>Record iPhone sales</description>
    <pubDate>Thu, 02 Jan 2025 14:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Apple shares plunge on weak guidance</title>
    <link>https://example.com/2</link>
    <pubDate>Mon, 30 Dec 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>No date on this one</title>
    <link>https://example.com/3</link>
  </item>
</channel></rss>`

const listing = `<html><body>
  <article>
    <h3>Microsoft cloud growth strong</h3>
    <a href="/news/msft-cloud">read</a>
    <time datetime="2025-01-02T09:30:00Z">Jan 2</time>
    <p>Azure revenue jumps</p>
  </article>
  <article><p>no title here</p></article>
</body></html>`

var (
	from = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2025, 1, 3, 23, 59, 59, 0, time.UTC)
)

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	src := NewSource([]Site{{Name: "feed", URL: srv.URL + "/rss?s={ticker}", Feed: true}}, 5*time.Second)
	items, err := src.Fetch(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "Apple beats estimates, shares surge", it.Title)
	assert.Equal(t, "Record iPhone sales", it.Summary)
	assert.Equal(t, "2025-01-02 14:00:00", it.TimePublished)
	require.NotNil(t, it.Sentiment)
	assert.Greater(t, *it.Sentiment, 0.0)
}

func TestFetchListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(listing))
	}))
	defer srv.Close()

	sites := SitesFromURLs([]string{srv.URL + "/quote/{ticker}"})
	require.Len(t, sites, 1)
	assert.False(t, sites[0].Feed)
	sites[0].RateLimit = 0

	items, err := NewSource(sites, 5*time.Second).Fetch(context.Background(), "MSFT", from, to)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Microsoft cloud growth strong", items[0].Title)
	assert.Equal(t, srv.URL+"/news/msft-cloud", items[0].URL)
	assert.Equal(t, time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC), items[0].PublishedAt)
	require.NotNil(t, items[0].Sentiment)
	assert.InDelta(t, 1.0, *items[0].Sentiment, 1e-9)
}

func TestFetchAllSitesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSource([]Site{{Name: "down", URL: srv.URL, Feed: true}}, time.Second).Fetch(context.Background(), "AAPL", from, to)
	assert.Error(t, err)
}

func TestSitesFromURLs(t *testing.T) {
	sites := SitesFromURLs([]string{"https://feeds.example.com/rss?s={ticker}", "https://news.example.com/{ticker}.xml"})
	require.Len(t, sites, 2)
	assert.True(t, sites[0].Feed)
	assert.True(t, sites[1].Feed)
	assert.Equal(t, "feeds.example.com", sites[0].Name)
}

func TestLexiconScore(t *testing.T) {
	lex := NewLexicon()
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"Apple beats estimates, shares surge", 1, true},
		{"Shares plunge after guidance miss", -1, true},
		{"Strong quarter but weak outlook", 0, true},
		{"Stock may rise", 0.5, true},
		{"The company held a meeting", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := lex.Score(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
