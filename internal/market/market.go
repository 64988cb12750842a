// Package market provides the stock side of a report: the Nasdaq-100 ticker
// universe, daily price history and the technical and fundamental
// indicators handed to report generation.
package market

import (
	"sync"
	"time"

	"deepsent/internal/api"
)

const (
	DefaultUniverseURL    = "https://en.wikipedia.org/wiki/Nasdaq-100"
	DefaultHistoryBaseURL = "https://query1.finance.yahoo.com"
	DefaultOverviewURL    = "https://www.alphavantage.co"
)

// Client reads market data over HTTP.
type Client struct {
	http           *api.Client
	pages          *api.Client
	universeURL    string
	historyBaseURL string
	overviewURL    string
	apiKey         string

	mu       sync.RWMutex
	universe []string
	names    map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithUniverseURL sets the page holding the Nasdaq-100 constituents table.
func WithUniverseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.universeURL = u
		}
	}
}

// WithHistoryBaseURL sets the base URL of the chart API.
func WithHistoryBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.historyBaseURL = u
		}
	}
}

// WithOverview enables company fundamentals from the Alpha Vantage OVERVIEW
// endpoint. An empty baseURL keeps DefaultOverviewURL.
func WithOverview(apiKey, baseURL string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
		if baseURL != "" {
			c.overviewURL = baseURL
		}
	}
}

// WithHTTPClient replaces the underlying API clients.
func WithHTTPClient(hc *api.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.pages = hc
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http: api.NewClient(
			api.WithTimeout(20*time.Second),
			api.WithHeaders(api.YahooFinanceHeaders()),
		),
		pages: api.NewClient(
			api.WithTimeout(20*time.Second),
			api.WithHeaders(api.BrowserHeaders()),
		),
		universeURL:    DefaultUniverseURL,
		historyBaseURL: DefaultHistoryBaseURL,
		overviewURL:    DefaultOverviewURL,
		names:          make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rememberName caches a company's display name.
func (c *Client) rememberName(ticker, name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	c.names[ticker] = name
	c.mu.Unlock()
}

// CompanyName returns the cached long name of ticker, or ticker itself when
// nothing was learned about it yet.
func (c *Client) CompanyName(ticker string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n, ok := c.names[ticker]; ok {
		return n
	}
	return ticker
}
