package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const constituents = `<html><body>
<table class="wikitable"><tr><th>Year</th><th>Changes</th></tr><tr><td>2024</td><td>x</td></tr></table>
<table class="wikitable sortable" id="constituents">
  <tr><th>Ticker</th><th>Company</th></tr>
  <tr><td>MSFT</td><td>Microsoft</td></tr>
  <tr><td>AAPL</td><td>Apple</td></tr>
  <tr><td>BRK.B</td><td>Berkshire</td></tr>
</table>
</body></html>`

func TestUniverse(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(constituents))
	}))
	defer srv.Close()

	c := NewClient(WithUniverseURL(srv.URL))
	assert.Equal(t, []string{"AAPL", "BRK-B", "MSFT"}, c.Universe(context.Background()))
	c.Universe(context.Background())
	assert.Equal(t, 1, calls)
}

func TestUniverseFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>maintenance</p></body></html>`))
	}))
	defer srv.Close()

	got := NewClient(WithUniverseURL(srv.URL)).Universe(context.Background())
	assert.Equal(t, FallbackTickers, got)
}

func TestLookupPeriod(t *testing.T) {
	p, ok := LookupPeriod("3 Months")
	require.True(t, ok)
	assert.Equal(t, "3mo", p.Range)

	p, ok = LookupPeriod("1y")
	require.True(t, ok)
	assert.Equal(t, "1 Year", p.Label)

	_, ok = LookupPeriod("5y")
	assert.False(t, ok)
}

func chartJSON(t *testing.T, closes []float64) []byte {
	t.Helper()
	start := time.Date(2025, 1, 1, 14, 30, 0, 0, time.UTC)
	var ts []int64
	var open, high, low, cl []*float64
	for i, c := range closes {
		c := c
		h, l := c+1, c-1
		ts = append(ts, start.AddDate(0, 0, i).Unix())
		open = append(open, &c)
		high = append(high, &h)
		low = append(low, &l)
		cl = append(cl, &c)
	}
	// a bar with a missing close is dropped
	ts = append(ts, start.AddDate(0, 0, len(closes)).Unix())
	open = append(open, nil)
	high = append(high, nil)
	low = append(low, nil)
	cl = append(cl, nil)

	body := map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"meta":       map[string]any{"symbol": "AAPL", "longName": "Apple Inc."},
				"timestamp":  ts,
				"indicators": map[string]any{"quote": []any{map[string]any{"open": open, "high": high, "low": low, "close": cl}}},
			}},
			"error": nil,
		},
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return b
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestHistory(t *testing.T) {
	payload := chartJSON(t, rising(3))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(WithHistoryBaseURL(srv.URL))
	bars, err := c.History(context.Background(), "AAPL", "1mo")
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, "2025-01-01", bars[0].Date)
	assert.Equal(t, 102.0, bars[2].Close)
	assert.Equal(t, "Apple Inc.", c.CompanyName("AAPL"))
	assert.Equal(t, "MSFT", c.CompanyName("MSFT"))
}

func TestIndicators(t *testing.T) {
	var bars []Bar
	for _, c := range rising(60) {
		bars = append(bars, Bar{Close: c, High: c + 1, Low: c - 1, Open: c})
	}
	f := Indicators(bars)

	assert.Equal(t, []string{Change5D, Change60D, RSI14, ATR14}, f.Order)
	assert.InDelta(t, 2.58, f.Get(Change5D), 1e-9)
	assert.InDelta(t, 59.0, f.Get(Change60D), 1e-9)
	assert.InDelta(t, 100.0, f.Get(RSI14), 1e-9)
	assert.InDelta(t, 2.0, f.Get(ATR14), 1e-9)
}

func TestIndicatorsShortHistory(t *testing.T) {
	f := Indicators(make([]Bar, 59))
	for _, name := range []string{Change5D, Change60D, RSI14, ATR14} {
		assert.Equal(t, NA, f.Get(name))
	}
}

func TestFundamentals(t *testing.T) {
	payload := chartJSON(t, rising(10))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			_, _ = w.Write(payload)
		case "/query":
			assert.Equal(t, "OVERVIEW", r.URL.Query().Get("function"))
			_, _ = w.Write([]byte(`{"Symbol":"AAPL","Name":"Apple Inc","Sector":"TECHNOLOGY",
				"ForwardPE":"28.456","PriceToBookRatio":"None","PriceToSalesRatioTTM":"8.1",
				"ReturnOnEquityTTM":"1.5681","GrossProfitTTM":"180000","RevenueTTM":"400000"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(WithHistoryBaseURL(srv.URL), WithOverview("key", srv.URL))
	f := c.Fundamentals(context.Background(), "AAPL")

	assert.Equal(t, NA, f.Get(RSI14))
	assert.InDelta(t, 45.0, f.Get(GrossMargin), 1e-9)
	assert.InDelta(t, 156.81, f.Get(ROE), 1e-9)
	assert.InDelta(t, 28.46, f.Get(ForwardPE), 1e-9)
	assert.Equal(t, NA, f.Get(PBRatio))
	assert.InDelta(t, 8.1, f.Get(PSRatio), 1e-9)
	assert.Equal(t, "Apple Inc", f.Get(CompanyName))
	assert.Equal(t, "TECHNOLOGY", f.Get(Sector))
}

func TestFundamentalsWithoutOverview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewClient(WithHistoryBaseURL(srv.URL)).Fundamentals(context.Background(), "ZZZZ")
	assert.Equal(t, NA, f.Get(Change5D))
	assert.Equal(t, NA, f.Get(ForwardPE))
	assert.Equal(t, "ZZZZ", f.Get(CompanyName))
	assert.Equal(t, NA, f.Get(Sector))
}
