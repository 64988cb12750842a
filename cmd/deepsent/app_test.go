package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsent/internal/collector"
	collectornoop "deepsent/internal/collector/noop"
	"deepsent/internal/llm/noop"
	"deepsent/internal/market"
	"deepsent/internal/report"
	"deepsent/internal/store"
	"deepsent/internal/types"
)

type countingFundamentals struct{ calls int }

func (f *countingFundamentals) Fundamentals(ctx context.Context, ticker string) *types.Fundamentals {
	f.calls++
	fund := types.NewFundamentals()
	fund.Set("Company Name", ticker)
	return fund
}

type fakePrices struct{ rng string }

func (f *fakePrices) History(ctx context.Context, ticker, rng string) ([]market.Bar, error) {
	f.rng = rng
	if ticker == "NONE" {
		return nil, market.ErrNoHistory
	}
	return []market.Bar{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 110},
	}, nil
}

func testApp(t *testing.T) (*app, *bytes.Buffer, *countingFundamentals) {
	t.Helper()
	cfg := store.Default()
	cfg.Report.OutputDir = t.TempDir()

	orch := report.NewOrchestrator(collector.NewService(collectornoop.NewNoopSource(), nil), noop.NewNoopGenerator())
	var out bytes.Buffer
	a := newApp(cfg, orch, nil, &out)
	a.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	fund := &countingFundamentals{}
	a.fundamentals = fund
	return a, &out, fund
}

func TestParseRequestDefaults(t *testing.T) {
	a, _, _ := testApp(t)

	req, err := a.parseRequest([]string{"aapl"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", req.Ticker)
	assert.Equal(t, "2025-03-03", req.StartDate.Format(dateLayout))
	assert.Equal(t, "2025-03-10", req.EndDate.Format(dateLayout))
	assert.Equal(t, 30, req.DailyLimit)

	req, err = a.parseRequest([]string{"MSFT", "2025-01-01", "2025-01-31", "50"})
	require.NoError(t, err)
	assert.Equal(t, 50, req.DailyLimit)
	assert.Equal(t, "report_MSFT_2025-01-01_2025-01-31_50", req.Key().String())
}

func TestParseRequestErrors(t *testing.T) {
	a, _, _ := testApp(t)

	_, err := a.parseRequest(nil)
	assert.Error(t, err)

	_, err = a.parseRequest([]string{"AAPL", "2025-02-01", "2025-01-01"})
	assert.ErrorIs(t, err, report.ErrInvalidDateRange)

	_, err = a.parseRequest([]string{"AAPL", "yesterday"})
	assert.Error(t, err)

	_, err = a.parseRequest([]string{"AAPL", "2025-01-01", "2025-01-02", "many"})
	assert.Error(t, err)
}

func TestReportIsCachedAndSaved(t *testing.T) {
	a, out, fund := testApp(t)
	ctx := context.Background()

	assert.True(t, a.dispatch(ctx, "report AAPL 2025-01-01 2025-01-07 30"))
	assert.Contains(t, out.String(), "Collecting up to 210 articles for AAPL")
	assert.Contains(t, out.String(), "# Report Module Missing")
	assert.Contains(t, out.String(), "Sentiment trend chart not available")
	assert.Equal(t, 1, fund.calls)

	md := filepath.Join(a.cfg.Report.OutputDir, "AAPL_Sentiment_Report_2025-01-01_to_2025-01-07.md")
	_, err := os.Stat(md)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(a.cfg.Report.OutputDir, "AAPL_Sentiment_Report_2025-01-01_to_2025-01-07.html"))
	require.NoError(t, err)

	out.Reset()
	a.dispatch(ctx, "report AAPL 2025-01-01 2025-01-07 30")
	assert.NotContains(t, out.String(), "Collecting up to")
	assert.Equal(t, 1, fund.calls)

	out.Reset()
	a.dispatch(ctx, "cache")
	assert.Contains(t, out.String(), "report_AAPL_2025-01-01_2025-01-07_30")

	out.Reset()
	a.dispatch(ctx, "regen AAPL 2025-01-01 2025-01-07 30")
	assert.Contains(t, out.String(), "Cleared cached report report_AAPL_2025-01-01_2025-01-07_30")
	assert.Equal(t, 2, fund.calls)

	out.Reset()
	a.dispatch(ctx, "anomalies AAPL 2025-01-01 2025-01-07 30")
	assert.Contains(t, out.String(), "No sentiment anomalies detected.")

	out.Reset()
	a.dispatch(ctx, "clear")
	assert.Contains(t, out.String(), "Cleared 1 cached reports")
	assert.Equal(t, 0, a.orch.Session().Len())
}

func TestDispatchErrors(t *testing.T) {
	a, out, _ := testApp(t)
	ctx := context.Background()

	a.dispatch(ctx, "anomalies AAPL 2025-01-01 2025-01-07 30")
	assert.Contains(t, out.String(), "no cached report for report_AAPL_2025-01-01_2025-01-07_30")

	out.Reset()
	a.dispatch(ctx, "frobnicate")
	assert.Contains(t, out.String(), `unknown command "frobnicate"`)

	assert.True(t, a.dispatch(ctx, "   "))
	assert.False(t, a.dispatch(ctx, "quit"))
}

func TestPrice(t *testing.T) {
	a, out, _ := testApp(t)
	ctx := context.Background()

	a.dispatch(ctx, "price AAPL")
	assert.Contains(t, out.String(), "market data is not configured")

	prices := &fakePrices{}
	a.prices = prices

	out.Reset()
	a.dispatch(ctx, "price aapl 1 Year")
	assert.Equal(t, "1y", prices.rng)
	assert.Contains(t, out.String(), "AAPL 1 Year: 2025-01-02 to 2025-01-03, 2 sessions")
	assert.Contains(t, out.String(), "Close 100.00 -> 110.00 (+10.00%)")
	assert.Contains(t, out.String(), market.RSI14)
	assert.Contains(t, out.String(), market.NA)

	out.Reset()
	a.dispatch(ctx, "price AAPL")
	assert.Equal(t, "3mo", prices.rng)

	out.Reset()
	a.dispatch(ctx, "price AAPL 5y")
	assert.Contains(t, out.String(), `unknown period "5y"`)

	out.Reset()
	a.dispatch(ctx, "price NONE")
	assert.Contains(t, out.String(), "no price history")
}
