package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsent/internal/types"
)

func TestSplitSnapshot(t *testing.T) {
	var lines []string
	lines = append(lines, "# AAPL Sentiment Snapshot", "## Key figures")
	for i := 0; i < 10; i++ {
		lines = append(lines, fmt.Sprintf("| row %d | x |", i))
	}
	lines = append(lines, "## Overview", "text", "## Outlook and Risks")
	report := strings.Join(lines, "\n")

	snapshot, narrative := SplitSnapshot(report)
	assert.True(t, strings.HasPrefix(snapshot, "# AAPL Sentiment Snapshot\n## Key figures"))
	assert.True(t, strings.HasSuffix(snapshot, "| row 9 | x |"))
	assert.True(t, strings.HasPrefix(narrative, "## Overview"))
	assert.Equal(t, report, snapshot+"\n"+narrative)
}

func TestSplitSnapshotWithoutHeading(t *testing.T) {
	snapshot, narrative := SplitSnapshot("# Report Module Missing\nPlease add ...")
	assert.Equal(t, "# Report Module Missing\nPlease add ...", snapshot)
	assert.Empty(t, narrative)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "AAPL_Sentiment_Report_2025-01-01_to_2025-01-07.md", Filename("AAPL", "2025-01-01", "2025-01-07"))
}

func TestEstimateArticles(t *testing.T) {
	assert.Equal(t, 1, Days(day("2025-01-01"), day("2025-01-01")))
	assert.Equal(t, 210, EstimateArticles(day("2025-01-01"), day("2025-01-07"), 30))
	assert.Equal(t, MaxArticles, EstimateArticles(day("2024-01-01"), day("2024-12-31"), 100))
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("AAPL <report>", "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~ https://example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>AAPL &lt;report&gt;</title>")
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<del>old</del>")
	assert.Contains(t, out, `<a href="https://example.com">`)
}

func scored(date string, n int, v float64) []types.ScoredItem {
	var out []types.ScoredItem
	for i := 0; i < n; i++ {
		out = append(out, types.ScoredItem{DateStr: date, Sentiment: types.Float(v)})
	}
	return out
}

func TestBuildView(t *testing.T) {
	posts := append(scored("2025-01-01", 5, 0.1), scored("2025-01-02", 6, 0.6)...)
	trend := &types.Figure{Kind: "trend", Traces: []types.Trace{{Name: "Daily mean sentiment"}}}
	entry := &types.ReportEntry{
		Ticker:       "AAPL",
		StartDate:    "2025-01-01",
		EndDate:      "2025-01-02",
		Report:       "# AAPL Sentiment Snapshot",
		Chart:        trend,
		AvgSentiment: types.Float(0.3727),
		Posts:        posts,
	}

	v := BuildView(entry, DefaultViewOptions())
	assert.Equal(t, "AAPL_Sentiment_Report_2025-01-01_to_2025-01-02.md", v.Filename)
	assert.Equal(t, "+0.3727", v.Overall)
	require.Len(t, v.Anomalies, 1)
	assert.Equal(t, types.AnomalySurge, v.Anomalies[0].Type)

	require.NotNil(t, v.Trend)
	assert.Len(t, v.Trend.Traces, 2)
	assert.Len(t, trend.Traces, 1, "cached chart must not be modified")

	require.NotNil(t, v.Box)
	assert.Len(t, v.Box.Traces, 2)
	assert.Empty(t, v.BoxNotice)
}

func TestBuildViewNotices(t *testing.T) {
	entry := &types.ReportEntry{Ticker: "AAPL", Report: "x", Posts: scored("2025-01-01", 3, 0)}

	v := BuildView(entry, DefaultViewOptions())
	assert.Nil(t, v.Trend)
	assert.Equal(t, "Sentiment trend chart not available", v.TrendNotice)
	assert.Nil(t, v.Box)
	assert.Equal(t, "Daily distribution needs at least 10 posts", v.BoxNotice)
	assert.Empty(t, v.Overall)

	opts := DefaultViewOptions()
	opts.MinPostsForBox = 0
	v = BuildView(&types.ReportEntry{Ticker: "AAPL"}, opts)
	assert.Contains(t, v.BoxNotice, "Boxplot rendering error")
}
