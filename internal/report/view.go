package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"deepsent/internal/chart"
	"deepsent/internal/sentiment"
	"deepsent/internal/types"
)

const (
	// SnapshotMinLine is the last line index that can still belong to the
	// snapshot; the first "## " heading after it starts the narrative.
	SnapshotMinLine = 10
	// MaxArticles caps the articles one report collects.
	MaxArticles = 3000
)

const (
	noticeTrendMissing = "Sentiment trend chart not available"
	noticeBoxTooFew    = "Daily distribution needs at least %d posts"
	noticeBoxError     = "Boxplot rendering error: %v"
)

// SplitSnapshot splits a generated report into the leading snapshot section
// and the narrative that follows it.
func SplitSnapshot(text string) (snapshot, narrative string) {
	lines := strings.Split(text, "\n")
	end := len(lines)
	for i, line := range lines {
		if i > SnapshotMinLine && strings.HasPrefix(line, "## ") {
			end = i
			break
		}
	}
	return strings.Join(lines[:end], "\n"), strings.Join(lines[end:], "\n")
}

// Filename is the download name of a report.
func Filename(ticker, start, end string) string {
	return fmt.Sprintf("%s_Sentiment_Report_%s_to_%s.md", ticker, start, end)
}

// Days is the number of calendar days in the inclusive range.
func Days(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// EstimateArticles is the most articles a request can collect.
func EstimateArticles(start, end time.Time, dailyLimit int) int {
	return min(dailyLimit*Days(start, end), MaxArticles)
}

// EstimateDuration is a rough wall time for collecting and scoring n articles.
func EstimateDuration(articles int) time.Duration {
	return time.Duration(articles) * 600 * time.Millisecond
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// RenderHTML renders report markdown as a standalone HTML page.
func RenderHTML(title, md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>body{font-family:sans-serif;max-width:960px;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), buf.String()), nil
}

// ViewOptions are the thresholds used when rendering a cached report.
type ViewOptions struct {
	MinPostsForBox    int
	MinArticlesPerDay int
	MinDailyCount     int
	AnomalyThreshold  float64
}

func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		MinPostsForBox:    10,
		MinArticlesPerDay: sentiment.DefaultMinArticlesPerDay,
		MinDailyCount:     sentiment.DefaultMinDailyCount,
		AnomalyThreshold:  sentiment.DefaultAnomalyThreshold,
	}
}

// View is what a front-end shows for one cached report. A chart that could
// not be built is replaced by a notice.
type View struct {
	Snapshot    string
	Narrative   string
	Trend       *types.Figure
	TrendNotice string
	Box         *types.Figure
	BoxNotice   string
	Anomalies   []types.DailySentimentStat
	// Overall is the signed average sentiment, empty when nothing was scored.
	Overall  string
	Filename string
}

// BuildView derives the displayable parts of entry. The entry is not modified.
func BuildView(entry *types.ReportEntry, opts ViewOptions) View {
	v := View{Filename: Filename(entry.Ticker, entry.StartDate, entry.EndDate)}
	v.Snapshot, v.Narrative = SplitSnapshot(entry.Report)

	v.Anomalies = sentiment.DetectAnomalies(entry.Posts,
		sentiment.WithThreshold(opts.AnomalyThreshold),
		sentiment.WithMinCount(opts.MinDailyCount),
	)

	if entry.Chart != nil {
		fig := *entry.Chart
		fig.Traces = append([]types.Trace(nil), entry.Chart.Traces...)
		chart.MarkAnomalies(&fig, v.Anomalies)
		v.Trend = &fig
	} else {
		v.TrendNotice = noticeTrendMissing
	}

	if len(entry.Posts) >= opts.MinPostsForBox {
		days, err := sentiment.SummarizeDistribution(entry.Posts, opts.MinArticlesPerDay)
		if err != nil {
			v.BoxNotice = fmt.Sprintf(noticeBoxError, err)
		} else {
			v.Box = chart.BoxFigure(entry.Ticker, days)
		}
	} else {
		v.BoxNotice = fmt.Sprintf(noticeBoxTooFew, opts.MinPostsForBox)
	}

	if entry.AvgSentiment != nil {
		v.Overall = fmt.Sprintf("%+.4f", *entry.AvgSentiment)
	}
	return v
}
