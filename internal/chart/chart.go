// Package chart builds the opaque figure handles shown next to a report: the
// daily sentiment trend and the per-day distribution box plot.
package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"deepsent/internal/sentiment"
	"deepsent/internal/types"
)

const (
	KindTrend = "trend"
	KindBox   = "box"
)

// TrendFigure plots the mean sentiment of every day that has at least one
// scored post. It returns nil when there is nothing to plot.
func TrendFigure(ticker string, items []types.ScoredItem) *types.Figure {
	tr := types.Trace{Name: "Daily mean sentiment"}
	for _, g := range sentiment.GroupByDay(items) {
		m := sentiment.Mean(g.Scores())
		if m == nil {
			continue
		}
		tr.X = append(tr.X, g.Date)
		tr.Y = append(tr.Y, *m)
	}
	if len(tr.X) == 0 {
		return nil
	}

	return &types.Figure{
		Kind:   KindTrend,
		Title:  fmt.Sprintf("%s Sentiment Trend", ticker),
		XTitle: "Date",
		YTitle: "Sentiment Score",
		Traces: []types.Trace{tr},
	}
}

// MarkAnomalies adds the surge and plunge days as separate marker traces.
func MarkAnomalies(fig *types.Figure, anomalies []types.DailySentimentStat) {
	if fig == nil || len(anomalies) == 0 {
		return
	}
	surge := types.Trace{Name: "Surge"}
	plunge := types.Trace{Name: "Plunge"}
	for _, a := range anomalies {
		t := &plunge
		if a.Type == types.AnomalySurge {
			t = &surge
		}
		t.X = append(t.X, a.Date)
		t.Y = append(t.Y, a.Sentiment)
	}
	for _, t := range []types.Trace{surge, plunge} {
		if len(t.X) > 0 {
			fig.Traces = append(fig.Traces, t)
		}
	}
}

// BoxFigure plots one box per day of the distribution summary.
func BoxFigure(ticker string, days []types.DayDistribution) *types.Figure {
	fig := &types.Figure{
		Kind:   KindBox,
		Title:  fmt.Sprintf("Daily Sentiment Distribution for %s", ticker),
		XTitle: "Date",
		YTitle: "Sentiment Score",
	}
	for _, d := range days {
		fig.Traces = append(fig.Traces, types.Trace{
			Name:  d.Label,
			Y:     d.Values,
			Hover: fmt.Sprintf("%s: %d posts", d.Label, d.Count),
		})
	}
	return fig
}

// Save writes fig as JSON under dir with a random name and returns the path.
func Save(dir string, fig *types.Figure) (string, error) {
	if fig == nil {
		return "", fmt.Errorf("nil figure")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	data, err := json.MarshalIndent(fig, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode figure: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", fig.Kind, uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write figure: %w", err)
	}
	return path, nil
}
