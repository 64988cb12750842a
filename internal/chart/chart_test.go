package chart

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsent/internal/types"
)

func TestTrendFigure(t *testing.T) {
	items := []types.ScoredItem{
		{DateStr: "2025-01-02", Sentiment: types.Float(0.2)},
		{DateStr: "2025-01-01", Sentiment: types.Float(0.5)},
		{DateStr: "2025-01-02", Sentiment: types.Float(0.4)},
		{DateStr: "2025-01-03"},
	}

	fig := TrendFigure("AAPL", items)
	require.NotNil(t, fig)
	assert.Equal(t, KindTrend, fig.Kind)
	assert.Equal(t, "AAPL Sentiment Trend", fig.Title)
	require.Len(t, fig.Traces, 1)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, fig.Traces[0].X)
	assert.InDeltaSlice(t, []float64{0.5, 0.3}, fig.Traces[0].Y, 1e-12)

	assert.Nil(t, TrendFigure("AAPL", nil))
}

func TestMarkAnomalies(t *testing.T) {
	fig := &types.Figure{Kind: KindTrend, Traces: []types.Trace{{Name: "Daily mean sentiment"}}}
	MarkAnomalies(fig, []types.DailySentimentStat{
		{Date: "2025-01-02", Sentiment: 0.4, Type: types.AnomalySurge},
	})
	require.Len(t, fig.Traces, 2)
	assert.Equal(t, "Surge", fig.Traces[1].Name)

	MarkAnomalies(nil, nil)
}

func TestBoxFigure(t *testing.T) {
	fig := BoxFigure("MSFT", []types.DayDistribution{
		{Label: "Jan 01", Values: []float64{0.1, 0.2, 0.3}, Count: 3},
	})
	assert.Equal(t, KindBox, fig.Kind)
	require.Len(t, fig.Traces, 1)
	assert.Equal(t, "Jan 01: 3 posts", fig.Traces[0].Hover)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	fig := &types.Figure{Kind: KindTrend, Title: "x", Traces: []types.Trace{{Name: "a", Y: []float64{1}}}}

	path, err := Save(dir, fig)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got types.Figure
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *fig, got)

	_, err = Save(dir, nil)
	assert.Error(t, err)
}
