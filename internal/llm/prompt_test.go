package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsent/internal/types"
)

func posts(date string, n int, v float64) []types.ScoredItem {
	var out []types.ScoredItem
	for i := 0; i < n; i++ {
		out = append(out, types.ScoredItem{
			DateStr:   date,
			Title:     fmt.Sprintf("headline %s %d", date, i),
			Source:    "wire",
			Sentiment: types.Float(v),
		})
	}
	return out
}

func TestBuildPrompt(t *testing.T) {
	f := types.NewFundamentals()
	f.Set("RSI (14)", 61.234)
	f.Set("Sector", "Technology")

	data := append(posts("2025-01-01", 5, 0.1), posts("2025-01-02", 5, 0.5)...)
	req := types.GenerateRequest{
		Ticker:       "NVDA",
		Fundamentals: f,
		SocialData:   data,
		Period:       "2025-01-01 to 2025-01-02",
		ChartPath:    "charts/trend.json",
	}

	p := BuildPrompt(req, data[:2], DefaultPromptConfig())

	assert.Equal(t, defaultSystemPrompt, p.System)
	assert.Contains(t, p.User, "Ticker: NVDA")
	assert.Contains(t, p.User, "Period: 2025-01-01 to 2025-01-02")
	assert.Contains(t, p.User, "| RSI (14) | 61.23 |")
	assert.Contains(t, p.User, "| Sector | Technology |")
	assert.Contains(t, p.User, "2025-01-02: surge")
	assert.Contains(t, p.User, "Jan 02")
	assert.Contains(t, p.User, "headline 2025-01-01 1")
	assert.NotContains(t, p.User, "headline 2025-01-01 2")
	assert.Contains(t, p.User, "# NVDA Sentiment Snapshot")
	assert.Contains(t, p.User, "charts/trend.json")
}

func TestBuildPromptEmptyData(t *testing.T) {
	p := BuildPrompt(types.GenerateRequest{Ticker: "X"}, nil, PromptConfig{System: "custom"})
	assert.Equal(t, "custom", p.System)
	assert.Contains(t, p.User, "Not available.")
	assert.Contains(t, p.User, "No dated posts.")
	assert.Contains(t, p.User, "None detected.")
	assert.Contains(t, p.User, "No posts.")
}

type fixedSelector struct {
	picked []types.ScoredItem
	err    error
}

func (s fixedSelector) Select(ctx context.Context, ticker string, posts []types.ScoredItem, k int) ([]types.ScoredItem, error) {
	return s.picked, s.err
}

func TestPromptBuilderUsesSelector(t *testing.T) {
	data := posts("2025-01-01", 3, 0.2)
	special := types.ScoredItem{DateStr: "2025-01-01", Title: "the chosen one", Source: "wire", Sentiment: types.Float(0.9)}

	b := NewPromptBuilder(DefaultPromptConfig(), fixedSelector{picked: []types.ScoredItem{special}})
	p, err := b.Build(context.Background(), types.GenerateRequest{Ticker: "AAPL", SocialData: data})
	require.NoError(t, err)
	assert.Contains(t, p.User, "the chosen one")

	evidence := p.User[strings.Index(p.User, "## Evidence posts"):]
	assert.NotContains(t, evidence, "headline 2025-01-01 0")

	b = NewPromptBuilder(DefaultPromptConfig(), fixedSelector{err: errors.New("embed down")})
	_, err = b.Build(context.Background(), types.GenerateRequest{Ticker: "AAPL", SocialData: data})
	assert.Error(t, err)
}

func TestPromptBuilderCapsEvidenceWithoutSelector(t *testing.T) {
	cfg := DefaultPromptConfig()
	cfg.EvidenceTopK = 2
	b := NewPromptBuilder(cfg, nil)

	p, err := b.Build(context.Background(), types.GenerateRequest{Ticker: "AAPL", SocialData: posts("2025-01-01", 5, 0)})
	require.NoError(t, err)
	evidence := p.User[strings.Index(p.User, "## Evidence posts"):]
	assert.Equal(t, 2, strings.Count(evidence, "headline"))
}
