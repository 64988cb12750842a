package llm

import (
	"context"
	"fmt"
	"strings"

	"deepsent/internal/sentiment"
	"deepsent/internal/types"
)

const defaultSystemPrompt = "You are a financial sentiment analyst. You write concise, evidence-based " +
	"markdown reports about how news and social sentiment around a stock evolved over a period."

// PromptConfig carries the analysis thresholds quoted in the prompt.
type PromptConfig struct {
	System            string
	AnomalyThreshold  float64
	MinDailyCount     int
	MinArticlesPerDay int
	EvidenceTopK      int
}

// DefaultPromptConfig mirrors the sentiment package defaults.
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		AnomalyThreshold:  sentiment.DefaultAnomalyThreshold,
		MinDailyCount:     sentiment.DefaultMinDailyCount,
		MinArticlesPerDay: sentiment.DefaultMinArticlesPerDay,
		EvidenceTopK:      40,
	}
}

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

// EvidenceSelector picks the posts quoted verbatim in the prompt.
type EvidenceSelector interface {
	Select(ctx context.Context, ticker string, posts []types.ScoredItem, k int) ([]types.ScoredItem, error)
}

// PromptBuilder assembles prompts for the providers.
type PromptBuilder struct {
	cfg      PromptConfig
	selector EvidenceSelector
}

// NewPromptBuilder returns a builder. A nil selector quotes the first posts.
func NewPromptBuilder(cfg PromptConfig, selector EvidenceSelector) *PromptBuilder {
	if cfg.EvidenceTopK <= 0 {
		cfg.EvidenceTopK = DefaultPromptConfig().EvidenceTopK
	}
	return &PromptBuilder{cfg: cfg, selector: selector}
}

// Build selects evidence and renders the prompt for req.
func (b *PromptBuilder) Build(ctx context.Context, req types.GenerateRequest) (Prompt, error) {
	evidence := req.SocialData
	if len(evidence) > b.cfg.EvidenceTopK {
		evidence = evidence[:b.cfg.EvidenceTopK]
	}
	if b.selector != nil && len(req.SocialData) > 0 {
		sel, err := b.selector.Select(ctx, req.Ticker, req.SocialData, b.cfg.EvidenceTopK)
		if err != nil {
			return Prompt{}, fmt.Errorf("select evidence: %w", err)
		}
		evidence = sel
	}
	return BuildPrompt(req, evidence, b.cfg), nil
}

// BuildPrompt renders the report prompt from the request and the chosen
// evidence posts.
func BuildPrompt(req types.GenerateRequest, evidence []types.ScoredItem, cfg PromptConfig) Prompt {
	system := cfg.System
	if system == "" {
		system = defaultSystemPrompt
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticker: %s\nPeriod: %s\nPosts collected: %d\n\n", req.Ticker, req.Period, len(req.SocialData))

	sb.WriteString("## Fundamentals\n")
	writeFundamentals(&sb, req.Fundamentals)

	sb.WriteString("\n## Daily sentiment (mean, median, posts)\n")
	groups := sentiment.GroupByDay(req.SocialData)
	if len(groups) == 0 {
		sb.WriteString("No dated posts.\n")
	}
	for _, g := range groups {
		scores := g.Scores()
		if len(scores) == 0 {
			continue
		}
		mean := sentiment.Mean(scores)
		fmt.Fprintf(&sb, "- %s: mean %+.3f, median %+.3f, %d posts\n", g.Date, *mean, sentiment.Median(scores), len(scores))
	}

	fmt.Fprintf(&sb, "\n## Anomalies (|change| >= %.2f, days with >= %d posts)\n", cfg.AnomalyThreshold, cfg.MinDailyCount)
	anomalies := sentiment.DetectAnomalies(req.SocialData,
		sentiment.WithThreshold(cfg.AnomalyThreshold),
		sentiment.WithMinCount(cfg.MinDailyCount),
	)
	if len(anomalies) == 0 {
		sb.WriteString("None detected.\n")
	}
	for _, a := range anomalies {
		fmt.Fprintf(&sb, "- %s: %s, median %+.3f, change %+.3f, %d posts\n", a.Date, a.Type, a.Sentiment, *a.Change, a.Count)
	}

	sb.WriteString("\n## Distribution (q1 / median / q3, outliers)\n")
	days, err := sentiment.SummarizeDistribution(req.SocialData, cfg.MinArticlesPerDay)
	if err != nil {
		sb.WriteString("No posts.\n")
	}
	for _, d := range days {
		fmt.Fprintf(&sb, "- %s: %+.3f / %+.3f / %+.3f, %d outliers\n", d.Label, d.Q1, d.Median, d.Q3, len(d.Outliers))
	}

	sb.WriteString("\n## Evidence posts\n")
	for _, p := range evidence {
		score := "n/a"
		if v, ok := p.Score(); ok {
			score = fmt.Sprintf("%+.2f", v)
		}
		fmt.Fprintf(&sb, "- [%s] (%s, %s) %s\n", sentiment.ResolveDate(p), score, p.Source, oneLine(p.Title))
	}
	if req.ChartPath != "" {
		fmt.Fprintf(&sb, "\nA sentiment trend chart is attached as %s.\n", req.ChartPath)
	}

	fmt.Fprintf(&sb, `
Write the report in markdown.
Start with "# %s Sentiment Snapshot" followed by a short markdown table of the key figures
(overall sentiment, posts, strongest day, weakest day, anomalies).
Then write these sections, each as a "## " heading: Overview, Sentiment Drivers, Anomalies,
Fundamentals Context, Outlook and Risks.
Quote evidence posts where they support a claim. Do not invent numbers.
`, req.Ticker)

	return Prompt{System: system, User: sb.String()}
}

func writeFundamentals(sb *strings.Builder, f *types.Fundamentals) {
	if f == nil || len(f.Order) == 0 {
		sb.WriteString("Not available.\n")
		return
	}
	sb.WriteString("| Indicator | Value |\n|---|---|\n")
	for _, name := range f.Order {
		switch v := f.Get(name).(type) {
		case float64:
			fmt.Fprintf(sb, "| %s | %.2f |\n", name, v)
		default:
			fmt.Fprintf(sb, "| %s | %v |\n", name, v)
		}
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
