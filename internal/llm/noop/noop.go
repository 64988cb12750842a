package noop

import (
	"context"

	"deepsent/internal/logger"
	"deepsent/internal/types"
)

// MissingReport is the markdown returned when no generation provider is configured.
const MissingReport = "# Report Module Missing\nPlease add a report generation provider (OPENAI, AZURE or CLAUDE) to config.yaml."

// NoopGenerator is the fallback used when no LLM provider is configured.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator {
	return &NoopGenerator{}
}

// Generate always returns MissingReport.
func (g *NoopGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	logger.Debug(ctx, "Noop generator called - returning placeholder report", "ticker", req.Ticker)
	return MissingReport, nil
}

// NoopEmbedder returns no vectors, which makes evidence selection fall back
// to sentiment polarity.
type NoopEmbedder struct{}

func NewNoopEmbedder() *NoopEmbedder {
	return &NoopEmbedder{}
}

func (e *NoopEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return nil, nil
}
