package llmobs

import (
	"context"

	"deepsent/internal/interfaces"
	"deepsent/internal/logger"
	"deepsent/internal/trace"
	"deepsent/internal/types"
)

// observableGenerator wraps a Generator with logging and tracing
type observableGenerator struct {
	generator interfaces.Generator
}

var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(generator interfaces.Generator) interfaces.Generator {
	return &observableGenerator{
		generator: generator,
	}
}

func (og *observableGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()
	trace.Annotate(ctx, trace.AttrTicker.String(req.Ticker), trace.AttrPosts.Int(len(req.SocialData)))

	// Skip(1) so the log points at the caller, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting sentiment report",
		"ticker", req.Ticker,
		"period", req.Period,
		"posts", len(req.SocialData),
	)

	report, err := og.generator.Generate(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to generate sentiment report", err,
			"ticker", req.Ticker,
			"period", req.Period,
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Sentiment report generated",
		"ticker", req.Ticker,
		"chars", len(report),
	)

	return report, nil
}

type observableEmbedder struct {
	embedder interfaces.Embedder
}

var _ interfaces.Embedder = (*observableEmbedder)(nil)

// WrapEmbedder wraps an embedder with observability middleware
func WrapEmbedder(embedder interfaces.Embedder) interfaces.Embedder {
	return &observableEmbedder{embedder: embedder}
}

func (oe *observableEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Embed")
	defer span.End()

	vecs, err := oe.embedder.Embed(ctx, texts)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to embed texts", err, "texts", len(texts))
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Texts embedded", "texts", len(texts), "vectors", len(vecs))
	return vecs, nil
}
