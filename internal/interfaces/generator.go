package interfaces

import (
	"context"

	"deepsent/internal/types"
)

// Generator composes the markdown sentiment report.
type Generator interface {
	Generate(ctx context.Context, req types.GenerateRequest) (string, error)
}

// Embedder turns texts into vectors for evidence retrieval.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
