package interfaces

import (
	"context"

	"deepsent/internal/types"
)

// Collector gathers scored posts for a ticker over a date range.
type Collector interface {
	Collect(ctx context.Context, req types.CollectRequest) (*types.CollectResult, error)
}
