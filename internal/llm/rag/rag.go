// Package rag picks the posts quoted as evidence in a report prompt.
package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"deepsent/internal/interfaces"
	"deepsent/internal/logger"
	"deepsent/internal/types"
)

// queryTemplate is embedded once per ticker and compared with every post.
const queryTemplate = "%s stock sentiment news: earnings, guidance, analyst ratings, products, risks"

// Selector ranks posts by cosine similarity to a ticker query. Without an
// embedder, or when embedding fails, posts are ranked by |sentiment|.
type Selector struct {
	embedder interfaces.Embedder
}

func NewSelector(embedder interfaces.Embedder) *Selector {
	return &Selector{embedder: embedder}
}

// Select returns at most k posts, best first.
func (s *Selector) Select(ctx context.Context, ticker string, posts []types.ScoredItem, k int) ([]types.ScoredItem, error) {
	if k <= 0 || len(posts) == 0 {
		return nil, nil
	}

	scores, err := s.relevance(ctx, ticker, posts)
	if err != nil {
		return nil, err
	}

	idx := make([]int, len(posts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	if k > len(idx) {
		k = len(idx)
	}
	out := make([]types.ScoredItem, 0, k)
	for _, i := range idx[:k] {
		out = append(out, posts[i])
	}
	return out, nil
}

func (s *Selector) relevance(ctx context.Context, ticker string, posts []types.ScoredItem) ([]float64, error) {
	if s.embedder != nil {
		texts := make([]string, 0, len(posts)+1)
		texts = append(texts, fmt.Sprintf(queryTemplate, ticker))
		for _, p := range posts {
			texts = append(texts, document(p))
		}
		vecs, err := s.embedder.Embed(ctx, texts)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			logger.Warn(ctx, "Embedding failed - ranking evidence by sentiment polarity", "ticker", ticker, "error", err.Error())
		} else if len(vecs) == len(texts) {
			scores := make([]float64, len(posts))
			for i := range posts {
				scores[i] = Cosine(vecs[0], vecs[i+1])
			}
			return scores, nil
		}
	}

	scores := make([]float64, len(posts))
	for i, p := range posts {
		if v, ok := p.Score(); ok {
			scores[i] = math.Abs(v)
		}
	}
	return scores, nil
}

func document(p types.ScoredItem) string {
	return strings.TrimSpace(p.Title + "\n" + p.Summary)
}

// Cosine similarity of a and b; 0 when either is empty, zero or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
