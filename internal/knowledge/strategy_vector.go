package knowledge

import (
	"context"
	"fmt"

	"erpassist/internal/embedding"
	"erpassist/internal/logging"
	"erpassist/internal/vector"
)

// vectorThreshold is the minimum index score counted as a hit. A best match
// below it means the index has nothing relevant, which is a definitive miss
// rather than a reason to try weaker strategies.
const vectorThreshold = 0.70

const vectorTopK = 3

// VectorStrategy answers queries from a vector index. The query is embedded
// by whichever configured engine matches the index dimension; the index is
// only usable when exactly one engine does.
type VectorStrategy struct {
	index   vector.Index
	engines []embedding.Engine
}

// NewVectorStrategy creates the vector search stage. A nil index makes the
// strategy permanently unavailable.
func NewVectorStrategy(index vector.Index, engines []embedding.Engine) *VectorStrategy {
	return &VectorStrategy{index: index, engines: engines}
}

// Name returns the strategy name.
func (s *VectorStrategy) Name() string {
	return "vector"
}

// Attempt embeds the query and searches the index.
func (s *VectorStrategy) Attempt(ctx context.Context, query string) (*Match, error) {
	if s.index == nil {
		return nil, ErrUnavailable
	}

	dim, err := s.index.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine index dimension: %w", err)
	}

	matched := embedding.ForDimension(s.engines, dim)
	switch len(matched) {
	case 0:
		logging.KnowledgeDebug("No embedding engine matches index dimension %d", dim)
		return nil, ErrUnavailable
	case 1:
	default:
		return nil, fmt.Errorf("ambiguous embedding engines for index dimension %d: %d candidates", dim, len(matched))
	}
	engine := matched[0]

	queryVec, err := engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, queryVec, vectorTopK)
	if err != nil {
		return nil, fmt.Errorf("index query failed: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	top := matches[0]
	if top.Score < vectorThreshold {
		logging.KnowledgeDebug("Top index match score %.2f below threshold %.2f", top.Score, vectorThreshold)
		return nil, nil
	}

	return &Match{
		Answer:     top.Payload,
		Confidence: top.Score,
		Context:    fmt.Sprintf("Retrieved from knowledge base with score %.2f", top.Score),
	}, nil
}
