package knowledge

import (
	"context"
	"errors"

	"erpassist/internal/logging"
)

// Match is a knowledge-base answer with its confidence score.
type Match struct {
	Answer     string
	Confidence float64
	Context    string
}

// ErrUnavailable signals that a strategy's backing service is not configured
// or not reachable. The matcher skips the strategy without comment.
var ErrUnavailable = errors.New("knowledge strategy unavailable")

// Strategy is one way of answering a query from the knowledge base.
//
// The return contract is three-way:
//   - (match, nil): the strategy answered.
//   - (nil, nil): the strategy ran to completion and is confident there is
//     no knowledge-base answer; the chain stops here.
//   - (nil, err): the strategy could not run. ErrUnavailable skips it
//     silently; any other error is logged and the next strategy is tried.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, query string) (*Match, error)
}

// Matcher runs strategies in order until one of them resolves the query.
type Matcher struct {
	strategies []Strategy
}

// NewMatcher creates a matcher over the given strategy chain.
func NewMatcher(strategies ...Strategy) *Matcher {
	return &Matcher{strategies: strategies}
}

// Search runs the strategy chain for a query. A nil result means the
// knowledge base has no answer; Search itself never fails.
func (m *Matcher) Search(ctx context.Context, query string) *Match {
	timer := logging.StartTimer(logging.CategoryKnowledge, "Search")
	defer timer.Stop()

	for _, s := range m.strategies {
		match, err := s.Attempt(ctx, query)
		switch {
		case err == nil && match != nil:
			logging.Knowledge("Strategy %s answered with confidence %.2f", s.Name(), match.Confidence)
			return match
		case err == nil:
			// A definitive miss from a completed strategy is trusted;
			// weaker strategies do not get to second-guess it.
			logging.KnowledgeDebug("Strategy %s found no match, stopping chain", s.Name())
			return nil
		case errors.Is(err, ErrUnavailable):
			logging.KnowledgeDebug("Strategy %s unavailable, skipping", s.Name())
		default:
			logging.KnowledgeWarn("Strategy %s failed: %v", s.Name(), err)
		}
	}

	logging.KnowledgeDebug("No strategy resolved query")
	return nil
}
