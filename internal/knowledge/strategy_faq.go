package knowledge

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"erpassist/internal/embedding"
	"erpassist/internal/logging"
)

// faqThreshold is the minimum cosine similarity between the query and an
// FAQ question to count as a hit. Strictly greater-than.
const faqThreshold = 0.75

// FAQStrategy matches queries against FAQ questions by embedding
// similarity. Question embeddings are computed lazily on the first query
// and cached for the life of the process.
type FAQStrategy struct {
	engine embedding.Engine
	corpus *Corpus

	group singleflight.Group

	mu     sync.RWMutex
	cached [][]float32
}

// NewFAQStrategy creates the FAQ embedding stage. A nil engine makes the
// strategy permanently unavailable; a nil corpus uses the embedded default.
func NewFAQStrategy(engine embedding.Engine, corpus *Corpus) *FAQStrategy {
	if corpus == nil {
		corpus = DefaultCorpus()
	}
	return &FAQStrategy{engine: engine, corpus: corpus}
}

// Name returns the strategy name.
func (s *FAQStrategy) Name() string {
	return "faq"
}

// Attempt embeds the query and compares it against every FAQ question.
func (s *FAQStrategy) Attempt(ctx context.Context, query string) (*Match, error) {
	if s.engine == nil {
		return nil, ErrUnavailable
	}

	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	questionVecs, err := s.questionEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	bestIndex := -1
	bestSimilarity := 0.0
	for i, vec := range questionVecs {
		similarity, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			logging.KnowledgeWarn("Skipping FAQ %d: %v", i, err)
			continue
		}
		if similarity > bestSimilarity {
			bestIndex = i
			bestSimilarity = similarity
		}
	}

	if bestIndex < 0 || bestSimilarity <= faqThreshold {
		logging.KnowledgeDebug("Best FAQ similarity %.2f not above threshold %.2f", bestSimilarity, faqThreshold)
		return nil, nil
	}

	faq := s.corpus.FAQs[bestIndex]
	return &Match{
		Answer:     faq.Answer,
		Confidence: bestSimilarity,
		Context:    fmt.Sprintf("This information relates to %s", faq.Question),
	}, nil
}

// questionEmbeddings returns the cached FAQ question embeddings, computing
// them on first use. Concurrent first queries share one embedding pass; a
// failed pass is retried on the next query.
func (s *FAQStrategy) questionEmbeddings(ctx context.Context) ([][]float32, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	result, err, _ := s.group.Do("faq-embeddings", func() (interface{}, error) {
		questions := make([]string, len(s.corpus.FAQs))
		for i, faq := range s.corpus.FAQs {
			questions[i] = faq.Question
		}

		logging.Knowledge("Embedding %d FAQ questions with %s", len(questions), s.engine.Name())
		vecs, err := s.engine.EmbedBatch(ctx, questions)
		if err != nil {
			return nil, fmt.Errorf("failed to embed FAQ questions: %w", err)
		}

		s.mu.Lock()
		s.cached = vecs
		s.mu.Unlock()
		return vecs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}
