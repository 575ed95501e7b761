package knowledge

import (
	"context"
	"strings"

	"erpassist/internal/logging"
)

// keywordFraction is the share of an FAQ question's keywords that must
// appear in the query to count as a hit.
const keywordFraction = 0.3

// keywordBaseConfidence scales the match fraction into a confidence score.
// Keyword matching is the weakest signal, so even a full match stays below
// the embedding strategies.
const keywordBaseConfidence = 0.7

// KeywordStrategy matches queries against FAQ questions by plain keyword
// overlap. No network, no state; the last resort of the chain.
type KeywordStrategy struct {
	corpus *Corpus
}

// NewKeywordStrategy creates the keyword stage. A nil corpus uses the
// embedded default.
func NewKeywordStrategy(corpus *Corpus) *KeywordStrategy {
	if corpus == nil {
		corpus = DefaultCorpus()
	}
	return &KeywordStrategy{corpus: corpus}
}

// Name returns the strategy name.
func (s *KeywordStrategy) Name() string {
	return "keyword"
}

// Attempt scans FAQ questions in corpus order and returns the first whose
// keywords sufficiently overlap the query.
func (s *KeywordStrategy) Attempt(_ context.Context, query string) (*Match, error) {
	queryLower := strings.ToLower(query)

	for _, faq := range s.corpus.FAQs {
		keywords := questionKeywords(faq.Question)
		if len(keywords) == 0 {
			continue
		}

		matching := 0
		for _, kw := range keywords {
			if strings.Contains(queryLower, kw) {
				matching++
			}
		}

		fraction := float64(matching) / float64(len(keywords))
		if matching > 0 && fraction >= keywordFraction {
			logging.KnowledgeDebug("Keyword match on %q: %d/%d keywords", faq.Question, matching, len(keywords))
			return &Match{
				Answer:     faq.Answer,
				Confidence: keywordBaseConfidence * fraction,
			}, nil
		}
	}

	return nil, nil
}

// questionKeywords extracts the significant words of an FAQ question:
// punctuation stripped, lowercased, words longer than three characters.
func questionKeywords(question string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '?', ',', '.', '-':
			return -1
		}
		return r
	}, strings.ToLower(question))

	var keywords []string
	for _, word := range strings.Split(cleaned, " ") {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
