// Package knowledge answers ERP queries from curated knowledge before any
// generative model gets involved. A Matcher runs an ordered chain of search
// strategies: vector index, FAQ embedding similarity, then keyword matching.
package knowledge

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var corpusYAML []byte

// FAQ is one curated question/answer pair.
type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Passage is a free-text knowledge snippet seeded into the vector index.
type Passage struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Corpus is the static knowledge base: FAQ pairs for embedding and keyword
// matching, and passages for the vector index.
type Corpus struct {
	FAQs     []FAQ     `yaml:"faqs"`
	Passages []Passage `yaml:"passages"`
}

// ParseCorpus parses a YAML knowledge corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge corpus: %w", err)
	}
	if len(c.FAQs) == 0 {
		return nil, fmt.Errorf("knowledge corpus has no FAQ entries")
	}
	return &c, nil
}

var (
	defaultCorpus     *Corpus
	defaultCorpusOnce sync.Once
)

// DefaultCorpus returns the corpus embedded in the binary.
func DefaultCorpus() *Corpus {
	defaultCorpusOnce.Do(func() {
		c, err := ParseCorpus(corpusYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded knowledge corpus invalid: %v", err))
		}
		defaultCorpus = c
	})
	return defaultCorpus
}
