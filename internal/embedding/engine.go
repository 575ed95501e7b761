// Package embedding generates vector embeddings for semantic search over
// ERP knowledge. Two backends: Google GenAI (cloud) and Ollama (local).
package embedding

import (
	"context"
	"fmt"
	"math"
	"sort"

	"erpassist/internal/logging"
)

// =============================================================================
// EMBEDDING ENGINE INTERFACE
// =============================================================================

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates an embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embeddings
	Dimensions() int

	// Name returns the engine name
	Name() string
}

// HealthChecker is an optional interface for engines that can verify the
// backing service is reachable before batch operations.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// =============================================================================
// EMBEDDING CONFIGURATION
// =============================================================================

// Config holds embedding engine configuration. Both providers may be
// configured at once; Available builds every engine the config has
// credentials for.
type Config struct {
	// GenAI Configuration
	GenAIAPIKey string `json:"genai_api_key"`
	GenAIModel  string `json:"genai_model"` // Default: "gemini-embedding-001"

	// TaskType for GenAI: "SEMANTIC_SIMILARITY", "RETRIEVAL_QUERY", "RETRIEVAL_DOCUMENT"
	TaskType string `json:"task_type"`

	// Ollama Configuration
	OllamaEndpoint   string `json:"ollama_endpoint"`   // Default: "http://localhost:11434"
	OllamaModel      string `json:"ollama_model"`      // Default: "embeddinggemma"
	OllamaDimensions int    `json:"ollama_dimensions"` // Default: 768
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GenAIModel:       "gemini-embedding-001",
		TaskType:         "SEMANTIC_SIMILARITY",
		OllamaEndpoint:   "http://localhost:11434",
		OllamaModel:      "embeddinggemma",
		OllamaDimensions: 768,
	}
}

// =============================================================================
// FACTORY
// =============================================================================

// NewEngine creates a single embedding engine for the named provider.
func NewEngine(provider string, cfg Config) (Engine, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "NewEngine")
	defer timer.Stop()

	logging.Embedding("Creating embedding engine with provider=%s", provider)
	logging.EmbeddingDebug("Engine config: ollama_endpoint=%s, ollama_model=%s, genai_model=%s, task_type=%s",
		cfg.OllamaEndpoint, cfg.OllamaModel, cfg.GenAIModel, cfg.TaskType)

	var engine Engine
	var err error

	switch provider {
	case "ollama":
		engine, err = NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel, cfg.OllamaDimensions)
	case "genai":
		engine, err = NewGenAIEngine(cfg.GenAIAPIKey, cfg.GenAIModel, cfg.TaskType)
	default:
		err = fmt.Errorf("unsupported embedding provider: %s (use 'ollama' or 'genai')", provider)
	}

	if err != nil {
		logging.Get(logging.CategoryEmbedding).Error("Failed to create embedding engine: %v", err)
		return nil, err
	}

	logging.Embedding("Embedding engine created: name=%s, dimensions=%d", engine.Name(), engine.Dimensions())
	return engine, nil
}

// Available builds every engine the config has credentials for. A GenAI
// engine needs an API key; an Ollama engine needs an endpoint. An empty
// result means no provider is configured.
func Available(cfg Config) []Engine {
	var engines []Engine

	if cfg.GenAIAPIKey != "" {
		engine, err := NewGenAIEngine(cfg.GenAIAPIKey, cfg.GenAIModel, cfg.TaskType)
		if err != nil {
			logging.EmbeddingWarn("GenAI engine unavailable: %v", err)
		} else {
			engines = append(engines, engine)
		}
	}

	if cfg.OllamaEndpoint != "" {
		engine, err := NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel, cfg.OllamaDimensions)
		if err != nil {
			logging.EmbeddingWarn("Ollama engine unavailable: %v", err)
		} else {
			engines = append(engines, engine)
		}
	}

	return engines
}

// ForDimension returns the engines whose output dimensionality matches dim.
func ForDimension(engines []Engine, dim int) []Engine {
	var matched []Engine
	for _, e := range engines {
		if e.Dimensions() == dim {
			matched = append(matched, e)
		}
	}
	return matched
}

// =============================================================================
// COSINE SIMILARITY UTILITY
// =============================================================================

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical, 0 means
// orthogonal. A zero-magnitude vector has no direction, so comparing one is
// an error rather than a silent 0 score.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dotProduct, aMagnitude, bMagnitude float64
	for i := 0; i < len(a); i++ {
		dotProduct += float64(a[i]) * float64(b[i])
		aMagnitude += float64(a[i]) * float64(a[i])
		bMagnitude += float64(b[i]) * float64(b[i])
	}

	if aMagnitude == 0 || bMagnitude == 0 {
		return 0, fmt.Errorf("cannot compare zero-magnitude vector")
	}

	return dotProduct / (math.Sqrt(aMagnitude) * math.Sqrt(bMagnitude)), nil
}

// SimilarityResult is one hit from a top-K similarity search.
type SimilarityResult struct {
	Index      int
	Similarity float64
}

// FindTopK returns the indices of the top K corpus vectors most similar to
// the query, by cosine similarity, best first. Corpus vectors that cannot be
// compared (dimension mismatch, zero magnitude) are skipped.
func FindTopK(query []float32, corpus [][]float32, k int) []SimilarityResult {
	timer := logging.StartTimer(logging.CategoryEmbedding, "FindTopK")
	defer timer.Stop()

	if k <= 0 {
		k = 10
	}

	results := make([]SimilarityResult, 0, len(corpus))
	skipped := 0
	for i, vec := range corpus {
		similarity, err := CosineSimilarity(query, vec)
		if err != nil {
			skipped++
			continue
		}
		results = append(results, SimilarityResult{Index: i, Similarity: similarity})
	}

	if skipped > 0 {
		logging.EmbeddingWarn("FindTopK: skipped %d incomparable vectors", skipped)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}

	logging.EmbeddingDebug("FindTopK: %d results from corpus of %d (k=%d)", len(results), len(corpus), k)
	return results
}
