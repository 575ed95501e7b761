// Package vector abstracts the vector index used for semantic knowledge
// retrieval. Two implementations: a Pinecone REST client and a local
// SQLite-backed index for deployments without a managed vector service.
package vector

import (
	"context"
	"fmt"

	"erpassist/internal/logging"
)

// Match is one scored hit from an index query.
type Match struct {
	ID      string
	Score   float64
	Payload string // the stored passage text
}

// Index is a queryable vector index.
type Index interface {
	// Query returns the topK nearest matches for the embedded query,
	// best first.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Dimension returns the dimensionality the index stores.
	Dimension(ctx context.Context) (int, error)

	// Name returns the index name for logs.
	Name() string
}

// Config selects and configures an index backend.
type Config struct {
	// Provider: "pinecone", "sqlite", or "" for no index.
	Provider string

	// Pinecone Configuration
	PineconeAPIKey string
	PineconeHost   string

	// SQLite Configuration
	SQLitePath       string
	SQLiteDimensions int
}

// New creates an index for the configured provider. An empty provider
// returns (nil, nil): the caller runs without a vector stage.
func New(cfg Config) (Index, error) {
	switch cfg.Provider {
	case "":
		logging.Vector("No vector index configured")
		return nil, nil
	case "pinecone":
		return NewPineconeIndex(cfg.PineconeHost, cfg.PineconeAPIKey)
	case "sqlite":
		return NewSQLiteIndex(cfg.SQLitePath, cfg.SQLiteDimensions)
	default:
		return nil, fmt.Errorf("unsupported vector provider: %s (use 'pinecone' or 'sqlite')", cfg.Provider)
	}
}
