package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"erpassist/internal/logging"
)

// =============================================================================
// PINECONE INDEX
// =============================================================================

// PineconeIndex queries a Pinecone serverless index over its REST API.
type PineconeIndex struct {
	host   string
	apiKey string
	client *http.Client

	mu        sync.Mutex
	dimension int // cached after the first describe call
}

// NewPineconeIndex creates a client for the index at host. The host is the
// per-index endpoint from the Pinecone console, with or without scheme.
func NewPineconeIndex(host, apiKey string) (*PineconeIndex, error) {
	if host == "" {
		return nil, fmt.Errorf("pinecone host is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone API key is required")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	host = strings.TrimSuffix(host, "/")

	return &PineconeIndex{
		host:   host,
		apiKey: apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Query returns the topK nearest matches for the vector.
func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	timer := logging.StartTimer(logging.CategoryVector, "PineconeQuery")
	defer timer.Stop()

	if topK <= 0 {
		topK = 3
	}

	reqBody := pineconeQueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}

	var respBody pineconeQueryResponse
	if err := p.post(ctx, "/query", reqBody, &respBody); err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	matches := make([]Match, 0, len(respBody.Matches))
	for _, m := range respBody.Matches {
		matches = append(matches, Match{
			ID:      m.ID,
			Score:   m.Score,
			Payload: m.payloadText(),
		})
	}

	logging.VectorDebug("Pinecone returned %d matches (topK=%d)", len(matches), topK)
	return matches, nil
}

// Dimension returns the index dimensionality, cached after the first call.
func (p *PineconeIndex) Dimension(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dimension > 0 {
		return p.dimension, nil
	}

	var stats pineconeStatsResponse
	if err := p.post(ctx, "/describe_index_stats", struct{}{}, &stats); err != nil {
		return 0, fmt.Errorf("pinecone describe_index_stats failed: %w", err)
	}
	if stats.Dimension <= 0 {
		return 0, fmt.Errorf("pinecone reported invalid dimension %d", stats.Dimension)
	}

	p.dimension = stats.Dimension
	logging.Vector("Pinecone index dimension: %d", p.dimension)
	return p.dimension, nil
}

// Name returns the index name for logs.
func (p *PineconeIndex) Name() string {
	return "pinecone"
}

func (p *PineconeIndex) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// =============================================================================
// PINECONE API TYPES
// =============================================================================

type pineconeQueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeQueryResponse struct {
	Matches []pineconeMatch `json:"matches"`
}

type pineconeMatch struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// payloadText extracts the stored passage from match metadata. Indexes
// seeded by different pipelines use different metadata keys.
func (m pineconeMatch) payloadText() string {
	for _, key := range []string{"text", "answer", "content"} {
		if v, ok := m.Metadata[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

type pineconeStatsResponse struct {
	Dimension int `json:"dimension"`
}
