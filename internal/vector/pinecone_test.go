package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func TestPineconeQuery(t *testing.T) {
	var describeCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Api-Key"); got != "test-key" {
			t.Errorf("Api-Key header = %q, want test-key", got)
		}
		switch r.URL.Path {
		case "/query":
			var req pineconeQueryRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("bad query body: %v", err)
			}
			if req.TopK != 3 {
				t.Errorf("topK = %d, want 3", req.TopK)
			}
			if !req.IncludeMetadata {
				t.Error("includeMetadata should be true")
			}
			json.NewEncoder(w).Encode(pineconeQueryResponse{
				Matches: []pineconeMatch{
					{ID: "erp001", Score: 0.91, Metadata: map[string]string{"text": "GST invoices are created in the Sales module."}},
					{ID: "erp002", Score: 0.64, Metadata: map[string]string{"answer": "Stock levels live in Inventory."}},
				},
			})
		case "/describe_index_stats":
			describeCalls++
			json.NewEncoder(w).Encode(pineconeStatsResponse{Dimension: 768})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	idx, err := NewPineconeIndex(server.URL, "test-key")
	if err != nil {
		t.Fatalf("NewPineconeIndex: %v", err)
	}

	matches, err := idx.Query(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].ID != "erp001" || matches[0].Score != 0.91 {
		t.Errorf("first match = %+v", matches[0])
	}
	if matches[0].Payload != "GST invoices are created in the Sales module." {
		t.Errorf("payload from text key = %q", matches[0].Payload)
	}
	if matches[1].Payload != "Stock levels live in Inventory." {
		t.Errorf("payload from answer key = %q", matches[1].Payload)
	}

	// Dimension is fetched once and cached.
	for i := 0; i < 3; i++ {
		dim, err := idx.Dimension(context.Background())
		if err != nil {
			t.Fatalf("Dimension: %v", err)
		}
		if dim != 768 {
			t.Errorf("dimension = %d, want 768", dim)
		}
	}
	if describeCalls != 1 {
		t.Errorf("describe_index_stats called %d times, want 1", describeCalls)
	}
}

func TestPineconeQueryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	idx, _ := NewPineconeIndex(server.URL, "bad-key")
	if _, err := idx.Query(context.Background(), []float32{0.1}, 3); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestPineconeHostNormalization(t *testing.T) {
	idx, err := NewPineconeIndex("my-index.svc.pinecone.io/", "key")
	if err != nil {
		t.Fatalf("NewPineconeIndex: %v", err)
	}
	if idx.host != "https://my-index.svc.pinecone.io" {
		t.Errorf("host = %q", idx.host)
	}
}

func TestPineconeRequiresCredentials(t *testing.T) {
	if _, err := NewPineconeIndex("", "key"); err == nil {
		t.Error("expected error for missing host")
	}
	if _, err := NewPineconeIndex("host", ""); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	idx, err := New(Config{})
	if err != nil || idx != nil {
		t.Errorf("empty provider: idx=%v err=%v, want nil, nil", idx, err)
	}

	if _, err := New(Config{Provider: "weaviate"}); err == nil {
		t.Error("expected error for unsupported provider")
	}

	sqlite, err := New(Config{Provider: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "index.db")})
	if err != nil {
		t.Fatalf("sqlite provider: %v", err)
	}
	if sqlite.Name() != "sqlite" {
		t.Errorf("name = %q", sqlite.Name())
	}
}
