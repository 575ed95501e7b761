package vector

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// stubEngine returns fixed vectors keyed by text.
type stubEngine struct {
	vectors map[string][]float32
	dims    int
	calls   int
}

func (s *stubEngine) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return vec, nil
}

func (s *stubEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEngine) Dimensions() int { return s.dims }
func (s *stubEngine) Name() string    { return "stub" }

func TestSQLiteUpsertAndQuery(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 3)
	if err != nil {
		t.Fatalf("NewSQLiteIndex: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	passages := []struct {
		id      string
		content string
		vec     []float32
	}{
		{"erp001", "Invoices are created in the Sales module.", []float32{1, 0, 0}},
		{"erp002", "Stock levels are tracked in Inventory.", []float32{0, 1, 0}},
		{"erp003", "Payroll runs monthly in the HR module.", []float32{0.9, 0.1, 0}},
	}
	for _, p := range passages {
		if err := idx.Upsert(ctx, p.id, p.content, p.vec); err != nil {
			t.Fatalf("Upsert %s: %v", p.id, err)
		}
	}

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].ID != "erp001" {
		t.Errorf("best match = %s, want erp001", matches[0].ID)
	}
	if matches[1].ID != "erp003" {
		t.Errorf("second match = %s, want erp003", matches[1].ID)
	}
	if matches[0].Payload != "Invoices are created in the Sales module." {
		t.Errorf("payload = %q", matches[0].Payload)
	}
	if matches[0].Score < 0.999 {
		t.Errorf("identical vector score = %f, want ~1.0", matches[0].Score)
	}
}

func TestSQLiteUpsertRejectsWrongDimension(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 3)
	if err != nil {
		t.Fatalf("NewSQLiteIndex: %v", err)
	}
	defer idx.Close()

	if err := idx.Upsert(context.Background(), "x", "text", []float32{1, 0}); err == nil {
		t.Error("expected error for wrong-dimension embedding")
	}
}

func TestSQLiteDimensionPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := NewSQLiteIndex(path, 3)
	if err != nil {
		t.Fatalf("NewSQLiteIndex: %v", err)
	}
	idx.Close()

	// Reopening with a different dimension fails.
	if _, err := NewSQLiteIndex(path, 768); err == nil {
		t.Error("expected error reopening with a different dimension")
	}

	// Same dimension reopens fine.
	idx, err = NewSQLiteIndex(path, 3)
	if err != nil {
		t.Fatalf("reopen with same dimension: %v", err)
	}
	idx.Close()
}

func TestSQLiteSeedIsIdempotent(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 3)
	if err != nil {
		t.Fatalf("NewSQLiteIndex: %v", err)
	}
	defer idx.Close()

	engine := &stubEngine{
		dims: 3,
		vectors: map[string][]float32{
			"Invoices are created in the Sales module.": {1, 0, 0},
			"Stock levels are tracked in Inventory.":    {0, 1, 0},
		},
	}
	docs := []Document{
		{ID: "erp001", Content: "Invoices are created in the Sales module."},
		{ID: "erp002", Content: "Stock levels are tracked in Inventory."},
	}

	ctx := context.Background()
	if err := idx.Seed(ctx, engine, docs); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if engine.calls != 2 {
		t.Errorf("first seed embedded %d texts, want 2", engine.calls)
	}

	// Second seed finds everything indexed and embeds nothing.
	if err := idx.Seed(ctx, engine, docs); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if engine.calls != 2 {
		t.Errorf("second seed embedded %d more texts, want 0", engine.calls-2)
	}

	matches, err := idx.Query(ctx, []float32{0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "erp002" {
		t.Errorf("matches = %+v, want erp002", matches)
	}
}

func TestSQLiteQueryEmptyIndex(t *testing.T) {
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), 3)
	if err != nil {
		t.Fatalf("NewSQLiteIndex: %v", err)
	}
	defer idx.Close()

	matches, err := idx.Query(context.Background(), []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from empty index", len(matches))
	}
}
