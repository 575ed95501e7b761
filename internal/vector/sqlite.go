package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"

	"erpassist/internal/embedding"
	"erpassist/internal/logging"
)

// =============================================================================
// SQLITE INDEX
// =============================================================================

// SQLiteIndex is a local vector index backed by SQLite. Embeddings are
// stored as JSON arrays and scored in-process with cosine similarity, which
// is plenty for a corpus of knowledge passages measured in the hundreds.
type SQLiteIndex struct {
	db        *sql.DB
	mu        sync.RWMutex
	dbPath    string
	dimension int
}

// Document is a passage to be embedded and indexed.
type Document struct {
	ID      string
	Content string
}

// NewSQLiteIndex opens (or creates) the index at path with the given
// dimensionality. Reopening an existing index with a different dimension is
// an error.
func NewSQLiteIndex(path string, dimension int) (*SQLiteIndex, error) {
	timer := logging.StartTimer(logging.CategoryVector, "NewSQLiteIndex")
	defer timer.Stop()

	if path == "" {
		return nil, fmt.Errorf("sqlite index path is required")
	}
	if dimension <= 0 {
		dimension = 768
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.VectorDebug("Failed to set pragma %q: %v", pragma, err)
		}
	}

	idx := &SQLiteIndex{db: db, dbPath: path, dimension: dimension}
	if err := idx.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Vector("SQLite index ready at %s (dimension=%d)", path, idx.dimension)
	return idx, nil
}

// initialize creates the required tables and reconciles the stored
// dimension with the configured one.
func (s *SQLiteIndex) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passages (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS index_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	var stored string
	err := s.db.QueryRow("SELECT value FROM index_meta WHERE key = 'dimension'").Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec("INSERT INTO index_meta (key, value) VALUES ('dimension', ?)",
			strconv.Itoa(s.dimension))
		if err != nil {
			return fmt.Errorf("failed to record dimension: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read index meta: %w", err)
	default:
		dim, convErr := strconv.Atoi(stored)
		if convErr != nil || dim <= 0 {
			return fmt.Errorf("corrupt dimension in index meta: %q", stored)
		}
		if dim != s.dimension {
			return fmt.Errorf("index at %s has dimension %d, configured %d", s.dbPath, dim, s.dimension)
		}
	}
	return nil
}

// Upsert stores or replaces a passage and its embedding.
func (s *SQLiteIndex) Upsert(ctx context.Context, id, content string, vec []float32) error {
	if len(vec) != s.dimension {
		return fmt.Errorf("embedding has dimension %d, index expects %d", len(vec), s.dimension)
	}

	embJSON, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO passages (id, content, embedding) VALUES (?, ?, ?)",
		id, content, string(embJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store passage %s: %w", id, err)
	}
	return nil
}

// Seed embeds and indexes any documents not already present. Existing ids
// are left untouched so repeated startups do not re-embed the corpus.
func (s *SQLiteIndex) Seed(ctx context.Context, engine embedding.Engine, docs []Document) error {
	timer := logging.StartTimer(logging.CategoryVector, "Seed")
	defer timer.Stop()

	var missing []Document
	for _, doc := range docs {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM passages WHERE id = ?", doc.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check passage %s: %w", doc.ID, err)
		}
		if exists == 0 {
			missing = append(missing, doc)
		}
	}

	if len(missing) == 0 {
		logging.Vector("Seed: all %d passages already indexed", len(docs))
		return nil
	}

	logging.Vector("Seed: embedding %d of %d passages with %s", len(missing), len(docs), engine.Name())

	texts := make([]string, len(missing))
	for i, doc := range missing {
		texts[i] = doc.Content
	}

	vectors, err := engine.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed passages: %w", err)
	}

	for i, doc := range missing {
		if err := s.Upsert(ctx, doc.ID, doc.Content, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// Query scores every stored passage against the vector and returns the topK
// best matches.
func (s *SQLiteIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	timer := logging.StartTimer(logging.CategoryVector, "SQLiteQuery")
	defer timer.Stop()

	if topK <= 0 {
		topK = 3
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, content, embedding FROM passages")
	if err != nil {
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}
	defer rows.Close()

	var ids, contents []string
	var vectors [][]float32
	for rows.Next() {
		var id, content, embJSON string
		if err := rows.Scan(&id, &content, &embJSON); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		var stored []float32
		if err := json.Unmarshal([]byte(embJSON), &stored); err != nil {
			logging.VectorWarn("Skipping passage %s with corrupt embedding: %v", id, err)
			continue
		}
		ids = append(ids, id)
		contents = append(contents, content)
		vectors = append(vectors, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passages: %w", err)
	}

	results := embedding.FindTopK(vec, vectors, topK)

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			ID:      ids[r.Index],
			Score:   r.Similarity,
			Payload: contents[r.Index],
		})
	}

	logging.VectorDebug("SQLite index returned %d matches from %d passages", len(matches), len(ids))
	return matches, nil
}

// Dimension returns the configured index dimensionality.
func (s *SQLiteIndex) Dimension(ctx context.Context) (int, error) {
	return s.dimension, nil
}

// Name returns the index name for logs.
func (s *SQLiteIndex) Name() string {
	return "sqlite"
}

// Close closes the underlying database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
