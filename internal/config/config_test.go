package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("default LLM model = %q, want gemini-2.0-flash", cfg.LLM.Model)
	}
	if cfg.Context.MaxConversations != 1024 {
		t.Errorf("default max_conversations = %d, want 1024", cfg.Context.MaxConversations)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  model: gemini-2.0-pro
  timeout: 30s
vector:
  provider: sqlite
  sqlite_dimensions: 1536
server:
  port: 8088
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.0-pro" {
		t.Errorf("LLM model = %q, want gemini-2.0-pro", cfg.LLM.Model)
	}
	if got := cfg.GetLLMTimeout(); got != 30*time.Second {
		t.Errorf("LLM timeout = %v, want 30s", got)
	}
	if cfg.Vector.Provider != "sqlite" || cfg.Vector.SQLiteDimensions != 1536 {
		t.Errorf("vector config = %+v", cfg.Vector)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("server port = %d, want 8088", cfg.Server.Port)
	}
	// Untouched sections keep defaults.
	if cfg.Embedding.GenAIModel != "gemini-embedding-001" {
		t.Errorf("embedding model = %q, want default", cfg.Embedding.GenAIModel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")
	t.Setenv("PINECONE_API_KEY", "pc-key")
	t.Setenv("PINECONE_HOST", "https://idx.example.pinecone.io")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "test-key-123" {
		t.Errorf("LLM api key not taken from env")
	}
	if cfg.Embedding.GenAIAPIKey != "test-key-123" {
		t.Errorf("embedding api key not taken from env")
	}
	if cfg.Vector.Provider != "pinecone" {
		t.Errorf("vector provider = %q, want pinecone when PINECONE_API_KEY set", cfg.Vector.Provider)
	}
	if cfg.Vector.PineconeHost != "https://idx.example.pinecone.io" {
		t.Errorf("pinecone host = %q", cfg.Vector.PineconeHost)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Vector.Provider = "weaviate"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown vector provider should fail validation")
	}

	cfg = DefaultConfig()
	cfg.Vector.Provider = "pinecone"
	if err := cfg.Validate(); err == nil {
		t.Error("pinecone provider without host should fail validation")
	}

	cfg = DefaultConfig()
	cfg.Context.MaxConversations = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero max_conversations should fail validation")
	}
}

func TestGetLLMTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	if got := cfg.GetLLMTimeout(); got != 60*time.Second {
		t.Errorf("timeout fallback = %v, want 60s", got)
	}
}
