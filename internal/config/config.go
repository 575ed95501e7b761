// Package config loads and validates erpassist configuration.
// Configuration lives in .erpassist/config.yaml; environment variables
// override the file for secrets and deployment-specific settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all erpassist configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Generative model configuration
	LLM LLMConfig `yaml:"llm"`

	// Embedding engine configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Vector index configuration
	Vector VectorConfig `yaml:"vector"`

	// Conversation context settings
	Context ContextConfig `yaml:"context"`

	// HTTP server settings
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the generative model client.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding engines.
// Multiple providers may be configured at once; the knowledge search picks
// the one whose output dimensionality matches the vector index.
type EmbeddingConfig struct {
	// GenAI (Gemini) embeddings
	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"` // Default: "gemini-embedding-001"
	TaskType    string `yaml:"task_type"`   // Default: "SEMANTIC_SIMILARITY"

	// Ollama (local) embeddings
	OllamaEndpoint   string `yaml:"ollama_endpoint"`   // Default: "http://localhost:11434"
	OllamaModel      string `yaml:"ollama_model"`      // Default: "embeddinggemma"
	OllamaDimensions int    `yaml:"ollama_dimensions"` // Model-dependent; default 768
}

// VectorConfig configures the vector index.
type VectorConfig struct {
	// Provider: "pinecone", "sqlite", or "" (no vector index)
	Provider string `yaml:"provider"`

	// Pinecone settings
	PineconeAPIKey string `yaml:"pinecone_api_key"`
	PineconeHost   string `yaml:"pinecone_host"` // Index host URL

	// Local SQLite index settings
	SQLitePath       string `yaml:"sqlite_path"`       // Default: data/knowledge.db
	SQLiteDimensions int    `yaml:"sqlite_dimensions"` // Default: 768
	SeedOnStart      bool   `yaml:"seed_on_start"`     // Populate empty local index with sample passages
}

// ContextConfig configures the conversation context store.
type ContextConfig struct {
	// MaxConversations caps the number of conversations held in memory.
	// Oldest conversations are evicted first.
	MaxConversations int `yaml:"max_conversations"`
}

// ServerConfig configures the HTTP layer.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "erpassist",
		Version: "0.3.0",

		LLM: LLMConfig{
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: "60s",
		},

		Embedding: EmbeddingConfig{
			GenAIModel:       "gemini-embedding-001",
			TaskType:         "SEMANTIC_SIMILARITY",
			OllamaEndpoint:   "http://localhost:11434",
			OllamaModel:      "embeddinggemma",
			OllamaDimensions: 768,
		},

		Vector: VectorConfig{
			Provider:         "",
			SQLitePath:       filepath.Join("data", "knowledge.db"),
			SQLiteDimensions: 768,
			SeedOnStart:      true,
		},

		Context: ContextConfig{
			MaxConversations: 1024,
		},

		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables override the file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedding.GenAIAPIKey == "" {
			c.Embedding.GenAIAPIKey = key
		}
	}
	if key := os.Getenv("PINECONE_API_KEY"); key != "" {
		c.Vector.PineconeAPIKey = key
		if c.Vector.Provider == "" {
			c.Vector.Provider = "pinecone"
		}
	}
	if host := os.Getenv("PINECONE_HOST"); host != "" {
		c.Vector.PineconeHost = host
	}
	if endpoint := os.Getenv("OLLAMA_ENDPOINT"); endpoint != "" {
		c.Embedding.OllamaEndpoint = endpoint
	}
	if port := os.Getenv("PORT"); port != "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
}

// GetLLMTimeout parses the LLM timeout with a safe fallback.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Vector.Provider {
	case "", "pinecone", "sqlite":
	default:
		return fmt.Errorf("unknown vector provider: %q (use 'pinecone', 'sqlite' or leave empty)", c.Vector.Provider)
	}
	if c.Vector.Provider == "pinecone" && c.Vector.PineconeHost == "" {
		return fmt.Errorf("vector provider 'pinecone' requires pinecone_host")
	}
	if c.Context.MaxConversations <= 0 {
		return fmt.Errorf("context max_conversations must be positive")
	}
	return nil
}
