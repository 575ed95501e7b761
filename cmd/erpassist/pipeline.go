package main

import (
	"context"
	"fmt"

	"erpassist/internal/config"
	"erpassist/internal/conversation"
	"erpassist/internal/embedding"
	"erpassist/internal/knowledge"
	"erpassist/internal/llm"
	"erpassist/internal/logging"
	"erpassist/internal/router"
	"erpassist/internal/vector"
)

// app holds the wired pipeline and everything that needs closing.
type app struct {
	cfg    *config.Config
	router *router.Router
	index  vector.Index
}

// buildApp wires the full pipeline from configuration: embedding engines,
// vector index, knowledge matcher, conversation tracker, Gemini client.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "buildApp")
	defer timer.Stop()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	engines := embedding.Available(embedding.Config{
		GenAIAPIKey:      cfg.Embedding.GenAIAPIKey,
		GenAIModel:       cfg.Embedding.GenAIModel,
		TaskType:         embedding.TaskTypeFor(embedding.PurposeSearch),
		OllamaEndpoint:   cfg.Embedding.OllamaEndpoint,
		OllamaModel:      cfg.Embedding.OllamaModel,
		OllamaDimensions: cfg.Embedding.OllamaDimensions,
	})
	logging.Boot("Embedding engines available: %d", len(engines))

	idx, err := vector.New(vector.Config{
		Provider:         cfg.Vector.Provider,
		PineconeAPIKey:   cfg.Vector.PineconeAPIKey,
		PineconeHost:     cfg.Vector.PineconeHost,
		SQLitePath:       cfg.Vector.SQLitePath,
		SQLiteDimensions: cfg.Vector.SQLiteDimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}

	corpus := knowledge.DefaultCorpus()

	if sqliteIdx, ok := idx.(*vector.SQLiteIndex); ok && cfg.Vector.SeedOnStart {
		if err := seedIndex(ctx, sqliteIdx, engines, corpus); err != nil {
			logging.Get(logging.CategoryBoot).Warn("Index seeding failed: %v", err)
		}
	}

	matcher := knowledge.NewMatcher(
		knowledge.NewVectorStrategy(idx, engines),
		knowledge.NewFAQStrategy(faqEngine(engines), corpus),
		knowledge.NewKeywordStrategy(corpus),
	)

	store := conversation.NewMemoryStore(cfg.Context.MaxConversations)
	tracker := conversation.NewTracker(nil, store)

	gen := llm.NewGeminiClientWithConfig(llm.GeminiConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.GetLLMTimeout(),
	})

	return &app{
		cfg:    cfg,
		router: router.New(tracker, matcher, gen),
		index:  idx,
	}, nil
}

// seedIndex embeds the corpus passages into a local index. Documents get
// the indexing task hint; already-indexed passages are skipped.
func seedIndex(ctx context.Context, idx *vector.SQLiteIndex, engines []embedding.Engine, corpus *knowledge.Corpus) error {
	dim, err := idx.Dimension(ctx)
	if err != nil {
		return err
	}

	matched := embedding.ForDimension(engines, dim)
	if len(matched) != 1 {
		return fmt.Errorf("need exactly one embedding engine for dimension %d, have %d", dim, len(matched))
	}

	engine := matched[0]
	if genai, ok := engine.(*embedding.GenAIEngine); ok {
		engine = genai.WithTaskType(embedding.TaskTypeFor(embedding.PurposeIndex))
	}

	docs := make([]vector.Document, len(corpus.Passages))
	for i, p := range corpus.Passages {
		docs[i] = vector.Document{ID: p.ID, Content: p.Text}
	}
	return idx.Seed(ctx, engine, docs)
}

// faqEngine picks the engine for FAQ similarity matching, preferring GenAI
// re-tasked for pairwise similarity. Nil when nothing is configured; the
// FAQ strategy then reports itself unavailable.
func faqEngine(engines []embedding.Engine) embedding.Engine {
	for _, e := range engines {
		if genai, ok := e.(*embedding.GenAIEngine); ok {
			return genai.WithTaskType(embedding.TaskTypeFor(embedding.PurposeFAQMatch))
		}
	}
	if len(engines) > 0 {
		return engines[0]
	}
	return nil
}

// close releases pipeline resources.
func (a *app) close() {
	if sqliteIdx, ok := a.index.(*vector.SQLiteIndex); ok {
		sqliteIdx.Close()
	}
}
