// Package llm generates answers with Google's Gemini API when the knowledge
// base cannot resolve a query on its own. Two variants share one model: the
// standard prompt for simple queries and an enriched prompt for complex ones.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Variant selects how much context the prompt carries.
type Variant string

const (
	// ModelGemini is the standard prompt: query plus optional context.
	ModelGemini Variant = "gemini"
	// ModelAdvancedGemini adds the assistant preamble, user history, and
	// detected intent.
	ModelAdvancedGemini Variant = "advanced_gemini"
	// ModelAuto defers the choice until the query's intent is known.
	ModelAuto Variant = "auto"
)

// ParseVariant parses a client-supplied model name. Empty input defaults to
// the standard variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gemini":
		return ModelGemini, nil
	case "advanced_gemini":
		return ModelAdvancedGemini, nil
	case "auto":
		return ModelAuto, nil
	default:
		return "", fmt.Errorf("unsupported model: %s", s)
	}
}

// SourceLabel is the response source tag for a variant.
func SourceLabel(v Variant) string {
	if v == ModelAdvancedGemini {
		return "advanced_gemini_api"
	}
	return "gemini_api"
}

// ContextBundle carries the contextual hints woven into a prompt.
type ContextBundle struct {
	RelevantInfo   string
	UserHistory    string
	DetectedIntent string
}

// Generator produces an answer for a query.
type Generator interface {
	Generate(ctx context.Context, query, conversationID string, bundle ContextBundle, variant Variant) (string, error)
}
