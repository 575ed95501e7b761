// Package router decides how each query gets answered: straight from the
// knowledge base when confidence is high, otherwise by a Gemini variant with
// whatever knowledge and conversation context is worth carrying along.
package router

import (
	"context"
	"fmt"
	"strings"

	"erpassist/internal/conversation"
	"erpassist/internal/knowledge"
	"erpassist/internal/llm"
	"erpassist/internal/logging"
)

// Confidence cutoffs for knowledge-base matches. Above the high cutoff the
// answer is returned directly; above the low cutoff it rides along as
// context for the generative model. Both are strictly greater-than.
const (
	directAnswerThreshold = 0.8
	relevantInfoThreshold = 0.5
)

// SourceKnowledgeBase tags answers served without a generative call.
const SourceKnowledgeBase = "knowledge_base"

// Result is a routed answer.
type Result struct {
	Answer  string                      `json:"answer"`
	Source  string                      `json:"source"`
	Context conversation.ContextualData `json:"context"`
}

// Router routes queries through context tracking, knowledge search, and
// generation.
type Router struct {
	tracker *conversation.Tracker
	matcher *knowledge.Matcher
	gen     llm.Generator
}

// New creates a router.
func New(tracker *conversation.Tracker, matcher *knowledge.Matcher, gen llm.Generator) *Router {
	return &Router{tracker: tracker, matcher: matcher, gen: gen}
}

// Route answers one query. Context tracking runs first, synchronously, so
// the conversation state already reflects this query before any network
// call. A generation failure is the only way Route fails.
func (r *Router) Route(ctx context.Context, query, conversationID string, variant llm.Variant) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryRouting, "Route")
	defer timer.Stop()

	contextData := r.tracker.GetContextualData(query, conversationID)

	if variant == llm.ModelAuto {
		variant = llm.ChooseVariant(query, contextData.DetectedIntent)
		logging.RoutingDebug("Auto-selected variant %s for intent %s", variant, contextData.DetectedIntent)
	}

	kb := r.matcher.Search(ctx, query)

	if kb != nil && kb.Confidence > directAnswerThreshold {
		logging.Routing("Knowledge base answered directly (confidence=%.2f)", kb.Confidence)
		return &Result{
			Answer:  kb.Answer,
			Source:  SourceKnowledgeBase,
			Context: contextData,
		}, nil
	}

	relevantInfo := contextData.SuggestedContext
	if kb != nil && kb.Confidence > relevantInfoThreshold {
		relevantInfo = fmt.Sprintf("Consider this potentially relevant information: %s\n%s",
			kb.Answer, contextData.SuggestedContext)
	}

	bundle := llm.ContextBundle{
		RelevantInfo:   relevantInfo,
		UserHistory:    fmt.Sprintf("User has recently been looking at %s", strings.Join(contextData.RelevantModules, ", ")),
		DetectedIntent: contextData.DetectedIntent,
	}

	logging.RoutingDebug("Delegating to %s (kb_confidence=%v)", variant, kbConfidence(kb))
	answer, err := r.gen.Generate(ctx, query, conversationID, bundle, variant)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &Result{
		Answer:  answer,
		Source:  llm.SourceLabel(variant),
		Context: contextData,
	}, nil
}

// ClearContext drops the stored conversation state.
func (r *Router) ClearContext(conversationID string) bool {
	return r.tracker.ClearContext(conversationID)
}

func kbConfidence(kb *knowledge.Match) float64 {
	if kb == nil {
		return 0
	}
	return kb.Confidence
}
