package conversation

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"erpassist/internal/analysis"
	"erpassist/internal/logging"
)

// Tracker maintains conversation contexts and derives ContextualData for
// each incoming query. All context mutation happens synchronously inside
// GetContextualData, before the caller issues any network call, so
// concurrent queries for the same conversation id cannot interleave
// partial list updates.
type Tracker struct {
	analyzer *analysis.Analyzer
	store    Store

	mu sync.Mutex

	// rng picks a task index for follow-up suggestions. Injectable so
	// tests can pin the choice.
	rng func(n int) int
	now func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRand overrides the task-selection random source.
func WithRand(rng func(n int) int) Option {
	return func(t *Tracker) { t.rng = rng }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker over the given analyzer and store.
// A nil analyzer uses the embedded catalog; a nil store gets a fresh
// in-memory store with the default cap.
func NewTracker(analyzer *analysis.Analyzer, store Store, opts ...Option) *Tracker {
	if analyzer == nil {
		analyzer = analysis.New(nil)
	}
	if store == nil {
		store = NewMemoryStore(0)
	}
	t := &Tracker{
		analyzer: analyzer,
		store:    store,
		rng:      rand.Intn,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetContextualData analyzes the query, updates the conversation's rolling
// state, and returns the synthesized context. With an empty conversation id
// it operates on a throwaway context: nothing persists across calls.
// This never fails; an empty query degrades to General/general_information.
func (t *Tracker) GetContextualData(query, conversationID string) ContextualData {
	result := t.analyzer.Analyze(query)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	var ctx *Context
	if conversationID != "" {
		if existing, ok := t.store.Get(conversationID); ok {
			ctx = existing
		} else {
			ctx = newContext(conversationID, now)
			t.store.Put(conversationID, ctx)
		}
	} else {
		// No conversation id: ephemeral context, not stored.
		ctx = newContext("", now)
	}

	ctx.RecentQueries = pushBounded(ctx.RecentQueries, query, maxRecentQueries)

	for _, module := range result.Modules {
		if !contains(ctx.RecentModules, module) {
			ctx.RecentModules = pushBounded(ctx.RecentModules, module, maxRecentModules)
		}
	}

	if result.Intent == analysis.IntentTroubleshooting {
		ctx.DetectedIssues = pushBounded(ctx.DetectedIssues, query, maxDetectedIssues)
	}

	ctx.LastInteraction = now

	if conversationID != "" {
		t.store.Put(conversationID, ctx)
	}

	data := ContextualData{
		RelevantModules:   append([]string(nil), ctx.RecentModules...),
		SuggestedContext:  t.buildSuggestedContext(ctx),
		DetectedIntent:    string(result.Intent),
		PossibleFollowUps: t.buildFollowUps(result),
	}

	logging.ContextDebug("context for %q: modules=%v issues=%d followups=%d",
		conversationID, data.RelevantModules, len(ctx.DetectedIssues), len(data.PossibleFollowUps))

	return data
}

// ClearContext removes the stored context for a conversation; reports
// whether one existed.
func (t *Tracker) ClearContext(conversationID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	existed := t.store.Delete(conversationID)
	if existed {
		logging.Context("cleared context for conversation %s", conversationID)
	}
	return existed
}

// buildSuggestedContext synthesizes the user's recent focus into a short
// natural-language note for the prompt.
func (t *Tracker) buildSuggestedContext(ctx *Context) string {
	var b strings.Builder
	if len(ctx.RecentModules) > 0 {
		fmt.Fprintf(&b, "User is focusing on %s modules. ", strings.Join(ctx.RecentModules, ", "))
	}
	if len(ctx.DetectedIssues) > 0 {
		fmt.Fprintf(&b, "User has been troubleshooting issues related to: %s. ", strings.Join(ctx.DetectedIssues, "; "))
	}
	return b.String()
}

// buildFollowUps suggests follow-up questions biased by intent.
func (t *Tracker) buildFollowUps(result analysis.Result) []string {
	var followUps []string

	if result.Intent == analysis.IntentHowTo && result.Modules[0] != analysis.GeneralModule {
		if tasks := t.analyzer.Catalog().Tasks(result.Modules[0]); len(tasks) > 0 {
			task := tasks[t.rng(len(tasks))]
			followUps = append(followUps,
				fmt.Sprintf("What's the best way to handle %s?", task),
				fmt.Sprintf("Are there any shortcuts for %s?", task),
			)
		}
	}

	if result.Intent == analysis.IntentTroubleshooting {
		followUps = append(followUps,
			"What are common errors in this process?",
			"How can I prevent this issue in the future?",
		)
	}

	followUps = append(followUps, "What best practices should I follow?")
	return followUps
}
