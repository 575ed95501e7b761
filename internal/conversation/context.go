// Package conversation tracks lightweight per-conversation state: which
// ERP modules a user has been asking about, their recent queries, and any
// issues they have been troubleshooting. The tracker synthesizes that state
// into a context string and follow-up suggestions that bias downstream
// routing and prompting.
package conversation

import (
	"time"
)

// Caps on the rolling lists. Oldest entries are evicted first.
const (
	maxRecentModules  = 3
	maxRecentQueries  = 5
	maxDetectedIssues = 3
)

// Context is the rolling state for one conversation.
type Context struct {
	ConversationID  string
	RecentModules   []string // deduplicated, most-recent-last, max 3
	RecentQueries   []string // FIFO, max 5
	DetectedIssues  []string // FIFO, max 3; only troubleshooting queries
	LastInteraction time.Time
}

// ContextualData is the tracker's per-query output, consumed by the router.
type ContextualData struct {
	RelevantModules   []string `json:"relevantModules"`
	SuggestedContext  string   `json:"suggestedContext"`
	DetectedIntent    string   `json:"detectedIntent"`
	PossibleFollowUps []string `json:"possibleFollowUps"`
}

// newContext creates an empty context for a conversation id.
func newContext(id string, now time.Time) *Context {
	return &Context{
		ConversationID:  id,
		RecentModules:   []string{},
		RecentQueries:   []string{},
		DetectedIssues:  []string{},
		LastInteraction: now,
	}
}

// pushBounded appends v and evicts from the front when the cap is exceeded.
func pushBounded(list []string, v string, cap int) []string {
	list = append(list, v)
	if len(list) > cap {
		list = list[1:]
	}
	return list
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
