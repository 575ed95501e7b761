package conversation

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"erpassist/internal/logging"
)

// Store holds conversation contexts keyed by conversation id.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the context for id, or (nil, false) if absent.
	Get(id string) (*Context, bool)
	// Put stores or replaces the context for id.
	Put(id string, ctx *Context)
	// Delete removes the context for id and reports whether one existed.
	Delete(id string) bool
	// Len returns the number of stored conversations.
	Len() int
}

// memoryStore is the default in-memory Store. It caps the number of live
// conversations with an LRU so an unattended process does not grow without
// bound; the least recently active conversation is evicted first.
type memoryStore struct {
	cache *lru.Cache[string, *Context]
}

// DefaultMaxConversations bounds the in-memory store when no cap is given.
const DefaultMaxConversations = 1024

// NewMemoryStore creates an in-memory store holding at most maxConversations
// contexts. A non-positive cap uses DefaultMaxConversations.
func NewMemoryStore(maxConversations int) Store {
	if maxConversations <= 0 {
		maxConversations = DefaultMaxConversations
	}
	cache, err := lru.NewWithEvict(maxConversations, func(id string, _ *Context) {
		logging.Context("conversation %s evicted (store at capacity)", id)
	})
	if err != nil {
		// lru.NewWithEvict only errors on a non-positive size.
		panic(err)
	}
	return &memoryStore{cache: cache}
}

func (s *memoryStore) Get(id string) (*Context, bool) {
	return s.cache.Get(id)
}

func (s *memoryStore) Put(id string, ctx *Context) {
	s.cache.Add(id, ctx)
}

func (s *memoryStore) Delete(id string) bool {
	return s.cache.Remove(id)
}

func (s *memoryStore) Len() int {
	return s.cache.Len()
}
