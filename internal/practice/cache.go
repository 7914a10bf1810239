package practice

import (
	"sync"
	"time"
)

type cacheKey struct {
	user   string
	lesson string
}

type cacheEntry struct {
	questions []Question
	storedAt  time.Time
}

// Cache keeps generated quizzes per (user, lesson) for a fixed TTL.
// Entries are never evicted; an expired entry reads as absent and is
// replaced by the next Put.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

// NewCache creates a cache. now defaults to time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// Get returns the questions stored for (user, lesson) if they are younger
// than the TTL.
func (c *Cache) Get(user, lesson string) ([]Question, bool) {
	c.mu.Lock()
	e, ok := c.entries[cacheKey{user, lesson}]
	c.mu.Unlock()

	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return cloneQuestions(e.questions), true
}

// Put stores questions for (user, lesson) as of storedAt, replacing any
// previous entry.
func (c *Cache) Put(user, lesson string, questions []Question, storedAt time.Time) {
	e := cacheEntry{questions: cloneQuestions(questions), storedAt: storedAt}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{user, lesson}] = e
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
