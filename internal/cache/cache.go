package cache

import (
	"sync"
	"time"

	"mealsnap/internal/model"

	"github.com/rs/zerolog"
)

// MealListCache memoises ranged meal queries. Entries are keyed by the
// query bounds and the whole cache is invalidated after any write,
// mirroring the invalidate-on-mutation pattern the mobile client uses
// for its query cache.
//
// Results are stored and returned by value; callers never share
// slices with the cache.
type MealListCache struct {
	mu      sync.RWMutex
	entries map[string]model.MealListSummary
	logger  zerolog.Logger
}

// NewMealListCache creates an empty meal-list cache.
func NewMealListCache(logger zerolog.Logger) *MealListCache {
	return &MealListCache{
		entries: make(map[string]model.MealListSummary),
		logger:  logger.With().Str("component", "meal-list-cache").Logger(),
	}
}

// Key builds the cache key for a pair of optional range bounds.
func Key(start, end *time.Time) string {
	k := "meals:"
	if start != nil {
		k += start.UTC().Format(time.RFC3339Nano)
	}
	k += "|"
	if end != nil {
		k += end.UTC().Format(time.RFC3339Nano)
	}
	return k
}

// Get returns the cached summary for the key, if present.
func (c *MealListCache) Get(key string) (model.MealListSummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary, ok := c.entries[key]
	return summary, ok
}

// Set stores a summary under the key.
func (c *MealListCache) Set(key string, summary model.MealListSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = summary
}

// Invalidate drops every cached entry. Called after each successful
// ingestion; any cached range could contain the new meal.
func (c *MealListCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 0 {
		c.logger.Debug().Int("entries", len(c.entries)).Msg("meal list cache invalidated")
	}
	c.entries = make(map[string]model.MealListSummary)
}

// Len returns the number of cached entries.
func (c *MealListCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
