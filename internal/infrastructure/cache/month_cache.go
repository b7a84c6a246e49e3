package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// CacheEntry is one cached month of a user's transactions
type CacheEntry struct {
	Transactions []*entity.Transaction
	Timestamp    time.Time
}

// MonthCache is a thread-safe in-memory cache of transactions keyed by user and month.
// Each user has a generation that Invalidate advances; writes tagged with an older
// generation are dropped.
type MonthCache struct {
	cache       map[string]CacheEntry
	generations map[string]uint64
	expiration  time.Duration
	now         func() time.Time
	mutex       sync.RWMutex
}

// NewMonthCache creates a cache whose entries live for ttl
func NewMonthCache(ttl time.Duration) *MonthCache {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &MonthCache{
		cache:       make(map[string]CacheEntry),
		generations: make(map[string]uint64),
		expiration:  ttl,
		now:         time.Now,
	}
}

// generateCacheKey creates a cache key from the user and the month containing date
func generateCacheKey(userID string, month time.Time) string {
	return userID + "\x00" + month.Format("2006-01")
}

// Get returns the cached transactions and true when present and not expired
func (c *MonthCache) Get(userID string, month time.Time) ([]*entity.Transaction, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[generateCacheKey(userID, month)]
	if !exists || c.now().Sub(entry.Timestamp) > c.expiration {
		return nil, false
	}

	return entry.Transactions, true
}

// Generation returns the user's current generation. Capture it before fetching the rows
// later handed to PutAt.
func (c *MonthCache) Generation(userID string) uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.generations[userID]
}

// PutAt stores the transactions only if the user has not been invalidated since
// generation was read. It reports whether the entry was stored.
func (c *MonthCache) PutAt(userID string, month time.Time, generation uint64, transactions []*entity.Transaction) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.generations[userID] != generation {
		return false
	}

	c.cache[generateCacheKey(userID, month)] = CacheEntry{
		Transactions: transactions,
		Timestamp:    c.now(),
	}
	return true
}

// Invalidate drops every cached month of the user, advances the user's generation and
// returns how many entries were removed
func (c *MonthCache) Invalidate(userID string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.generations[userID]++

	prefix := userID + "\x00"
	count := 0
	for key := range c.cache {
		if strings.HasPrefix(key, prefix) {
			delete(c.cache, key)
			count++
		}
	}

	return count
}

// Size returns the number of cached months across all users
func (c *MonthCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CleanExpired removes expired entries and returns how many were removed
func (c *MonthCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	now := c.now()

	for key, entry := range c.cache {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.cache, key)
			count++
		}
	}

	return count
}
