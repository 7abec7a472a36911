package riskanalysis

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// cacheEntry holds a cached analysis alongside its insertion time and
// access count, the two fields the eviction policy needs.
type cacheEntry struct {
	result     Result
	cachedAt   time.Time
	accessCount int64
}

// Cache is a contract-risk-analysis cache keyed by sender address.
// Entries expire by absolute age; when full, eviction targets the entry
// with the lowest access count — segmented-LRU by frequency rather than
// recency, per §3.
type Cache struct {
	mu       sync.RWMutex
	entries  map[common.Address]*cacheEntry
	capacity int
	ttl      time.Duration
}

func NewCache(capacity int, ttl time.Duration) *Cache {
	return &Cache{entries: map[common.Address]*cacheEntry{}, capacity: capacity, ttl: ttl}
}

// Get returns a cached result if present and not expired, bumping its
// access count. The returned Result has FromCache set.
func (c *Cache) Get(addr common.Address) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[addr]
	if !ok {
		return Result{}, false
	}
	if time.Since(e.cachedAt) > c.ttl {
		delete(c.entries, addr)
		return Result{}, false
	}
	e.accessCount++
	result := e.result
	result.FromCache = true
	return result, true
}

// Put inserts or overwrites the cached result for addr. If the cache is at
// capacity and addr is new, the entry with the lowest access count is
// evicted first.
func (c *Cache) Put(addr common.Address, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[addr]; !exists && len(c.entries) >= c.capacity && c.capacity > 0 {
		c.evictLowestFrequency()
	}
	c.entries[addr] = &cacheEntry{result: result, cachedAt: time.Now(), accessCount: 0}
}

func (c *Cache) evictLowestFrequency() {
	var victim common.Address
	var victimCount int64 = -1
	for addr, e := range c.entries {
		if victimCount == -1 || e.accessCount < victimCount {
			victim, victimCount = addr, e.accessCount
		}
	}
	if victimCount != -1 {
		delete(c.entries, victim)
	}
}

// Len reports the current entry count, primarily for tests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
