package internal

import (
	"sync"

	"github.com/gnoswap-labs/dissect/dissect"
)

const defaultCacheEntries = 256

type cacheKey struct {
	pattern   string
	separator string
}

type cacheEntry struct {
	pattern *dissect.Pattern
	lastUse uint64
}

// PatternCache keeps compiled patterns so that each distinct pattern and
// separator pair is compiled once. Compile errors are not cached.
type PatternCache struct {
	entries    map[cacheKey]*cacheEntry
	mutex      sync.Mutex
	maxEntries int
	clock      uint64
	hits       int
	misses     int
}

func NewPatternCache(maxEntries int) *PatternCache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &PatternCache{
		entries:    make(map[cacheKey]*cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get returns the compiled pattern, compiling it on a miss.
func (c *PatternCache) Get(pattern, separator string) (*dissect.Pattern, error) {
	key := cacheKey{pattern: pattern, separator: separator}

	c.mutex.Lock()
	if entry, ok := c.entries[key]; ok {
		c.clock++
		entry.lastUse = c.clock
		c.hits++
		c.mutex.Unlock()
		return entry.pattern, nil
	}
	c.misses++
	c.mutex.Unlock()

	// compile outside the lock; a concurrent miss for the same key just
	// compiles twice and keeps the first stored result
	compiled, err := dissect.Compile(pattern, separator)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, ok := c.entries[key]; ok {
		return entry.pattern, nil
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.clock++
	c.entries[key] = &cacheEntry{pattern: compiled, lastUse: c.clock}
	return compiled, nil
}

func (c *PatternCache) evictOldest() {
	var (
		oldestKey cacheKey
		oldest    uint64
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.lastUse < oldest {
			oldestKey, oldest, found = key, entry.lastUse, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

func (c *PatternCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Stats returns the number of cache hits and misses so far.
func (c *PatternCache) Stats() (hits, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.hits, c.misses
}
