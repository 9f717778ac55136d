package quantik

import (
	"sync"
	"sync/atomic"

	"github.com/yourusername/quantikbook/internal/positionid"
)

// Cache constants
const (
	DefaultCacheSize = 1 << 20 // 1M entries (~16MB)
	CacheHit         = ^uint32(0)
)

// CacheEntry stores a solved position. The side to move is implied by the
// piece count, so the board alone identifies the position.
type CacheEntry struct {
	Key    positionid.BoardKey
	Winner Color
}

// SolveCache is a thread-safe cache of solved positions.
// Uses a two-way associative layout with MurmurHash3-based indexing
type SolveCache struct {
	entries  []cacheNode
	size     uint32
	hashMask uint32

	// Statistics
	lookups atomic.Uint64
	hits    atomic.Uint64
	adds    atomic.Uint64

	mu sync.RWMutex
}

// cacheNode holds primary and secondary entries for two-way associative cache
type cacheNode struct {
	primary   CacheEntry
	secondary CacheEntry
}

// invalidKey never matches a real board: cell 0 would hold tile 31.
var invalidKey = positionid.BoardKey{Data: [3]uint32{0x1f, 0, 0}}

// NewSolveCache creates a new cache with the given size.
// Size will be adjusted to the nearest power of 2
func NewSolveCache(size uint32) *SolveCache {
	if size > 1<<31 {
		size = 1 << 31
	}
	if size < 2 {
		size = 2
	}

	p := uint32(1)
	for p < size {
		p <<= 1
	}
	size = p

	cache := &SolveCache{
		entries:  make([]cacheNode, size/2),
		size:     size,
		hashMask: (size / 2) - 1,
	}

	cache.Flush()
	return cache
}

// Flush clears all entries from the cache
func (c *SolveCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		c.entries[i].primary.Key = invalidKey
		c.entries[i].secondary.Key = invalidKey
	}
	c.lookups.Store(0)
	c.hits.Store(0)
	c.adds.Store(0)
}

// hash computes the slot for a key using MurmurHash3-style mixing
func (c *SolveCache) hash(key positionid.BoardKey) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593

	h := uint32(0)
	for _, k := range key.Data {
		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2

		h ^= k
		h = (h << 13) | (h >> 19)
		h = h*5 + 0xe6546b64
	}

	// Finalization
	h ^= 12
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h & c.hashMask
}

// Lookup checks if a position is in the cache.
// Returns CacheHit with the winner if found, otherwise the slot to pass to Add
func (c *SolveCache) Lookup(key positionid.BoardKey) (Color, uint32) {
	slot := c.hash(key)
	c.lookups.Add(1)

	c.mu.RLock()
	defer c.mu.RUnlock()

	node := &c.entries[slot]
	if positionid.EqualKeys(node.primary.Key, key) {
		c.hits.Add(1)
		return node.primary.Winner, CacheHit
	}
	if positionid.EqualKeys(node.secondary.Key, key) {
		c.hits.Add(1)
		return node.secondary.Winner, CacheHit
	}
	return 0, slot
}

// Add stores a solved position.
// slot should be the value returned by a previous Lookup miss
func (c *SolveCache) Add(key positionid.BoardKey, winner Color, slot uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &c.entries[slot]

	// Move primary to secondary, add new as primary
	node.secondary = node.primary
	node.primary = CacheEntry{Key: key, Winner: winner}

	c.adds.Add(1)
}

// Stats returns cache statistics
func (c *SolveCache) Stats() (lookups, hits, adds uint64) {
	return c.lookups.Load(), c.hits.Load(), c.adds.Load()
}

// HitRate returns the cache hit rate as a percentage
func (c *SolveCache) HitRate() float64 {
	lookups := c.lookups.Load()
	if lookups == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(lookups) * 100
}
