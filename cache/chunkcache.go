// Package cache provides eviction bookkeeping for lazily shaped chunks.
//
// A textline layout shapes chunk content on demand and keeps it until told
// otherwise. ChunkCache supplies the "told otherwise" part: wired into
// View.Layouts, it observes every chunk access and clears the fragment
// content of chunks that have not been touched recently, bounding the
// memory held by shaped-but-idle text.
package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/textline"
)

// DefaultCapacity is the default maximum number of shaped chunks retained.
const DefaultCapacity = 1000

// ChunkCache is an LRU over recently accessed chunks. It implements
// textline.ChunkAccessSink.
//
// ChunkCache is safe for concurrent use, though layouts feeding it must be
// externally serialized per textline's concurrency rules.
// ChunkCache must not be copied after creation (has mutex).
type ChunkCache struct {
	mu       sync.Mutex
	entries  map[*textline.Chunk]int64 // chunk -> last access tick
	capacity int
	tick     int64 // Monotonic access counter

	evictions atomic.Uint64
}

// NewChunkCache creates a cache retaining up to capacity shaped chunks.
// If capacity <= 0, DefaultCapacity is used.
func NewChunkCache(capacity int) *ChunkCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ChunkCache{
		entries:  make(map[*textline.Chunk]int64),
		capacity: capacity,
	}
}

// OnChunkAccess implements textline.ChunkAccessSink. It records the access
// and, if the cache is over capacity, evicts the least recently used chunk
// by clearing its fragment content.
func (c *ChunkCache) OnChunkAccess(chunk *textline.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[chunk] = c.tick

	for len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes and clears the least recently accessed chunk.
// Caller must hold c.mu.
func (c *ChunkCache) evictOldest() {
	var oldest *textline.Chunk
	oldestTick := int64(1<<63 - 1)
	for chunk, tick := range c.entries {
		if tick < oldestTick {
			oldest, oldestTick = chunk, tick
		}
	}
	if oldest == nil {
		return
	}
	delete(c.entries, oldest)
	oldest.ClearCache()
	c.evictions.Add(1)
	textline.Logger().Debug("cache: chunk evicted",
		slog.Int("start", oldest.StartOffset()), slog.Int("end", oldest.EndOffset()))
}

// Remove drops a chunk from the cache without clearing it, e.g. when its
// layout is discarded. Returns true if the chunk was tracked.
func (c *ChunkCache) Remove(chunk *textline.Chunk) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[chunk]
	delete(c.entries, chunk)
	return ok
}

// Clear clears the fragment content of every tracked chunk and empties the
// cache. Must not be called while a layout traversal is in flight.
func (c *ChunkCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for chunk := range c.entries {
		chunk.ClearCache()
	}
	c.entries = make(map[*textline.Chunk]int64)
}

// Len returns the number of tracked chunks.
func (c *ChunkCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of retained chunks.
func (c *ChunkCache) Capacity() int { return c.capacity }

// Evictions returns the total number of chunks evicted so far.
func (c *ChunkCache) Evictions() uint64 { return c.evictions.Load() }
