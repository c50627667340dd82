package e2ee

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity bounds each cache partition unless overridden with
// WithCacheCapacity.
const DefaultCacheCapacity = 1000

// Cache partition names, one per decrypted payload category.
const (
	PartitionAgentState      = "agent-state"
	PartitionMetadata        = "metadata"
	PartitionMessage         = "message"
	PartitionMachineMetadata = "machine-metadata"
	PartitionDaemonState     = "daemon-state"
)

// PartitionStats is a point-in-time snapshot of one cache partition.
type PartitionStats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache holds decrypted payloads keyed by entity id and payload version, so
// repeated renders of the same ciphertext never pay for a second decrypt.
// Each partition is independently bounded and evicts its least recently used
// entry when full. All methods are safe for concurrent use.
type Cache struct {
	clock      atomic.Uint64
	partitions map[string]*cachePartition
}

type cachePartition struct {
	mu        sync.Mutex
	capacity  int
	entries   map[string]*cacheEntry
	hits      uint64
	misses    uint64
	evictions uint64
}

// An entry with a nil payload records a known-bad ciphertext, so the
// daemon-state partition can skip decrypt attempts that already failed.
type cacheEntry struct {
	payload []byte
	access  uint64
}

// NewCache builds a cache with the given per-partition capacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c := &Cache{partitions: make(map[string]*cachePartition, 5)}
	for _, name := range []string{
		PartitionAgentState,
		PartitionMetadata,
		PartitionMessage,
		PartitionMachineMetadata,
		PartitionDaemonState,
	} {
		c.partitions[name] = &cachePartition{
			capacity: capacity,
			entries:  make(map[string]*cacheEntry),
		}
	}
	return c
}

func cacheKey(entityID string, version int) string {
	return entityID + ":" + strconv.Itoa(version)
}

// Get returns the cached payload for (entityID, version) and refreshes its
// access time. A found nil payload is a cached negative result.
func (c *Cache) Get(partition, entityID string, version int) (payload []byte, found bool) {
	p := c.partitions[partition]
	if p == nil {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[cacheKey(entityID, version)]
	if !ok {
		p.misses++
		return nil, false
	}
	p.hits++
	entry.access = c.clock.Add(1)
	return entry.payload, true
}

// Set stores a payload for (entityID, version), overwriting any previous
// value. When the partition is already at capacity, the single entry with
// the oldest access time is evicted first. A nil payload caches a negative
// result.
func (c *Cache) Set(partition, entityID string, version int, payload []byte) {
	p := c.partitions[partition]
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	key := cacheKey(entityID, version)
	if entry, ok := p.entries[key]; ok {
		entry.payload = payload
		entry.access = c.clock.Add(1)
		return
	}
	if len(p.entries) >= p.capacity {
		p.evictOldest()
	}
	p.entries[key] = &cacheEntry{payload: payload, access: c.clock.Add(1)}
}

// evictOldest removes exactly one entry, the one least recently touched by
// Get or Set. The linear scan is fine at the bounded partition sizes.
func (p *cachePartition) evictOldest() {
	var (
		oldestKey string
		oldest    uint64
		first     = true
	)
	for key, entry := range p.entries {
		if first || entry.access < oldest {
			oldestKey = key
			oldest = entry.access
			first = false
		}
	}
	if !first {
		delete(p.entries, oldestKey)
		p.evictions++
	}
}

// ClearEntity drops every cached payload belonging to entityID across all
// partitions.
func (c *Cache) ClearEntity(entityID string) {
	prefix := entityID + ":"
	for _, p := range c.partitions {
		p.mu.Lock()
		for key := range p.entries {
			if strings.HasPrefix(key, prefix) {
				delete(p.entries, key)
			}
		}
		p.mu.Unlock()
	}
}

// ClearAll drops every cached payload in every partition.
func (c *Cache) ClearAll() {
	for _, p := range c.partitions {
		p.mu.Lock()
		p.entries = make(map[string]*cacheEntry)
		p.mu.Unlock()
	}
}

// Stats reports a snapshot per partition.
func (c *Cache) Stats() map[string]PartitionStats {
	out := make(map[string]PartitionStats, len(c.partitions))
	for name, p := range c.partitions {
		p.mu.Lock()
		out[name] = PartitionStats{
			Entries:   len(p.entries),
			Capacity:  p.capacity,
			Hits:      p.hits,
			Misses:    p.misses,
			Evictions: p.evictions,
		}
		p.mu.Unlock()
	}
	return out
}
