package e2ee

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(10)

	_, found := c.Get(PartitionMetadata, "s1", 1)
	assert.False(t, found)

	c.Set(PartitionMetadata, "s1", 1, []byte("payload"))
	payload, found := c.Get(PartitionMetadata, "s1", 1)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), payload)

	// Same key in another partition is independent.
	_, found = c.Get(PartitionMessage, "s1", 1)
	assert.False(t, found)

	// A new version is a distinct key.
	_, found = c.Get(PartitionMetadata, "s1", 2)
	assert.False(t, found)
}

func TestCacheOverwriteRefreshes(t *testing.T) {
	c := NewCache(2)
	c.Set(PartitionMetadata, "a", 1, []byte("one"))
	c.Set(PartitionMetadata, "b", 1, []byte("two"))

	// Overwriting "a" makes "b" the oldest entry.
	c.Set(PartitionMetadata, "a", 1, []byte("one again"))
	c.Set(PartitionMetadata, "c", 1, []byte("three"))

	_, found := c.Get(PartitionMetadata, "b", 1)
	assert.False(t, found)
	payload, found := c.Get(PartitionMetadata, "a", 1)
	require.True(t, found)
	assert.Equal(t, []byte("one again"), payload)
}

func TestCacheEvictsSingleOldest(t *testing.T) {
	const capacity = 5
	c := NewCache(capacity)

	for i := 0; i < capacity+1; i++ {
		c.Set(PartitionAgentState, fmt.Sprintf("s%d", i), 0, []byte{byte(i)})
	}

	stats := c.Stats()[PartitionAgentState]
	assert.Equal(t, capacity, stats.Entries)
	assert.Equal(t, uint64(1), stats.Evictions)

	// s0 was inserted first and never touched again.
	_, found := c.Get(PartitionAgentState, "s0", 0)
	assert.False(t, found)
	_, found = c.Get(PartitionAgentState, "s1", 0)
	assert.True(t, found)
}

func TestCacheGetProtectsFromEviction(t *testing.T) {
	const capacity = 3
	c := NewCache(capacity)
	c.Set(PartitionMessage, "m0", 0, []byte("0"))
	c.Set(PartitionMessage, "m1", 0, []byte("1"))
	c.Set(PartitionMessage, "m2", 0, []byte("2"))

	// Touch the oldest entry, then push one more in. The eviction must fall
	// on m1, now the least recently used.
	_, found := c.Get(PartitionMessage, "m0", 0)
	require.True(t, found)
	c.Set(PartitionMessage, "m3", 0, []byte("3"))

	_, found = c.Get(PartitionMessage, "m0", 0)
	assert.True(t, found)
	_, found = c.Get(PartitionMessage, "m1", 0)
	assert.False(t, found)
	_, found = c.Get(PartitionMessage, "m2", 0)
	assert.True(t, found)
}

func TestCacheNegativeEntries(t *testing.T) {
	c := NewCache(10)
	c.Set(PartitionDaemonState, "mach1", 7, nil)

	payload, found := c.Get(PartitionDaemonState, "mach1", 7)
	assert.True(t, found)
	assert.Nil(t, payload)
}

func TestCacheClearEntity(t *testing.T) {
	c := NewCache(10)
	c.Set(PartitionMetadata, "s1", 1, []byte("a"))
	c.Set(PartitionMetadata, "s1", 2, []byte("b"))
	c.Set(PartitionMessage, "s1", 1, []byte("c"))
	c.Set(PartitionMetadata, "s2", 1, []byte("d"))
	// "s10" shares a string prefix with "s1" but is a different entity.
	c.Set(PartitionMetadata, "s10", 1, []byte("e"))

	c.ClearEntity("s1")

	for _, version := range []int{1, 2} {
		_, found := c.Get(PartitionMetadata, "s1", version)
		assert.False(t, found)
	}
	_, found := c.Get(PartitionMessage, "s1", 1)
	assert.False(t, found)
	_, found = c.Get(PartitionMetadata, "s2", 1)
	assert.True(t, found)
	_, found = c.Get(PartitionMetadata, "s10", 1)
	assert.True(t, found)
}

func TestCacheClearAll(t *testing.T) {
	c := NewCache(10)
	c.Set(PartitionMetadata, "s1", 1, []byte("a"))
	c.Set(PartitionDaemonState, "m1", 1, []byte("b"))

	c.ClearAll()
	for name, stats := range c.Stats() {
		assert.Zero(t, stats.Entries, name)
	}
}

func TestCacheStats(t *testing.T) {
	c := NewCache(10)
	c.Set(PartitionMetadata, "s1", 1, []byte("a"))
	c.Get(PartitionMetadata, "s1", 1)
	c.Get(PartitionMetadata, "s1", 2)

	stats := c.Stats()[PartitionMetadata]
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 10, stats.Capacity)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCacheUnknownPartition(t *testing.T) {
	c := NewCache(10)
	c.Set("bogus", "s1", 1, []byte("a"))
	_, found := c.Get("bogus", "s1", 1)
	assert.False(t, found)
}
