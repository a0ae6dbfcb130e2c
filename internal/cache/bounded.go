// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import "sync"

// boundedEntry is a node in the insertion-ordered list.
type boundedEntry[K comparable, V any] struct {
	key   K
	value V
	prev  *boundedEntry[K, V]
	next  *boundedEntry[K, V]
}

// Bounded is a fixed-capacity memoization cache with oldest-entry eviction.
//
// Entries are ordered by first insertion; reads and updates do not refresh
// an entry's position, so the entry evicted when capacity is exceeded is
// always the one inserted longest ago. All operations are O(1) and safe for
// concurrent use.
//
// The list uses head/tail sentinels: head.next is the newest entry and
// tail.prev is the oldest.
type Bounded[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	items    map[K]*boundedEntry[K, V]
	head     *boundedEntry[K, V]
	tail     *boundedEntry[K, V]

	hits      int64
	misses    int64
	evictions int64
}

// BoundedStats is a point-in-time view of a Bounded cache.
type BoundedStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
}

// HitRate returns hits as a percentage of lookups, or 0 with no lookups.
func (s BoundedStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// NewBounded creates a cache holding at most capacity entries.
// A non-positive capacity falls back to 1000.
func NewBounded[K comparable, V any](capacity int) *Bounded[K, V] {
	if capacity <= 0 {
		capacity = 1000
	}

	c := &Bounded[K, V]{
		capacity: capacity,
		items:    make(map[K]*boundedEntry[K, V], capacity),
		head:     &boundedEntry[K, V]{},
		tail:     &boundedEntry[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the value for key and whether it was present.
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.hits++
		return entry.value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Add stores value under key. Updating an existing key keeps its position.
// Returns true if an older entry was evicted to make room.
func (c *Bounded[K, V]) Add(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		entry.value = value
		return false
	}

	entry := &boundedEntry[K, V]{key: key, value: value}
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
	c.items[key] = entry

	evicted := false
	for len(c.items) > c.capacity {
		c.removeEntry(c.tail.prev)
		c.evictions++
		evicted = true
	}
	return evicted
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// compute runs outside the lock, so concurrent misses may both compute.
func (c *Bounded[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Add(key, v)
	return v
}

// Remove deletes key. Returns true if it was present.
func (c *Bounded[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the number of cached entries.
func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear drops all entries. Counters are kept.
func (c *Bounded[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*boundedEntry[K, V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns hit/miss/eviction counters and current size.
func (c *Bounded[K, V]) Stats() BoundedStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return BoundedStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
		Capacity:  c.capacity,
	}
}

// removeEntry unlinks entry and deletes it from the map (lock held).
func (c *Bounded[K, V]) removeEntry(entry *boundedEntry[K, V]) {
	if entry == c.head || entry == c.tail {
		return
	}
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}
