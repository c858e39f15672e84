// Package cache provides a generic sharded LRU cache used for glyph
// outline and shaping results, where many goroutines hit a small hot set
// of keys.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// shardCount is a power of 2 so shard selection is a bitwise AND.
	shardCount = 16
	shardMask  = shardCount - 1

	// DefaultCapacity is the per-shard entry limit when none is given.
	DefaultCapacity = 256
)

// Hasher computes the shard hash for a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Uint64Hasher is the identity hash for uint64 keys.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Sharded is a thread-safe LRU cache split into 16 shards to reduce
// lock contention. Each shard evicts independently, so the effective
// capacity is per-shard capacity times the shard count.
type Sharded[K comparable, V any] struct {
	shards   [shardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// shard holds one lock's worth of entries with an intrusive LRU list.
type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	head    *node[K, V] // most recently used
	tail    *node[K, V] // least recently used
}

type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// NewSharded creates a sharded LRU cache with the given per-shard
// capacity. If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Sharded[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*node[K, V])
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a cached value, refreshing its LRU position.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	n, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.moveToFront(n)
	v := n.value
	s.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// Set stores a value, evicting the shard's least recently used entry
// when the shard is at capacity.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[key]; ok {
		n.value = value
		s.moveToFront(n)
		return
	}

	if len(s.entries) >= c.capacity {
		if lru := s.tail; lru != nil {
			s.unlink(lru)
			delete(s.entries, lru.key)
			c.evictions.Add(1)
		}
	}

	n := &node[K, V]{key: key, value: value}
	s.entries[key] = n
	s.pushFront(n)
}

// GetOrCreate returns the cached value for key, calling create and
// caching its result on a miss. On concurrent misses create may run
// more than once; the last writer wins.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Delete removes an entry, reporting whether it existed.
func (c *Sharded[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[key]
	if !ok {
		return false
	}
	s.unlink(n)
	delete(s.entries, key)
	return true
}

// Clear removes all entries from all shards.
func (c *Sharded[K, V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[K]*node[K, V])
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Capacity returns the per-shard capacity.
func (c *Sharded[K, V]) Capacity() int {
	return c.capacity
}

// Stats holds cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns a snapshot of the cache counters.
func (c *Sharded[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (s *shard[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *shard[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}
