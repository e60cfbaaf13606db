// Package cache contains the in-process LRU used by the buffered node store.
package cache

type lruEntry[TK comparable, TV any] struct {
	key   TK
	value TV
}

// LRU is a bounded, access ordered map. Eviction is driven by the caller: Set never drops
// entries, the owner checks IsFull and removes the Oldest entry itself, so it can persist the
// evictee first. LRU is not safe for concurrent use.
type LRU[TK comparable, TV any] struct {
	capacity int
	lookup   map[TK]*node[lruEntry[TK, TV]]
	dll      *doublyLinkedList[lruEntry[TK, TV]]
}

// NewLRU creates an LRU holding at most capacity entries. Capacities below one are raised to one.
func NewLRU[TK comparable, TV any](capacity int) *LRU[TK, TV] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[TK, TV]{
		capacity: capacity,
		lookup:   make(map[TK]*node[lruEntry[TK, TV]], capacity),
		dll:      newDoublyLinkedList[lruEntry[TK, TV]](),
	}
}

// Capacity returns the maximum number of entries.
func (c *LRU[TK, TV]) Capacity() int {
	return c.capacity
}

// Count returns the number of entries.
func (c *LRU[TK, TV]) Count() int {
	return c.dll.count()
}

// IsFull reports whether a new key can only be added after an eviction.
func (c *LRU[TK, TV]) IsFull() bool {
	return c.dll.count() >= c.capacity
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[TK, TV]) Get(key TK) (TV, bool) {
	n, ok := c.lookup[key]
	if !ok {
		var zero TV
		return zero, false
	}
	c.dll.moveToHead(n)
	return n.data.value, true
}

// Peek returns the value for key without touching its recency.
func (c *LRU[TK, TV]) Peek(key TK) (TV, bool) {
	n, ok := c.lookup[key]
	if !ok {
		var zero TV
		return zero, false
	}
	return n.data.value, true
}

// Contains reports whether key is present, without touching its recency.
func (c *LRU[TK, TV]) Contains(key TK) bool {
	_, ok := c.lookup[key]
	return ok
}

// Set inserts or replaces the value for key and marks it most recently used.
func (c *LRU[TK, TV]) Set(key TK, value TV) {
	if n, ok := c.lookup[key]; ok {
		n.data.value = value
		c.dll.moveToHead(n)
		return
	}
	c.lookup[key] = c.dll.addToHead(lruEntry[TK, TV]{key: key, value: value})
}

// Oldest returns the least recently used entry without removing it.
func (c *LRU[TK, TV]) Oldest() (TK, TV, bool) {
	if c.dll.isEmpty() {
		var k TK
		var v TV
		return k, v, false
	}
	e := c.dll.tail.data
	return e.key, e.value, true
}

// Delete removes key, reporting whether it was present.
func (c *LRU[TK, TV]) Delete(key TK) bool {
	n, ok := c.lookup[key]
	if !ok {
		return false
	}
	c.dll.delete(n)
	delete(c.lookup, key)
	return true
}

// Keys returns the keys from most to least recently used.
func (c *LRU[TK, TV]) Keys() []TK {
	r := make([]TK, 0, c.dll.count())
	for n := c.dll.head; n != nil; n = n.next {
		r = append(r, n.data.key)
	}
	return r
}

// Clear removes all entries.
func (c *LRU[TK, TV]) Clear() {
	c.lookup = make(map[TK]*node[lruEntry[TK, TV]], c.capacity)
	c.dll = newDoublyLinkedList[lruEntry[TK, TV]]()
}
