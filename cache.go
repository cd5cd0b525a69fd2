package main

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// SingleFlightCache memoizes successful lookups, collapsing concurrent
// lookups of the same key into one. It holds at most capacity entries and
// evicts the least recently used first.
type SingleFlightCache[V any] struct {
	sf       singleflight.Group
	mu       sync.Mutex
	cache    map[string]V
	order    []string
	capacity int
}

func NewSingleFlightCache[V any](capacity int) *SingleFlightCache[V] {
	return &SingleFlightCache[V]{
		cache:    make(map[string]V),
		capacity: max(capacity, 1),
	}
}

func (c *SingleFlightCache[V]) Get(k string, fallback func() (V, error)) (V, error) {
	c.mu.Lock()
	v, ok := c.cache[k]
	if ok {
		c.touch(k)
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	vAny, err, _ := c.sf.Do(k, func() (any, error) {
		return fallback()
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return c.put(k, vAny.(V)), nil
}

func (c *SingleFlightCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// put stores v unless k is already present, and returns the stored value.
func (c *SingleFlightCache[V]) put(k string, v V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.cache[k]; ok {
		c.touch(k)
		return existing
	}
	for len(c.order) >= c.capacity {
		delete(c.cache, c.order[0])
		c.order = c.order[1:]
	}
	c.cache[k] = v
	c.order = append(c.order, k)
	return v
}

// touch moves k to the back of the eviction order. c.mu must be held.
func (c *SingleFlightCache[V]) touch(k string) {
	for i, o := range c.order {
		if o == k {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), k)
			return
		}
	}
}
