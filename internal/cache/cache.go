// Package cache holds the rendered-post caches: an in-process map with
// expiry and a Redis-backed variant for multi-instance deployments.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe map whose entries expire after a fixed TTL.
// A zero TTL keeps entries forever.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	ttl   time.Duration
	now   func() time.Time
}

func NewCache[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]entry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = e
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
}

// Len counts entries including expired ones not yet pruned.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Prune drops expired entries and reports how many were removed.
func (c *Cache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.items {
		if c.expired(e) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

// MemoryRenderCache stores rendered HTML in process memory.
type MemoryRenderCache struct {
	items *Cache[string, string]
}

func NewMemoryRenderCache(ttl time.Duration) *MemoryRenderCache {
	return &MemoryRenderCache{items: NewCache[string, string](ttl)}
}

func (m *MemoryRenderCache) Get(_ context.Context, key string) (string, bool, error) {
	html, ok := m.items.Get(key)
	return html, ok, nil
}

func (m *MemoryRenderCache) Set(_ context.Context, key, html string) error {
	m.items.Set(key, html)
	return nil
}

func (m *MemoryRenderCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Prune drops expired entries until ctx is done.
func (m *MemoryRenderCache) Prune(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.items.Prune()
		}
	}
}
