// Package cache provides response caches with ETag support: an in-memory
// TTL map and a Redis backend for multi-instance deployments.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

// TTL constants.
const (
	TTLProjections = 1 * time.Hour  // Target-year projections and standings
	TTLHistorical  = 24 * time.Hour // Past-season values and records
)

// Store is a response cache. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, etag string, ok bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) string
	Stats(ctx context.Context) map[string]any
}

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	enabled bool
	stop    chan struct{}
	once    sync.Once
}

// New creates a new cache. Pass enabled=false to create a no-op cache.
func New(enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
		stop:    make(chan struct{}),
	}
	if enabled {
		go c.evictLoop(5 * time.Minute)
	}
	return c
}

// Close stops the eviction loop.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

// Get retrieves a cached value. Returns data, etag, and whether the entry was found.
func (c *Cache) Get(_ context.Context, key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a value with a TTL.
func (c *Cache) Set(_ context.Context, key string, data []byte, ttl time.Duration) string {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		data:      data,
		etag:      etag,
		expiresAt: time.Now().Add(ttl),
	}
	return etag
}

// Stats returns cache statistics.
func (c *Cache) Stats(context.Context) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]any{
		"backend":      "memory",
		"enabled":      c.enabled,
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

func (c *Cache) evictLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evict()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Key namespaces a request key by snapshot version so a reload never
// serves responses built from the previous snapshot.
func Key(version int64, path string) string {
	return fmt.Sprintf("npb:%d:%s", version, path)
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	return ifNoneMatch == etag
}
