package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the in-process-or-shared caching collaborator each catalog
// service fronts its store with (§4.2: "each service maintains an
// in-process cache; write paths invalidate the pertinent keys"). Values
// are pre-serialized JSON documents; Cache itself never decodes them.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
	InvalidatePrefix(ctx context.Context, prefix string)
}

// memoryCache is the default Cache: a single map guarded by an RWMutex,
// grounded on the teacher's pkg/storage.InMemoryStore locking discipline.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache returns a process-local Cache with no cross-instance
// sharing — adequate for a single-process deployment (§1 non-goals:
// "Distributed deployment across multiple processes is out of scope").
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]cacheEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = cacheEntry{value: value, expiresAt: expiresAt}
}

func (c *memoryCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *memoryCache) InvalidatePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

// redisCache is a thin Cache adapter over go-redis, used when several
// orchestrator processes share one catalog cache. Keys are tracked in a
// Redis set per prefix so InvalidatePrefix can fan out without a KEYS scan.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an already-configured *redis.Client as a Cache.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	c.client.Set(ctx, key, value, ttl)
	for _, prefix := range trackedPrefixes(key) {
		c.client.SAdd(ctx, "prefix:"+prefix, key)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

func (c *redisCache) InvalidatePrefix(ctx context.Context, prefix string) {
	for _, tracked := range trackedPrefixes(prefix) {
		members, err := c.client.SMembers(ctx, "prefix:"+tracked).Result()
		if err != nil {
			continue
		}
		var matched []string
		for _, k := range members {
			if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
				matched = append(matched, k)
			}
		}
		if len(matched) > 0 {
			c.client.Del(ctx, matched...)
		}
		if prefix == tracked {
			c.client.Del(ctx, "prefix:"+tracked)
		}
	}
}

// trackedPrefixes returns the cache-key prefixes (§4.2: byId, byFamilyId_latest,
// all, byIntent) that key belongs to, inferred from its own prefix.
func trackedPrefixes(key string) []string {
	for _, p := range []string{"byId:", "byFamilyId_latest:", "all:", "byIntent:"} {
		if len(key) >= len(p) && key[:len(p)] == p {
			return []string{p}
		}
	}
	return nil
}
