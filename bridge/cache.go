package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedTemplate is the serializable projection of a resolved template
// cached by Cache: enough to reconstruct a resolved value against the
// current Archive without re-scanning every package.
type cachedTemplate struct {
	PackageID string   `json:"packageId"`
	ModPath   []string `json:"modPath"`
	Entity    string   `json:"entity"`
}

// Cache caches template-id resolution results, mirroring the teacher's
// runtime/registry Manager/Cache pattern (NewManager(WithCache(...))). A
// whole-cache Clear is expected on every Archive swap, since a cached
// resolution keyed by an old Archive's contents is meaningless once the
// Archive it was computed against is replaced.
type Cache interface {
	Get(ctx context.Context, key string) (*cachedTemplate, error)
	Set(ctx context.Context, key string, value *cachedTemplate, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// MemoryCache is the default in-process Cache implementation.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     *cachedTemplate
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory Cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*cachedTemplate, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value *cachedTemplate, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryCacheEntry)
	return nil
}

// RedisCache is an optional distributed Cache backed by go-redis, for
// deployments that run more than one bridge process against the same
// ledger and want to share template-resolution results.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache wraps rdb as a Cache, namespacing keys under prefix.
func NewRedisCache(rdb *redis.Client, prefix string) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (*cachedTemplate, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v cachedTemplate
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value *cachedTemplate, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, ttl).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

var _ Cache = (*MemoryCache)(nil)
var _ Cache = (*RedisCache)(nil)
