package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/sentinel"
)

//go:generate mockgen -source=cache.go -destination=mocks/cache.go -package=mocks Cache

// Cache stores computed score results per address. A miss or an expired
// entry is sentinel.ErrNotFound; any other error means the cache itself is
// unhealthy and the caller should fall through to live evaluation.
type Cache interface {
	Get(ctx context.Context, addr id.Address) (domain.ScoreResult, error)
	Set(ctx context.Context, addr id.Address, result domain.ScoreResult) error
	Invalidate(ctx context.Context, addr id.Address) error
}

// MemoryCache is an in-process TTL cache. Expired entries are dropped
// lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[id.Address]memoryCacheEntry
}

type memoryCacheEntry struct {
	result    domain.ScoreResult
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[id.Address]memoryCacheEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, addr id.Address) (domain.ScoreResult, error) {
	c.mu.RLock()
	entry, ok := c.entries[addr]
	c.mu.RUnlock()
	if !ok {
		return domain.ScoreResult{}, sentinel.ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, addr)
		c.mu.Unlock()
		return domain.ScoreResult{}, sentinel.ErrNotFound
	}
	return entry.result, nil
}

func (c *MemoryCache) Set(_ context.Context, addr id.Address, result domain.ScoreResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[addr] = memoryCacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, addr id.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, addr)
	return nil
}

// RedisCache stores results as JSON with a server-side TTL, so independent
// service instances share one score view.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(addr id.Address) string {
	return fmt.Sprintf("chainpass:score:%s", addr)
}

func (c *RedisCache) Get(ctx context.Context, addr id.Address) (domain.ScoreResult, error) {
	raw, err := c.client.Get(ctx, cacheKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ScoreResult{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.ScoreResult{}, fmt.Errorf("reading score cache: %w", err)
	}
	var result domain.ScoreResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("decoding cached score: %w", err)
	}
	return result, nil
}

func (c *RedisCache) Set(ctx context.Context, addr id.Address, result domain.ScoreResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding score for cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(addr), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing score cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, addr id.Address) error {
	if err := c.client.Del(ctx, cacheKey(addr)).Err(); err != nil {
		return fmt.Errorf("invalidating score cache: %w", err)
	}
	return nil
}

// NopCache disables caching. Every evaluation hits the sources.
type NopCache struct{}

func (NopCache) Get(context.Context, id.Address) (domain.ScoreResult, error) {
	return domain.ScoreResult{}, sentinel.ErrNotFound
}
func (NopCache) Set(context.Context, id.Address, domain.ScoreResult) error { return nil }
func (NopCache) Invalidate(context.Context, id.Address) error              { return nil }
