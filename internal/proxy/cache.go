package proxy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores rendered pages by source URL.
type Cache interface {
	Get(ctx context.Context, url string) (*Page, bool)
	Set(ctx context.Context, url string, p *Page)
}

type MemoryCache struct {
	lru *expirable.LRU[string, Page]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 256
	}
	return &MemoryCache{lru: expirable.NewLRU[string, Page](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (*Page, bool) {
	p, ok := c.lru.Get(url)
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *MemoryCache) Set(_ context.Context, url string, p *Page) {
	c.lru.Add(url, *p)
}

// RedisCache shares rendered pages between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "proxy:page:" + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, url string) (*Page, bool) {
	b, err := c.client.Get(ctx, cacheKey(url)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnf("cache get: %v", err)
		}
		return nil, false
	}
	var p Page
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisCache) Set(ctx context.Context, url string, p *Page) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(url), b, c.ttl).Err(); err != nil {
		log.Warnf("cache set: %v", err)
	}
}
