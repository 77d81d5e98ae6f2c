package memory

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrCacheMiss is returned by LRUCache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

type lruEntry struct {
	data    []byte
	expires time.Time // zero: lives until maxAge
}

// LRUCache implements ports.CacheService in process. It stands in for
// Valkey when the server is unreachable; entries are bounded by size and by
// maxAge regardless of the TTL they were stored with.
type LRUCache struct {
	lru *expirable.LRU[string, lruEntry]
	now func() time.Time
}

// NewLRUCache creates a cache holding at most size entries for at most maxAge.
func NewLRUCache(size int, maxAge time.Duration) *LRUCache {
	return &LRUCache{
		lru: expirable.NewLRU[string, lruEntry](size, nil, maxAge),
		now: time.Now,
	}
}

func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return e.data, nil
}

func (c *LRUCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	e := lruEntry{data: append([]byte(nil), value...)}
	if ttlSeconds > 0 {
		e.expires = c.now().Add(time.Duration(ttlSeconds) * time.Second)
	}
	c.lru.Add(key, e)
	return nil
}

func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len reports the number of live entries.
func (c *LRUCache) Len() int {
	return c.lru.Len()
}
