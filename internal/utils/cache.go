package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps cached data with its expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// GlobalCache is a small process-local LRU with per-entry TTL.
type GlobalCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var (
	cacheInstance *GlobalCache
	cacheOnce     sync.Once
)

// GetCache returns the shared cache instance.
func GetCache() *GlobalCache {
	cacheOnce.Do(func() {
		cacheInstance = NewCache(500)
	})
	return cacheInstance
}

// NewCache builds an independent cache holding at most size entries.
func NewCache(size int) *GlobalCache {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		// only fails for size <= 0
		panic(err)
	}
	return &GlobalCache{lruCache: l}
}

// Set stores data for ttl.
func (c *GlobalCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns nil when the key is missing or expired.
func (c *GlobalCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Delete drops key.
func (c *GlobalCache) Delete(key string) {
	c.lruCache.Remove(key)
}
