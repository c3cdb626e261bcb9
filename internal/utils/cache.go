package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem 包装缓存数据和过期时间
type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache 本地 LRU 缓存，每个条目带 TTL
type Cache[K comparable, V any] struct {
	lruCache *lru.Cache[K, cacheItem[V]]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache 创建容量为 size 的缓存，条目在 ttl 后过期
func NewCache[K comparable, V any](size int, ttl time.Duration) (*Cache[K, V], error) {
	l, err := lru.New[K, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lruCache: l, ttl: ttl, now: time.Now}, nil
}

// Set 设置缓存
func (c *Cache[K, V]) Set(key K, data V) {
	c.lruCache.Add(key, cacheItem[V]{
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	val, ok := c.lruCache.Get(key)
	if !ok {
		return zero, false
	}

	// 检查过期
	if c.now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return zero, false
	}

	return val.data, true
}

func (c *Cache[K, V]) Len() int {
	return c.lruCache.Len()
}
