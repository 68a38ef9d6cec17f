package service

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

// TTLCache 进程内带过期时间的缓存，并统计命中率
type TTLCache struct {
	store  *gocache.Cache
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// NewTTLCache 创建新的缓存，ttl 为默认过期时间
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TTLCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get 获取未过期的缓存项
func (c *TTLCache) Get(key string) (interface{}, bool) {
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set 以默认过期时间写入缓存，每个键的过期时间互相独立
func (c *TTLCache) Set(key string, value interface{}) {
	c.store.Set(key, value, c.ttl)
}

// Flush 清空缓存
func (c *TTLCache) Flush() {
	c.store.Flush()
}

// GetCacheStats 获取缓存统计
func (c *TTLCache) GetCacheStats() model.CacheStats {
	return model.CacheStats{
		KeyCount: c.store.ItemCount(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}

// URLHash 基于URL生成确定性的哈希，作为持久化和去重的主键
func URLHash(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// NormalizeQuery 去除首尾空白并合并连续空白
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// hashKey 生成带前缀的缓存键
func hashKey(prefix, raw string) string {
	sum := md5.Sum([]byte(raw))
	return prefix + hex.EncodeToString(sum[:])
}
