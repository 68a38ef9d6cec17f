package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURLHash_Stable(t *testing.T) {
	url := "https://example.com/news/1"

	assert.Equal(t, URLHash(url), URLHash(url))
	assert.Equal(t, "ac6fb1d43827aba7eee19a2128e6b30f", URLHash(url))
	assert.Len(t, URLHash(url), 32)
	assert.NotEqual(t, URLHash(url), URLHash(url+"?a=1"))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", URLHash(""))
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "open ai", NormalizeQuery("  open   ai \t"))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestTTLCache_HitsAndMisses(t *testing.T) {
	c := NewTTLCache(time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", 42)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	stats := c.GetCacheStats()
	assert.Equal(t, 1, stats.KeyCount)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	c.Flush()
	assert.Equal(t, 0, c.GetCacheStats().KeyCount)
}

func TestTTLCache_Expires(t *testing.T) {
	c := NewTTLCache(20 * time.Millisecond)
	c.Set("k", "v")

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
