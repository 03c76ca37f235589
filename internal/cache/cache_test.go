package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryCache 测试内存缓存的基本功能
func TestMemoryCache(t *testing.T) {
	// 创建内存缓存
	config := Config{
		Type:            "memory",
		DefaultTTL:      time.Second * 2,
		CleanupInterval: time.Second,
	}
	cache, err := NewMemoryCache(config)
	assert.NoError(t, err)
	assert.NotNil(t, cache)

	// 测试Set和Get
	err = cache.Set("key1", "value1", 0) // 使用默认TTL
	assert.NoError(t, err)

	val, found, err := cache.Get("key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value1", val)

	// 测试不存在的键
	val, found, err = cache.Get("non-existent")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	// 测试过期
	err = cache.Set("expire-soon", "temp-value", time.Millisecond*500)
	assert.NoError(t, err)

	// 等待过期
	time.Sleep(time.Second)

	val, found, err = cache.Get("expire-soon")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	// 测试删除
	err = cache.Set("to-delete", "delete-me", 0)
	assert.NoError(t, err)

	err = cache.Delete("to-delete")
	assert.NoError(t, err)

	val, found, err = cache.Get("to-delete")
	assert.NoError(t, err)
	assert.False(t, found)

	// 测试清空
	err = cache.Set("key2", "value2", 0)
	assert.NoError(t, err)

	err = cache.Clear()
	assert.NoError(t, err)

	val, found, err = cache.Get("key2")
	assert.NoError(t, err)
	assert.False(t, found)
}

// TestRedisCache 使用miniredis测试Redis缓存
func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	config := Config{
		Type:       "redis",
		RedisAddr:  mr.Addr(),
		DefaultTTL: time.Minute,
	}

	cache, err := NewRedisCache(config)
	require.NoError(t, err)
	assert.NotNil(t, cache)

	// 测试Set和Get
	err = cache.Set("redis-key1", "redis-value1", 0)
	assert.NoError(t, err)

	val, found, err := cache.Get("redis-key1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "redis-value1", val)

	// 测试不存在的键
	val, found, err = cache.Get("redis-non-existent")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	// 测试过期：通过miniredis快进时间
	err = cache.Set("redis-expire", "temp", time.Second)
	assert.NoError(t, err)
	mr.FastForward(time.Second * 2)

	val, found, err = cache.Get("redis-expire")
	assert.NoError(t, err)
	assert.False(t, found)

	// 测试删除
	err = cache.Set("redis-delete", "x", 0)
	assert.NoError(t, err)
	err = cache.Delete("redis-delete")
	assert.NoError(t, err)

	_, found, err = cache.Get("redis-delete")
	assert.NoError(t, err)
	assert.False(t, found)
}

// TestNewCacheFactory 工厂按类型创建缓存，未知类型退回内存实现
func TestNewCacheFactory(t *testing.T) {
	c, err := NewCache(Config{Type: "memory", DefaultTTL: time.Minute})
	assert.NoError(t, err)
	assert.NotNil(t, c)

	c, err = NewCache(Config{Type: "unknown", DefaultTTL: time.Minute})
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

// TestGenerateCacheKey 测试缓存键的拼接
func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "diff", GenerateCacheKey("diff"))
	assert.Equal(t, "diff:doc1:abc:def", GenerateCacheKey("diff", "doc1", "abc", "def"))
}
