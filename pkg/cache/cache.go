package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache 缓存接口
type Cache interface {
	// Get 获取缓存，未命中返回ErrCacheMiss
	Get(ctx context.Context, key string) (string, error)

	// Delete 删除缓存
	Delete(ctx context.Context, keys ...string) error

	// GetJSON 获取JSON格式的缓存并反序列化
	GetJSON(ctx context.Context, key string, dest interface{}) error

	// SetJSON 序列化为JSON并设置缓存
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Close 关闭连接
	Close() error
}

// 缓存键
const (
	UserProfileKey     = "user:profile:%d"   // 用户资料
	BloomFilterUserKey = "bloom:user:exists" // 用户存在性布隆过滤器
)

// 过期时间
const (
	UserProfileExpiration = 30 * time.Minute
	BloomFilterExpiration = 7 * 24 * time.Hour
)
