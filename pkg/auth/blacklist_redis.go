package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Redis键前缀
	blacklistKeyPrefix = "jwt:blacklist:"
	// 本地缓存最大条目数
	maxLocalCacheSize = 10000
	// 单次Redis操作超时
	redisOpTimeout = 2 * time.Second
)

// RedisTokenBlacklist Redis令牌黑名单，带本地缓存
type RedisTokenBlacklist struct {
	redis      *redis.Client
	localCache map[string]time.Time
	mutex      sync.RWMutex
}

// NewRedisTokenBlacklist 创建Redis令牌黑名单
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		redis:      client,
		localCache: make(map[string]time.Time),
	}
}

// key 令牌较长，取摘要作为键
func (b *RedisTokenBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return blacklistKeyPrefix + hex.EncodeToString(sum[:])
}

// AddToBlacklist 将令牌添加到黑名单
func (b *RedisTokenBlacklist) AddToBlacklist(token string, expireAt time.Time) error {
	duration := time.Until(expireAt)
	if duration <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := b.redis.Set(ctx, b.key(token), "1", duration).Err(); err != nil {
		logger.Error("添加令牌到Redis黑名单失败", zap.Error(err))
		return fmt.Errorf("添加令牌到黑名单失败: %w", err)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if len(b.localCache) >= maxLocalCacheSize {
		b.cleanupLocalCacheUnsafe()
	}
	b.localCache[token] = expireAt
	return nil
}

// IsBlacklisted 检查令牌是否在黑名单中
func (b *RedisTokenBlacklist) IsBlacklisted(token string) bool {
	b.mutex.RLock()
	expireAt, exists := b.localCache[token]
	b.mutex.RUnlock()

	if exists {
		if time.Now().Before(expireAt) {
			return true
		}
		b.mutex.Lock()
		delete(b.localCache, token)
		b.mutex.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	key := b.key(token)
	ttl, err := b.redis.TTL(ctx, key).Result()
	if err != nil {
		// Redis异常时仅依赖本地缓存
		logger.Error("检查Redis黑名单失败", zap.Error(err))
		return false
	}
	if ttl <= 0 {
		return false
	}

	b.mutex.Lock()
	b.localCache[token] = time.Now().Add(ttl)
	b.mutex.Unlock()
	return true
}

// cleanupLocalCacheUnsafe 清理本地缓存中的过期令牌（调用方持有锁）
func (b *RedisTokenBlacklist) cleanupLocalCacheUnsafe() {
	now := time.Now()
	for token, expireAt := range b.localCache {
		if now.After(expireAt) {
			delete(b.localCache, token)
		}
	}
}

// CleanupLocalCache 清理本地缓存
func (b *RedisTokenBlacklist) CleanupLocalCache() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.cleanupLocalCacheUnsafe()
}

// GetStats 获取黑名单统计信息
func (b *RedisTokenBlacklist) GetStats(ctx context.Context) (redisCount int, localCacheCount int, err error) {
	iter := b.redis.Scan(ctx, 0, blacklistKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		redisCount++
	}
	if err := iter.Err(); err != nil {
		return 0, 0, fmt.Errorf("获取Redis黑名单统计失败: %w", err)
	}

	b.mutex.RLock()
	localCacheCount = len(b.localCache)
	b.mutex.RUnlock()
	return redisCount, localCacheCount, nil
}
