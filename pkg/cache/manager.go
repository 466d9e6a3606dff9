package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Manager 缓存管理器
type Manager struct {
	cache      Cache
	userFilter *RedisBloomFilter
}

// NewManager 创建缓存管理器，client为nil时不提供Redis缓存，布隆过滤器仅在内存中工作
func NewManager(client *redis.Client) *Manager {
	m := &Manager{
		userFilter: NewRedisBloomFilter(client, BloomFilterUserKey, 100000, 0.01), // 10万用户，1%误判率
	}
	if client != nil {
		m.cache = NewRedisCache(client)
	}
	return m
}

// Initialize 从Redis加载布隆过滤器并用数据库中的用户ID预热
func (m *Manager) Initialize(ctx context.Context, db *gorm.DB) error {
	if err := m.userFilter.LoadFromRedis(ctx); err != nil {
		return fmt.Errorf("load user bloom filter failed: %w", err)
	}
	return m.WarmUpUsers(ctx, db)
}

// WarmUpUsers 预热用户布隆过滤器
func (m *Manager) WarmUpUsers(ctx context.Context, db *gorm.DB) error {
	var userIDs []uint
	if err := db.WithContext(ctx).Table("users").Pluck("id", &userIDs).Error; err != nil {
		return fmt.Errorf("get user ids failed: %w", err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	elements := make([]string, len(userIDs))
	for i, id := range userIDs {
		elements[i] = strconv.FormatUint(uint64(id), 10)
	}
	return m.userFilter.BatchAdd(ctx, elements)
}

// GetCache 获取基础缓存接口，未启用Redis时返回nil
func (m *Manager) GetCache() Cache {
	return m.cache
}

// GetUserFilter 获取用户布隆过滤器
func (m *Manager) GetUserFilter() BloomFilter {
	return m.userFilter
}

// SaveBloomFilters 保存布隆过滤器到Redis
func (m *Manager) SaveBloomFilters(ctx context.Context) error {
	return m.userFilter.SaveToRedis(ctx)
}

// Close 保存布隆过滤器并关闭缓存连接
func (m *Manager) Close(ctx context.Context) error {
	if err := m.SaveBloomFilters(ctx); err != nil {
		return fmt.Errorf("save bloom filters failed: %w", err)
	}
	if m.cache == nil {
		return nil
	}
	return m.cache.Close()
}
