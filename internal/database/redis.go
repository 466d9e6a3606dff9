package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// Redis 全局Redis客户端实例，未启用时为nil
	Redis    *redis.Client
	redisOne sync.Once
	redisErr error
)

// InitRedis 初始化Redis连接
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接redis失败: %w", err)
	}

	logger.Info("redis连接成功", zap.String("addr", cfg.Addr()))
	return client, nil
}

// GetRedis 获取Redis客户端实例；未启用或连接失败时返回nil，调用方降级为本地实现
func GetRedis() *redis.Client {
	redisOne.Do(func() {
		cfg := config.GlobalConfig.Redis
		if !cfg.Enabled {
			return
		}
		Redis, redisErr = InitRedis(&cfg)
		if redisErr != nil {
			logger.Error("redis初始化失败，降级为本地实现", zap.Error(redisErr))
		}
	})
	return Redis
}
