package auth

import (
	"sync"
	"time"
)

// TokenBlacklist 内存令牌黑名单
type TokenBlacklist struct {
	tokens map[string]time.Time // 令牌->过期时间
	mutex  sync.RWMutex
}

var (
	blacklist     *TokenBlacklist
	blacklistOnce sync.Once
)

// GetTokenBlacklist 获取内存令牌黑名单单例
func GetTokenBlacklist() *TokenBlacklist {
	blacklistOnce.Do(func() {
		blacklist = NewTokenBlacklist()
		go blacklist.cleanupTask()
	})
	return blacklist
}

// NewTokenBlacklist 创建内存黑名单
func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{
		tokens: make(map[string]time.Time),
	}
}

// AddToBlacklist 将令牌添加到黑名单
func (b *TokenBlacklist) AddToBlacklist(token string, expireAt time.Time) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.tokens[token] = expireAt
	return nil
}

// IsBlacklisted 检查令牌是否在黑名单中
func (b *TokenBlacklist) IsBlacklisted(token string) bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	expireAt, exists := b.tokens[token]
	return exists && time.Now().Before(expireAt)
}

// Len 当前黑名单条目数
func (b *TokenBlacklist) Len() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.tokens)
}

func (b *TokenBlacklist) cleanupTask() {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		b.cleanup()
	}
}

// cleanup 清理过期的令牌
func (b *TokenBlacklist) cleanup() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	now := time.Now()
	for token, expireAt := range b.tokens {
		if now.After(expireAt) {
			delete(b.tokens, token)
		}
	}
}
