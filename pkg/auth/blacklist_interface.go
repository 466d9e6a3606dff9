package auth

import (
	"sync"
	"time"
)

// BlacklistInterface 黑名单接口
type BlacklistInterface interface {
	// AddToBlacklist 将令牌添加到黑名单
	AddToBlacklist(token string, expireAt time.Time) error

	// IsBlacklisted 检查令牌是否在黑名单中
	IsBlacklisted(token string) bool
}

var (
	activeBlacklist BlacklistInterface
	activeMu        sync.RWMutex
)

// SetBlacklist 设置当前使用的黑名单实现
func SetBlacklist(b BlacklistInterface) {
	activeMu.Lock()
	defer activeMu.Unlock()
	activeBlacklist = b
}

// GetBlacklist 获取当前黑名单，未设置时使用内存黑名单
func GetBlacklist() BlacklistInterface {
	activeMu.RLock()
	b := activeBlacklist
	activeMu.RUnlock()
	if b != nil {
		return b
	}
	return GetTokenBlacklist()
}
