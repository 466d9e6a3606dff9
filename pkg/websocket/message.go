package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// 离线消息保留时间
	offlineTTL = 7 * 24 * time.Hour
	// 每个用户最多保留的离线消息数
	offlineLimit = 100
)

// NotificationMessage 推送给客户端的消息
type NotificationMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// ToJSON 将消息转换为JSON
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageStore 离线消息存储接口
type MessageStore interface {
	StoreOfflineMessage(ctx context.Context, userID uint, msg []byte) error
	// PopOfflineMessages 取出并删除全部离线消息，按时间先后返回
	PopOfflineMessages(ctx context.Context, userID uint) ([][]byte, error)
}

// RedisMessageStore Redis离线消息存储
type RedisMessageStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisMessageStore 创建Redis消息存储实例
func NewRedisMessageStore(client *redis.Client) *RedisMessageStore {
	return &RedisMessageStore{
		redis:  client,
		prefix: "offline_notifications:",
	}
}

// StoreOfflineMessage 存储离线消息
func (s *RedisMessageStore) StoreOfflineMessage(ctx context.Context, userID uint, msg []byte) error {
	key := s.getKey(userID)
	pipe := s.redis.Pipeline()
	pipe.LPush(ctx, key, msg)
	pipe.Expire(ctx, key, offlineTTL)
	pipe.LTrim(ctx, key, 0, offlineLimit-1)

	_, err := pipe.Exec(ctx)
	return err
}

// PopOfflineMessages 在一个事务中读取并删除离线消息
func (s *RedisMessageStore) PopOfflineMessages(ctx context.Context, userID uint) ([][]byte, error) {
	key := s.getKey(userID)
	var lrange *redis.StringSliceCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := lrange.Val()
	messages := make([][]byte, 0, len(data))
	for i := len(data) - 1; i >= 0; i-- {
		messages = append(messages, []byte(data[i]))
	}
	return messages, nil
}

func (s *RedisMessageStore) getKey(userID uint) string {
	return fmt.Sprintf("%s%d", s.prefix, userID)
}

// MemoryMessageStore 内存离线消息存储，未启用Redis时使用
type MemoryMessageStore struct {
	messages map[uint][][]byte
	mutex    sync.Mutex
}

// NewMemoryMessageStore 创建内存消息存储
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{
		messages: make(map[uint][][]byte),
	}
}

// StoreOfflineMessage 存储离线消息
func (s *MemoryMessageStore) StoreOfflineMessage(ctx context.Context, userID uint, msg []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	list := append(s.messages[userID], msg)
	if len(list) > offlineLimit {
		list = list[len(list)-offlineLimit:]
	}
	s.messages[userID] = list
	return nil
}

// PopOfflineMessages 取出并删除离线消息
func (s *MemoryMessageStore) PopOfflineMessages(ctx context.Context, userID uint) ([][]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	messages := s.messages[userID]
	delete(s.messages, userID)
	return messages, nil
}
