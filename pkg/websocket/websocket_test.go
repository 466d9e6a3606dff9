package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryMessageStore(t *testing.T) {
	store := NewMemoryMessageStore()
	ctx := context.Background()

	for i := 0; i < offlineLimit+5; i++ {
		require.NoError(t, store.StoreOfflineMessage(ctx, 1, []byte{byte(i)}))
	}
	messages, err := store.PopOfflineMessages(ctx, 1)
	require.NoError(t, err)
	require.Len(t, messages, offlineLimit)
	assert.Equal(t, []byte{5}, messages[0])

	messages, err = store.PopOfflineMessages(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func pendingCount(s *MemoryMessageStore, userID uint) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.messages[userID])
}

func TestRedisMessageStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisMessageStore(client)
	ctx := context.Background()

	require.NoError(t, store.StoreOfflineMessage(ctx, 2, []byte("first")))
	require.NoError(t, store.StoreOfflineMessage(ctx, 2, []byte("second")))

	assert.Equal(t, offlineTTL, mr.TTL("offline_notifications:2"))

	messages, err := store.PopOfflineMessages(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("first"), []byte("second")}, messages)
	assert.False(t, mr.Exists("offline_notifications:2"))

	messages, err = store.PopOfflineMessages(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func dial(t *testing.T, manager *Manager, userID uint) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		manager.HandleWebSocket(c, userID)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readNotification(t *testing.T, conn *websocket.Conn) NotificationMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg NotificationMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestManagerDeliversOfflineAndLiveMessages(t *testing.T) {
	store := NewMemoryMessageStore()
	manager := NewManager(store, zap.NewNop().Sugar())
	manager.Start()
	t.Cleanup(manager.Shutdown)
	ctx := context.Background()

	assert.False(t, manager.IsUserOnline(9))
	require.NoError(t, manager.SendToUser(ctx, 9, map[string]string{"content": "while offline"}))
	require.Equal(t, 1, pendingCount(store, 9))

	conn := dial(t, manager, 9)
	require.Eventually(t, func() bool { return manager.IsUserOnline(9) }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, manager.OnlineCount())

	msg := readNotification(t, conn)
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, map[string]interface{}{"content": "while offline"}, msg.Data)

	assert.Zero(t, pendingCount(store, 9))

	require.NoError(t, manager.SendToUser(ctx, 9, map[string]string{"content": "live"}))
	msg = readNotification(t, conn)
	assert.Equal(t, map[string]interface{}{"content": "live"}, msg.Data)

	// 客户端ping得到pong
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	pong := readNotification(t, conn)
	assert.Equal(t, "pong", pong.Type)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return !manager.IsUserOnline(9) }, 2*time.Second, 10*time.Millisecond)
}

func TestUndeliveredOfflineMessagesAreKept(t *testing.T) {
	store := NewMemoryMessageStore()
	manager := NewManager(store, zap.NewNop().Sugar())
	ctx := context.Background()

	for _, msg := range []string{"a", "b", "c"} {
		require.NoError(t, store.StoreOfflineMessage(ctx, 5, []byte(msg)))
	}

	// 缓冲区只能容纳一条消息
	client := &Client{UserID: 5, Send: make(chan []byte, 1)}
	manager.sendOfflineMessages(client)

	assert.Equal(t, []byte("a"), <-client.Send)
	messages, err := store.PopOfflineMessages(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("b"), []byte("c")}, messages)
}
