package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Manager WebSocket连接管理器
type Manager struct {
	clients    map[uint]*Client
	store      MessageStore
	register   chan *Client
	unregister chan *Client
	logger     *zap.SugaredLogger
	ctx        context.Context
	cancel     context.CancelFunc
	mutex      sync.RWMutex
}

// NewManager 创建管理器
func NewManager(store MessageStore, logger *zap.SugaredLogger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clients:    make(map[uint]*Client),
		store:      store,
		register:   make(chan *Client, 32),
		unregister: make(chan *Client, 32),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 启动管理器主循环
func (m *Manager) Start() {
	go m.run()
}

// Shutdown 关闭管理器
func (m *Manager) Shutdown() {
	m.logger.Info("正在关闭WebSocket管理器...")
	m.cancel()

	m.mutex.Lock()
	for _, client := range m.clients {
		client.Close()
	}
	m.clients = make(map[uint]*Client)
	m.mutex.Unlock()

	m.logger.Info("WebSocket管理器已关闭")
}

func (m *Manager) run() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case client := <-m.register:
			m.handleRegister(client)
		case client := <-m.unregister:
			m.handleUnregister(client)
		case <-ticker.C:
			m.cleanInactiveConnections()
		}
	}
}

func (m *Manager) handleRegister(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// 同一用户只保留最新连接
	if old, exists := m.clients[client.UserID]; exists {
		old.Close()
	}

	m.clients[client.UserID] = client
	m.logger.Infof("用户 %d 已连接，当前在线用户数: %d", client.UserID, len(m.clients))

	go m.sendOfflineMessages(client)
}

func (m *Manager) handleUnregister(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if c, exists := m.clients[client.UserID]; exists && c == client {
		delete(m.clients, client.UserID)
		m.logger.Infof("用户 %d 已断开连接，当前在线用户数: %d", client.UserID, len(m.clients))
	}
	client.Close()
}

func (m *Manager) cleanInactiveConnections() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	timeout := 5 * time.Minute
	for userID, client := range m.clients {
		if !client.IsActive(timeout) {
			client.Close()
			delete(m.clients, userID)
			m.logger.Infof("清理不活跃连接：用户 %d", userID)
		}
	}
}

// SendToUser 推送通知给指定用户，不在线时写入离线存储
func (m *Manager) SendToUser(ctx context.Context, userID uint, payload interface{}) error {
	message := &NotificationMessage{
		Type:      "notification",
		Data:      payload,
		Timestamp: time.Now().Unix(),
		MessageID: generateConnID(userID),
	}

	data, err := message.ToJSON()
	if err != nil {
		return err
	}

	m.mutex.RLock()
	client, online := m.clients[userID]
	m.mutex.RUnlock()

	if online && client.trySend(data) {
		return nil
	}
	return m.store.StoreOfflineMessage(ctx, userID, data)
}

func (m *Manager) sendOfflineMessages(client *Client) {
	messages, err := m.store.PopOfflineMessages(m.ctx, client.UserID)
	if err != nil {
		m.logger.Errorf("获取离线消息失败: %v", err)
		return
	}

	for i, data := range messages {
		if client.trySend(data) {
			continue
		}
		// 未送达的消息放回离线存储，等待下次连接
		for _, rest := range messages[i:] {
			if err := m.store.StoreOfflineMessage(m.ctx, client.UserID, rest); err != nil {
				m.logger.Warnf("回写离线消息失败: %v", err)
				return
			}
		}
		return
	}
}

// HandleWebSocket 升级连接并注册客户端
func (m *Manager) HandleWebSocket(c *gin.Context, userID uint) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Errorf("WebSocket升级失败: %v", err)
		return
	}

	client := NewClient(userID, conn, m)
	m.register <- client

	go client.readPump()
	go client.writePump()
}

// IsUserOnline 检查用户是否在线
func (m *Manager) IsUserOnline(userID uint) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	client, exists := m.clients[userID]
	return exists && !client.IsClosed()
}

// OnlineCount 在线连接数
func (m *Manager) OnlineCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}
