package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// Client 表示一个WebSocket客户端连接
type Client struct {
	ID         string
	UserID     uint
	Conn       *websocket.Conn
	Send       chan []byte
	manager    *Manager
	lastActive time.Time
	closed     bool
	closeMutex sync.RWMutex
}

// NewClient 创建新的客户端实例
func NewClient(userID uint, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:         generateConnID(userID),
		UserID:     userID,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		manager:    manager,
		lastActive: time.Now(),
	}
}

// readPump 读取客户端消息，连接断开时注销
func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.updateActivity()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		c.updateActivity()
		if len(message) > 0 {
			c.handleMessage(message)
		}
	}
}

// writePump 向客户端发送消息并定时ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.writeMessage(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 客户端只会发送ping
func (c *Client) handleMessage(message []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	if msg.Type == "ping" {
		data, err := json.Marshal(struct {
			Type      string `json:"type"`
			Timestamp int64  `json:"timestamp"`
		}{
			Type:      "pong",
			Timestamp: time.Now().Unix(),
		})
		if err == nil {
			c.trySend(data)
		}
	}
}

// trySend 非阻塞发送，连接已关闭或缓冲区满时返回false
func (c *Client) trySend(data []byte) bool {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) writeMessage(message []byte) error {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, message)
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.closeMutex.Lock()
	defer c.closeMutex.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Send)
		_ = c.Conn.Close()
	}
}

// IsClosed 连接是否已关闭
func (c *Client) IsClosed() bool {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()
	return c.closed
}

func (c *Client) updateActivity() {
	c.closeMutex.Lock()
	c.lastActive = time.Now()
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.closeMutex.Unlock()
}

// IsActive 检查客户端是否活跃
func (c *Client) IsActive(timeout time.Duration) bool {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()
	return !c.closed && time.Since(c.lastActive) < timeout
}

func generateConnID(userID uint) string {
	return fmt.Sprintf("%d_%d", userID, time.Now().UnixNano())
}
