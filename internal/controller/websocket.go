package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"github.com/nsxzhou1114/social-api/pkg/websocket"
	"go.uber.org/zap"
)

// WebSocketApi WebSocket API控制器
type WebSocketApi struct {
	logger           *zap.SugaredLogger
	websocketManager *websocket.Manager
}

// NewWebSocketApi 创建WebSocket API实例
func NewWebSocketApi(manager *websocket.Manager) *WebSocketApi {
	return &WebSocketApi{
		logger:           logger.GetSugaredLogger(),
		websocketManager: manager,
	}
}

// HandleWebSocket 处理WebSocket连接，token已由中间件校验
func (api *WebSocketApi) HandleWebSocket(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	api.logger.Infof("用户 %d 尝试建立WebSocket连接", userID)
	api.websocketManager.HandleWebSocket(c, userID)
}

// OnlineStatus 查询用户是否在线
func (api *WebSocketApi) OnlineStatus(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	response.Success(c, "获取成功", gin.H{
		"user_id": userID,
		"online":  api.websocketManager.IsUserOnline(userID),
	})
}
