package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// MessageApi 私信API控制器
type MessageApi struct {
	logger         *zap.SugaredLogger
	messageService *service.MessageService
}

// NewMessageApi 创建私信API实例
func NewMessageApi(services *service.Services) *MessageApi {
	return &MessageApi{
		logger:         logger.GetSugaredLogger(),
		messageService: services.Message,
	}
}

// Conversations 获取会话列表
func (api *MessageApi) Conversations(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	conversations, err := api.messageService.Conversations(c.Request.Context(), userID)
	if err != nil {
		handleError(c, api.logger, err, "获取会话列表失败")
		return
	}
	response.Success(c, "获取成功", conversations)
}

// Conversation 获取与指定用户的聊天记录
func (api *MessageApi) Conversation(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	messages, err := api.messageService.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		handleError(c, api.logger, err, "获取聊天记录失败")
		return
	}
	response.Success(c, "获取成功", messages)
}

// Send 发送私信
func (api *MessageApi) Send(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	message, err := api.messageService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, api.logger, err, "发送私信失败")
		return
	}
	response.Success(c, "发送成功", message)
}

// MarkAsRead 标记与指定用户的私信为已读
func (api *MessageApi) MarkAsRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	updated, err := api.messageService.MarkAsRead(c.Request.Context(), userID, otherID)
	if err != nil {
		handleError(c, api.logger, err, "标记已读失败")
		return
	}
	response.Success(c, "标记已读成功", dto.MarkReadResponse{Updated: updated})
}
