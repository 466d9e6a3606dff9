package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// NotificationApi 通知API控制器
type NotificationApi struct {
	logger              *zap.SugaredLogger
	notificationService *service.NotificationService
}

// NewNotificationApi 创建通知API实例
func NewNotificationApi(services *service.Services) *NotificationApi {
	return &NotificationApi{
		logger:              logger.GetSugaredLogger(),
		notificationService: services.Notification,
	}
}

// List 获取通知列表
func (api *NotificationApi) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	list, meta, err := api.notificationService.List(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, api.logger, err, "获取通知失败")
		return
	}
	response.SuccessWithMeta(c, "获取成功", list, meta)
}

// UnreadCount 获取未读通知数量
func (api *NotificationApi) UnreadCount(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := api.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		handleError(c, api.logger, err, "获取未读数量失败")
		return
	}
	response.Success(c, "获取成功", dto.NotificationUnreadCountResponse{Count: count})
}

// MarkAsRead 标记通知为已读
func (api *NotificationApi) MarkAsRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	notificationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.notificationService.MarkAsRead(c.Request.Context(), userID, notificationID); err != nil {
		handleError(c, api.logger, err, "标记已读失败")
		return
	}
	response.Success(c, "标记已读成功", nil)
}

// MarkAllAsRead 标记所有通知为已读
func (api *NotificationApi) MarkAllAsRead(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := api.notificationService.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		handleError(c, api.logger, err, "标记所有已读失败")
		return
	}
	response.Success(c, "标记所有已读成功", dto.MarkReadResponse{Updated: updated})
}

// Delete 删除通知
func (api *NotificationApi) Delete(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	notificationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.notificationService.Delete(c.Request.Context(), userID, notificationID); err != nil {
		handleError(c, api.logger, err, "删除通知失败")
		return
	}
	response.Success(c, "删除成功", nil)
}

// Updates 轮询since之后的新内容
func (api *NotificationApi) Updates(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	updates, err := api.notificationService.Updates(c.Request.Context(), userID, req.Since)
	if err != nil {
		handleError(c, api.logger, err, "获取更新失败")
		return
	}
	response.Success(c, "获取成功", updates)
}
