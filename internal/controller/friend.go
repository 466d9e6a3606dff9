package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// FriendApi 好友API控制器
type FriendApi struct {
	logger        *zap.SugaredLogger
	friendService *service.FriendService
}

// NewFriendApi 创建好友API实例
func NewFriendApi(services *service.Services) *FriendApi {
	return &FriendApi{
		logger:        logger.GetSugaredLogger(),
		friendService: services.Friend,
	}
}

// List 获取好友列表
func (api *FriendApi) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	friends, err := api.friendService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		handleError(c, api.logger, err, "获取好友列表失败")
		return
	}
	response.Success(c, "获取成功", friends)
}

// Requests 获取收到的好友请求
func (api *FriendApi) Requests(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := api.friendService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		handleError(c, api.logger, err, "获取好友请求失败")
		return
	}
	response.Success(c, "获取成功", requests)
}

// Status 获取与指定用户的好友状态
func (api *FriendApi) Status(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	otherID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	status, err := api.friendService.Status(c.Request.Context(), userID, otherID)
	if err != nil {
		handleError(c, api.logger, err, "获取好友状态失败")
		return
	}
	response.Success(c, "获取成功", status)
}

// SendRequest 发送好友请求
func (api *FriendApi) SendRequest(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	if err := api.friendService.SendRequest(c.Request.Context(), userID, req.FriendID); err != nil {
		handleError(c, api.logger, err, "发送好友请求失败")
		return
	}
	response.Success(c, "好友请求已发送", nil)
}

// Accept 接受好友请求
func (api *FriendApi) Accept(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requesterID, ok := parseID(c, "requesterId")
	if !ok {
		return
	}

	if err := api.friendService.AcceptRequest(c.Request.Context(), userID, requesterID); err != nil {
		handleError(c, api.logger, err, "接受好友请求失败")
		return
	}
	response.Success(c, "已接受好友请求", nil)
}

// Reject 拒绝好友请求
func (api *FriendApi) Reject(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	requesterID, ok := parseID(c, "requesterId")
	if !ok {
		return
	}

	if err := api.friendService.RejectRequest(c.Request.Context(), userID, requesterID); err != nil {
		handleError(c, api.logger, err, "拒绝好友请求失败")
		return
	}
	response.Success(c, "已拒绝好友请求", nil)
}

// Remove 删除好友
func (api *FriendApi) Remove(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	friendID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.friendService.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		handleError(c, api.logger, err, "删除好友失败")
		return
	}
	response.Success(c, "已删除好友", nil)
}
