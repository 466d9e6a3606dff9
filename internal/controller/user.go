package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// UserApi 用户API控制器
type UserApi struct {
	logger        *zap.SugaredLogger
	userService   *service.UserService
	friendService *service.FriendService
	postService   *service.PostService
}

// NewUserApi 创建用户API实例
func NewUserApi(services *service.Services) *UserApi {
	return &UserApi{
		logger:        logger.GetSugaredLogger(),
		userService:   services.User,
		friendService: services.Friend,
		postService:   services.Post,
	}
}

// GetUserInfo 获取当前用户资料
func (api *UserApi) GetUserInfo(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := api.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleError(c, api.logger, err, "获取用户信息失败")
		return
	}
	response.Success(c, "获取成功", profile)
}

// GetUserDetail 获取指定用户资料
func (api *UserApi) GetUserDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := api.userService.GetProfile(c.Request.Context(), id)
	if err != nil {
		handleError(c, api.logger, err, "获取用户详情失败")
		return
	}
	response.Success(c, "获取成功", profile)
}

// UpdateUserInfo 更新当前用户资料
func (api *UserApi) UpdateUserInfo(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UserInfoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	profile, err := api.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, api.logger, err, "更新用户信息失败")
		return
	}
	response.Success(c, "更新成功", profile)
}

// ChangePassword 修改密码
func (api *UserApi) ChangePassword(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	if err := api.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		handleError(c, api.logger, err, "修改密码失败")
		return
	}
	response.Success(c, "密码修改成功", nil)
}

// Search 搜索用户
func (api *UserApi) Search(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := api.userService.Search(c.Request.Context(), userID, c.Param("query"))
	if err != nil {
		handleError(c, api.logger, err, "搜索用户失败")
		return
	}
	response.Success(c, "获取成功", users)
}

// GetUserFriends 获取指定用户的好友
func (api *UserApi) GetUserFriends(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	friends, err := api.friendService.ListFriends(c.Request.Context(), id)
	if err != nil {
		handleError(c, api.logger, err, "获取好友列表失败")
		return
	}
	response.Success(c, "获取成功", friends)
}

// GetUserPosts 获取指定用户的动态
func (api *UserApi) GetUserPosts(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	posts, err := api.postService.UserPosts(c.Request.Context(), userID, id)
	if err != nil {
		handleError(c, api.logger, err, "获取用户动态失败")
		return
	}
	response.Success(c, "获取成功", posts)
}
