package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// AdminApi 管理员接口
type AdminApi struct {
	logger       *zap.SugaredLogger
	userService  *service.UserService
	statsService *service.StatsService
}

// NewAdminApi 创建管理员API实例
func NewAdminApi(services *service.Services) *AdminApi {
	return &AdminApi{
		logger:       logger.GetSugaredLogger(),
		userService:  services.User,
		statsService: services.Stats,
	}
}

// ListUsers 分页获取用户列表
func (api *AdminApi) ListUsers(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	users, total, err := api.userService.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, api.logger, err, "获取用户列表失败")
		return
	}
	response.SuccessPage(c, "获取成功", users, req.Page, req.Limit, total)
}

// UpdateUserStatus 启用或禁用用户
func (api *AdminApi) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	if err := api.userService.UpdateStatus(c.Request.Context(), userID, req.Status); err != nil {
		handleError(c, api.logger, err, "更新用户状态失败")
		return
	}
	response.Success(c, "更新成功", nil)
}

// Stats 获取站点数据统计
func (api *AdminApi) Stats(c *gin.Context) {
	stats, err := api.statsService.Collect(c.Request.Context())
	if err != nil {
		handleError(c, api.logger, err, "获取统计数据失败")
		return
	}
	response.Success(c, "获取成功", stats)
}
