package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// AdviceApi 建议API控制器
type AdviceApi struct {
	logger        *zap.SugaredLogger
	adviceService *service.AdviceService
}

// NewAdviceApi 创建建议API实例
func NewAdviceApi(services *service.Services) *AdviceApi {
	return &AdviceApi{
		logger:        logger.GetSugaredLogger(),
		adviceService: services.Advice,
	}
}

// List 获取建议列表
func (api *AdviceApi) List(c *gin.Context) {
	var req dto.AdviceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	advices, err := api.adviceService.List(c.Request.Context(), req.Category)
	if err != nil {
		handleError(c, api.logger, err, "获取建议失败")
		return
	}
	response.Success(c, "获取成功", advices)
}

// Create 发布建议
func (api *AdviceApi) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.AdviceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	advice, err := api.adviceService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, api.logger, err, "发布建议失败")
		return
	}
	response.Success(c, "发布成功", advice)
}

// Categories 获取建议分类
func (api *AdviceApi) Categories(c *gin.Context) {
	response.Success(c, "获取成功", api.adviceService.Categories())
}
