package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// HealthApi 健康检查API控制器
type HealthApi struct {
	logger        *zap.SugaredLogger
	healthService *service.HealthService
}

// NewHealthApi 创建健康检查API实例
func NewHealthApi(services *service.Services) *HealthApi {
	return &HealthApi{
		logger:        logger.GetSugaredLogger(),
		healthService: services.Health,
	}
}

// Check 健康检查，数据库不可用时返回503
func (api *HealthApi) Check(c *gin.Context) {
	status, err := api.healthService.Check(c.Request.Context())
	if err != nil {
		api.logger.Warnf("健康检查失败: %v", err)
		response.ServiceUnavailable(c, "服务不可用", status)
		return
	}
	response.Success(c, "ok", status)
}
