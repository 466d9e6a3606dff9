package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/middleware"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// AuthApi 认证API控制器
type AuthApi struct {
	logger      *zap.SugaredLogger
	userService *service.UserService
}

// NewAuthApi 创建认证API实例
func NewAuthApi(services *service.Services) *AuthApi {
	return &AuthApi{
		logger:      logger.GetSugaredLogger(),
		userService: services.User,
	}
}

func authResponse(user *model.User, tokenPair *auth.TokenPair) dto.AuthResponse {
	return dto.AuthResponse{
		Token:        tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
		User:         *service.GenerateUserResponse(user),
	}
}

// Register 用户注册
func (api *AuthApi) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	user, tokenPair, err := api.userService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, api.logger, err, "注册失败")
		return
	}

	response.Success(c, "注册成功", authResponse(user, tokenPair))
}

// Login 用户登录
func (api *AuthApi) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	user, tokenPair, err := api.userService.Login(c.Request.Context(), &req)
	if err != nil {
		api.logger.Warnf("用户登录失败: %v", err)
		handleError(c, api.logger, err, "登录失败")
		return
	}

	response.Success(c, "登录成功", authResponse(user, tokenPair))
}

// RefreshToken 刷新访问令牌，旧的刷新令牌作废
func (api *AuthApi) RefreshToken(c *gin.Context) {
	token, _ := middleware.GetToken(c)
	tokenPair, err := api.userService.RefreshToken(c.Request.Context(), token)
	if err != nil {
		api.logger.Warnf("刷新令牌失败: %v", err)
		handleError(c, api.logger, err, "刷新令牌失败")
		return
	}

	response.Success(c, "刷新令牌成功", tokenPair)
}

// Logout 用户登出
func (api *AuthApi) Logout(c *gin.Context) {
	token, _ := middleware.GetToken(c)
	if err := api.userService.Logout(token); err != nil {
		handleError(c, api.logger, err, "登出失败")
		return
	}

	response.Success(c, "登出成功", nil)
}
