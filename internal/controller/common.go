package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/nsxzhou1114/social-api/internal/middleware"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

var errInvalidID = errors.New("无效的ID")

// getUserIDFromContext 从上下文中获取用户ID
func getUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return 0, errors.New("用户未登录")
	}
	return userID, nil
}

// currentUser 获取当前用户ID和角色，未登录时直接返回401
func currentUser(c *gin.Context) (uint, string, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "未授权", err)
		return 0, "", false
	}
	role, _ := middleware.GetUserRole(c)
	return userID, role, true
}

// parseID 解析路径中的数字ID，失败时返回400
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, errInvalidID.Error(), err)
		return 0, false
	}
	return uint(id), true
}

// errorStatus 业务错误对应的HTTP状态码
func errorStatus(err error) int {
	var validationErr *jwt.ValidationError
	switch {
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrInvalidUserStatus),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrSelfFriend),
		errors.Is(err, service.ErrFriendRequestExists),
		errors.Is(err, service.ErrSelfMessage),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidSince):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotFriends),
		errors.Is(err, service.ErrUserDisabled),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenType),
		errors.As(err, &validationErr):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrFriendRequestMissing),
		errors.Is(err, service.ErrNotificationNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleError 将业务错误转换为响应，未知错误只返回通用消息
func handleError(c *gin.Context, logger *zap.SugaredLogger, err error, message string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s: %v", message, err)
		response.InternalServerError(c, message, err)
		return
	}
	if _, ok := err.(*jwt.ValidationError); ok {
		response.Error(c, status, "无效的令牌", err)
		return
	}
	response.Error(c, status, err.Error(), err)
}
