package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/nsxzhou1114/social-api/pkg/response"
)

// 上下文键
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextTokenID  = "tokenID"
	ContextToken    = "token"
)

var (
	errMissingToken   = errors.New("请先登录")
	errMalformedToken = errors.New("Authorization格式错误")
)

// bearerToken 从Authorization头中取出Bearer令牌
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errMalformedToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// tokenAuth 校验指定类型的令牌，缺失或格式错误返回401，无效、已撤销或类型错误返回403
func tokenAuth(tokenType auth.TokenType, extract func(*gin.Context) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extract(c)
		if err != nil {
			response.Unauthorized(c, err.Error(), nil)
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			logger.Warnf("无效的令牌: %v", err)
			response.Forbidden(c, "无效的令牌", err)
			c.Abort()
			return
		}
		if claims.Type != tokenType {
			logger.Warnf("使用了错误类型的令牌: %v", claims.Type)
			response.Forbidden(c, "使用了错误类型的令牌", auth.ErrTokenType)
			c.Abort()
			return
		}

		// 令牌将在缓冲时间内过期时提示客户端刷新
		if tokenType == auth.AccessToken {
			bufferTime := time.Duration(config.GlobalConfig.JWT.BufferSeconds) * time.Second
			if time.Until(time.Unix(claims.ExpiresAt, 0)) < bufferTime {
				c.Header("X-Token-Expire-Soon", "true")
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextTokenID, claims.TokenID())
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// JWTAuth JWT认证中间件
func JWTAuth() gin.HandlerFunc {
	return tokenAuth(auth.AccessToken, bearerToken)
}

// RefreshAuth 用于刷新访问令牌的中间件
func RefreshAuth() gin.HandlerFunc {
	return tokenAuth(auth.RefreshToken, bearerToken)
}

// QueryTokenAuth 从token查询参数读取访问令牌，浏览器建立WebSocket连接时无法设置请求头
func QueryTokenAuth() gin.HandlerFunc {
	return tokenAuth(auth.AccessToken, func(c *gin.Context) (string, error) {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return bearerToken(c)
	})
}

// AdminAuth 管理员认证中间件，需在JWTAuth之后使用
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetUserRole(c)
		if !exists {
			response.Unauthorized(c, "未授权", nil)
			c.Abort()
			return
		}
		if role != model.RoleAdmin {
			response.Forbidden(c, "需要管理员权限", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID 从上下文中获取用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserRole 从上下文中获取用户角色
func GetUserRole(c *gin.Context) (string, bool) {
	userRole, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := userRole.(string)
	return role, ok
}

// GetToken 从上下文中获取原始令牌
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(ContextToken)
	if !exists {
		return "", false
	}
	s, ok := token.(string)
	return s, ok
}
