package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/nsxzhou1114/social-api/internal/config"
)

// TokenType 定义token类型
type TokenType string

const (
	// AccessToken 访问令牌，用于访问资源
	AccessToken TokenType = "access"
	// RefreshToken 刷新令牌，用于获取新的访问令牌
	RefreshToken TokenType = "refresh"
)

var (
	// ErrTokenRevoked 令牌已被撤销
	ErrTokenRevoked = errors.New("令牌已被撤销")
	// ErrTokenInvalid 无效的令牌
	ErrTokenInvalid = errors.New("无效的令牌")
	// ErrTokenType 令牌类型错误
	ErrTokenType = errors.New("令牌类型错误")
)

// Claims 自定义JWT声明结构体
type Claims struct {
	UserID   uint      `json:"user_id"`
	Role     string    `json:"role"`
	Type     TokenType `json:"type"`
	Previous string    `json:"previous,omitempty"` // 上一个刷新令牌的ID，用于令牌轮换
	jwt.StandardClaims
}

// TokenID 令牌唯一ID
func (c *Claims) TokenID() string {
	return c.Id
}

// TokenPair 包含访问令牌和刷新令牌
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // 访问令牌过期时间（秒）
	TokenID      string `json:"token_id"`
}

// GenerateTokenPair 生成访问令牌和刷新令牌对
func GenerateTokenPair(userID uint, role string) (*TokenPair, error) {
	return generatePair(userID, role, "")
}

func generatePair(userID uint, role, previous string) (*TokenPair, error) {
	cfg := config.GlobalConfig.JWT
	accessExpire := time.Duration(cfg.AccessExpireSeconds) * time.Second
	refreshExpire := time.Duration(cfg.RefreshExpireSeconds) * time.Second

	tokenID := uuid.NewString()

	accessToken, err := generateToken(userID, role, AccessToken, accessExpire, tokenID, "")
	if err != nil {
		return nil, err
	}
	refreshToken, err := generateToken(userID, role, RefreshToken, refreshExpire, tokenID, previous)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExpire.Seconds()),
		TokenID:      tokenID,
	}, nil
}

// generateToken 创建指定类型的JWT令牌
func generateToken(userID uint, role string, tokenType TokenType, expiration time.Duration, tokenID, previous string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		Type:     tokenType,
		Previous: previous,
		StandardClaims: jwt.StandardClaims{
			Id:        tokenID,
			ExpiresAt: now.Add(expiration).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    config.GlobalConfig.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func secret() []byte {
	return []byte(config.GlobalConfig.JWT.SecretKey)
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrTokenInvalid
	}
	return secret(), nil
}

// ParseToken 解析JWT令牌
func ParseToken(tokenString string) (*Claims, error) {
	if GetBlacklist().IsBlacklisted(tokenString) {
		return nil, ErrTokenRevoked
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}

// RefreshAccessToken 使用刷新令牌获取新的令牌对，旧刷新令牌加入黑名单
func RefreshAccessToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := ParseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != RefreshToken {
		return nil, ErrTokenType
	}

	pair, err := generatePair(claims.UserID, claims.Role, claims.TokenID())
	if err != nil {
		return nil, err
	}

	if err := GetBlacklist().AddToBlacklist(refreshTokenString, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return nil, err
	}
	return pair, nil
}

// RevokeToken 撤销令牌（登出时使用）
func RevokeToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc)
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return ErrTokenInvalid
	}
	return GetBlacklist().AddToBlacklist(tokenString, time.Unix(claims.ExpiresAt, 0))
}
