package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfig(t *testing.T) {
	t.Helper()
	previous := config.GlobalConfig
	cfg := config.Default()
	cfg.JWT.SecretKey = "unit-test-secret"
	config.GlobalConfig = cfg
	t.Cleanup(func() { config.GlobalConfig = previous })
}

func TestGenerateAndParseTokenPair(t *testing.T) {
	setupConfig(t)

	pair, err := GenerateTokenPair(7, "admin")
	require.NoError(t, err)
	assert.Equal(t, config.GlobalConfig.JWT.AccessExpireSeconds, pair.ExpiresIn)

	access, err := ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), access.UserID)
	assert.Equal(t, "admin", access.Role)
	assert.Equal(t, AccessToken, access.Type)
	assert.Equal(t, pair.TokenID, access.TokenID())

	refresh, err := ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, refresh.Type)
	assert.Greater(t, refresh.ExpiresAt, access.ExpiresAt)

	config.GlobalConfig.JWT.SecretKey = "another-secret"
	_, err = ParseToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	setupConfig(t)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Type: AccessToken})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestRefreshAccessTokenRotates(t *testing.T) {
	setupConfig(t)

	pair, err := GenerateTokenPair(3, "user")
	require.NoError(t, err)

	_, err = RefreshAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenType)

	next, err := RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.TokenID, next.TokenID)

	claims, err := ParseToken(next.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.TokenID, claims.Previous)

	_, err = RefreshAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeToken(t *testing.T) {
	setupConfig(t)

	pair, err := GenerateTokenPair(5, "user")
	require.NoError(t, err)
	require.NoError(t, RevokeToken(pair.AccessToken))

	_, err = ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.Error(t, RevokeToken("garbage"))
}

func TestMemoryBlacklistExpiry(t *testing.T) {
	b := NewTokenBlacklist()
	require.NoError(t, b.AddToBlacklist("live", time.Now().Add(time.Hour)))
	require.NoError(t, b.AddToBlacklist("expired", time.Now().Add(-time.Second)))

	assert.True(t, b.IsBlacklisted("live"))
	assert.False(t, b.IsBlacklisted("expired"))
	assert.False(t, b.IsBlacklisted("unknown"))

	b.cleanup()
	assert.Equal(t, 1, b.Len())
}

func TestRedisBlacklist(t *testing.T) {
	setupConfig(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	b := NewRedisTokenBlacklist(client)
	require.NoError(t, b.AddToBlacklist("token-a", time.Now().Add(time.Hour)))
	require.NoError(t, b.AddToBlacklist("token-old", time.Now().Add(-time.Minute)))
	assert.True(t, b.IsBlacklisted("token-a"))
	assert.False(t, b.IsBlacklisted("token-old"))

	// 新实例没有本地缓存，从Redis读取
	other := NewRedisTokenBlacklist(client)
	assert.True(t, other.IsBlacklisted("token-a"))
	assert.False(t, other.IsBlacklisted("token-b"))

	redisCount, localCount, err := other.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, redisCount)
	assert.Equal(t, 1, localCount)

	// 作为全局黑名单使用
	SetBlacklist(b)
	t.Cleanup(func() { SetBlacklist(nil) })
	pair, err := GenerateTokenPair(1, "user")
	require.NoError(t, err)
	require.NoError(t, RevokeToken(pair.AccessToken))
	_, err = ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
