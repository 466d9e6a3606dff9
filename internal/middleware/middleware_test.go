package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfig(t *testing.T) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	previous := config.GlobalConfig
	cfg := config.Default()
	cfg.JWT.SecretKey = "middleware-secret"
	config.GlobalConfig = cfg
	t.Cleanup(func() { config.GlobalConfig = previous })
	return cfg
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	setupConfig(t)

	r := gin.New()
	r.GET("/", JWTAuth(), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})

	pair, err := auth.GenerateTokenPair(11, "user")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token " + pair.AccessToken, status: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", status: http.StatusForbidden},
		{name: "refresh token", header: "Bearer " + pair.RefreshToken, status: http.StatusForbidden},
		{name: "valid", header: "Bearer " + pair.AccessToken, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.header)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := serve(r, "Bearer "+pair.AccessToken)
	assert.JSONEq(t, `{"user_id":11,"role":"user"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Token-Expire-Soon"))
}

func TestJWTAuthExpireSoonHeader(t *testing.T) {
	cfg := setupConfig(t)
	cfg.JWT.AccessExpireSeconds = 60

	r := gin.New()
	r.GET("/", JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	pair, err := auth.GenerateTokenPair(1, "user")
	require.NoError(t, err)
	w := serve(r, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Token-Expire-Soon"))
}

func TestAdminAuth(t *testing.T) {
	setupConfig(t)

	r := gin.New()
	r.GET("/", JWTAuth(), AdminAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	user, err := auth.GenerateTokenPair(1, "user")
	require.NoError(t, err)
	admin, err := auth.GenerateTokenPair(2, "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(r, "Bearer "+user.AccessToken).Code)
	assert.Equal(t, http.StatusOK, serve(r, "Bearer "+admin.AccessToken).Code)

	// 没有经过JWTAuth时拒绝
	bare := gin.New()
	bare.GET("/", AdminAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, serve(bare, "").Code)
}

func TestQueryTokenAuth(t *testing.T) {
	setupConfig(t)

	r := gin.New()
	r.GET("/ws", QueryTokenAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	pair, err := auth.GenerateTokenPair(3, "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+pair.AccessToken, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(&config.RateLimitConfig{RPS: 1, Burst: 1})
	assert.True(t, rl.getLimiter("1.1.1.1").Allow())
	assert.False(t, rl.getLimiter("1.1.1.1").Allow())
	rl.getLimiter("2.2.2.2")

	rl.mu.Lock()
	rl.limiters["2.2.2.2"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.Cleanup(30 * time.Minute)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "1.1.1.1")
}

func TestRequestID(t *testing.T) {
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(node))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	w := serve(r, "")
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	parsed, err := snowflake.ParseString(id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), parsed.Node())
}
