package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/database"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/validator"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPassword 测试用户的密码
const DefaultPassword = "password123"

// Envelope 统一响应结构
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

// SetupConfig 使用默认配置和测试密钥
func SetupConfig(t *testing.T) {
	t.Helper()
	previous := config.GlobalConfig
	cfg := config.Default()
	cfg.App.Mode = gin.TestMode
	cfg.JWT.SecretKey = "test-secret-key"
	config.GlobalConfig = cfg
	t.Cleanup(func() {
		config.GlobalConfig = previous
	})
}

// NewDB 创建独立的内存sqlite数据库并建表
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, model.InitTables(db))
	return db
}

// Logger 测试使用的空日志
func Logger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// NewServices 创建不带缓存和推送的服务
func NewServices(t *testing.T, db *gorm.DB) *service.Services {
	t.Helper()
	return service.NewServices(db, Logger(), service.Options{})
}

// CreateUser 创建普通用户，邮箱为 name@example.com
func CreateUser(t *testing.T, services *service.Services, name string) *model.User {
	t.Helper()
	return createUser(t, services, name, model.RoleUser)
}

// CreateAdmin 创建管理员
func CreateAdmin(t *testing.T, services *service.Services, name string) *model.User {
	t.Helper()
	return createUser(t, services, name, model.RoleAdmin)
}

func createUser(t *testing.T, services *service.Services, name, role string) *model.User {
	user, err := services.User.CreateUser(context.Background(), name, name+"@example.com", DefaultPassword, role)
	require.NoError(t, err)
	return user
}

// MakeFriends 建立已接受的好友关系
func MakeFriends(t *testing.T, services *service.Services, a, b *model.User) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, services.Friend.SendRequest(ctx, a.ID, b.ID))
	require.NoError(t, services.Friend.AcceptRequest(ctx, b.ID, a.ID))
}

// Token 为用户签发访问令牌
func Token(t *testing.T, user *model.User) string {
	t.Helper()
	pair, err := auth.GenerateTokenPair(user.ID, user.Role)
	require.NoError(t, err)
	return pair.AccessToken
}

// SetupGin 切换到测试模式并注册自定义校验规则
func SetupGin(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Register())
}

// Request 发送JSON请求，token为空时不带Authorization头
func Request(handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// Decode 解析响应，data不为nil时解析到data
func Decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}
