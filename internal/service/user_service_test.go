package service_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/nsxzhou1114/social-api/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestRegisterAndLogin(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	user, pair, err := services.User.Register(ctx, &dto.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.DefaultAvatar("Alice"), user.Avatar)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 7*24*3600, pair.ExpiresIn)

	_, _, err = services.User.Register(ctx, &dto.RegisterRequest{
		Name:     "Alice 2",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, service.ErrEmailExists)

	logged, _, err := services.User.Login(ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	_, _, err = services.User.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = services.User.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginDisabledUser(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	user := testutil.CreateUser(t, services, "bob")
	require.NoError(t, services.User.UpdateStatus(ctx, user.ID, model.UserStatusDisabled))

	_, _, err := services.User.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: testutil.DefaultPassword})
	assert.ErrorIs(t, err, service.ErrUserDisabled)

	assert.ErrorIs(t, services.User.UpdateStatus(ctx, user.ID, "banned"), service.ErrInvalidUserStatus)
	assert.ErrorIs(t, services.User.UpdateStatus(ctx, 9999, model.UserStatusActive), service.ErrUserNotFound)
}

func TestRefreshTokenRotation(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	_, pair, err := services.User.Register(ctx, &dto.RegisterRequest{Name: "carol", Email: "carol@example.com", Password: "secret123"})
	require.NoError(t, err)

	next, err := services.User.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// 旧的刷新令牌已失效
	_, err = services.User.RefreshToken(ctx, pair.RefreshToken)
	assert.Error(t, err)

	// 访问令牌不能用于刷新
	_, err = services.User.RefreshToken(ctx, next.AccessToken)
	assert.Error(t, err)
}

func TestProfileAndUpdate(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")
	testutil.MakeFriends(t, services, alice, bob)
	_, err := services.Post.Create(ctx, alice.ID, "hello")
	require.NoError(t, err)

	profile, err := services.User.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.FriendsCount)
	assert.Equal(t, int64(1), profile.PostsCount)
	assert.Empty(t, profile.Interests)

	interests := []string{" music ", "Music", "", "travel"}
	updated, err := services.User.UpdateProfile(ctx, alice.ID, &dto.UserInfoUpdateRequest{
		Bio:       strPtr("  hi there "),
		Interests: &interests,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Name)
	assert.Equal(t, "hi there", updated.Bio)
	assert.ElementsMatch(t, []string{"music", "travel"}, updated.Interests)

	// 不传interests时保持不变
	updated, err = services.User.UpdateProfile(ctx, alice.ID, &dto.UserInfoUpdateRequest{Name: strPtr("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Len(t, updated.Interests, 2)

	_, err = services.User.GetProfile(ctx, 9999)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	user := testutil.CreateUser(t, services, "dave")

	err := services.User.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, service.ErrWrongPassword)

	require.NoError(t, services.User.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		OldPassword: testutil.DefaultPassword,
		NewPassword: "newpass1",
	}))
	_, _, err = services.User.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "newpass1"})
	assert.NoError(t, err)

	require.NoError(t, services.User.ResetPassword(ctx, user.Email, "another1"))
	_, _, err = services.User.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "another1"})
	assert.NoError(t, err)
}

func TestSearchExcludesCaller(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	anna := testutil.CreateUser(t, services, "anna")
	testutil.CreateUser(t, services, "Annabel")
	testutil.CreateUser(t, services, "zed")

	result, err := services.User.Search(ctx, anna.ID, "ANN")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Annabel", result[0].Name)

	result, err = services.User.Search(ctx, anna.ID, "example.com")
	require.NoError(t, err)
	assert.Len(t, result, 2)

	result, err = services.User.Search(ctx, anna.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestListUsersPaging(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))

	for i := 0; i < 5; i++ {
		testutil.CreateUser(t, services, fmt.Sprintf("user%d", i))
	}

	page := &dto.PageRequest{Page: 2, Limit: 2}
	items, total, err := services.User.List(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "user2", items[0].Name)
}

func TestProfileCacheWithRedis(t *testing.T) {
	testutil.SetupConfig(t)
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := cache.NewManager(client)
	services := service.NewServices(db, testutil.Logger(), service.Options{Cache: manager})
	ctx := context.Background()

	user := testutil.CreateUser(t, services, "erin")

	_, err := services.User.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	key := fmt.Sprintf(cache.UserProfileKey, user.ID)
	assert.True(t, mr.Exists(key))

	_, err = services.User.UpdateProfile(ctx, user.ID, &dto.UserInfoUpdateRequest{Bio: strPtr("updated")})
	require.NoError(t, err)

	profile, err := services.User.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", profile.Bio)

	// 数据库中不存在的用户
	_, err = services.User.GetProfile(ctx, 424242)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	exists, err := services.User.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProfileForUserCreatedByAnotherProcess(t *testing.T) {
	testutil.SetupConfig(t)
	db := testutil.NewDB(t)
	ctx := context.Background()

	manager := cache.NewManager(nil)
	require.NoError(t, manager.Initialize(ctx, db))
	server := service.NewServices(db, testutil.Logger(), service.Options{Cache: manager})

	// 命令行工具不带缓存，创建的用户不会进入服务端的布隆过滤器
	cli := service.NewServices(db, testutil.Logger(), service.Options{})
	admin := testutil.CreateAdmin(t, cli, "root")

	maybe, err := manager.GetUserFilter().Test(ctx, strconv.FormatUint(uint64(admin.ID), 10))
	require.NoError(t, err)
	require.False(t, maybe)

	profile, err := server.User.GetProfile(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Email, profile.Email)

	maybe, err = manager.GetUserFilter().Test(ctx, strconv.FormatUint(uint64(admin.ID), 10))
	require.NoError(t, err)
	assert.True(t, maybe)

	other := testutil.CreateUser(t, cli, "frank")
	exists, err := server.User.Exists(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = server.User.Exists(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, exists)
}
