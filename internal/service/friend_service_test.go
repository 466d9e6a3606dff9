package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestFriendRequestLifecycle(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")

	status, err := services.Friend.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipNone, status.Status)

	require.NoError(t, services.Friend.SendRequest(ctx, alice.ID, bob.ID))

	// 任意方向重复请求都被拒绝
	assert.ErrorIs(t, services.Friend.SendRequest(ctx, alice.ID, bob.ID), service.ErrFriendRequestExists)
	assert.ErrorIs(t, services.Friend.SendRequest(ctx, bob.ID, alice.ID), service.ErrFriendRequestExists)

	status, err = services.Friend.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.FriendStatusResponse{Status: model.FriendshipPending, IsSender: true}, status)
	status, err = services.Friend.Status(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsSender)

	requests, err := services.Friend.ListRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, alice.ID, requests[0].ID)
	assert.NotZero(t, requests[0].RequestID)

	// 只有接收方可以接受
	assert.ErrorIs(t, services.Friend.AcceptRequest(ctx, alice.ID, bob.ID), service.ErrFriendRequestMissing)
	require.NoError(t, services.Friend.AcceptRequest(ctx, bob.ID, alice.ID))

	friends, err := services.Friend.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)

	ok, err := services.Friend.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 请求和接受各产生一条通知
	count, err := services.Notification.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = services.Notification.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, services.Friend.RemoveFriend(ctx, bob.ID, alice.ID))
	require.NoError(t, services.Friend.RemoveFriend(ctx, bob.ID, alice.ID))
	ok, err = services.Friend.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFriendRequestValidation(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")

	assert.ErrorIs(t, services.Friend.SendRequest(ctx, alice.ID, alice.ID), service.ErrSelfFriend)
	assert.ErrorIs(t, services.Friend.SendRequest(ctx, alice.ID, 9999), service.ErrUserNotFound)

	require.NoError(t, services.Friend.SendRequest(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, services.Friend.RejectRequest(ctx, alice.ID, bob.ID), service.ErrFriendRequestMissing)
	require.NoError(t, services.Friend.RejectRequest(ctx, bob.ID, alice.ID))

	status, err := services.Friend.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipNone, status.Status)

	// 拒绝后可以重新发起
	assert.NoError(t, services.Friend.SendRequest(ctx, bob.ID, alice.ID))
}

func TestFriendRequestLocksBothUsers(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	services := service.NewServices(db, testutil.Logger(), service.Options{})

	// 反向请求已提交，加锁后的计数能看到它
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN .* ORDER BY id FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "alice").AddRow(2, "bob"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "friendships"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err = services.Friend.SendRequest(context.Background(), 1, 2)
	assert.ErrorIs(t, err, service.ErrFriendRequestExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
