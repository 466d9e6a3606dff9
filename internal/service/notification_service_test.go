package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationListAndMark(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")
	carol := testutil.CreateUser(t, services, "carol")

	post, err := services.Post.Create(ctx, alice.ID, "post")
	require.NoError(t, err)
	_, err = services.Like.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = services.Comment.Create(ctx, carol.ID, post.ID, "hello")
	require.NoError(t, err)

	list, meta, err := services.Notification.List(ctx, alice.ID, &dto.NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, &dto.NotificationListMeta{Page: 1, Size: 50, Total: 2, UnreadCount: 2}, meta)
	assert.Equal(t, model.NotificationComment, list[0].Type)
	assert.Equal(t, "carol", list[0].RelatedUserName)
	require.NotNil(t, list[0].PostID)
	assert.Equal(t, post.ID, *list[0].PostID)

	// 别人的通知不可见
	assert.ErrorIs(t, services.Notification.MarkAsRead(ctx, bob.ID, list[0].ID), service.ErrNotificationNotFound)
	assert.ErrorIs(t, services.Notification.Delete(ctx, bob.ID, list[0].ID), service.ErrNotificationNotFound)

	require.NoError(t, services.Notification.MarkAsRead(ctx, alice.ID, list[0].ID))
	require.NoError(t, services.Notification.MarkAsRead(ctx, alice.ID, list[0].ID))

	unread, meta, err := services.Notification.List(ctx, alice.ID, &dto.NotificationListRequest{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, model.NotificationLike, unread[0].Type)
	assert.Equal(t, int64(1), meta.UnreadCount)

	updated, err := services.Notification.MarkAllAsRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	count, err := services.Notification.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, services.Notification.Delete(ctx, alice.ID, list[1].ID))
	_, meta, err = services.Notification.List(ctx, alice.ID, &dto.NotificationListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
}

func TestUpdatesSince(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")

	post, err := services.Post.Create(ctx, alice.ID, "post")
	require.NoError(t, err)
	_, err = services.Like.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	first, err := services.Notification.Updates(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.True(t, first.HasUpdates)
	assert.Len(t, first.Likes, 1)
	assert.Equal(t, "bob", first.Likes[0].User)
	assert.Len(t, first.Notifications, 1)
	assert.NotNil(t, first.Comments)
	_, err = time.Parse(time.RFC3339Nano, first.ServerTime)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = services.Comment.Create(ctx, bob.ID, post.ID, "new comment")
	require.NoError(t, err)
	// 自己的评论不算更新
	_, err = services.Comment.Create(ctx, alice.ID, post.ID, "reply")
	require.NoError(t, err)

	second, err := services.Notification.Updates(ctx, alice.ID, first.ServerTime)
	require.NoError(t, err)
	assert.True(t, second.HasUpdates)
	assert.Empty(t, second.Likes)
	require.Len(t, second.Comments, 1)
	assert.Equal(t, "new comment", second.Comments[0].Content)
	require.Len(t, second.Notifications, 1)
	assert.Equal(t, model.NotificationComment, second.Notifications[0].Type)

	time.Sleep(10 * time.Millisecond)
	third, err := services.Notification.Updates(ctx, alice.ID, second.ServerTime)
	require.NoError(t, err)
	assert.False(t, third.HasUpdates)
	assert.NotNil(t, third.Notifications)
	assert.NotNil(t, third.Likes)
	assert.NotNil(t, third.Comments)

	_, err = services.Notification.Updates(ctx, alice.ID, "yesterday")
	assert.ErrorIs(t, err, service.ErrInvalidSince)
}

func TestCleanupRead(t *testing.T) {
	testutil.SetupConfig(t)
	db := testutil.NewDB(t)
	services := testutil.NewServices(t, db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")

	old := time.Now().UTC().AddDate(0, 0, -40)
	require.NoError(t, db.Create(&[]model.Notification{
		{Base: model.Base{CreatedAt: old}, UserID: alice.ID, Type: model.NotificationLike, Content: "old read", IsRead: true},
		{Base: model.Base{CreatedAt: old}, UserID: alice.ID, Type: model.NotificationLike, Content: "old unread"},
		{UserID: alice.ID, Type: model.NotificationLike, Content: "new read", IsRead: true},
	}).Error)

	_, err := services.Notification.CleanupRead(ctx, 0)
	assert.Error(t, err)

	deleted, err := services.Notification.CleanupRead(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []string
	require.NoError(t, db.Model(&model.Notification{}).Order("id").Pluck("content", &remaining).Error)
	assert.Equal(t, []string{"old unread", "new read"}, remaining)
}
