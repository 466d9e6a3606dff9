package service_test

import (
	"context"
	"testing"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCountsArePerCaller(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")
	carol := testutil.CreateUser(t, services, "carol")

	first, err := services.Post.Create(ctx, alice.ID, "first post")
	require.NoError(t, err)
	second, err := services.Post.Create(ctx, carol.ID, "second post")
	require.NoError(t, err)

	_, err = services.Like.LikePost(ctx, bob.ID, first.ID)
	require.NoError(t, err)
	_, err = services.Comment.Create(ctx, bob.ID, first.ID, "nice")
	require.NoError(t, err)

	posts, total, err := services.Post.Feed(ctx, bob.ID, &dto.FeedRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
	assert.Equal(t, int64(1), posts[1].LikesCount)
	assert.Equal(t, int64(1), posts[1].CommentsCount)
	assert.True(t, posts[1].UserLiked)
	assert.Equal(t, "alice", posts[1].UserName)

	posts, _, err = services.Post.Feed(ctx, alice.ID, &dto.FeedRequest{})
	require.NoError(t, err)
	assert.False(t, posts[1].UserLiked)
	assert.Equal(t, int64(1), posts[1].LikesCount)

	// 好友范围只包含自己和好友
	testutil.MakeFriends(t, services, bob, alice)
	posts, total, err = services.Post.Feed(ctx, bob.ID, &dto.FeedRequest{Scope: "friends"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, first.ID, posts[0].ID)

	posts, total, err = services.Post.Feed(ctx, bob.ID, &dto.FeedRequest{PageRequest: dto.PageRequest{Page: 2, Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 1)
	assert.Equal(t, first.ID, posts[0].ID)
}

func TestPostOwnership(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")
	admin := testutil.CreateAdmin(t, services, "admin")

	post, err := services.Post.Create(ctx, alice.ID, "mine")
	require.NoError(t, err)

	_, err = services.Post.Update(ctx, bob.ID, post.ID, "hacked")
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.ErrorIs(t, services.Post.Delete(ctx, bob.ID, model.RoleUser, post.ID), service.ErrForbidden)

	_, err = services.Post.Update(ctx, alice.ID, 9999, "x")
	assert.ErrorIs(t, err, service.ErrPostNotFound)
	_, err = services.Post.Get(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, service.ErrPostNotFound)

	updated, err := services.Post.Update(ctx, alice.ID, post.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	_, err = services.Post.Update(ctx, alice.ID, post.ID, "   ")
	assert.ErrorIs(t, err, service.ErrEmptyContent)

	// 管理员可以删除任何动态
	require.NoError(t, services.Post.Delete(ctx, admin.ID, model.RoleAdmin, post.ID))
	_, err = services.Post.Get(ctx, alice.ID, post.ID)
	assert.ErrorIs(t, err, service.ErrPostNotFound)
}

func TestDeletePostRemovesChildren(t *testing.T) {
	testutil.SetupConfig(t)
	db := testutil.NewDB(t)
	services := testutil.NewServices(t, db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")

	post, err := services.Post.Create(ctx, alice.ID, "to be deleted")
	require.NoError(t, err)
	comment, err := services.Comment.Create(ctx, bob.ID, post.ID, "comment")
	require.NoError(t, err)
	_, err = services.Like.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = services.Like.LikeComment(ctx, alice.ID, post.ID, comment.ID)
	require.NoError(t, err)

	require.NoError(t, services.Post.Delete(ctx, alice.ID, model.RoleUser, post.ID))

	for _, m := range []interface{}{&model.Comment{}, &model.Like{}, &model.CommentLike{}, &model.Notification{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count, "%T", m)
	}
}

func TestUserPosts(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")
	_, err := services.Post.Create(ctx, alice.ID, "one")
	require.NoError(t, err)
	_, err = services.Post.Create(ctx, bob.ID, "two")
	require.NoError(t, err)

	posts, err := services.Post.UserPosts(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "one", posts[0].Content)

	_, err = services.Post.UserPosts(ctx, bob.ID, 9999)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
