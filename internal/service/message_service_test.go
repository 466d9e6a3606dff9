package service_test

import (
	"context"
	"testing"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageRequiresFriendship(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")

	_, err := services.Message.Send(ctx, alice.ID, &dto.SendMessageRequest{ToUserID: alice.ID, Content: "me"})
	assert.ErrorIs(t, err, service.ErrSelfMessage)
	_, err = services.Message.Send(ctx, alice.ID, &dto.SendMessageRequest{ToUserID: bob.ID, Content: "hi"})
	assert.ErrorIs(t, err, service.ErrNotFriends)

	// 待处理的请求不算好友
	require.NoError(t, services.Friend.SendRequest(ctx, alice.ID, bob.ID))
	_, err = services.Message.Send(ctx, alice.ID, &dto.SendMessageRequest{ToUserID: bob.ID, Content: "hi"})
	assert.ErrorIs(t, err, service.ErrNotFriends)
}

func TestConversations(t *testing.T) {
	testutil.SetupConfig(t)
	services := testutil.NewServices(t, testutil.NewDB(t))
	ctx := context.Background()

	alice := testutil.CreateUser(t, services, "alice")
	bob := testutil.CreateUser(t, services, "bob")
	carol := testutil.CreateUser(t, services, "carol")
	testutil.MakeFriends(t, services, alice, bob)
	testutil.MakeFriends(t, services, alice, carol)

	sent, err := services.Message.Send(ctx, bob.ID, &dto.SendMessageRequest{ToUserID: alice.ID, Content: "  hi alice  "})
	require.NoError(t, err)
	assert.Equal(t, "hi alice", sent.Content)
	assert.Equal(t, "bob", sent.SenderName)
	assert.False(t, sent.IsRead)

	_, err = services.Message.Send(ctx, bob.ID, &dto.SendMessageRequest{ToUserID: alice.ID, Content: "are you there?"})
	require.NoError(t, err)
	_, err = services.Message.Send(ctx, alice.ID, &dto.SendMessageRequest{ToUserID: carol.ID, Content: "hey carol"})
	require.NoError(t, err)

	conversations, err := services.Message.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, carol.ID, conversations[0].FriendID)
	assert.Equal(t, "hey carol", conversations[0].LastMessage)
	assert.Zero(t, conversations[0].UnreadCount)
	assert.Equal(t, bob.ID, conversations[1].FriendID)
	assert.Equal(t, "bob", conversations[1].FriendName)
	assert.Equal(t, "are you there?", conversations[1].LastMessage)
	assert.Equal(t, int64(2), conversations[1].UnreadCount)

	messages, err := services.Message.Conversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi alice", messages[0].Content)

	// 只有接收方的消息会被标记
	updated, err := services.Message.MarkAsRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, updated)
	updated, err = services.Message.MarkAsRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	conversations, err = services.Message.Conversations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, conversations[1].UnreadCount)

	empty, err := services.Message.Conversations(ctx, 9999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
