package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageService 私信服务
type MessageService struct {
	db       *gorm.DB
	logger   *zap.SugaredLogger
	friends  *FriendService
	notifier *NotificationService
}

// NewMessageService 创建私信服务实例
func NewMessageService(db *gorm.DB, logger *zap.SugaredLogger, friends *FriendService, notifier *NotificationService) *MessageService {
	return &MessageService{
		db:       db,
		logger:   logger,
		friends:  friends,
		notifier: notifier,
	}
}

// Send 发送私信，只能发给已接受的好友
func (s *MessageService) Send(ctx context.Context, fromUserID uint, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if fromUserID == req.ToUserID {
		return nil, ErrSelfMessage
	}

	ok, err := s.friends.AreFriends(ctx, fromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFriends
	}

	db := s.db.WithContext(ctx)
	message := &model.Message{
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		Content:    strings.TrimSpace(req.Content),
	}
	if err := db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("发送私信失败: %w", err)
	}
	if err := db.First(&message.FromUser, fromUserID).Error; err != nil {
		return nil, fmt.Errorf("查询发送者失败: %w", err)
	}

	s.notifier.notifyQuietly(ctx, req.ToUserID, model.NotificationMessage,
		fmt.Sprintf("%s 给你发送了一条私信", message.FromUser.Name), &message.FromUser, nil)

	resp := toMessageResponse(message)
	return &resp, nil
}

// Conversation 获取与指定用户的聊天记录，按时间正序
func (s *MessageService) Conversation(ctx context.Context, userID, otherID uint) ([]dto.MessageResponse, error) {
	var messages []model.Message
	err := s.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", userID, otherID, otherID, userID).
		Preload("FromUser").
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("获取聊天记录失败: %w", err)
	}

	list := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		list = append(list, toMessageResponse(&messages[i]))
	}
	return list, nil
}

// MarkAsRead 将对方发给自己的私信标记为已读，返回更新数量
func (s *MessageService) MarkAsRead(ctx context.Context, userID, otherID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND is_read = ?", otherID, userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("标记私信已读失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Conversations 获取会话列表，每个聊天对象一行，按最后一条消息时间倒序
func (s *MessageService) Conversations(ctx context.Context, userID uint) ([]dto.ConversationResponse, error) {
	db := s.db.WithContext(ctx)

	var messages []model.Message
	err := db.Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("获取会话列表失败: %w", err)
	}

	// 消息已按时间倒序，首次出现的就是最后一条消息
	conversations := make([]dto.ConversationResponse, 0)
	index := make(map[uint]int)
	for _, m := range messages {
		partner := m.ToUserID
		if partner == userID {
			partner = m.FromUserID
		}
		i, ok := index[partner]
		if !ok {
			i = len(conversations)
			index[partner] = i
			conversations = append(conversations, dto.ConversationResponse{
				FriendID:        partner,
				LastMessage:     m.Content,
				LastMessageTime: dto.FormatTime(m.CreatedAt),
			})
		}
		if m.ToUserID == userID && !m.IsRead {
			conversations[i].UnreadCount++
		}
	}
	if len(conversations) == 0 {
		return conversations, nil
	}

	ids := make([]uint, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	var users []model.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询会话用户失败: %w", err)
	}
	for i := range users {
		c := &conversations[index[users[i].ID]]
		c.FriendName = users[i].Name
		c.FriendAvatar = users[i].DisplayAvatar()
	}
	return conversations, nil
}

func toMessageResponse(m *model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:           m.ID,
		FromUserID:   m.FromUserID,
		ToUserID:     m.ToUserID,
		Content:      m.Content,
		IsRead:       m.IsRead,
		SenderName:   m.FromUser.Name,
		SenderAvatar: m.FromUser.DisplayAvatar(),
		CreatedAt:    dto.FormatTime(m.CreatedAt),
	}
}
