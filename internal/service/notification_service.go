package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Pusher 实时推送接口，由websocket管理器实现
type Pusher interface {
	SendToUser(ctx context.Context, userID uint, payload interface{}) error
}

// NotificationService 通知服务
type NotificationService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	pusher Pusher
}

// NewNotificationService 创建通知服务实例，pusher为nil时只写数据库
func NewNotificationService(db *gorm.DB, logger *zap.SugaredLogger, pusher Pusher) *NotificationService {
	return &NotificationService{
		db:     db,
		logger: logger,
		pusher: pusher,
	}
}

// Notify 创建通知并尝试实时推送给接收者
func (s *NotificationService) Notify(ctx context.Context, recipientID uint, notificationType, content string, sender *model.User, postID *uint) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  recipientID,
		Type:    notificationType,
		Content: content,
		PostID:  postID,
	}
	if sender != nil {
		senderID := sender.ID
		notification.RelatedUserID = &senderID
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("创建通知记录失败: %w", err)
	}
	notification.RelatedUser = sender

	if s.pusher != nil {
		payload := toNotificationResponse(notification)
		go func() {
			pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.pusher.SendToUser(pushCtx, recipientID, payload); err != nil {
				s.logger.Warnf("推送通知失败: %v", err)
			}
		}()
	}
	return notification, nil
}

// notifyQuietly 创建通知，失败只记录日志，不影响主流程
func (s *NotificationService) notifyQuietly(ctx context.Context, recipientID uint, notificationType, content string, sender *model.User, postID *uint) {
	if _, err := s.Notify(ctx, recipientID, notificationType, content, sender, postID); err != nil {
		s.logger.Errorf("创建%s通知失败: %v", notificationType, err)
	}
}

// HasUnread 判断是否已有同一发送者同一动态的未读通知
func (s *NotificationService) HasUnread(ctx context.Context, recipientID, senderID uint, notificationType string, postID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND related_user_id = ? AND type = ? AND post_id = ? AND is_read = ?",
			recipientID, senderID, notificationType, postID, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("检查重复通知失败: %w", err)
	}
	return count > 0, nil
}

// List 获取用户通知列表
func (s *NotificationService) List(ctx context.Context, userID uint, req *dto.NotificationListRequest) ([]dto.NotificationResponse, *dto.NotificationListMeta, error) {
	req.Normalize(50)
	db := s.db.WithContext(ctx)

	query := db.Model(&model.Notification{}).Where("user_id = ?", userID)
	if req.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("获取通知总数失败: %w", err)
	}

	var notifications []model.Notification
	err := query.Preload("RelatedUser").
		Order("created_at DESC").Order("id DESC").
		Offset(req.Offset()).Limit(req.Limit).
		Find(&notifications).Error
	if err != nil {
		return nil, nil, fmt.Errorf("查询通知列表失败: %w", err)
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	list := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		list = append(list, toNotificationResponse(&notifications[i]))
	}
	return list, &dto.NotificationListMeta{
		Page:        req.Page,
		Size:        req.Limit,
		Total:       total,
		UnreadCount: unread,
	}, nil
}

// UnreadCount 获取未读通知数量
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("获取未读通知数量失败: %w", err)
	}
	return count, nil
}

// findOwn 查询属于用户的通知
func (s *NotificationService) findOwn(ctx context.Context, userID, notificationID uint) (*model.Notification, error) {
	var notification model.Notification
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("查询通知失败: %w", err)
	}
	return &notification, nil
}

// MarkAsRead 标记通知为已读
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uint) error {
	notification, err := s.findOwn(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	return s.db.WithContext(ctx).Model(notification).Update("is_read", true).Error
}

// MarkAllAsRead 标记所有通知为已读，返回更新数量
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("标记通知已读失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete 删除通知
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uint) error {
	notification, err := s.findOwn(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(notification).Error
}

// CleanupRead 删除早于指定天数的已读通知
func (s *NotificationService) CleanupRead(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("保留天数必须大于0")
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&model.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("清理通知失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ParseSince 解析since参数，为空时返回零点时间
func ParseSince(since string) (time.Time, error) {
	if since == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, since)
	if err != nil {
		return time.Time{}, ErrInvalidSince
	}
	return t.UTC(), nil
}

// Updates 获取since之后的新通知、新点赞和新评论
func (s *NotificationService) Updates(ctx context.Context, userID uint, since string) (*dto.UpdatesResponse, error) {
	sinceTime, err := ParseSince(since)
	if err != nil {
		return nil, err
	}
	// 查询前取服务器时间，客户端下次以此为since不会漏掉查询期间写入的数据
	serverTime := time.Now().UTC()

	resp := &dto.UpdatesResponse{
		Notifications: []dto.NotificationResponse{},
		Likes:         []dto.LikeUpdate{},
		Comments:      []dto.CommentUpdate{},
		ServerTime:    serverTime.Format(time.RFC3339Nano),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var notifications []model.Notification
		err := s.db.WithContext(gctx).
			Where("user_id = ? AND created_at > ?", userID, sinceTime).
			Preload("RelatedUser").
			Order("created_at DESC").Order("id DESC").
			Find(&notifications).Error
		if err != nil {
			return fmt.Errorf("查询新通知失败: %w", err)
		}
		for i := range notifications {
			resp.Notifications = append(resp.Notifications, toNotificationResponse(&notifications[i]))
		}
		return nil
	})
	g.Go(func() error {
		var rows []struct {
			UserID    uint
			PostID    uint
			Name      string
			CreatedAt time.Time
		}
		err := s.db.WithContext(gctx).Table("likes").
			Select("likes.user_id, likes.post_id, users.name, likes.created_at").
			Joins("JOIN posts ON posts.id = likes.post_id").
			Joins("JOIN users ON users.id = likes.user_id").
			Where("posts.user_id = ? AND likes.user_id <> ? AND likes.created_at > ?", userID, userID, sinceTime).
			Order("likes.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("查询新点赞失败: %w", err)
		}
		for _, row := range rows {
			resp.Likes = append(resp.Likes, dto.LikeUpdate{
				User:      row.Name,
				UserID:    row.UserID,
				PostID:    row.PostID,
				CreatedAt: dto.FormatTime(row.CreatedAt),
			})
		}
		return nil
	})
	g.Go(func() error {
		var rows []struct {
			ID        uint
			UserID    uint
			PostID    uint
			Content   string
			Name      string
			CreatedAt time.Time
		}
		err := s.db.WithContext(gctx).Table("comments").
			Select("comments.id, comments.user_id, comments.post_id, comments.content, users.name, comments.created_at").
			Joins("JOIN posts ON posts.id = comments.post_id").
			Joins("JOIN users ON users.id = comments.user_id").
			Where("posts.user_id = ? AND comments.user_id <> ? AND comments.created_at > ?", userID, userID, sinceTime).
			Order("comments.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("查询新评论失败: %w", err)
		}
		for _, row := range rows {
			resp.Comments = append(resp.Comments, dto.CommentUpdate{
				ID:        row.ID,
				User:      row.Name,
				UserID:    row.UserID,
				PostID:    row.PostID,
				Content:   row.Content,
				CreatedAt: dto.FormatTime(row.CreatedAt),
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.HasUpdates = len(resp.Notifications) > 0 || len(resp.Likes) > 0 || len(resp.Comments) > 0
	return resp, nil
}

// toNotificationResponse 转换为通知响应格式
func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:            n.ID,
		Type:          n.Type,
		Content:       n.Content,
		IsRead:        n.IsRead,
		RelatedUserID: n.RelatedUserID,
		PostID:        n.PostID,
		CreatedAt:     dto.FormatTime(n.CreatedAt),
	}
	if n.RelatedUser != nil && n.RelatedUser.ID != 0 {
		resp.RelatedUserName = n.RelatedUser.Name
		resp.RelatedUserAvatar = n.RelatedUser.DisplayAvatar()
	}
	return resp
}
