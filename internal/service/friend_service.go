package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendService 好友关系服务
type FriendService struct {
	db       *gorm.DB
	logger   *zap.SugaredLogger
	notifier *NotificationService
}

// NewFriendService 创建好友服务实例
func NewFriendService(db *gorm.DB, logger *zap.SugaredLogger, notifier *NotificationService) *FriendService {
	return &FriendService{
		db:       db,
		logger:   logger,
		notifier: notifier,
	}
}

// pairCondition 匹配两个用户之间任意方向的关系
const pairCondition = "(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)"

// SendRequest 发送好友请求
func (s *FriendService) SendRequest(ctx context.Context, userID, friendID uint) error {
	if userID == friendID {
		return ErrSelfFriend
	}

	var sender model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住双方用户行，同一对用户的请求串行执行
		var users []model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", []uint{userID, friendID}).
			Order("id").
			Find(&users).Error; err != nil {
			return fmt.Errorf("查询用户失败: %w", err)
		}
		if len(users) != 2 {
			return ErrUserNotFound
		}
		for _, u := range users {
			if u.ID == userID {
				sender = u
			}
		}

		var count int64
		if err := tx.Model(&model.Friendship{}).
			Where(pairCondition, userID, friendID, friendID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("检查好友关系失败: %w", err)
		}
		if count > 0 {
			return ErrFriendRequestExists
		}

		friendship := &model.Friendship{
			FollowerID:  userID,
			FollowingID: friendID,
			Status:      model.FriendshipPending,
		}
		if err := tx.Create(friendship).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrFriendRequestExists
			}
			return fmt.Errorf("创建好友请求失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.notifyQuietly(ctx, friendID, model.NotificationFriendRequest,
		fmt.Sprintf("%s 向你发送了好友请求", sender.Name), &sender, nil)
	return nil
}

// AcceptRequest 接受好友请求，只有请求的接收方可以操作
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requesterID uint) error {
	db := s.db.WithContext(ctx)

	var friendship model.Friendship
	err := db.Where("follower_id = ? AND following_id = ? AND status = ?", requesterID, userID, model.FriendshipPending).
		First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFriendRequestMissing
		}
		return fmt.Errorf("查询好友请求失败: %w", err)
	}

	if err := db.Model(&friendship).Update("status", model.FriendshipAccepted).Error; err != nil {
		return fmt.Errorf("接受好友请求失败: %w", err)
	}

	var accepter model.User
	if err := db.First(&accepter, userID).Error; err != nil {
		s.logger.Warnf("查询用户失败: %v", err)
		return nil
	}
	s.notifier.notifyQuietly(ctx, requesterID, model.NotificationFriendAccepted,
		fmt.Sprintf("%s 接受了你的好友请求", accepter.Name), &accepter, nil)
	return nil
}

// RejectRequest 拒绝好友请求
func (s *FriendService) RejectRequest(ctx context.Context, userID, requesterID uint) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ? AND status = ?", requesterID, userID, model.FriendshipPending).
		Delete(&model.Friendship{})
	if result.Error != nil {
		return fmt.Errorf("拒绝好友请求失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFriendRequestMissing
	}
	return nil
}

// RemoveFriend 删除好友关系，两个方向都删除
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID uint) error {
	err := s.db.WithContext(ctx).
		Where(pairCondition, userID, friendID, friendID, userID).
		Delete(&model.Friendship{}).Error
	if err != nil {
		return fmt.Errorf("删除好友失败: %w", err)
	}
	return nil
}

// FriendIDs 获取用户所有已接受好友的ID
func (s *FriendService) FriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []model.Friendship
	err := s.db.WithContext(ctx).
		Where("(follower_id = ? OR following_id = ?) AND status = ?", userID, userID, model.FriendshipAccepted).
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("查询好友关系失败: %w", err)
	}

	ids := make([]uint, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Other(userID))
	}
	return ids, nil
}

// ListFriends 获取好友列表
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]dto.UserBriefInfo, error) {
	ids, err := s.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.UserBriefInfo, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("查询好友失败: %w", err)
	}
	for i := range users {
		result = append(result, GenerateUserBrief(&users[i]))
	}
	return result, nil
}

// ListRequests 获取收到的待处理好友请求
func (s *FriendService) ListRequests(ctx context.Context, userID uint) ([]dto.FriendRequestItem, error) {
	var friendships []model.Friendship
	err := s.db.WithContext(ctx).
		Where("following_id = ? AND status = ?", userID, model.FriendshipPending).
		Preload("Follower").
		Order("created_at DESC").Order("id DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("查询好友请求失败: %w", err)
	}

	result := make([]dto.FriendRequestItem, 0, len(friendships))
	for _, f := range friendships {
		result = append(result, dto.FriendRequestItem{
			RequestID: f.ID,
			ID:        f.Follower.ID,
			Name:      f.Follower.Name,
			Email:     f.Follower.Email,
			Avatar:    f.Follower.DisplayAvatar(),
			Bio:       f.Follower.Bio,
			CreatedAt: dto.FormatTime(f.CreatedAt),
		})
	}
	return result, nil
}

// Status 获取与另一个用户的关系状态
func (s *FriendService) Status(ctx context.Context, userID, otherID uint) (*dto.FriendStatusResponse, error) {
	var friendship model.Friendship
	err := s.db.WithContext(ctx).
		Where(pairCondition, userID, otherID, otherID, userID).
		First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.FriendStatusResponse{Status: model.FriendshipNone}, nil
		}
		return nil, fmt.Errorf("查询好友关系失败: %w", err)
	}
	return &dto.FriendStatusResponse{
		Status:   friendship.Status,
		IsSender: friendship.FollowerID == userID,
	}, nil
}

// AreFriends 判断两个用户是否为已接受的好友
func (s *FriendService) AreFriends(ctx context.Context, userID, otherID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("("+pairCondition+") AND status = ?", userID, otherID, otherID, userID, model.FriendshipAccepted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询好友关系失败: %w", err)
	}
	return count > 0, nil
}
