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

// LikeService 点赞服务
type LikeService struct {
	db       *gorm.DB
	logger   *zap.SugaredLogger
	notifier *NotificationService
}

// NewLikeService 创建点赞服务实例
func NewLikeService(db *gorm.DB, logger *zap.SugaredLogger, notifier *NotificationService) *LikeService {
	return &LikeService{
		db:       db,
		logger:   logger,
		notifier: notifier,
	}
}

// LikePost 点赞动态，重复点赞不报错，只有首次点赞通知作者
func (s *LikeService) LikePost(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error) {
	db := s.db.WithContext(ctx)

	var post model.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Like{UserID: userID, PostID: postID})
	if result.Error != nil {
		return nil, fmt.Errorf("点赞失败: %w", result.Error)
	}

	if result.RowsAffected > 0 && post.UserID != userID {
		s.notifyLike(ctx, &post, userID)
	}
	return s.postLikeState(ctx, userID, postID)
}

// notifyLike 通知作者，已有同一用户同一动态的未读点赞通知时不重复创建
func (s *LikeService) notifyLike(ctx context.Context, post *model.Post, userID uint) {
	exists, err := s.notifier.HasUnread(ctx, post.UserID, userID, model.NotificationLike, post.ID)
	if err != nil {
		s.logger.Warnf("检查点赞通知失败: %v", err)
		return
	}
	if exists {
		return
	}

	var liker model.User
	if err := s.db.WithContext(ctx).First(&liker, userID).Error; err != nil {
		s.logger.Warnf("查询点赞用户失败: %v", err)
		return
	}
	postID := post.ID
	s.notifier.notifyQuietly(ctx, post.UserID, model.NotificationLike,
		fmt.Sprintf("%s 赞了你的动态", liker.Name), &liker, &postID)
}

// UnlikePost 取消点赞动态
func (s *LikeService) UnlikePost(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}
	if count == 0 {
		return nil, ErrPostNotFound
	}

	if err := db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Like{}).Error; err != nil {
		return nil, fmt.Errorf("取消点赞失败: %w", err)
	}
	return s.postLikeState(ctx, userID, postID)
}

func (s *LikeService) postLikeState(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error) {
	db := s.db.WithContext(ctx)
	resp := &dto.LikeResponse{}
	if err := db.Model(&model.Like{}).Where("post_id = ?", postID).Count(&resp.LikesCount).Error; err != nil {
		return nil, fmt.Errorf("统计点赞数失败: %w", err)
	}
	var mine int64
	if err := db.Model(&model.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&mine).Error; err != nil {
		return nil, fmt.Errorf("查询点赞状态失败: %w", err)
	}
	resp.Liked = mine > 0
	return resp, nil
}

// findCommentOnPost 查询属于指定动态的评论
func (s *LikeService) findCommentOnPost(ctx context.Context, postID, commentID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND post_id = ?", commentID, postID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("查询评论失败: %w", err)
	}
	if count == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// LikeComment 点赞评论
func (s *LikeService) LikeComment(ctx context.Context, userID, postID, commentID uint) (*dto.LikeResponse, error) {
	if err := s.findCommentOnPost(ctx, postID, commentID); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CommentLike{UserID: userID, CommentID: commentID}).Error
	if err != nil {
		return nil, fmt.Errorf("点赞评论失败: %w", err)
	}
	return s.commentLikeState(ctx, userID, commentID)
}

// UnlikeComment 取消点赞评论
func (s *LikeService) UnlikeComment(ctx context.Context, userID, postID, commentID uint) (*dto.LikeResponse, error) {
	if err := s.findCommentOnPost(ctx, postID, commentID); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&model.CommentLike{}).Error
	if err != nil {
		return nil, fmt.Errorf("取消点赞评论失败: %w", err)
	}
	return s.commentLikeState(ctx, userID, commentID)
}

func (s *LikeService) commentLikeState(ctx context.Context, userID, commentID uint) (*dto.LikeResponse, error) {
	db := s.db.WithContext(ctx)
	resp := &dto.LikeResponse{}
	if err := db.Model(&model.CommentLike{}).Where("comment_id = ?", commentID).Count(&resp.LikesCount).Error; err != nil {
		return nil, fmt.Errorf("统计评论点赞数失败: %w", err)
	}
	var mine int64
	if err := db.Model(&model.CommentLike{}).Where("comment_id = ? AND user_id = ?", commentID, userID).Count(&mine).Error; err != nil {
		return nil, fmt.Errorf("查询评论点赞状态失败: %w", err)
	}
	resp.Liked = mine > 0
	return resp, nil
}
