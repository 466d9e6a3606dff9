package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentService 评论服务
type CommentService struct {
	db       *gorm.DB
	logger   *zap.SugaredLogger
	filter   *ContentFilter
	notifier *NotificationService
}

// NewCommentService 创建评论服务实例
func NewCommentService(db *gorm.DB, logger *zap.SugaredLogger, filter *ContentFilter, notifier *NotificationService) *CommentService {
	return &CommentService{
		db:       db,
		logger:   logger,
		filter:   filter,
		notifier: notifier,
	}
}

// List 获取动态的评论，按时间正序
func (s *CommentService) List(ctx context.Context, userID, postID uint) ([]dto.CommentResponse, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}
	if count == 0 {
		return nil, ErrPostNotFound
	}

	var comments []model.Comment
	if err := db.Where("post_id = ?", postID).
		Preload("User").
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("获取评论失败: %w", err)
	}
	return s.buildResponses(ctx, userID, comments)
}

// buildResponses 批量统计评论点赞数和当前用户是否点赞
func (s *CommentService) buildResponses(ctx context.Context, userID uint, comments []model.Comment) ([]dto.CommentResponse, error) {
	list := make([]dto.CommentResponse, 0, len(comments))
	if len(comments) == 0 {
		return list, nil
	}

	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	db := s.db.WithContext(ctx)

	var likeRows []countRow
	if err := db.Model(&model.CommentLike{}).
		Select("comment_id AS id, COUNT(*) AS count").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&likeRows).Error; err != nil {
		return nil, fmt.Errorf("统计评论点赞数失败: %w", err)
	}

	var likedIDs []uint
	if err := db.Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, ids).
		Pluck("comment_id", &likedIDs).Error; err != nil {
		return nil, fmt.Errorf("查询评论点赞状态失败: %w", err)
	}

	likes := toCountMap(likeRows)
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}

	for i := range comments {
		resp := toCommentResponse(&comments[i])
		resp.LikesCount = likes[comments[i].ID]
		resp.UserLiked = liked[comments[i].ID]
		list = append(list, resp)
	}
	return list, nil
}

func toCommentResponse(c *model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		Content:    c.Content,
		UserName:   c.User.Name,
		UserAvatar: c.User.DisplayAvatar(),
		CreatedAt:  dto.FormatTime(c.CreatedAt),
		UpdatedAt:  dto.FormatTime(c.UpdatedAt),
	}
}

// Create 发表评论，评论者不是作者时通知作者
func (s *CommentService) Create(ctx context.Context, userID, postID uint, content string) (*dto.CommentResponse, error) {
	db := s.db.WithContext(ctx)

	var post model.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}

	content, err := s.filter.Clean(content)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{UserID: userID, PostID: postID, Content: content}
	if err := db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("创建评论失败: %w", err)
	}
	if err := db.First(&comment.User, userID).Error; err != nil {
		return nil, fmt.Errorf("查询评论用户失败: %w", err)
	}

	if post.UserID != userID {
		s.notifier.notifyQuietly(ctx, post.UserID, model.NotificationComment,
			fmt.Sprintf("%s 评论了你的动态", comment.User.Name), &comment.User, &post.ID)
	}

	resp := toCommentResponse(comment)
	return &resp, nil
}

// findComment 查询评论，postID不为0时要求评论属于该动态
func (s *CommentService) findComment(ctx context.Context, commentID, postID uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}
	if postID != 0 && comment.PostID != postID {
		return nil, ErrCommentNotFound
	}
	return &comment, nil
}

// Update 修改评论，只有作者可以修改
func (s *CommentService) Update(ctx context.Context, userID, commentID uint, content string) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, commentID, 0)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	content, err = s.filter.Clean(content)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(comment).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("更新评论失败: %w", err)
	}
	if err := db.Preload("User").First(comment, commentID).Error; err != nil {
		return nil, fmt.Errorf("查询评论失败: %w", err)
	}

	list, err := s.buildResponses(ctx, userID, []model.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Delete 删除评论及其点赞，作者或管理员可以删除
func (s *CommentService) Delete(ctx context.Context, userID uint, role string, commentID, postID uint) error {
	comment, err := s.findComment(ctx, commentID, postID)
	if err != nil {
		return err
	}
	if comment.UserID != userID && role != model.RoleAdmin {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&model.CommentLike{}).Error; err != nil {
			return fmt.Errorf("删除评论点赞失败: %w", err)
		}
		if err := tx.Delete(comment).Error; err != nil {
			return fmt.Errorf("删除评论失败: %w", err)
		}
		return nil
	})
}
