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

// PostService 动态服务
type PostService struct {
	db      *gorm.DB
	logger  *zap.SugaredLogger
	filter  *ContentFilter
	friends *FriendService
	users   *UserService
}

// NewPostService 创建动态服务实例
func NewPostService(db *gorm.DB, logger *zap.SugaredLogger, filter *ContentFilter, friends *FriendService, users *UserService) *PostService {
	return &PostService{
		db:      db,
		logger:  logger,
		filter:  filter,
		friends: friends,
		users:   users,
	}
}

// countRow 分组统计结果
type countRow struct {
	ID    uint
	Count int64
}

// Feed 获取动态流，scope=friends时只包含自己和好友的动态
func (s *PostService) Feed(ctx context.Context, userID uint, req *dto.FeedRequest) ([]dto.PostResponse, int64, error) {
	req.Normalize(50)

	query := s.db.WithContext(ctx).Model(&model.Post{})
	if req.Scope == "friends" {
		ids, err := s.friends.FriendIDs(ctx, userID)
		if err != nil {
			return nil, 0, err
		}
		query = query.Where("user_id IN ?", append(ids, userID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取动态总数失败: %w", err)
	}

	var posts []model.Post
	err := query.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset(req.Offset()).Limit(req.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询动态失败: %w", err)
	}

	list, err := s.buildResponses(ctx, userID, posts)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UserPosts 获取指定用户的动态
func (s *PostService) UserPosts(ctx context.Context, viewerID, userID uint) ([]dto.PostResponse, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	var posts []model.Post
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).
		Preload("User").
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户动态失败: %w", err)
	}
	return s.buildResponses(ctx, viewerID, posts)
}

// buildResponses 批量统计点赞数、评论数和当前用户是否点赞
func (s *PostService) buildResponses(ctx context.Context, userID uint, posts []model.Post) ([]dto.PostResponse, error) {
	list := make([]dto.PostResponse, 0, len(posts))
	if len(posts) == 0 {
		return list, nil
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	db := s.db.WithContext(ctx)

	var likeRows []countRow
	if err := db.Model(&model.Like{}).
		Select("post_id AS id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&likeRows).Error; err != nil {
		return nil, fmt.Errorf("统计点赞数失败: %w", err)
	}

	var commentRows []countRow
	if err := db.Model(&model.Comment{}).
		Select("post_id AS id, COUNT(*) AS count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&commentRows).Error; err != nil {
		return nil, fmt.Errorf("统计评论数失败: %w", err)
	}

	var likedIDs []uint
	if err := db.Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, ids).
		Pluck("post_id", &likedIDs).Error; err != nil {
		return nil, fmt.Errorf("查询点赞状态失败: %w", err)
	}

	likes := toCountMap(likeRows)
	comments := toCountMap(commentRows)
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}

	for i := range posts {
		resp := toPostResponse(&posts[i])
		resp.LikesCount = likes[posts[i].ID]
		resp.CommentsCount = comments[posts[i].ID]
		resp.UserLiked = liked[posts[i].ID]
		list = append(list, resp)
	}
	return list, nil
}

func toCountMap(rows []countRow) map[uint]int64 {
	m := make(map[uint]int64, len(rows))
	for _, row := range rows {
		m[row.ID] = row.Count
	}
	return m
}

func toPostResponse(post *model.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:         post.ID,
		UserID:     post.UserID,
		Content:    post.Content,
		UserName:   post.User.Name,
		UserAvatar: post.User.DisplayAvatar(),
		CreatedAt:  dto.FormatTime(post.CreatedAt),
		UpdatedAt:  dto.FormatTime(post.UpdatedAt),
	}
}

// Create 发布动态
func (s *PostService) Create(ctx context.Context, userID uint, content string) (*dto.PostResponse, error) {
	content, err := s.filter.Clean(content)
	if err != nil {
		return nil, err
	}

	post := &model.Post{UserID: userID, Content: content}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("创建动态失败: %w", err)
	}
	return s.Get(ctx, userID, post.ID)
}

// Get 获取单条动态
func (s *PostService) Get(ctx context.Context, userID, postID uint) (*dto.PostResponse, error) {
	var post model.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}

	list, err := s.buildResponses(ctx, userID, []model.Post{post})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// findPost 查询动态
func (s *PostService) findPost(ctx context.Context, postID uint) (*model.Post, error) {
	var post model.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询动态失败: %w", err)
	}
	return &post, nil
}

// Update 修改动态，只有作者可以修改
func (s *PostService) Update(ctx context.Context, userID, postID uint, content string) (*dto.PostResponse, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}

	content, err = s.filter.Clean(content)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(post).Update("content", content).Error; err != nil {
		return nil, fmt.Errorf("更新动态失败: %w", err)
	}
	return s.Get(ctx, userID, postID)
}

// Delete 删除动态及其点赞、评论、评论点赞和相关通知，作者或管理员可以删除
func (s *PostService) Delete(ctx context.Context, userID uint, role string, postID uint) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID && role != model.RoleAdmin {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("post_id = ?", postID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&model.CommentLike{}).Error; err != nil {
			return fmt.Errorf("删除评论点赞失败: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Comment{}).Error; err != nil {
			return fmt.Errorf("删除评论失败: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Like{}).Error; err != nil {
			return fmt.Errorf("删除点赞失败: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Notification{}).Error; err != nil {
			return fmt.Errorf("删除通知失败: %w", err)
		}
		if err := tx.Delete(post).Error; err != nil {
			return fmt.Errorf("删除动态失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infof("动态已删除: id=%d operator=%d", postID, userID)
	return nil
}
