package service

import (
	"context"
	"fmt"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// StatsService 数据统计服务，管理接口和命令行共用
type StatsService struct {
	db *gorm.DB
}

// NewStatsService 创建统计服务实例
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Collect 并发统计各类数据数量
func (s *StatsService) Collect(ctx context.Context) (*dto.StatsResponse, error) {
	stats := &dto.StatsResponse{}
	targets := []struct {
		model interface{}
		dest  *int64
		name  string
	}{
		{&model.User{}, &stats.Users, "用户"},
		{&model.Post{}, &stats.Posts, "动态"},
		{&model.Comment{}, &stats.Comments, "评论"},
		{&model.Like{}, &stats.Likes, "点赞"},
		{&model.Friendship{}, &stats.Friendships, "好友关系"},
		{&model.Message{}, &stats.Messages, "私信"},
		{&model.Notification{}, &stats.Notifications, "通知"},
		{&model.Advice{}, &stats.Advices, "建议"},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			if err := s.db.WithContext(gctx).Model(t.model).Count(t.dest).Error; err != nil {
				return fmt.Errorf("统计%s数量失败: %w", t.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
