package task

import (
	"context"
	"fmt"
	"time"

	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/middleware"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/cache"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// 表达式带秒字段
//"0 */10 * * * *"   // 每隔10分钟
//"0 0 3 * * *"      // 每天凌晨3点

const (
	rateLimiterCleanupSpec = "0 */10 * * * *"
	rateLimiterIdle        = 30 * time.Minute
	jobTimeout             = 5 * time.Minute
)

// Jobs 定时任务依赖，为nil的依赖对应的任务不注册
type Jobs struct {
	Notifications *service.NotificationService
	Cache         *cache.Manager
	RateLimiter   *middleware.RateLimiter
}

// Scheduler 定时任务调度器
type Scheduler struct {
	cron          *cron.Cron
	logger        *zap.SugaredLogger
	retentionDays int
	jobs          Jobs
}

// NewScheduler 按配置注册定时任务
func NewScheduler(cfg *config.CronConfig, jobs Jobs, logger *zap.SugaredLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:          cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		logger:        logger,
		retentionDays: cfg.RetentionDays,
		jobs:          jobs,
	}

	if jobs.Notifications != nil && cfg.NotificationCleanup != "" {
		if _, err := s.cron.AddFunc(cfg.NotificationCleanup, s.CleanupNotifications); err != nil {
			return nil, fmt.Errorf("注册通知清理任务失败: %w", err)
		}
	}
	if jobs.Cache != nil && cfg.BloomPersist != "" {
		if _, err := s.cron.AddFunc(cfg.BloomPersist, s.PersistBloomFilters); err != nil {
			return nil, fmt.Errorf("注册布隆过滤器持久化任务失败: %w", err)
		}
	}
	if jobs.RateLimiter != nil {
		if _, err := s.cron.AddFunc(rateLimiterCleanupSpec, s.CleanupRateLimiters); err != nil {
			return nil, fmt.Errorf("注册限流器清理任务失败: %w", err)
		}
	}
	return s, nil
}

// Start 启动调度器
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infof("定时任务已启动, 共%d个任务", len(s.cron.Entries()))
}

// Stop 停止调度器并等待正在运行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// CleanupNotifications 删除超过保留天数的已读通知
func (s *Scheduler) CleanupNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.jobs.Notifications.CleanupRead(ctx, s.retentionDays)
	if err != nil {
		s.logger.Errorf("清理已读通知失败: %v", err)
		return
	}
	s.logger.Infof("清理已读通知完成: deleted=%d days=%d", deleted, s.retentionDays)
}

// PersistBloomFilters 保存布隆过滤器到Redis
func (s *Scheduler) PersistBloomFilters() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.jobs.Cache.SaveBloomFilters(ctx); err != nil {
		s.logger.Errorf("保存布隆过滤器失败: %v", err)
	}
}

// CleanupRateLimiters 删除闲置的限流器
func (s *Scheduler) CleanupRateLimiters() {
	s.jobs.RateLimiter.Cleanup(rateLimiterIdle)
}
