package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/middleware"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/task"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/nsxzhou1114/social-api/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	cfg := config.Default().Cron
	cfg.NotificationCleanup = "every day"

	services := testutil.NewServices(t, testutil.NewDB(t))
	_, err := task.NewScheduler(&cfg, task.Jobs{Notifications: services.Notification}, testutil.Logger())
	assert.Error(t, err)

	// 依赖为空时不注册对应任务，错误的表达式也不会被解析
	scheduler, err := task.NewScheduler(&cfg, task.Jobs{}, testutil.Logger())
	require.NoError(t, err)
	scheduler.Start()
	scheduler.Stop(context.Background())
}

func TestCleanupNotificationsJob(t *testing.T) {
	testutil.SetupConfig(t)
	db := testutil.NewDB(t)
	services := testutil.NewServices(t, db)
	alice := testutil.CreateUser(t, services, "alice")

	old := time.Now().UTC().AddDate(0, 0, -60)
	require.NoError(t, db.Create(&model.Notification{
		Base:   model.Base{CreatedAt: old},
		UserID: alice.ID, Type: model.NotificationLike, Content: "old", IsRead: true,
	}).Error)

	cfg := config.Default().Cron
	scheduler, err := task.NewScheduler(&cfg, task.Jobs{
		Notifications: services.Notification,
		Cache:         cache.NewManager(nil),
		RateLimiter:   middleware.NewRateLimiter(&config.RateLimitConfig{RPS: 1, Burst: 1}),
	}, testutil.Logger())
	require.NoError(t, err)

	scheduler.CleanupNotifications()
	scheduler.PersistBloomFilters()
	scheduler.CleanupRateLimiters()

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}
