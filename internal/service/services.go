package service

import (
	"github.com/nsxzhou1114/social-api/pkg/cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 全部业务服务，由启动流程创建后交给路由
type Services struct {
	User         *UserService
	Friend       *FriendService
	Post         *PostService
	Like         *LikeService
	Comment      *CommentService
	Message      *MessageService
	Notification *NotificationService
	Advice       *AdviceService
	Health       *HealthService
	Stats        *StatsService
	Transfer     *TransferService
	Filter       *ContentFilter
}

// Options 创建服务时的可选依赖
type Options struct {
	Cache  *cache.Manager // 为nil时不使用缓存
	Pusher Pusher         // 为nil时不做实时推送
	Filter *ContentFilter // 为nil时使用空词库
}

// NewServices 创建全部服务
func NewServices(db *gorm.DB, logger *zap.SugaredLogger, opts Options) *Services {
	filter := opts.Filter
	if filter == nil {
		filter = NewContentFilter(nil, logger)
	}

	notification := NewNotificationService(db, logger, opts.Pusher)
	friend := NewFriendService(db, logger, notification)
	user := NewUserService(db, logger, opts.Cache)

	return &Services{
		User:         user,
		Friend:       friend,
		Post:         NewPostService(db, logger, filter, friend, user),
		Like:         NewLikeService(db, logger, notification),
		Comment:      NewCommentService(db, logger, filter, notification),
		Message:      NewMessageService(db, logger, friend, notification),
		Notification: notification,
		Advice:       NewAdviceService(db, logger, filter),
		Health:       NewHealthService(db),
		Stats:        NewStatsService(db),
		Transfer:     NewTransferService(db, logger),
		Filter:       filter,
	}
}
