package router

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/controller"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/middleware"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/websocket"
)

// Options 路由的可选依赖
type Options struct {
	Cors           *config.CorsConfig
	Node           *snowflake.Node
	TrustedProxies []string                // 为空时客户端IP只取连接地址
	RateLimiter    *middleware.RateLimiter // 为nil时不限流
	WebSocket      *websocket.Manager      // 为nil时不注册 /api/ws
}

// New 创建带全局中间件的gin引擎并注册路由
func New(services *service.Services, opts Options) (*gin.Engine, error) {
	if opts.Cors == nil {
		opts.Cors = &config.Default().App.Cors
	}
	if opts.Node == nil {
		node, err := snowflake.NewNode(1)
		if err != nil {
			return nil, err
		}
		opts.Node = node
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(
		gin.Recovery(),
		middleware.RequestID(opts.Node),
		logger.GinLogger(),
		middleware.Cors(opts.Cors),
		middleware.Metrics(),
	)
	Setup(r, services, opts)
	return r, nil
}

// Setup 设置API路由
func Setup(r *gin.Engine, services *service.Services, opts Options) {
	r.GET("/metrics", middleware.MetricsHandler())

	// API 路由组
	api := r.Group("/api")
	api.GET("/health", controller.NewHealthApi(services).Check)

	setupAuthRoutes(api, services, opts.RateLimiter)

	// 以下路由均需要访问令牌
	authed := api.Group("", middleware.JWTAuth())
	setupUserRoutes(authed, services)
	setupFriendRoutes(authed, services)
	setupPostRoutes(authed, services)
	setupMessageRoutes(authed, services)
	setupNotificationRoutes(authed, services)
	setupAdviceRoutes(authed, services)
	setupAdminRoutes(authed, services)

	if opts.WebSocket != nil {
		setupWebSocketRoutes(api, opts.WebSocket)
	}
}

// setupAuthRoutes 设置认证相关路由
func setupAuthRoutes(api *gin.RouterGroup, services *service.Services, limiter *middleware.RateLimiter) {
	authApi := controller.NewAuthApi(services)

	authRoutes := api.Group("/auth")
	if limiter != nil {
		authRoutes.Use(limiter.Handler())
	}
	{
		authRoutes.POST("/register", authApi.Register)
		authRoutes.POST("/login", authApi.Login)
		// 刷新令牌需要refresh token
		authRoutes.POST("/refresh", middleware.RefreshAuth(), authApi.RefreshToken)
		authRoutes.POST("/logout", middleware.JWTAuth(), authApi.Logout)
	}
}

// setupUserRoutes 设置用户相关路由
func setupUserRoutes(api *gin.RouterGroup, services *service.Services) {
	userApi := controller.NewUserApi(services)

	userRoutes := api.Group("/users")
	{
		userRoutes.GET("/me", userApi.GetUserInfo)
		userRoutes.PUT("/me", userApi.UpdateUserInfo)
		userRoutes.PUT("/me/password", userApi.ChangePassword)
		userRoutes.GET("/search/:query", userApi.Search)
		userRoutes.GET("/:id", userApi.GetUserDetail)
		userRoutes.GET("/:id/friends", userApi.GetUserFriends)
		userRoutes.GET("/:id/posts", userApi.GetUserPosts)
	}
}

// setupFriendRoutes 设置好友相关路由
func setupFriendRoutes(api *gin.RouterGroup, services *service.Services) {
	friendApi := controller.NewFriendApi(services)

	friendRoutes := api.Group("/friends")
	{
		friendRoutes.GET("", friendApi.List)
		friendRoutes.GET("/requests", friendApi.Requests)
		friendRoutes.GET("/status/:userId", friendApi.Status)
		friendRoutes.POST("/request", friendApi.SendRequest)
		friendRoutes.PUT("/accept/:requesterId", friendApi.Accept)
		friendRoutes.DELETE("/reject/:requesterId", friendApi.Reject)
		friendRoutes.DELETE("/:id", friendApi.Remove)
	}
}

// setupPostRoutes 设置动态、点赞和评论路由
func setupPostRoutes(api *gin.RouterGroup, services *service.Services) {
	postApi := controller.NewPostApi(services)
	commentApi := controller.NewCommentApi(services)

	api.GET("/feed", postApi.Feed)

	postRoutes := api.Group("/posts")
	{
		postRoutes.POST("", postApi.Create)
		postRoutes.GET("/:id", postApi.Get)
		postRoutes.PUT("/:id", postApi.Update)
		postRoutes.DELETE("/:id", postApi.Delete)
		postRoutes.POST("/:id/like", postApi.Like)
		postRoutes.DELETE("/:id/like", postApi.Unlike)

		// 评论路由复用动态的 :id 参数
		postRoutes.GET("/:id/comments", commentApi.List)
		postRoutes.POST("/:id/comments", commentApi.Create)
		postRoutes.DELETE("/:id/comments/:commentId", commentApi.DeleteOnPost)
		postRoutes.POST("/:id/comments/:commentId/like", commentApi.Like)
		postRoutes.DELETE("/:id/comments/:commentId/like", commentApi.Unlike)
	}

	commentRoutes := api.Group("/comments")
	{
		commentRoutes.PUT("/:id", commentApi.Update)
		commentRoutes.DELETE("/:id", commentApi.Delete)
	}
}

// setupMessageRoutes 设置私信路由
func setupMessageRoutes(api *gin.RouterGroup, services *service.Services) {
	messageApi := controller.NewMessageApi(services)

	messageRoutes := api.Group("/messages")
	{
		messageRoutes.POST("", messageApi.Send)
		messageRoutes.GET("/conversations", messageApi.Conversations)
		messageRoutes.GET("/:userId", messageApi.Conversation)
		messageRoutes.PUT("/:userId/read", messageApi.MarkAsRead)
	}
}

// setupNotificationRoutes 设置通知和轮询路由
func setupNotificationRoutes(api *gin.RouterGroup, services *service.Services) {
	notificationApi := controller.NewNotificationApi(services)

	api.GET("/updates", notificationApi.Updates)

	notificationRoutes := api.Group("/notifications")
	{
		notificationRoutes.GET("", notificationApi.List)
		notificationRoutes.GET("/unread-count", notificationApi.UnreadCount)
		notificationRoutes.PUT("/read-all", notificationApi.MarkAllAsRead)
		notificationRoutes.PUT("/:id/read", notificationApi.MarkAsRead)
		notificationRoutes.DELETE("/:id", notificationApi.Delete)
	}
}

func setupAdviceRoutes(api *gin.RouterGroup, services *service.Services) {
	adviceApi := controller.NewAdviceApi(services)

	adviceRoutes := api.Group("/advices")
	{
		adviceRoutes.GET("", adviceApi.List)
		adviceRoutes.POST("", adviceApi.Create)
		adviceRoutes.GET("/categories", adviceApi.Categories)
	}
}

// setupAdminRoutes 设置管理员路由
func setupAdminRoutes(api *gin.RouterGroup, services *service.Services) {
	adminApi := controller.NewAdminApi(services)

	adminRoutes := api.Group("/admin", middleware.AdminAuth())
	{
		adminRoutes.GET("/users", adminApi.ListUsers)
		adminRoutes.PUT("/users/:id/status", adminApi.UpdateUserStatus)
		adminRoutes.GET("/stats", adminApi.Stats)
	}
}

// setupWebSocketRoutes 设置WebSocket路由，令牌通过查询参数传递
func setupWebSocketRoutes(api *gin.RouterGroup, manager *websocket.Manager) {
	wsApi := controller.NewWebSocketApi(manager)

	api.GET("/ws", middleware.QueryTokenAuth(), wsApi.HandleWebSocket)
	api.GET("/users/:id/online", middleware.JWTAuth(), wsApi.OnlineStatus)

	middleware.RegisterGaugeFunc("websocket_online_users", "Number of users with an open websocket.", func() float64 {
		return float64(manager.OnlineCount())
	})
}
