package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/database"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/middleware"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/internal/router"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/task"
	"github.com/nsxzhou1114/social-api/internal/validator"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/nsxzhou1114/social-api/pkg/cache"
	"github.com/nsxzhou1114/social-api/pkg/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configPath string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "social-api",
	Short: "社交网络API服务",
	Long:  `社交网络API服务，支持好友、动态、评论、私信、通知和建议等功能`,
}

// serveCmd 启动服务命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	Long:  `启动社交网络API的HTTP服务器`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

func init() {
	// 添加全局标志
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "配置文件目录")

	// 添加子命令
	rootCmd.AddCommand(serveCmd)
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initializeSystem 初始化配置、日志和数据库，命令行工具共用
func initializeSystem() (*gorm.DB, error) {
	// 初始化配置
	if err := config.Init(configPath); err != nil {
		return nil, fmt.Errorf("配置初始化失败: %v", err)
	}

	// 初始化日志
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("日志初始化失败: %v", err)
	}

	db, err := database.Init(&config.GlobalConfig.Database)
	if err != nil {
		return nil, err
	}

	// 初始化数据库表
	if err := model.InitTables(db); err != nil {
		return nil, fmt.Errorf("初始化数据库表失败: %v", err)
	}
	return db, nil
}

// mustInitialize 初始化失败时直接退出
func mustInitialize() *gorm.DB {
	db, err := initializeSystem()
	if err != nil {
		fmt.Printf("系统初始化失败: %v\n", err)
		os.Exit(1)
	}
	return db
}

// newCacheManager 创建缓存管理器，Redis不可用时布隆过滤器只在内存中工作
func newCacheManager(db *gorm.DB, client *redis.Client) *cache.Manager {
	manager := cache.NewManager(client)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := manager.Initialize(ctx, db); err != nil {
		logger.Warn("缓存初始化失败", zap.Error(err))
	}
	return manager
}

// newServices 创建不带实时推送的服务，供命令行工具使用
func newServices(db *gorm.DB) *service.Services {
	return service.NewServices(db, logger.GetSugaredLogger(), service.Options{})
}

// startServer 启动HTTP服务
func startServer() {
	db := mustInitialize()
	defer logger.Sync()
	defer database.Close()

	if err := validator.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}
	config.Watch()

	cfg := config.GlobalConfig
	sugar := logger.GetSugaredLogger()

	// Redis可选，未启用时黑名单、缓存和离线消息使用本地实现
	redisClient := database.GetRedis()
	if redisClient != nil {
		auth.SetBlacklist(auth.NewRedisTokenBlacklist(redisClient))
	}
	cacheManager := newCacheManager(db, redisClient)

	opts := service.Options{
		Cache:  cacheManager,
		Filter: service.NewContentFilter(&cfg.Content, sugar),
	}

	var wsManager *websocket.Manager
	if cfg.Websocket.Enabled {
		var store websocket.MessageStore = websocket.NewMemoryMessageStore()
		if redisClient != nil {
			store = websocket.NewRedisMessageStore(redisClient)
		}
		wsManager = websocket.NewManager(store, sugar)
		wsManager.Start()
		opts.Pusher = wsManager
	}
	services := service.NewServices(db, sugar, opts)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(&cfg.RateLimit)
	}

	var scheduler *task.Scheduler
	if cfg.Cron.Enabled {
		var err error
		scheduler, err = task.NewScheduler(&cfg.Cron, task.Jobs{
			Notifications: services.Notification,
			Cache:         cacheManager,
			RateLimiter:   limiter,
		}, sugar)
		if err != nil {
			logger.Fatal("定时任务初始化失败", zap.Error(err))
		}
		scheduler.Start()
	}

	node, err := snowflake.NewNode(cfg.App.MachineID)
	if err != nil {
		logger.Fatal("请求ID生成器初始化失败", zap.Error(err))
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 初始化路由
	r, err := router.New(services, router.Options{
		Cors:           &cfg.App.Cors,
		Node:           node,
		TrustedProxies: cfg.App.TrustedProxies,
		RateLimiter:    limiter,
		WebSocket:      wsManager,
	})
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	// 启动HTTP服务
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 优雅关闭
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务启动失败", zap.Error(err))
		}
	}()

	logger.Info("服务已启动", zap.String("addr", srv.Addr), zap.String("mode", cfg.App.Mode))

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("关闭服务...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务关闭异常", zap.Error(err))
	}
	if wsManager != nil {
		wsManager.Shutdown()
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	if err := cacheManager.Close(ctx); err != nil {
		logger.Warn("关闭缓存失败", zap.Error(err))
	}

	logger.Info("服务已关闭")
}
