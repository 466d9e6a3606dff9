package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nsxzhou1114/social-api/internal/database"
	"github.com/spf13/cobra"
)

// statsCmd 统计命令
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "统计信息命令",
	Long:  `显示系统统计信息，包括用户、动态、评论、好友关系等数据`,
	Run: func(cmd *cobra.Command, args []string) {
		showSystemStats()
	},
}

// dbStatusCmd 数据库状态命令
var dbStatusCmd = &cobra.Command{
	Use:   "db-status",
	Short: "数据库状态",
	Long:  `显示数据库和Redis连接状态`,
	Run: func(cmd *cobra.Command, args []string) {
		showDatabaseStatus()
	},
}

func init() {
	statsCmd.AddCommand(dbStatusCmd)

	// 将统计命令添加到根命令
	rootCmd.AddCommand(statsCmd)
}

// showSystemStats 显示系统统计信息
func showSystemStats() {
	services := newServices(mustInitialize())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := services.Stats.Collect(ctx)
	if err != nil {
		fmt.Printf("获取统计信息失败: %v\n", err)
		return
	}

	fmt.Println("=== 系统统计信息 ===")
	fmt.Printf("用户总数: %d\n", stats.Users)
	fmt.Printf("动态总数: %d\n", stats.Posts)
	fmt.Printf("评论总数: %d\n", stats.Comments)
	fmt.Printf("点赞总数: %d\n", stats.Likes)
	fmt.Printf("好友关系: %d\n", stats.Friendships)
	fmt.Printf("私信总数: %d\n", stats.Messages)
	fmt.Printf("通知总数: %d\n", stats.Notifications)
	fmt.Printf("建议总数: %d\n", stats.Advices)
}

// showDatabaseStatus 显示数据库状态
func showDatabaseStatus() {
	db := mustInitialize()
	services := newServices(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("=== 数据库状态 ===")
	status, err := services.Health.Check(ctx)
	fmt.Printf("数据库: %s (%s)\n", status.Database, status.Status)
	if err != nil {
		fmt.Printf("  错误: %v\n", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		dbStats := sqlDB.Stats()
		fmt.Printf("  连接数: 打开 %d, 使用中 %d, 空闲 %d\n", dbStats.OpenConnections, dbStats.InUse, dbStats.Idle)
	}

	redisClient := database.GetRedis()
	if redisClient == nil {
		fmt.Println("Redis: 未启用")
		return
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("Redis: 连接失败 (%v)\n", err)
		return
	}
	dbSize, _ := redisClient.DBSize(ctx).Result()
	fmt.Printf("Redis: 正常 (键数量 %d)\n", dbSize)
}
