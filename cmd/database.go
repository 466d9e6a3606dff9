package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/spf13/cobra"
)

var cleanupDays int

// databaseCmd 数据库管理命令
var databaseCmd = &cobra.Command{
	Use:   "db",
	Short: "数据库管理命令",
	Long:  `数据库管理相关的命令，包括建表、清理、导入导出等`,
}

// initTablesCmd 初始化数据库表命令
// 示例：./social-api db init-tables
var initTablesCmd = &cobra.Command{
	Use:   "init-tables",
	Short: "初始化数据库表",
	Long:  `自动迁移全部数据库表`,
	Run: func(cmd *cobra.Command, args []string) {
		initializeTables()
	},
}

// cleanupDBCmd 清理数据库命令
// 示例：./social-api db cleanup --days 30
var cleanupDBCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "清理数据库",
	Long:  `删除超过指定天数的已读通知`,
	Run: func(cmd *cobra.Command, args []string) {
		cleanupDatabase()
	},
}

// exportCmd 导出数据命令
// 示例：./social-api db export backup.json
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "导出数据",
	Long:  `导出用户、动态和建议到JSON文件`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exportData(args[0])
	},
}

// importCmd 导入数据命令
// 示例：./social-api db import backup.json
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "导入数据",
	Long:  `从JSON文件导入用户、动态和建议，已存在的ID会被跳过`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		importData(args[0])
	},
}

func init() {
	cleanupDBCmd.Flags().IntVarP(&cleanupDays, "days", "d", 0, "保留天数，默认使用cron.retention_days")

	// 添加数据库相关子命令
	databaseCmd.AddCommand(initTablesCmd)
	databaseCmd.AddCommand(cleanupDBCmd)
	databaseCmd.AddCommand(exportCmd)
	databaseCmd.AddCommand(importCmd)

	rootCmd.AddCommand(databaseCmd)
}

// initializeTables 初始化数据库表
func initializeTables() {
	mustInitialize()

	fmt.Printf("数据库表初始化完成，共 %d 张表\n", len(model.Models()))
}

// cleanupDatabase 清理已读通知
func cleanupDatabase() {
	services := newServices(mustInitialize())

	days := cleanupDays
	if days <= 0 {
		days = config.GlobalConfig.Cron.RetentionDays
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := services.Notification.CleanupRead(ctx, days)
	if err != nil {
		fmt.Printf("清理失败: %v\n", err)
		return
	}
	fmt.Printf("已删除 %d 条超过 %d 天的已读通知\n", deleted, days)
}

// exportData 导出数据到文件
func exportData(filename string) {
	services := newServices(mustInitialize())

	file, err := os.Create(filename)
	if err != nil {
		fmt.Printf("创建文件失败: %v\n", err)
		return
	}
	defer file.Close()

	dump, err := services.Transfer.Export(context.Background(), file)
	if err != nil {
		fmt.Printf("导出失败: %v\n", err)
		return
	}
	fmt.Printf("导出完成: 用户 %d, 动态 %d, 建议 %d -> %s\n",
		len(dump.Users), len(dump.Posts), len(dump.Advices), filename)
}

// importData 从文件导入数据
func importData(filename string) {
	services := newServices(mustInitialize())

	file, err := os.Open(filename)
	if err != nil {
		fmt.Printf("打开文件失败: %v\n", err)
		return
	}
	defer file.Close()

	result, err := services.Transfer.Import(context.Background(), file)
	if err != nil {
		fmt.Printf("导入失败: %v\n", err)
		return
	}
	fmt.Printf("导入完成: 用户 %d, 动态 %d, 建议 %d\n", result.Users, result.Posts, result.Advices)
}
