package model

import (
	"fmt"

	"gorm.io/gorm"
)

// 需要自动迁移的模型列表
var models = []interface{}{
	&User{},
	&UserInterest{},
	&Post{},
	&Like{},
	&Comment{},
	&CommentLike{},
	&Friendship{},
	&Message{},
	&Notification{},
	&Advice{},
}

// InitTables 初始化数据库表
func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("自动迁移数据库表失败: %w", err)
	}
	return nil
}

// Models 返回全部模型，供命令行工具统计和导出使用
func Models() []interface{} {
	return models
}
