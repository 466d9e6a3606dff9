package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/glebarez/sqlite"
	"github.com/nsxzhou1114/social-api/internal/config"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db    *gorm.DB
	dbOne sync.Once
)

// dialector 根据驱动名选择gorm方言
func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	dsn := cfg.BuildDSN()
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}
}

// gormLogLevel 将配置的日志级别转换为gorm日志级别
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// GormConfig 返回统一的gorm配置
func GormConfig(level string) *gorm.Config {
	return &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormLogLevel(level)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open 打开数据库连接，连接失败时按配置重试
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	var conn *gorm.DB
	attempts := cfg.ConnectRetries
	if attempts == 0 {
		attempts = 1
	}
	err = retry.Do(
		func() error {
			var openErr error
			conn, openErr = gorm.Open(dial, GormConfig(cfg.LogLevel))
			if openErr != nil {
				return openErr
			}
			sqlDB, openErr := conn.DB()
			if openErr != nil {
				return openErr
			}
			return sqlDB.Ping()
		},
		retry.Attempts(attempts),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("数据库连接失败，准备重试", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库连接池失败: %w", err)
	}

	if cfg.Driver == "sqlite" || cfg.Driver == "" {
		// sqlite 只允许单写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logger.Info("数据库连接成功", zap.String("driver", conn.Dialector.Name()))
	return conn, nil
}

// Init 使用配置初始化全局数据库连接
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	dbOne.Do(func() {
		db, err = Open(cfg)
	})
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, fmt.Errorf("数据库初始化失败")
	}
	return db, nil
}

// Close 关闭数据库连接
func Close() {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
