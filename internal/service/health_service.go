package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 健康状态
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthStatus 健康检查结果
type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// HealthService 健康检查服务
type HealthService struct {
	db *gorm.DB
}

// NewHealthService 创建健康检查服务实例
func NewHealthService(db *gorm.DB) *HealthService {
	return &HealthService{db: db}
}

// Check 检查数据库连接，ping失败时状态为degraded
func (s *HealthService) Check(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Status:    HealthOK,
		Database:  s.db.Dialector.Name(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.ping(ctx); err != nil {
		status.Status = HealthDegraded
		return status, err
	}
	return status, nil
}

func (s *HealthService) ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("数据库ping失败: %w", err)
	}
	return nil
}
