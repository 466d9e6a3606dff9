package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdviceService 建议服务
type AdviceService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	filter *ContentFilter
}

// NewAdviceService 创建建议服务实例
func NewAdviceService(db *gorm.DB, logger *zap.SugaredLogger, filter *ContentFilter) *AdviceService {
	return &AdviceService{
		db:     db,
		logger: logger,
		filter: filter,
	}
}

// List 获取建议列表，category为空或todos时返回全部分类
func (s *AdviceService) List(ctx context.Context, category string) ([]dto.AdviceResponse, error) {
	query := s.db.WithContext(ctx).Preload("Author")
	if category != "" && category != model.AdviceCategoryAll {
		query = query.Where("category = ?", category)
	}

	var advices []model.Advice
	if err := query.Order("created_at DESC").Order("id DESC").Limit(20).Find(&advices).Error; err != nil {
		return nil, fmt.Errorf("获取建议列表失败: %w", err)
	}

	list := make([]dto.AdviceResponse, 0, len(advices))
	for i := range advices {
		list = append(list, toAdviceResponse(&advices[i]))
	}
	return list, nil
}

// Create 发布建议
func (s *AdviceService) Create(ctx context.Context, userID uint, req *dto.AdviceCreateRequest) (*dto.AdviceResponse, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.AdviceCategoryDefault
	}
	if !model.IsAdviceCategory(category) {
		return nil, ErrInvalidCategory
	}

	title, err := s.filter.Clean(req.Title)
	if err != nil {
		return nil, err
	}
	content, err := s.filter.Clean(req.Content)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	advice := &model.Advice{
		Title:    title,
		Content:  content,
		Category: category,
		AuthorID: userID,
	}
	if err := db.Create(advice).Error; err != nil {
		return nil, fmt.Errorf("发布建议失败: %w", err)
	}
	if err := db.First(&advice.Author, userID).Error; err != nil {
		return nil, fmt.Errorf("查询作者失败: %w", err)
	}

	resp := toAdviceResponse(advice)
	return &resp, nil
}

// Categories 返回允许的分类
func (s *AdviceService) Categories() []string {
	return append([]string(nil), model.AdviceCategories...)
}

func toAdviceResponse(a *model.Advice) dto.AdviceResponse {
	return dto.AdviceResponse{
		ID:         a.ID,
		Title:      a.Title,
		Content:    a.Content,
		Category:   a.Category,
		AuthorID:   a.AuthorID,
		AuthorName: a.Author.Name,
		CreatedAt:  dto.FormatTime(a.CreatedAt),
	}
}
