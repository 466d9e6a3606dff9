package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nsxzhou1114/social-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExportUser 导出的用户，包含密码哈希以便导入后仍可登录
type ExportUser struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	CoverImage   string    `json:"cover_image"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExportPost 导出的动态
type ExportPost struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportAdvice 导出的建议
type ExportAdvice struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	AuthorID  uint      `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Dump 导出文件格式
type Dump struct {
	ExportedAt time.Time      `json:"exported_at"`
	Users      []ExportUser   `json:"users"`
	Posts      []ExportPost   `json:"posts"`
	Advices    []ExportAdvice `json:"advices"`
}

// ImportResult 导入结果，已存在的ID会被跳过
type ImportResult struct {
	Users   int64
	Posts   int64
	Advices int64
}

// TransferService 数据导入导出服务
type TransferService struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewTransferService 创建导入导出服务实例
func NewTransferService(db *gorm.DB, logger *zap.SugaredLogger) *TransferService {
	return &TransferService{db: db, logger: logger}
}

// Export 导出用户、动态和建议到w
func (s *TransferService) Export(ctx context.Context, w io.Writer) (*Dump, error) {
	db := s.db.WithContext(ctx)
	dump := &Dump{ExportedAt: time.Now().UTC()}

	var users []model.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("导出用户失败: %w", err)
	}
	for _, u := range users {
		dump.Users = append(dump.Users, ExportUser{
			ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.Password,
			Avatar: u.Avatar, Bio: u.Bio, CoverImage: u.CoverImage,
			Role: u.Role, Status: u.Status, CreatedAt: u.CreatedAt,
		})
	}

	var posts []model.Post
	if err := db.Order("id ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("导出动态失败: %w", err)
	}
	for _, p := range posts {
		dump.Posts = append(dump.Posts, ExportPost{ID: p.ID, UserID: p.UserID, Content: p.Content, CreatedAt: p.CreatedAt})
	}

	var advices []model.Advice
	if err := db.Order("id ASC").Find(&advices).Error; err != nil {
		return nil, fmt.Errorf("导出建议失败: %w", err)
	}
	for _, a := range advices {
		dump.Advices = append(dump.Advices, ExportAdvice{
			ID: a.ID, Title: a.Title, Content: a.Content, Category: a.Category,
			AuthorID: a.AuthorID, CreatedAt: a.CreatedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dump); err != nil {
		return nil, fmt.Errorf("写入导出文件失败: %w", err)
	}
	return dump, nil
}

// Import 从r导入数据，在一个事务中完成
func (s *TransferService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var dump Dump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("解析导入文件失败: %w", err)
	}

	result := &ImportResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 已存在的ID跳过
		insert := func(value interface{}) *gorm.DB {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
		}
		for _, u := range dump.Users {
			res := insert(&model.User{
				Base: model.Base{ID: u.ID, CreatedAt: u.CreatedAt},
				Name: u.Name, Email: NormalizeEmail(u.Email), Password: u.PasswordHash,
				Avatar: u.Avatar, Bio: u.Bio, CoverImage: u.CoverImage,
				Role: u.Role, Status: u.Status,
			})
			if res.Error != nil {
				return fmt.Errorf("导入用户 %d 失败: %w", u.ID, res.Error)
			}
			result.Users += res.RowsAffected
		}
		for _, p := range dump.Posts {
			res := insert(&model.Post{
				Base:   model.Base{ID: p.ID, CreatedAt: p.CreatedAt},
				UserID: p.UserID, Content: p.Content,
			})
			if res.Error != nil {
				return fmt.Errorf("导入动态 %d 失败: %w", p.ID, res.Error)
			}
			result.Posts += res.RowsAffected
		}
		for _, a := range dump.Advices {
			res := insert(&model.Advice{
				Base:  model.Base{ID: a.ID, CreatedAt: a.CreatedAt},
				Title: a.Title, Content: a.Content, Category: a.Category, AuthorID: a.AuthorID,
			})
			if res.Error != nil {
				return fmt.Errorf("导入建议 %d 失败: %w", a.ID, res.Error)
			}
			result.Advices += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("导入完成: users=%d posts=%d advices=%d", result.Users, result.Posts, result.Advices)
	return result, nil
}
