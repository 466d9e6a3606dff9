package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/model"
	"github.com/nsxzhou1114/social-api/pkg/auth"
	"github.com/nsxzhou1114/social-api/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户服务
type UserService struct {
	db         *gorm.DB
	logger     *zap.SugaredLogger
	cache      cache.Cache       // 可为nil
	userFilter cache.BloomFilter // 可为nil
}

// NewUserService 创建用户服务实例，cacheManager为nil时不使用缓存和布隆过滤器
func NewUserService(db *gorm.DB, logger *zap.SugaredLogger, cacheManager *cache.Manager) *UserService {
	s := &UserService{
		db:     db,
		logger: logger,
	}
	if cacheManager != nil {
		s.cache = cacheManager.GetCache()
		s.userFilter = cacheManager.GetUserFilter()
	}
	return s
}

// NormalizeEmail 邮箱统一转为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 用户注册
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, *auth.TokenPair, error) {
	user, err := s.CreateUser(ctx, req.Name, req.Email, req.Password, model.RoleUser)
	if err != nil {
		return nil, nil, err
	}

	tokenPair, err := auth.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return user, tokenPair, nil
}

// CreateUser 创建用户，命令行创建管理员也使用该方法
func (s *UserService) CreateUser(ctx context.Context, name, email, password, role string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("检查邮箱失败: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Avatar:   model.DefaultAvatar(name),
		Role:     role,
		Status:   model.UserStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	s.rememberUser(ctx, user.ID)
	s.logger.Infof("新用户注册: id=%d email=%s", user.ID, user.Email)
	return user, nil
}

// Login 用户登录
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*model.User, *auth.TokenPair, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, nil, ErrUserDisabled
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		s.logger.Warnf("更新最后登录时间失败: %v", err)
	}
	user.LastLoginAt = &now

	tokenPair, err := auth.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("生成令牌失败: %w", err)
	}
	return &user, tokenPair, nil
}

// RefreshToken 使用刷新令牌换取新的令牌对，禁用账号不能刷新
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != auth.RefreshToken {
		return nil, auth.ErrTokenType
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, ErrUserDisabled
	}
	return auth.RefreshAccessToken(refreshToken)
}

// Logout 用户登出，令牌加入黑名单直到过期
func (s *UserService) Logout(accessToken string) error {
	if err := auth.RevokeToken(accessToken); err != nil {
		return fmt.Errorf("撤销令牌失败: %w", err)
	}
	return nil
}

// GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// Exists 判断用户是否存在，布隆过滤器只作提示，判定不存在时仍以数据库为准
func (s *UserService) Exists(ctx context.Context, id uint) (bool, error) {
	element := strconv.FormatUint(uint64(id), 10)
	known := false
	if s.userFilter != nil {
		maybe, err := s.userFilter.Test(ctx, element)
		known = err == nil && maybe
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询用户失败: %w", err)
	}
	if count > 0 && !known {
		s.rememberUser(ctx, id)
	}
	return count > 0, nil
}

// rememberUser 记录用户ID到布隆过滤器
func (s *UserService) rememberUser(ctx context.Context, id uint) {
	if s.userFilter == nil {
		return
	}
	if err := s.userFilter.Add(ctx, strconv.FormatUint(uint64(id), 10)); err != nil {
		s.logger.Warnf("更新用户布隆过滤器失败: %v", err)
	}
}

// GetProfile 获取用户资料，基础资料走缓存，好友数和动态数实时统计
func (s *UserService) GetProfile(ctx context.Context, id uint) (*dto.UserResponse, error) {
	profile, err := s.loadProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Friendship{}).
		Where("(follower_id = ? OR following_id = ?) AND status = ?", id, id, model.FriendshipAccepted).
		Count(&profile.FriendsCount).Error; err != nil {
		return nil, fmt.Errorf("统计好友数失败: %w", err)
	}
	if err := db.Model(&model.Post{}).Where("user_id = ?", id).Count(&profile.PostsCount).Error; err != nil {
		return nil, fmt.Errorf("统计动态数失败: %w", err)
	}
	return profile, nil
}

// loadProfile 读取基础资料，优先读缓存
func (s *UserService) loadProfile(ctx context.Context, id uint) (*dto.UserResponse, error) {
	key := fmt.Sprintf(cache.UserProfileKey, id)
	if s.cache != nil {
		var cached dto.UserResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warnf("读取用户资料缓存失败: %v", err)
		}
	}

	var user model.User
	if err := s.db.WithContext(ctx).Preload("Interests").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	s.rememberUser(ctx, user.ID)
	profile := GenerateUserResponse(&user)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, profile, cache.UserProfileExpiration); err != nil {
			s.logger.Warnf("写入用户资料缓存失败: %v", err)
		}
	}
	return profile, nil
}

// invalidateProfile 删除用户资料缓存
func (s *UserService) invalidateProfile(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf(cache.UserProfileKey, id)); err != nil {
		s.logger.Warnf("删除用户资料缓存失败: %v", err)
	}
}

// UpdateProfile 更新用户资料，只更新请求中出现的字段
func (s *UserService) UpdateProfile(ctx context.Context, id uint, req *dto.UserInfoUpdateRequest) (*dto.UserResponse, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*req.Avatar)
	}
	if req.CoverImage != nil {
		updates["cover_image"] = strings.TrimSpace(*req.CoverImage)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				return fmt.Errorf("更新用户信息失败: %w", err)
			}
		}

		if req.Interests != nil {
			if err := tx.Where("user_id = ?", id).Delete(&model.UserInterest{}).Error; err != nil {
				return fmt.Errorf("删除用户兴趣失败: %w", err)
			}
			interests := normalizeInterests(*req.Interests)
			if len(interests) > 0 {
				rows := make([]model.UserInterest, 0, len(interests))
				for _, interest := range interests {
					rows = append(rows, model.UserInterest{UserID: id, Interest: interest})
				}
				if err := tx.Create(&rows).Error; err != nil {
					return fmt.Errorf("保存用户兴趣失败: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, id)
	return s.GetProfile(ctx, id)
}

// normalizeInterests 去除空白和重复的兴趣，保持原有顺序
func normalizeInterests(interests []string) []string {
	seen := make(map[string]struct{}, len(interests))
	result := make([]string, 0, len(interests))
	for _, interest := range interests {
		interest = strings.TrimSpace(interest)
		if interest == "" {
			continue
		}
		key := strings.ToLower(interest)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, interest)
	}
	return result
}

// ChangePassword 修改密码
func (s *UserService) ChangePassword(ctx context.Context, id uint, req *dto.ChangePasswordRequest) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user, req.NewPassword)
}

// GetUserByEmail 按邮箱获取用户
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// ResetPassword 按邮箱重置密码
func (s *UserService) ResetPassword(ctx context.Context, email, password string) error {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, user, password)
}

func (s *UserService) setPassword(ctx context.Context, user *model.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}
	return nil
}

// Search 按名字或邮箱模糊搜索用户，排除自己
func (s *UserService) Search(ctx context.Context, currentUserID uint, query string) ([]dto.UserBriefInfo, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []dto.UserBriefInfo{}, nil
	}
	pattern := "%" + query + "%"

	var users []model.User
	err := s.db.WithContext(ctx).
		Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?) AND id <> ?", pattern, pattern, currentUserID).
		Order("name ASC").
		Limit(20).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("搜索用户失败: %w", err)
	}

	result := make([]dto.UserBriefInfo, 0, len(users))
	for i := range users {
		result = append(result, GenerateUserBrief(&users[i]))
	}
	return result, nil
}

// List 分页获取用户列表
func (s *UserService) List(ctx context.Context, page *dto.PageRequest) ([]dto.AdminUserItem, int64, error) {
	page.Normalize(20)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取用户总数失败: %w", err)
	}

	var users []model.User
	if err := db.Order("id ASC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("获取用户列表失败: %w", err)
	}

	items := make([]dto.AdminUserItem, 0, len(users))
	for _, user := range users {
		item := dto.AdminUserItem{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			Status:    user.Status,
			CreatedAt: dto.FormatTime(user.CreatedAt),
		}
		if user.LastLoginAt != nil {
			item.LastLoginAt = dto.FormatTime(*user.LastLoginAt)
		}
		items = append(items, item)
	}
	return items, total, nil
}

// UpdateStatus 修改用户状态
func (s *UserService) UpdateStatus(ctx context.Context, id uint, status string) error {
	if status != model.UserStatusActive && status != model.UserStatusDisabled {
		return ErrInvalidUserStatus
	}
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("status", status).Error; err != nil {
		return fmt.Errorf("更新用户状态失败: %w", err)
	}
	s.invalidateProfile(ctx, id)
	s.logger.Infof("用户状态已更新: id=%d status=%s", id, status)
	return nil
}

// GenerateUserResponse 生成用户资料响应
func GenerateUserResponse(user *model.User) *dto.UserResponse {
	interests := make([]string, 0, len(user.Interests))
	for _, interest := range user.Interests {
		interests = append(interests, interest.Interest)
	}
	return &dto.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Avatar:     user.DisplayAvatar(),
		Bio:        user.Bio,
		CoverImage: user.CoverImage,
		Role:       user.Role,
		Interests:  interests,
		CreatedAt:  dto.FormatTime(user.CreatedAt),
	}
}

// GenerateUserBrief 生成用户简要信息
func GenerateUserBrief(user *model.User) dto.UserBriefInfo {
	return dto.UserBriefInfo{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.DisplayAvatar(),
		Bio:    user.Bio,
	}
}
