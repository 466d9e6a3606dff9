package dto

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest 用户登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         UserResponse `json:"user"`
}

// UserInfoUpdateRequest 用户资料更新请求，只更新传入的字段
type UserInfoUpdateRequest struct {
	Name       *string   `json:"name" binding:"omitempty,notblank,min=2,max=100"`
	Bio        *string   `json:"bio" binding:"omitempty,max=500"`
	Avatar     *string   `json:"avatar" binding:"omitempty,max=2048"`
	CoverImage *string   `json:"cover_image" binding:"omitempty,max=2048"`
	Interests  *[]string `json:"interests" binding:"omitempty,max=30,dive,max=100"`
}

// ChangePasswordRequest 密码修改请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UserResponse 用户资料响应
type UserResponse struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Avatar       string   `json:"avatar"`
	Bio          string   `json:"bio"`
	CoverImage   string   `json:"cover_image"`
	Role         string   `json:"role"`
	Interests    []string `json:"interests"`
	FriendsCount int64    `json:"friends_count"`
	PostsCount   int64    `json:"posts_count"`
	CreatedAt    string   `json:"created_at"`
}

// UserStatusRequest 修改用户状态请求（管理员）
type UserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// AdminUserItem 管理端用户列表项
type AdminUserItem struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	LastLoginAt string `json:"last_login_at"`
	CreatedAt   string `json:"created_at"`
}

// StatsResponse 数据统计
type StatsResponse struct {
	Users         int64 `json:"users"`
	Posts         int64 `json:"posts"`
	Comments      int64 `json:"comments"`
	Likes         int64 `json:"likes"`
	Friendships   int64 `json:"friendships"`
	Messages      int64 `json:"messages"`
	Notifications int64 `json:"notifications"`
	Advices       int64 `json:"advices"`
}
