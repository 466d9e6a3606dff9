package model

import (
	"fmt"
	"net/url"
	"time"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User 用户模型
type User struct {
	Base
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password    string     `gorm:"type:varchar(100);not null" json:"-"`
	Avatar      string     `gorm:"type:text" json:"avatar"`
	Bio         string     `gorm:"type:text" json:"bio"`
	CoverImage  string     `gorm:"type:text" json:"cover_image"`
	Role        string     `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`

	Interests []UserInterest `gorm:"foreignKey:UserID" json:"interests,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsActive 账号是否可用
func (u *User) IsActive() bool {
	return u.Status != UserStatusDisabled
}

// DisplayAvatar 未设置头像时返回按名字生成的默认头像
func (u *User) DisplayAvatar() string {
	if u.Avatar != "" {
		return u.Avatar
	}
	return DefaultAvatar(u.Name)
}

// DefaultAvatar 按名字生成默认头像地址
func DefaultAvatar(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=4F46E5&color=fff&size=128", url.QueryEscape(name))
}

// UserInterest 用户兴趣
type UserInterest struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Interest string `gorm:"type:varchar(100);not null" json:"interest"`
}

// TableName 指定表名
func (UserInterest) TableName() string {
	return "user_interests"
}
