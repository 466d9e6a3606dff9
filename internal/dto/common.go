package dto

import "time"

// TimeLayout 接口返回的时间格式
const TimeLayout = time.RFC3339

// FormatTime 格式化时间为UTC的RFC3339字符串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// PageRequest 分页请求
type PageRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize 填充默认分页参数
func (p *PageRequest) Normalize(defaultLimit int) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset 计算偏移量
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ContentRequest 只包含正文的请求
type ContentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}

// UserBriefInfo 用户简要信息
type UserBriefInfo struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}
