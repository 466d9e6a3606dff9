package dto

// NotificationListRequest 通知列表请求
type NotificationListRequest struct {
	PageRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID                uint   `json:"id"`
	Type              string `json:"type"`
	Content           string `json:"content"`
	IsRead            bool   `json:"is_read"`
	RelatedUserID     *uint  `json:"related_user_id"`
	RelatedUserName   string `json:"related_user_name,omitempty"`
	RelatedUserAvatar string `json:"related_user_avatar,omitempty"`
	PostID            *uint  `json:"post_id,omitempty"`
	CreatedAt         string `json:"created_at"`
}

// NotificationListMeta 通知列表元数据
type NotificationListMeta struct {
	Page        int   `json:"page"`
	Size        int   `json:"size"`
	Total       int64 `json:"total"`
	UnreadCount int64 `json:"unread_count"`
}

// NotificationUnreadCountResponse 未读通知数量响应
type NotificationUnreadCountResponse struct {
	Count int64 `json:"count"`
}
