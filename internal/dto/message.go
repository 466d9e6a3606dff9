package dto

// SendMessageRequest 发送私信请求
type SendMessageRequest struct {
	ToUserID uint   `json:"to_user_id" binding:"required"`
	Content  string `json:"content" binding:"required,notblank,max=5000"`
}

// MessageResponse 私信响应
type MessageResponse struct {
	ID           uint   `json:"id"`
	FromUserID   uint   `json:"from_user_id"`
	ToUserID     uint   `json:"to_user_id"`
	Content      string `json:"content"`
	IsRead       bool   `json:"is_read"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar"`
	CreatedAt    string `json:"created_at"`
}

// ConversationResponse 会话列表项
type ConversationResponse struct {
	FriendID        uint   `json:"friend_id"`
	FriendName      string `json:"friend_name"`
	FriendAvatar    string `json:"friend_avatar"`
	LastMessage     string `json:"last_message"`
	LastMessageTime string `json:"last_message_time"`
	UnreadCount     int64  `json:"unread_count"`
}

// MarkReadResponse 标记已读结果
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
