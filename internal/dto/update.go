package dto

// UpdatesRequest 轮询请求
type UpdatesRequest struct {
	Since string `form:"since"`
}

// LikeUpdate 新的点赞
type LikeUpdate struct {
	User      string `json:"user"`
	UserID    uint   `json:"user_id"`
	PostID    uint   `json:"post_id"`
	CreatedAt string `json:"created_at"`
}

// CommentUpdate 新的评论
type CommentUpdate struct {
	ID        uint   `json:"id"`
	User      string `json:"user"`
	UserID    uint   `json:"user_id"`
	PostID    uint   `json:"post_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// UpdatesResponse 自since之后的新内容
type UpdatesResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Likes         []LikeUpdate           `json:"likes"`
	Comments      []CommentUpdate        `json:"comments"`
	HasUpdates    bool                   `json:"has_updates"`
	ServerTime    string                 `json:"server_time"`
}
