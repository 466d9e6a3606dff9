package dto

// FeedRequest 动态流请求
type FeedRequest struct {
	PageRequest
	Scope string `form:"scope" binding:"omitempty,oneof=all friends"`
}

// PostResponse 动态流中的一条动态
type PostResponse struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Content       string `json:"content"`
	UserName      string `json:"user_name"`
	UserAvatar    string `json:"user_avatar"`
	LikesCount    int64  `json:"likes_count"`
	UserLiked     bool   `json:"user_liked"`
	CommentsCount int64  `json:"comments_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// LikeResponse 点赞结果
type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}
