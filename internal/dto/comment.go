package dto

// CommentResponse 评论响应
type CommentResponse struct {
	ID         uint   `json:"id"`
	PostID     uint   `json:"post_id"`
	UserID     uint   `json:"user_id"`
	Content    string `json:"content"`
	UserName   string `json:"user_name"`
	UserAvatar string `json:"user_avatar"`
	LikesCount int64  `json:"likes_count"`
	UserLiked  bool   `json:"user_liked"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
