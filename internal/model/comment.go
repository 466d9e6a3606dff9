package model

// Comment 评论模型
type Comment struct {
	Base
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

// CommentLike 评论点赞，同一用户对同一评论只有一条记录
type CommentLike struct {
	Base
	UserID    uint `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"user_id"`
	CommentID uint `gorm:"not null;uniqueIndex:idx_comment_like_user_comment;index" json:"comment_id"`
}

// TableName 指定表名
func (CommentLike) TableName() string {
	return "comment_likes"
}
