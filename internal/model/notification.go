package model

// 通知类型
const (
	NotificationLike           = "like"
	NotificationComment        = "comment"
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
	NotificationMessage        = "message"
)

// Notification 通知模型
type Notification struct {
	Base
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	Type          string `gorm:"type:varchar(30);not null;index" json:"type"`
	Content       string `gorm:"type:text;not null" json:"content"`
	RelatedUserID *uint  `gorm:"index" json:"related_user_id"`
	PostID        *uint  `gorm:"index" json:"post_id"`
	IsRead        bool   `gorm:"not null;default:false;index" json:"is_read"`

	RelatedUser *User `gorm:"foreignKey:RelatedUserID" json:"related_user,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
