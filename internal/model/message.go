package model

// Message 私信
type Message struct {
	Base
	FromUserID uint   `gorm:"not null;index" json:"from_user_id"`
	ToUserID   uint   `gorm:"not null;index" json:"to_user_id"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsRead     bool   `gorm:"not null;default:false" json:"is_read"`

	FromUser User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}
