package model

// Like 动态点赞，同一用户对同一动态只有一条记录
type Like struct {
	Base
	UserID uint `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID uint `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Like) TableName() string {
	return "likes"
}

// 好友关系状态
const (
	FriendshipNone     = "none"
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// Friendship 好友关系，FollowerID 为发起方，FollowingID 为接收方
type Friendship struct {
	Base
	FollowerID  uint   `gorm:"not null;uniqueIndex:idx_friendship_pair;index" json:"follower_id"`
	FollowingID uint   `gorm:"not null;uniqueIndex:idx_friendship_pair;index" json:"following_id"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName 指定表名
func (Friendship) TableName() string {
	return "friendships"
}

// Other 返回关系中另一方的用户ID
func (f *Friendship) Other(userID uint) uint {
	if f.FollowerID == userID {
		return f.FollowingID
	}
	return f.FollowerID
}
