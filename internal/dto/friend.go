package dto

// FriendRequest 发送好友请求
type FriendRequest struct {
	FriendID uint `json:"friend_id" binding:"required"`
}

// FriendRequestItem 收到的好友请求
type FriendRequestItem struct {
	RequestID uint   `json:"request_id"`
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
	CreatedAt string `json:"created_at"`
}

// FriendStatusResponse 好友关系状态
type FriendStatusResponse struct {
	Status   string `json:"status"`
	IsSender bool   `json:"is_sender"`
}
