package service

import "errors"

// 业务错误，控制器根据这些错误决定HTTP状态码
var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailExists          = errors.New("邮箱已被注册")
	ErrInvalidCredentials   = errors.New("邮箱或密码错误")
	ErrUserDisabled         = errors.New("账号已被禁用")
	ErrWrongPassword        = errors.New("原密码错误")
	ErrInvalidUserStatus    = errors.New("无效的用户状态")
	ErrEmptyContent         = errors.New("内容不能为空")
	ErrPostNotFound         = errors.New("动态不存在")
	ErrCommentNotFound      = errors.New("评论不存在")
	ErrForbidden            = errors.New("无权操作")
	ErrSelfFriend           = errors.New("不能添加自己为好友")
	ErrFriendRequestExists  = errors.New("好友请求已存在")
	ErrFriendRequestMissing = errors.New("好友请求不存在")
	ErrSelfMessage          = errors.New("不能给自己发消息")
	ErrNotFriends           = errors.New("你们还不是好友")
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrInvalidCategory      = errors.New("无效的分类")
	ErrInvalidSince         = errors.New("since参数格式错误，应为RFC3339时间")
)
