package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// CommentApi 评论API控制器
type CommentApi struct {
	logger         *zap.SugaredLogger
	commentService *service.CommentService
	likeService    *service.LikeService
}

// NewCommentApi 创建评论API实例
func NewCommentApi(services *service.Services) *CommentApi {
	return &CommentApi{
		logger:         logger.GetSugaredLogger(),
		commentService: services.Comment,
		likeService:    services.Like,
	}
}

// List 获取动态的评论
func (api *CommentApi) List(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := api.commentService.List(c.Request.Context(), userID, postID)
	if err != nil {
		handleError(c, api.logger, err, "获取评论失败")
		return
	}
	response.Success(c, "获取成功", comments)
}

// Create 发表评论
func (api *CommentApi) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "评论内容不能为空", err)
		return
	}

	comment, err := api.commentService.Create(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		handleError(c, api.logger, err, "发表评论失败")
		return
	}
	response.Success(c, "评论成功", comment)
}

// Update 修改评论
func (api *CommentApi) Update(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "评论内容不能为空", err)
		return
	}

	comment, err := api.commentService.Update(c.Request.Context(), userID, commentID, req.Content)
	if err != nil {
		handleError(c, api.logger, err, "修改评论失败")
		return
	}
	response.Success(c, "修改成功", comment)
}

// Delete 删除评论
func (api *CommentApi) Delete(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.commentService.Delete(c.Request.Context(), userID, role, commentID, 0); err != nil {
		handleError(c, api.logger, err, "删除评论失败")
		return
	}
	response.Success(c, "删除成功", nil)
}

// DeleteOnPost 删除指定动态下的评论
func (api *CommentApi) DeleteOnPost(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	if err := api.commentService.Delete(c.Request.Context(), userID, role, commentID, postID); err != nil {
		handleError(c, api.logger, err, "删除评论失败")
		return
	}
	response.Success(c, "删除成功", nil)
}

// Like 点赞评论
func (api *CommentApi) Like(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	result, err := api.likeService.LikeComment(c.Request.Context(), userID, postID, commentID)
	if err != nil {
		handleError(c, api.logger, err, "点赞评论失败")
		return
	}
	response.Success(c, "点赞成功", result)
}

// Unlike 取消点赞评论
func (api *CommentApi) Unlike(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	result, err := api.likeService.UnlikeComment(c.Request.Context(), userID, postID, commentID)
	if err != nil {
		handleError(c, api.logger, err, "取消点赞评论失败")
		return
	}
	response.Success(c, "已取消点赞", result)
}
