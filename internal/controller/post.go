package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/nsxzhou1114/social-api/internal/dto"
	"github.com/nsxzhou1114/social-api/internal/logger"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/pkg/response"
	"go.uber.org/zap"
)

// PostApi 动态API控制器
type PostApi struct {
	logger      *zap.SugaredLogger
	postService *service.PostService
	likeService *service.LikeService
}

// NewPostApi 创建动态API实例
func NewPostApi(services *service.Services) *PostApi {
	return &PostApi{
		logger:      logger.GetSugaredLogger(),
		postService: services.Post,
		likeService: services.Like,
	}
}

// Feed 获取动态流
func (api *PostApi) Feed(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.FeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误", err)
		return
	}

	posts, total, err := api.postService.Feed(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, api.logger, err, "获取动态失败")
		return
	}
	response.SuccessPage(c, "获取成功", posts, req.Page, req.Limit, total)
}

// Create 发布动态
func (api *PostApi) Create(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "内容不能为空", err)
		return
	}

	post, err := api.postService.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		handleError(c, api.logger, err, "发布动态失败")
		return
	}
	response.Success(c, "发布成功", post)
}

// Get 获取动态详情
func (api *PostApi) Get(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	post, err := api.postService.Get(c.Request.Context(), userID, postID)
	if err != nil {
		handleError(c, api.logger, err, "获取动态失败")
		return
	}
	response.Success(c, "获取成功", post)
}

// Update 修改动态
func (api *PostApi) Update(c *gin.Context) {
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
		response.BadRequest(c, "内容不能为空", err)
		return
	}

	post, err := api.postService.Update(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		handleError(c, api.logger, err, "修改动态失败")
		return
	}
	response.Success(c, "修改成功", post)
}

// Delete 删除动态
func (api *PostApi) Delete(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := api.postService.Delete(c.Request.Context(), userID, role, postID); err != nil {
		handleError(c, api.logger, err, "删除动态失败")
		return
	}
	response.Success(c, "删除成功", nil)
}

// Like 点赞动态
func (api *PostApi) Like(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := api.likeService.LikePost(c.Request.Context(), userID, postID)
	if err != nil {
		handleError(c, api.logger, err, "点赞失败")
		return
	}
	response.Success(c, "点赞成功", result)
}

// Unlike 取消点赞动态
func (api *PostApi) Unlike(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := api.likeService.UnlikePost(c.Request.Context(), userID, postID)
	if err != nil {
		handleError(c, api.logger, err, "取消点赞失败")
		return
	}
	response.Success(c, "已取消点赞", result)
}
