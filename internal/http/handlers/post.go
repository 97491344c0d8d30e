package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type PostHandler struct {
	log         *logger.Logger
	postService services.PostService
}

func NewPostHandler(log *logger.Logger, postService services.PostService) *PostHandler {
	return &PostHandler{log: log.With("handler", "PostHandler"), postService: postService}
}

// POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, bindError("PostHandler.CreatePost", err))
		return
	}
	post, err := h.postService.CreatePost(requestDBC(c), body.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, post, "Post successfully created")
}

// GET /posts/user/:userId
func (h *PostHandler) ListPostsByOwner(c *gin.Context) {
	ownerID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	out, err := h.postService.ListPostsByOwner(requestDBC(c), ownerID, page)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "Posts fetched successfully")
}

// PATCH /posts/:postId
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := uuidParam(c, "postId")
	if !ok {
		return
	}
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, bindError("PostHandler.UpdatePost", err))
		return
	}
	post, err := h.postService.UpdatePost(requestDBC(c), postID, body.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, post, "Post updated successfully")
}

// DELETE /posts/:postId
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := uuidParam(c, "postId")
	if !ok {
		return
	}
	post, err := h.postService.DeletePost(requestDBC(c), postID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, post, "Post deleted successfully")
}
