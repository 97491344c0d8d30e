package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type CommentHandler struct {
	log            *logger.Logger
	commentService services.CommentService
}

func NewCommentHandler(log *logger.Logger, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{log: log.With("handler", "CommentHandler"), commentService: commentService}
}

// GET /comments/:videoId
func (h *CommentHandler) ListComments(c *gin.Context) {
	videoID, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	out, err := h.commentService.ListComments(requestDBC(c), videoID, page)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "Comments fetched successfully")
}

// POST /comments/:videoId
func (h *CommentHandler) AddComment(c *gin.Context) {
	videoID, ok := uuidParam(c, "videoId")
	if !ok {
		return
	}
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, bindError("CommentHandler.AddComment", err))
		return
	}
	comment, err := h.commentService.AddComment(requestDBC(c), videoID, body.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, comment, "Successfully added comment on this video")
}

// PATCH /comments/c/:commentId
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID, ok := uuidParam(c, "commentId")
	if !ok {
		return
	}
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, bindError("CommentHandler.UpdateComment", err))
		return
	}
	comment, err := h.commentService.UpdateComment(requestDBC(c), commentID, body.Content)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, comment, "Comment updated successfully")
}

// DELETE /comments/c/:commentId
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID, ok := uuidParam(c, "commentId")
	if !ok {
		return
	}
	comment, err := h.commentService.DeleteComment(requestDBC(c), commentID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, comment, "Comment deleted successfully")
}
