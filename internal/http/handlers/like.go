package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type LikeHandler struct {
	log         *logger.Logger
	likeService services.LikeService
}

func NewLikeHandler(log *logger.Logger, likeService services.LikeService) *LikeHandler {
	return &LikeHandler{log: log.With("handler", "LikeHandler"), likeService: likeService}
}

var likeNouns = map[social.TargetKind]string{
	social.TargetVideo:   "video",
	social.TargetComment: "comment",
	social.TargetPost:    "post",
}

// POST /likes/toggle/v/:videoId
func (h *LikeHandler) ToggleVideoLike(c *gin.Context) { h.toggle(c, social.TargetVideo, "videoId") }

// POST /likes/toggle/c/:commentId
func (h *LikeHandler) ToggleCommentLike(c *gin.Context) {
	h.toggle(c, social.TargetComment, "commentId")
}

// POST /likes/toggle/p/:postId
func (h *LikeHandler) TogglePostLike(c *gin.Context) { h.toggle(c, social.TargetPost, "postId") }

func (h *LikeHandler) toggle(c *gin.Context, kind social.TargetKind, param string) {
	id, ok := uuidParam(c, param)
	if !ok {
		return
	}
	res, err := h.likeService.ToggleLike(requestDBC(c), social.Ref(kind, id))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	msg := "Unliked on a " + likeNouns[kind]
	if res.State == social.StatePresent {
		msg = "Liked on a " + likeNouns[kind]
	}
	response.RespondOK(c, res.Edge, msg)
}

// GET /likes/videos
func (h *LikeHandler) ListLikedVideos(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	out, err := h.likeService.ListLikedVideos(requestDBC(c), page)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "Liked videos fetched successfully")
}
