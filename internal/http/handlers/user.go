package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

// GET /users/c/:channelId
func (h *UserHandler) GetChannel(c *gin.Context) {
	channelID, ok := uuidParam(c, "channelId")
	if !ok {
		return
	}
	ch, err := h.userService.GetChannel(requestDBC(c), channelID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, ch, "Channel fetched successfully")
}

// GET /users/me/history
func (h *UserHandler) WatchHistory(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	out, err := h.userService.WatchHistory(requestDBC(c), page)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "Watch history fetched successfully")
}
