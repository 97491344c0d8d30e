package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type DashboardHandler struct {
	log              *logger.Logger
	dashboardService services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), dashboardService: dashboardService}
}

// GET /dashboard/stats
func (h *DashboardHandler) MyChannelStats(c *gin.Context) { h.stats(c, uuid.Nil) }

// GET /dashboard/channels/:channelId/stats
func (h *DashboardHandler) ChannelStats(c *gin.Context) {
	channelID, ok := uuidParam(c, "channelId")
	if !ok {
		return
	}
	h.stats(c, channelID)
}

func (h *DashboardHandler) stats(c *gin.Context, channelID uuid.UUID) {
	stats, err := h.dashboardService.ChannelStats(requestDBC(c), channelID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, stats, "Channel stats fetched successfully")
}

// GET /dashboard/videos
func (h *DashboardHandler) ChannelVideos(c *gin.Context) {
	req, ok := bindFeed(c)
	if !ok {
		return
	}
	out, err := h.dashboardService.ChannelVideos(requestDBC(c), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "All videos fetched successfully")
}
