package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

type SubscriptionHandler struct {
	log                 *logger.Logger
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(log *logger.Logger, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		log:                 log.With("handler", "SubscriptionHandler"),
		subscriptionService: subscriptionService,
	}
}

// POST /subscriptions/c/:channelId
func (h *SubscriptionHandler) ToggleSubscription(c *gin.Context) {
	channelID, ok := uuidParam(c, "channelId")
	if !ok {
		return
	}
	res, err := h.subscriptionService.ToggleSubscription(requestDBC(c), channelID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	msg := "Channel unsubscribed successfully"
	if res.State == social.StatePresent {
		msg = "Channel subscribed successfully"
	}
	response.RespondOK(c, res.Edge, msg)
}

// GET /subscriptions/c/:channelId
func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	channelID, ok := uuidParam(c, "channelId")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	out, err := h.subscriptionService.ListSubscribers(requestDBC(c), channelID, page)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "Subscribers fetched successfully")
}

// GET /subscriptions/u/:subscriberId
func (h *SubscriptionHandler) ListSubscribedChannels(c *gin.Context) {
	subscriberID, ok := uuidParam(c, "subscriberId")
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	out, err := h.subscriptionService.ListSubscribedChannels(requestDBC(c), subscriberID, page)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out, "Subscribed channels fetched successfully")
}
