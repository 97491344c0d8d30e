package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type SubscriptionService interface {
	ToggleSubscription(dbc dbctx.Context, channelID uuid.UUID) (*ToggleResult, error)
	ListSubscribers(dbc dbctx.Context, channelID uuid.UUID, page views.PageRequest) (views.Page[views.ChannelSummary], error)
	ListSubscribedChannels(dbc dbctx.Context, subscriberID uuid.UUID, page views.PageRequest) (views.Page[views.ChannelSummary], error)
}

type subscriptionService struct {
	h       *store.Handle
	log     *logger.Logger
	toggles ToggleEngine
	planner AggregationPlanner
}

func NewSubscriptionService(h *store.Handle, log *logger.Logger, toggles ToggleEngine, planner AggregationPlanner) SubscriptionService {
	return &subscriptionService{h: h, log: log.With("service", "SubscriptionService"), toggles: toggles, planner: planner}
}

func (ss *subscriptionService) ToggleSubscription(dbc dbctx.Context, channelID uuid.UUID) (*ToggleResult, error) {
	const op = "SubscriptionService.ToggleSubscription"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "channel", channelID); err != nil {
		return nil, err
	}
	if channelID == principal {
		return nil, errs.New(errs.InvalidArgument, op, "You cannot subscribe to your own channel")
	}
	if _, err := ss.h.Users.GetByID(dbc, channelID); err != nil {
		return nil, storeErr(op, "channel", err)
	}
	return ss.toggles.Toggle(dbc, social.SubscriptionKey(principal, channelID))
}

func (ss *subscriptionService) ListSubscribers(dbc dbctx.Context, channelID uuid.UUID, page views.PageRequest) (views.Page[views.ChannelSummary], error) {
	const op = "SubscriptionService.ListSubscribers"
	if err := requireID(op, "channel", channelID); err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	page = page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	target := social.Ref(social.TargetChannel, channelID)
	edges, err := ss.h.Edges.ListByTarget(dbc, social.KindSubscription, target, page)
	if err != nil {
		return views.Page[views.ChannelSummary]{}, storeErr(op, "subscription", err)
	}
	total, err := ss.h.Edges.CountByTarget(dbc, social.KindSubscription, target)
	if err != nil {
		return views.Page[views.ChannelSummary]{}, storeErr(op, "subscription", err)
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.SubjectID)
	}
	out, err := ss.planner.Channels(dbc, ctxutil.PrincipalID(dbc.Context()), ids)
	if err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	return views.NewPage(out, page, total), nil
}

func (ss *subscriptionService) ListSubscribedChannels(dbc dbctx.Context, subscriberID uuid.UUID, page views.PageRequest) (views.Page[views.ChannelSummary], error) {
	const op = "SubscriptionService.ListSubscribedChannels"
	if err := requireID(op, "subscriber", subscriberID); err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	page = page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	edges, err := ss.h.Edges.ListBySubject(dbc, social.KindSubscription, subscriberID, social.TargetChannel, page)
	if err != nil {
		return views.Page[views.ChannelSummary]{}, storeErr(op, "subscription", err)
	}
	total, err := ss.h.Edges.CountBySubject(dbc, social.KindSubscription, subscriberID, social.TargetChannel)
	if err != nil {
		return views.Page[views.ChannelSummary]{}, storeErr(op, "subscription", err)
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Target.ID)
	}
	out, err := ss.planner.Channels(dbc, ctxutil.PrincipalID(dbc.Context()), ids)
	if err != nil {
		return views.Page[views.ChannelSummary]{}, err
	}
	return views.NewPage(out, page, total), nil
}
