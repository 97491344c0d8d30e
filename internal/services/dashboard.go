package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type DashboardService interface {
	// ChannelStats for channelID; uuid.Nil means the calling principal.
	ChannelStats(dbc dbctx.Context, channelID uuid.UUID) (*views.ChannelStats, error)
	// ChannelVideos lists the principal's own videos, unpublished included.
	ChannelVideos(dbc dbctx.Context, req FeedRequest) (views.Page[views.AggregateView], error)
}

const statsChunk = 500

type dashboardService struct {
	h    *store.Handle
	log  *logger.Logger
	feed FeedComposer
}

func NewDashboardService(h *store.Handle, log *logger.Logger, feed FeedComposer) DashboardService {
	return &dashboardService{h: h, log: log.With("service", "DashboardService"), feed: feed}
}

func (ds *dashboardService) ChannelStats(dbc dbctx.Context, channelID uuid.UUID) (*views.ChannelStats, error) {
	const op = "DashboardService.ChannelStats"
	if channelID == uuid.Nil {
		principal, err := requirePrincipal(dbc, op)
		if err != nil {
			return nil, err
		}
		channelID = principal
	}
	if _, err := ds.h.Users.GetByID(dbc, channelID); err != nil {
		return nil, storeErr(op, "channel", err)
	}

	videos, totalViews, err := ds.h.Videos.OwnerTotals(dbc, channelID)
	if err != nil {
		return nil, storeErr(op, "video", err)
	}
	totalLikes, err := ds.channelLikes(dbc, channelID)
	if err != nil {
		return nil, storeErr(op, "like", err)
	}
	subscribers, err := ds.h.Edges.CountByTarget(dbc, social.KindSubscription, social.Ref(social.TargetChannel, channelID))
	if err != nil {
		return nil, storeErr(op, "subscription", err)
	}
	return &views.ChannelStats{
		ChannelID:        channelID,
		TotalVideos:      videos,
		TotalViews:       totalViews,
		TotalLikes:       totalLikes,
		TotalSubscribers: subscribers,
	}, nil
}

// channelLikes sums likes over the channel's videos one id chunk at a time
// so no single count query carries more than statsChunk targets.
func (ds *dashboardService) channelLikes(dbc dbctx.Context, channelID uuid.UUID) (int64, error) {
	var (
		total int64
		after uuid.UUID
	)
	for {
		ids, err := ds.h.Videos.ListIDsByOwner(dbc, channelID, after, statsChunk)
		if err != nil {
			return 0, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		refs := make([]social.TargetRef, 0, len(ids))
		for _, id := range ids {
			refs = append(refs, social.Ref(social.TargetVideo, id))
		}
		likes, err := ds.h.Edges.CountByTargets(dbc, social.KindLike, refs)
		if err != nil {
			return 0, err
		}
		for _, n := range likes {
			total += n
		}
		if len(ids) < statsChunk {
			return total, nil
		}
		after = ids[len(ids)-1]
	}
}

func (ds *dashboardService) ChannelVideos(dbc dbctx.Context, req FeedRequest) (views.Page[views.AggregateView], error) {
	const op = "DashboardService.ChannelVideos"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	req.Filter = FeedFilter{OwnerID: principal, Text: req.Filter.Text}
	return ds.feed.ListFeedAggregated(dbc, principal, req)
}
