package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/user"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type HistoryEntry struct {
	ID        uuid.UUID            `json:"_id"`
	WatchedAt time.Time            `json:"watchedAt"`
	Video     *views.AggregateView `json:"video"`
}

type UserService interface {
	// EnsurePrincipal upserts the profile row for a verified principal.
	EnsurePrincipal(dbc dbctx.Context, p *ctxutil.Principal) (*user.User, error)
	GetChannel(dbc dbctx.Context, channelID uuid.UUID) (*views.ChannelSummary, error)
	// WatchHistory lists the calling principal's history, newest first.
	// Entries for deleted videos keep their slot with a nil Video.
	WatchHistory(dbc dbctx.Context, page views.PageRequest) (views.Page[HistoryEntry], error)
}

type userService struct {
	h       *store.Handle
	log     *logger.Logger
	planner AggregationPlanner
}

func NewUserService(h *store.Handle, log *logger.Logger, planner AggregationPlanner) UserService {
	return &userService{h: h, log: log.With("service", "UserService"), planner: planner}
}

func (us *userService) EnsurePrincipal(dbc dbctx.Context, p *ctxutil.Principal) (*user.User, error) {
	const op = "UserService.EnsurePrincipal"
	if p == nil || p.ID == uuid.Nil {
		return nil, errs.New(errs.Unauthenticated, op, "principal required")
	}
	username := strings.ToLower(strings.TrimSpace(p.Username))
	if username == "" {
		username = "user_" + strings.ReplaceAll(p.ID.String(), "-", "")[:12]
	}
	fullName := strings.TrimSpace(p.FullName)
	if fullName == "" {
		fullName = username
	}
	u, err := us.h.Users.Upsert(dbc, &user.User{
		ID:        p.ID,
		Username:  username,
		FullName:  fullName,
		AvatarURL: strings.TrimSpace(p.AvatarURL),
	})
	if err != nil {
		us.log.Warn("principal upsert failed", "principal_id", p.ID, "error", err)
		return nil, storeErr(op, "user", err)
	}
	return u, nil
}

func (us *userService) GetChannel(dbc dbctx.Context, channelID uuid.UUID) (*views.ChannelSummary, error) {
	const op = "UserService.GetChannel"
	if err := requireID(op, "channel", channelID); err != nil {
		return nil, err
	}
	out, err := us.planner.Channels(dbc, ctxutil.PrincipalID(dbc.Context()), []uuid.UUID{channelID})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errs.New(errs.NotFound, op, "channel not found")
	}
	ch := out[0]
	ch.SubscribedToCount, err = us.h.Edges.CountBySubject(dbc, social.KindSubscription, channelID, social.TargetChannel)
	if err != nil {
		return nil, storeErr(op, "channel", err)
	}
	return &ch, nil
}

func (us *userService) WatchHistory(dbc dbctx.Context, page views.PageRequest) (views.Page[HistoryEntry], error) {
	const op = "UserService.WatchHistory"
	viewer, err := requirePrincipal(dbc, op)
	if err != nil {
		return views.Page[HistoryEntry]{}, err
	}
	page = page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[HistoryEntry]{}, err
	}
	entries, total, err := us.h.History.ListByUser(dbc, viewer, page)
	if err != nil {
		return views.Page[HistoryEntry]{}, storeErr(op, "watch history", err)
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	agg, err := us.planner.Videos(dbc, viewer, ids)
	if err != nil {
		return views.Page[HistoryEntry]{}, err
	}
	byID := make(map[uuid.UUID]*views.AggregateView, len(agg))
	for i := range agg {
		// Entries for videos unpublished since keep their slot with no video.
		if v, ok := agg[i].Node.(*content.Video); ok && !v.VisibleTo(viewer) {
			continue
		}
		byID[agg[i].Ref().ID] = &agg[i]
	}
	docs := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, HistoryEntry{ID: e.ID, WatchedAt: e.CreatedAt, Video: byID[e.VideoID]})
	}
	return views.NewPage(docs, page, total), nil
}
