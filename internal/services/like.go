package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type LikeService interface {
	// ToggleLike flips the principal's like on a video, comment or post.
	ToggleLike(dbc dbctx.Context, target social.TargetRef) (*ToggleResult, error)
	// ListLikedVideos pages the principal's liked videos, newest like first.
	// Liked videos that were deleted or hidden since drop out of the page.
	ListLikedVideos(dbc dbctx.Context, page views.PageRequest) (views.Page[views.AggregateView], error)
}

type likeService struct {
	h       *store.Handle
	log     *logger.Logger
	toggles ToggleEngine
	planner AggregationPlanner
}

func NewLikeService(h *store.Handle, log *logger.Logger, toggles ToggleEngine, planner AggregationPlanner) LikeService {
	return &likeService{h: h, log: log.With("service", "LikeService"), toggles: toggles, planner: planner}
}

func (ls *likeService) ToggleLike(dbc dbctx.Context, target social.TargetRef) (*ToggleResult, error) {
	const op = "LikeService.ToggleLike"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if !target.IsContent() {
		return nil, errs.Newf(errs.InvalidArgument, op, "cannot like a %s", target.Kind)
	}
	if err := requireID(op, string(target.Kind), target.ID); err != nil {
		return nil, err
	}
	if err := ls.requireTarget(dbc, op, target, principal); err != nil {
		return nil, err
	}
	return ls.toggles.Toggle(dbc, social.LikeKey(principal, target))
}

func (ls *likeService) requireTarget(dbc dbctx.Context, op string, target social.TargetRef, principal uuid.UUID) error {
	var err error
	switch target.Kind {
	case social.TargetVideo:
		_, err = visibleVideo(dbc, ls.h.Videos, op, target.ID, principal)
		return err
	case social.TargetComment:
		_, err = ls.h.Comments.GetByID(dbc, target.ID)
	case social.TargetPost:
		_, err = ls.h.Posts.GetByID(dbc, target.ID)
	}
	return storeErr(op, string(target.Kind), err)
}

func (ls *likeService) ListLikedVideos(dbc dbctx.Context, page views.PageRequest) (views.Page[views.AggregateView], error) {
	const op = "LikeService.ListLikedVideos"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	page = page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	edges, err := ls.h.Edges.ListBySubject(dbc, social.KindLike, principal, social.TargetVideo, page)
	if err != nil {
		return views.Page[views.AggregateView]{}, storeErr(op, "like", err)
	}
	total, err := ls.h.Edges.CountBySubject(dbc, social.KindLike, principal, social.TargetVideo)
	if err != nil {
		return views.Page[views.AggregateView]{}, storeErr(op, "like", err)
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Target.ID)
	}
	agg, err := ls.planner.Videos(dbc, principal, ids)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	visible := agg[:0]
	for _, a := range agg {
		if v, ok := a.Node.(*content.Video); ok && v.VisibleTo(principal) {
			visible = append(visible, a)
		}
	}
	return views.NewPage(visible, page, total), nil
}
