package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type CommentService interface {
	// ListComments pages a video's comments newest first, each aggregated for
	// the calling principal.
	ListComments(dbc dbctx.Context, videoID uuid.UUID, page views.PageRequest) (views.Page[views.AggregateView], error)
	AddComment(dbc dbctx.Context, videoID uuid.UUID, text string) (*content.Comment, error)
	UpdateComment(dbc dbctx.Context, commentID uuid.UUID, text string) (*content.Comment, error)
	DeleteComment(dbc dbctx.Context, commentID uuid.UUID) (*content.Comment, error)
}

type commentService struct {
	h       *store.Handle
	log     *logger.Logger
	guard   MutationGuard
	planner AggregationPlanner
}

func NewCommentService(h *store.Handle, log *logger.Logger, guard MutationGuard, planner AggregationPlanner) CommentService {
	return &commentService{h: h, log: log.With("service", "CommentService"), guard: guard, planner: planner}
}

// visibleVideo resolves a video the viewer may see; unpublished videos of
// other owners read as missing.
func visibleVideo(dbc dbctx.Context, videos store.VideoStore, op string, id, viewer uuid.UUID) (*content.Video, error) {
	if err := requireID(op, "video", id); err != nil {
		return nil, err
	}
	v, err := videos.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, "video", err)
	}
	if !v.VisibleTo(viewer) {
		return nil, errs.New(errs.NotFound, op, "video not found")
	}
	return v, nil
}

func (cs *commentService) ListComments(dbc dbctx.Context, videoID uuid.UUID, page views.PageRequest) (views.Page[views.AggregateView], error) {
	const op = "CommentService.ListComments"
	viewer := ctxutil.PrincipalID(dbc.Context())
	if _, err := visibleVideo(dbc, cs.h.Videos, op, videoID, viewer); err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	page = page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	rows, total, err := cs.h.Comments.ListByVideo(dbc, videoID, page)
	if err != nil {
		return views.Page[views.AggregateView]{}, storeErr(op, "comment", err)
	}
	nodes := make([]content.Node, 0, len(rows))
	for _, c := range rows {
		nodes = append(nodes, c)
	}
	agg, err := cs.planner.Nodes(dbc, viewer, nodes)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	return views.NewPage(agg, page, total), nil
}

func commentText(op, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.New(errs.InvalidArgument, op, "Content is required")
	}
	return text, nil
}

func (cs *commentService) AddComment(dbc dbctx.Context, videoID uuid.UUID, text string) (*content.Comment, error) {
	const op = "CommentService.AddComment"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if text, err = commentText(op, text); err != nil {
		return nil, err
	}
	if _, err := visibleVideo(dbc, cs.h.Videos, op, videoID, principal); err != nil {
		return nil, err
	}
	c := &content.Comment{VideoID: videoID, OwnerID: principal, Content: text}
	if err := cs.h.Comments.Create(dbc, c); err != nil {
		return nil, storeErr(op, "comment", err)
	}
	return c, nil
}

func (cs *commentService) UpdateComment(dbc dbctx.Context, commentID uuid.UUID, text string) (*content.Comment, error) {
	const op = "CommentService.UpdateComment"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "comment", commentID); err != nil {
		return nil, err
	}
	if text, err = commentText(op, text); err != nil {
		return nil, err
	}
	current, err := cs.guard.AuthorizeComment(dbc, commentID, principal)
	if err != nil {
		return nil, err
	}
	updated, err := cs.h.Comments.UpdateFields(dbc, current.ID, map[string]any{"content": text})
	if err != nil {
		return nil, storeErr(op, "comment", err)
	}
	return updated, nil
}

func (cs *commentService) DeleteComment(dbc dbctx.Context, commentID uuid.UUID) (*content.Comment, error) {
	const op = "CommentService.DeleteComment"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "comment", commentID); err != nil {
		return nil, err
	}
	node, err := cs.guard.Delete(dbc, social.Ref(social.TargetComment, commentID), principal)
	if err != nil {
		return nil, err
	}
	return node.(*content.Comment), nil
}
