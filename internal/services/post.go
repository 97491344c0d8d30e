package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/domain/views"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type PostService interface {
	CreatePost(dbc dbctx.Context, text string) (*content.Post, error)
	ListPostsByOwner(dbc dbctx.Context, ownerID uuid.UUID, page views.PageRequest) (views.Page[views.AggregateView], error)
	UpdatePost(dbc dbctx.Context, postID uuid.UUID, text string) (*content.Post, error)
	DeletePost(dbc dbctx.Context, postID uuid.UUID) (*content.Post, error)
}

type postService struct {
	h       *store.Handle
	log     *logger.Logger
	guard   MutationGuard
	planner AggregationPlanner
}

func NewPostService(h *store.Handle, log *logger.Logger, guard MutationGuard, planner AggregationPlanner) PostService {
	return &postService{h: h, log: log.With("service", "PostService"), guard: guard, planner: planner}
}

func (ps *postService) CreatePost(dbc dbctx.Context, text string) (*content.Post, error) {
	const op = "PostService.CreatePost"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if text, err = commentText(op, text); err != nil {
		return nil, err
	}
	p := &content.Post{OwnerID: principal, Content: text}
	if err := ps.h.Posts.Create(dbc, p); err != nil {
		return nil, storeErr(op, "post", err)
	}
	return p, nil
}

func (ps *postService) ListPostsByOwner(dbc dbctx.Context, ownerID uuid.UUID, page views.PageRequest) (views.Page[views.AggregateView], error) {
	const op = "PostService.ListPostsByOwner"
	if err := requireID(op, "user", ownerID); err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	page = page.Normalize()
	if err := page.Validate(); err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	if _, err := ps.h.Users.GetByID(dbc, ownerID); err != nil {
		return views.Page[views.AggregateView]{}, storeErr(op, "user", err)
	}
	rows, total, err := ps.h.Posts.ListByOwner(dbc, ownerID, page)
	if err != nil {
		return views.Page[views.AggregateView]{}, storeErr(op, "post", err)
	}
	nodes := make([]content.Node, 0, len(rows))
	for _, p := range rows {
		nodes = append(nodes, p)
	}
	agg, err := ps.planner.Nodes(dbc, ctxutil.PrincipalID(dbc.Context()), nodes)
	if err != nil {
		return views.Page[views.AggregateView]{}, err
	}
	return views.NewPage(agg, page, total), nil
}

func (ps *postService) UpdatePost(dbc dbctx.Context, postID uuid.UUID, text string) (*content.Post, error) {
	const op = "PostService.UpdatePost"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "post", postID); err != nil {
		return nil, err
	}
	if text, err = commentText(op, text); err != nil {
		return nil, err
	}
	current, err := ps.guard.AuthorizePost(dbc, postID, principal)
	if err != nil {
		return nil, err
	}
	updated, err := ps.h.Posts.UpdateFields(dbc, current.ID, map[string]any{"content": text})
	if err != nil {
		return nil, storeErr(op, "post", err)
	}
	return updated, nil
}

func (ps *postService) DeletePost(dbc dbctx.Context, postID uuid.UUID) (*content.Post, error) {
	const op = "PostService.DeletePost"
	principal, err := requirePrincipal(dbc, op)
	if err != nil {
		return nil, err
	}
	if err := requireID(op, "post", postID); err != nil {
		return nil, err
	}
	node, err := ps.guard.Delete(dbc, social.Ref(social.TargetPost, postID), principal)
	if err != nil {
		return nil, err
	}
	return node.(*content.Post), nil
}
