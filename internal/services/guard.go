package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/data/store"
	"github.com/yungbote/streamhub-backend/internal/domain/content"
	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/domain/social"
	"github.com/yungbote/streamhub-backend/internal/observability"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/realtime"
)

// MutationGuard is the ownership gate in front of every content update and
// delete. Callers operate only on the node it returns.
type MutationGuard interface {
	Authorize(dbc dbctx.Context, ref social.TargetRef, principal uuid.UUID) (content.Node, error)
	AuthorizeVideo(dbc dbctx.Context, id, principal uuid.UUID) (*content.Video, error)
	AuthorizeComment(dbc dbctx.Context, id, principal uuid.UUID) (*content.Comment, error)
	AuthorizePost(dbc dbctx.Context, id, principal uuid.UUID) (*content.Post, error)
	// Delete authorizes, releases media best-effort, removes the record and
	// announces the deletion. Edges pointing at the node are left to the
	// orphan sweeper.
	Delete(dbc dbctx.Context, ref social.TargetRef, principal uuid.UUID) (content.Node, error)
}

type mutationGuard struct {
	h       *store.Handle
	media   MediaStore
	log     *logger.Logger
	events  EventPublisher
	graph   GraphProjector
	metrics *observability.Metrics
}

func NewMutationGuard(h *store.Handle, media MediaStore, log *logger.Logger, events EventPublisher, graph GraphProjector, metrics *observability.Metrics) MutationGuard {
	return &mutationGuard{
		h:       h,
		media:   media,
		log:     log.With("service", "MutationGuard"),
		events:  publisherOrNop(events),
		graph:   projectorOrNop(graph),
		metrics: metrics,
	}
}

func ownedBy[N content.Node](op, what string, n N, principal uuid.UUID) (N, error) {
	if principal == uuid.Nil || n.Owner() != principal {
		var zero N
		return zero, errs.Newf(errs.Forbidden, op, "you are not allowed to modify this %s", what)
	}
	return n, nil
}

func (g *mutationGuard) AuthorizeVideo(dbc dbctx.Context, id, principal uuid.UUID) (*content.Video, error) {
	const op = "MutationGuard.AuthorizeVideo"
	v, err := g.h.Videos.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, "video", err)
	}
	return ownedBy(op, "video", v, principal)
}

func (g *mutationGuard) AuthorizeComment(dbc dbctx.Context, id, principal uuid.UUID) (*content.Comment, error) {
	const op = "MutationGuard.AuthorizeComment"
	c, err := g.h.Comments.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, "comment", err)
	}
	return ownedBy(op, "comment", c, principal)
}

func (g *mutationGuard) AuthorizePost(dbc dbctx.Context, id, principal uuid.UUID) (*content.Post, error) {
	const op = "MutationGuard.AuthorizePost"
	p, err := g.h.Posts.GetByID(dbc, id)
	if err != nil {
		return nil, storeErr(op, "post", err)
	}
	return ownedBy(op, "post", p, principal)
}

func (g *mutationGuard) Authorize(dbc dbctx.Context, ref social.TargetRef, principal uuid.UUID) (content.Node, error) {
	var (
		node content.Node
		err  error
	)
	switch ref.Kind {
	case social.TargetVideo:
		var v *content.Video
		if v, err = g.AuthorizeVideo(dbc, ref.ID, principal); err == nil {
			node = v
		}
	case social.TargetComment:
		var c *content.Comment
		if c, err = g.AuthorizeComment(dbc, ref.ID, principal); err == nil {
			node = c
		}
	case social.TargetPost:
		var p *content.Post
		if p, err = g.AuthorizePost(dbc, ref.ID, principal); err == nil {
			node = p
		}
	default:
		err = errs.Newf(errs.InvalidArgument, "MutationGuard.Authorize", "%q is not a content kind", ref.Kind)
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (g *mutationGuard) Delete(dbc dbctx.Context, ref social.TargetRef, principal uuid.UUID) (content.Node, error) {
	const op = "MutationGuard.Delete"
	node, err := g.Authorize(dbc, ref, principal)
	if err != nil {
		return nil, err
	}

	if v, ok := node.(*content.Video); ok {
		g.releaseMedia(dbc, MediaVideo, v.VideoFileKey)
		g.releaseMedia(dbc, MediaThumbnail, v.ThumbnailKey)
	}

	switch ref.Kind {
	case social.TargetVideo:
		err = g.h.Videos.Delete(dbc, ref.ID)
	case social.TargetComment:
		err = g.h.Comments.Delete(dbc, ref.ID)
	case social.TargetPost:
		err = g.h.Posts.Delete(dbc, ref.ID)
	}
	if err != nil {
		return nil, storeErr(op, string(ref.Kind), err)
	}

	ctx := dbc.Context()
	if err := g.events.Publish(ctx, realtime.ContentDeleted(principal, ref)); err != nil {
		g.metrics.IncBestEffortFailure("publish_content_deleted")
		g.log.Warn("publish content deleted failed", "error", err, "target", ref.String())
	}
	if err := g.graph.DropContent(ctx, ref); err != nil {
		g.metrics.IncBestEffortFailure("graph_drop_content")
		g.log.Warn("graph drop content failed", "error", err, "target", ref.String())
	}
	return node, nil
}

func (g *mutationGuard) releaseMedia(dbc dbctx.Context, kind MediaKind, key string) {
	if g.media == nil || key == "" {
		return
	}
	if err := g.media.Delete(dbc, kind, key); err != nil {
		g.metrics.IncBestEffortFailure("media_release")
		g.log.Warn("media release failed (continuing)", "kind", kind, "key", key, "error", err)
	}
}
